// Package server assembles the HTTP API: services, handlers, middleware and
// the /api/v1 route table.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"moneymanager/internal/events"
	"moneymanager/internal/handlers"
	"moneymanager/internal/middleware"
	"moneymanager/internal/services"
)

// Options controls the parts of the router that differ between deployments.
type Options struct {
	CORSAllowedOrigin string
	PipelineAPIKey    string
	RequestLogging    bool
	Swagger           bool
}

// Services bundles the business services behind the API.
type Services struct {
	Users        services.UserServicer
	Accounts     services.AccountServicer
	Categories   services.CategoryServicer
	Transactions services.TransactionServicer
	Recurring    services.RecurringServicer
	Budgets      services.BudgetServicer
	Goals        services.SavingsGoalServicer
	Audit        services.AuditServicer
}

// NewServices wires every service against db. Ledger events go to publisher.
func NewServices(db *gorm.DB, publisher events.Publisher) Services {
	accountService := services.NewAccountService(db)
	transactionService := services.NewTransactionService(db, accountService, publisher)
	return Services{
		Users:        services.NewUserService(db),
		Accounts:     accountService,
		Categories:   services.NewCategoryService(db),
		Transactions: transactionService,
		Recurring:    services.NewRecurringService(db, accountService, transactionService, publisher),
		Budgets:      services.NewBudgetService(db),
		Goals:        services.NewSavingsGoalService(db),
		Audit:        services.NewAuditService(db),
	}
}

// NewRouter builds the Gin engine with every route of the API.
func NewRouter(svc Services, opts Options) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Audit)
	accountHandler := handlers.NewAccountHandler(svc.Accounts, svc.Audit)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, svc.Audit)
	recurringHandler := handlers.NewRecurringHandler(svc.Recurring, svc.Audit)
	budgetHandler := handlers.NewBudgetHandler(svc.Budgets, svc.Audit)
	goalHandler := handlers.NewSavingsGoalHandler(svc.Goals, svc.Audit)
	pipelineHandler := handlers.NewPipelineHandler(svc.Recurring)

	router := gin.New()
	router.Use(gin.Recovery())
	if opts.RequestLogging {
		router.Use(middleware.RequestLogging())
	}
	if opts.CORSAllowedOrigin != "" {
		router.Use(middleware.CORS(opts.CORSAllowedOrigin))
	}
	router.Use(middleware.ErrorHandler())

	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// External schedulers
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(opts.PipelineAPIKey))
	pipeline.POST("/recurring/run", pipelineHandler.RunRecurring)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout", authHandler.Logout)

	profile := protected.Group("/profile")
	profile.GET("", authHandler.GetProfile)
	profile.PUT("", authHandler.UpdateProfile)
	profile.DELETE("", authHandler.DeleteProfile)
	profile.PUT("/password", authHandler.ChangePassword)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	accounts.GET("/:id/transactions", transactionHandler.GetAccountTransactions)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/stats/categories", transactionHandler.GetExpensesByCategory)
	transactions.GET("/stats/monthly", transactionHandler.GetMonthlyStats)
	transactions.POST("/recurring", recurringHandler.CreateRecurring)
	transactions.GET("/recurring", recurringHandler.GetUserRecurring)
	transactions.GET("/recurring/:id", recurringHandler.GetRecurringByID)
	transactions.DELETE("/recurring/:id", recurringHandler.CancelRecurring)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.SetBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/overview", budgetHandler.GetBudgetOverview)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)

	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id/add", goalHandler.AddFunds)
	goals.DELETE("/:id", goalHandler.DeleteGoal)

	return router
}
