package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"moneymanager/internal/models"
	"moneymanager/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, fullName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	ClearRefreshTokenHash(userID string) error
	UpdateProfile(userID, fullName string) (*models.User, error)
	ChangePassword(userID, currentPassword, newPassword string) error
	DeleteUser(userID string) error
}

// CreateAccountInput holds the fields accepted when opening an account.
type CreateAccountInput struct {
	Name           string
	Type           models.AccountType
	Description    string
	Currency       string
	InitialBalance decimal.Decimal
}

// AccountUpdateFields holds the optional fields for updating an account.
// Balance is deliberately absent: it only changes through transactions.
type AccountUpdateFields struct {
	Name        *string
	Type        *models.AccountType
	Description *string
	Currency    *string
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID string, input CreateAccountInput) (*models.Account, error)
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error)
	DeleteAccount(userID, accountID string) error
	LockAccount(tx *gorm.DB, userID, accountID string) (*models.Account, error)
	ApplyTransactionEffect(tx *gorm.DB, account *models.Account, transactionType models.TransactionType, amount decimal.Decimal, reversing bool) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, categoryType models.CategoryType, description, icon, color string) (*models.Category, error)
	GetUserCategories(userID string, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, name, description, icon, color *string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// CreateTransactionInput holds the fields of a new ledger entry. A zero Date
// means now.
type CreateTransactionInput struct {
	AccountID              string
	CategoryID             string
	Type                   models.TransactionType
	Amount                 decimal.Decimal
	Description            string
	Date                   time.Time
	RecurringTransactionID *string
}

// TransactionView is the read model returned to clients: the transaction
// plus the names of the records it references.
type TransactionView struct {
	ID                     string                 `json:"id"`
	Description            string                 `json:"description"`
	Amount                 decimal.Decimal        `json:"amount"`
	Type                   models.TransactionType `json:"type"`
	Date                   time.Time              `json:"date"`
	AccountID              string                 `json:"account_id"`
	AccountName            string                 `json:"account_name"`
	CategoryID             string                 `json:"category_id"`
	CategoryName           string                 `json:"category_name"`
	RecurringTransactionID *string                `json:"recurring_transaction_id,omitempty"`
	AccountBalance         *decimal.Decimal       `json:"account_balance,omitempty"`
	CreatedAt              time.Time              `json:"created_at"`
}

// TransactionFilter holds optional filter parameters for listing transactions.
// FromDate is inclusive and ToDate is exclusive.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	AccountID  *string
}

// CategoryExpense is one row of the expenses-by-category breakdown.
type CategoryExpense struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Color        string          `json:"color"`
	Total        decimal.Decimal `json:"total"`
}

// MonthlyStat holds income and expense totals for one calendar month.
type MonthlyStat struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, input CreateTransactionInput) (*TransactionView, error)
	CreateTransactionTx(tx *gorm.DB, userID string, input CreateTransactionInput) (*TransactionView, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[TransactionView], error)
	GetAccountTransactions(userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[TransactionView], error)
	GetTransactionByID(userID, transactionID string) (*TransactionView, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
	GetExpensesByCategory(userID string, from, to *time.Time) ([]CategoryExpense, error)
	GetMonthlyStats(userID string, months int) ([]MonthlyStat, error)
}

// CreateRecurringInput holds the fields of a new recurring template. A zero
// StartDate means today.
type CreateRecurringInput struct {
	AccountID   string
	CategoryID  string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
	StartDate   time.Time
}

// SweepResult summarizes one run of the due-cycle sweep. Due and Failed count
// templates; Materialized counts transactions created.
type SweepResult struct {
	Date         string `json:"date"`
	Due          int    `json:"due"`
	Materialized int    `json:"materialized"`
	Failed       int    `json:"failed"`
}

// RecurringServicer defines the contract for recurring transaction templates
// and the sweep that materializes them.
type RecurringServicer interface {
	CreateRecurring(ctx context.Context, userID string, input CreateRecurringInput, today time.Time) (*models.RecurringTransaction, error)
	GetUserRecurring(userID string, page pagination.PageRequest, active *bool) (*pagination.PageResponse[models.RecurringTransaction], error)
	GetRecurringByID(userID, recurringID string) (*models.RecurringTransaction, error)
	CancelRecurring(userID, recurringID string) error
	RunDueCycle(ctx context.Context, today time.Time) (*SweepResult, error)
}

// BudgetProgress contains spending vs budget data for a budget's current period.
type BudgetProgress struct {
	BudgetID      string          `json:"budget_id"`
	CategoryID    string          `json:"category_id"`
	CategoryName  string          `json:"category_name"`
	CategoryColor string          `json:"category_color"`
	Period        string          `json:"period"`
	Budgeted      decimal.Decimal `json:"budgeted"`
	Spent         decimal.Decimal `json:"spent"`
	Remaining     decimal.Decimal `json:"remaining"`
	Percentage    float64         `json:"percentage"`
}

// SetBudgetInput holds the fields for creating or replacing a category budget.
type SetBudgetInput struct {
	CategoryID string
	Name       string
	Amount     decimal.Decimal
	Period     models.BudgetPeriod
	StartDate  time.Time
	EndDate    *time.Time
}

// BudgetUpdateFields holds the optional fields for updating a budget.
type BudgetUpdateFields struct {
	Name     *string
	Amount   *decimal.Decimal
	Period   *models.BudgetPeriod
	EndDate  *time.Time
	IsActive *bool
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	SetBudget(userID string, input SetBudgetInput) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, isActive *bool, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, fields BudgetUpdateFields) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetProgress(userID, budgetID string) (*BudgetProgress, error)
	GetBudgetOverview(userID string) ([]BudgetProgress, error)
}

// CreateGoalInput holds the fields for a new savings goal.
type CreateGoalInput struct {
	Name         string
	TargetAmount decimal.Decimal
	Deadline     *time.Time
	Color        string
}

// SavingsGoalServicer defines the contract for savings goals.
type SavingsGoalServicer interface {
	CreateGoal(userID string, input CreateGoalInput) (*models.SavingsGoal, error)
	GetUserGoals(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsGoal], error)
	GetGoalByID(userID, goalID string) (*models.SavingsGoal, error)
	AddFunds(userID, goalID string, amount decimal.Decimal) (*models.SavingsGoal, error)
	DeleteGoal(userID, goalID string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
