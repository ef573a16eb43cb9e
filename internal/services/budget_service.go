package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"moneymanager/internal/calendar"
	apperrors "moneymanager/internal/errors"
	"moneymanager/internal/models"
	"moneymanager/internal/pagination"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db, now: time.Now}
}

// SetBudget creates the budget for a category, or replaces the limit of the
// user's active budget on that category if one exists.
func (s *budgetService) SetBudget(userID string, input SetBudgetInput) (*models.Budget, error) {
	if !input.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount must be greater than zero")
	}
	period := input.Period
	if period == "" {
		period = models.BudgetPeriodMonthly
	}
	if period != models.BudgetPeriodMonthly && period != models.BudgetPeriodYearly {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget period must be monthly or yearly")
	}
	startDate := input.StartDate
	if startDate.IsZero() {
		startDate = calendar.MonthStart(s.now())
	}

	var budgetID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		category, err := findOwned[models.Category](tx, userID, input.CategoryID, apperrors.ErrCategoryNotFound)
		if err != nil {
			return err
		}
		if category.Type != models.CategoryTypeExpense {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "budgets can only be set on expense categories")
		}

		name := strings.TrimSpace(input.Name)
		if name == "" {
			name = category.Name
		}

		var existing models.Budget
		err = tx.Where("user_id = ? AND category_id = ? AND is_active = ?", userID, category.ID, true).First(&existing).Error
		switch {
		case err == nil:
			budgetID = existing.ID
			return tx.Model(&existing).Updates(map[string]interface{}{
				"name":       name,
				"amount":     input.Amount,
				"period":     period,
				"start_date": calendar.Date(startDate),
				"end_date":   input.EndDate,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			budget := &models.Budget{
				UserID:     userID,
				CategoryID: category.ID,
				Name:       name,
				Amount:     input.Amount,
				Period:     period,
				StartDate:  calendar.Date(startDate),
				EndDate:    input.EndDate,
				IsActive:   true,
			}
			if err := tx.Create(budget).Error; err != nil {
				return err
			}
			budgetID = budget.ID
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, internalErr(err)
	}

	return s.GetBudgetByID(userID, budgetID)
}

// GetUserBudgets returns a paginated list of budgets for the user with optional filters.
func (s *budgetService) GetUserBudgets(
	userID string,
	page pagination.PageRequest,
	isActive *bool,
	period *models.BudgetPeriod,
) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if isActive != nil {
		base = base.Where("is_active = ?", *isActive)
	}
	if period != nil {
		base = base.Where("period = ?", *period)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Category", unscopedPreload).
		Scopes(pagination.Paginate(page)).
		Order("created_at ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// unscopedPreload lets a budget show its category after the category was
// soft-deleted.
func unscopedPreload(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category", unscopedPreload).
		Where("id = ? AND user_id = ?", budgetID, userID).
		First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates an existing budget's fields.
func (s *budgetService) UpdateBudget(userID, budgetID string, fields BudgetUpdateFields) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && strings.TrimSpace(*fields.Name) != "" {
		updates["name"] = strings.TrimSpace(*fields.Name)
	}
	if fields.Amount != nil {
		if !fields.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount must be greater than zero")
		}
		updates["amount"] = *fields.Amount
	}
	if fields.Period != nil {
		updates["period"] = *fields.Period
	}
	if fields.EndDate != nil {
		updates["end_date"] = *fields.EndDate
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if len(updates) > 0 {
		// Updates on a fresh model so the preloaded Category is not written back.
		if err := s.db.Model(&models.Budget{}).Where("id = ?", budget.ID).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetBudgetByID(userID, budgetID)
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := findOwned[models.Budget](s.db, userID, budgetID, apperrors.ErrBudgetNotFound)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetProgress calculates spending vs budget for the current period.
func (s *budgetService) GetBudgetProgress(userID, budgetID string) (*BudgetProgress, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}
	return s.progress(budget)
}

// GetBudgetOverview returns progress for each of the user's active budgets.
func (s *budgetService) GetBudgetOverview(userID string) ([]BudgetProgress, error) {
	var budgets []models.Budget
	if err := s.db.Preload("Category", unscopedPreload).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	overview := make([]BudgetProgress, 0, len(budgets))
	for i := range budgets {
		p, err := s.progress(&budgets[i])
		if err != nil {
			return nil, err
		}
		overview = append(overview, *p)
	}
	return overview, nil
}

// periodWindow returns the [start, end) window of the period containing now.
func periodWindow(period models.BudgetPeriod, now time.Time) (time.Time, time.Time) {
	if period == models.BudgetPeriodYearly {
		start := calendar.YearStart(now)
		return start, start.AddDate(1, 0, 0)
	}
	start := calendar.MonthStart(now)
	return start, start.AddDate(0, 1, 0)
}

func (s *budgetService) progress(budget *models.Budget) (*BudgetProgress, error) {
	start, end := periodWindow(budget.Period, s.now())

	var amounts []decimal.Decimal
	if err := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND category_id = ? AND type = ? AND date >= ? AND date < ?",
			budget.UserID, budget.CategoryID, models.TransactionTypeExpense, start, end).
		Pluck("amount", &amounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spent := decimal.Zero
	for _, a := range amounts {
		spent = spent.Add(a)
	}

	var percentage float64
	if budget.Amount.IsPositive() {
		percentage, _ = spent.Div(budget.Amount).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	}

	color := budget.Category.Color
	if color == "" {
		color = models.DefaultCategoryColor
	}

	return &BudgetProgress{
		BudgetID:      budget.ID,
		CategoryID:    budget.CategoryID,
		CategoryName:  budget.Category.Name,
		CategoryColor: color,
		Period:        string(budget.Period),
		Budgeted:      budget.Amount,
		Spent:         spent,
		Remaining:     budget.Amount.Sub(spent),
		Percentage:    percentage,
	}, nil
}
