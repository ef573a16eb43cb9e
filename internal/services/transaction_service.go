package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"moneymanager/internal/calendar"
	apperrors "moneymanager/internal/errors"
	"moneymanager/internal/events"
	"moneymanager/internal/logger"
	"moneymanager/internal/models"
	"moneymanager/internal/pagination"
)

// Monthly stats window bounds.
const (
	DefaultStatsMonths = 6
	maxStatsMonths     = 24
)

var transactionSortColumns = map[string]string{
	"date":       "date",
	"amount":     "amount",
	"created_at": "created_at",
}

// transactionService handles transaction-related business logic.
type transactionService struct {
	db             *gorm.DB
	accountService AccountServicer
	publisher      events.Publisher
	now            func() time.Time
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accountService AccountServicer, publisher events.Publisher) TransactionServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &transactionService{
		db:             db,
		accountService: accountService,
		publisher:      publisher,
		now:            time.Now,
	}
}

// CreateTransaction records a transaction and applies it to the account
// balance in one unit of work.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, input CreateTransactionInput) (*TransactionView, error) {
	if err := validateTransactionInput(input); err != nil {
		return nil, err
	}

	var view *TransactionView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		view, txErr = s.CreateTransactionTx(tx, userID, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	publishLedgerEvent(ctx, s.publisher, events.TypeTransactionCreated, userID, view)
	return view, nil
}

// CreateTransactionTx performs CreateTransaction inside a unit of work owned
// by the caller. No event is published; the caller does that after commit.
func (s *transactionService) CreateTransactionTx(tx *gorm.DB, userID string, input CreateTransactionInput) (*TransactionView, error) {
	if err := validateTransactionInput(input); err != nil {
		return nil, err
	}

	account, err := s.accountService.LockAccount(tx, userID, input.AccountID)
	if err != nil {
		return nil, err
	}

	category, err := findOwned[models.Category](tx, userID, input.CategoryID, apperrors.ErrCategoryNotFound)
	if err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = s.now()
	}

	transaction := &models.Transaction{
		UserID:                 userID,
		AccountID:              account.ID,
		CategoryID:             category.ID,
		Type:                   input.Type,
		Amount:                 input.Amount,
		Description:            strings.TrimSpace(input.Description),
		Date:                   date.UTC(),
		RecurringTransactionID: input.RecurringTransactionID,
	}

	if err := s.accountService.ApplyTransactionEffect(tx, account, input.Type, input.Amount, false); err != nil {
		return nil, err
	}

	if err := tx.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	view := newTransactionView(transaction, account.Name, category.Name)
	balance := account.Balance
	view.AccountBalance = &balance
	return &view, nil
}

func validateTransactionInput(input CreateTransactionInput) error {
	if !input.Amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !input.Type.Valid() {
		return apperrors.ErrInvalidTransactionType
	}
	if input.AccountID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}
	if input.CategoryID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category ID is required")
	}
	return nil
}

// GetUserTransactions retrieves a paginated, filtered list of all of a user's transactions.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[TransactionView], error) {
	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	return s.listTransactions(base, page, filter)
}

// GetAccountTransactions retrieves a paginated, filtered list of transactions for a specific account.
func (s *transactionService) GetAccountTransactions(userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[TransactionView], error) {
	// First verify the account belongs to the user
	if _, err := s.accountService.GetAccountByID(userID, accountID); err != nil {
		return nil, err
	}

	base := s.db.Model(&models.Transaction{}).Where("user_id = ? AND account_id = ?", userID, accountID)
	return s.listTransactions(base, page, filter)
}

func (s *transactionService) listTransactions(base *gorm.DB, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[TransactionView], error) {
	page.Defaults()
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	defaultOrder := clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true}
	if err := base.
		Scopes(pagination.Sorted(page.Sort, transactionSortColumns, defaultOrder), pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	views, err := s.toViews(transactions)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResponse(views, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("date < ?", f.ToDate.UTC())
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	return q
}

// toViews resolves account and category names for a page of transactions.
// Soft-deleted accounts and categories still resolve so history stays readable.
func (s *transactionService) toViews(transactions []models.Transaction) ([]TransactionView, error) {
	if len(transactions) == 0 {
		return []TransactionView{}, nil
	}

	accountIDs := make([]string, 0, len(transactions))
	categoryIDs := make([]string, 0, len(transactions))
	for _, t := range transactions {
		accountIDs = append(accountIDs, t.AccountID)
		categoryIDs = append(categoryIDs, t.CategoryID)
	}

	var accounts []models.Account
	if err := s.db.Unscoped().Select("id", "name").Where("id IN ?", accountIDs).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var categories []models.Category
	if err := s.db.Unscoped().Select("id", "name").Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	accountNames := make(map[string]string, len(accounts))
	for _, a := range accounts {
		accountNames[a.ID] = a.Name
	}
	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	views := make([]TransactionView, 0, len(transactions))
	for i := range transactions {
		t := &transactions[i]
		views = append(views, newTransactionView(t, accountNames[t.AccountID], categoryNames[t.CategoryID]))
	}
	return views, nil
}

func newTransactionView(t *models.Transaction, accountName, categoryName string) TransactionView {
	return TransactionView{
		ID:                     t.ID,
		Description:            t.Description,
		Amount:                 t.Amount,
		Type:                   t.Type,
		Date:                   t.Date,
		AccountID:              t.AccountID,
		AccountName:            accountName,
		CategoryID:             t.CategoryID,
		CategoryName:           categoryName,
		RecurringTransactionID: t.RecurringTransactionID,
		CreatedAt:              t.CreatedAt,
	}
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*TransactionView, error) {
	transaction, err := findOwned[models.Transaction](s.db, userID, transactionID, apperrors.ErrTransactionNotFound)
	if err != nil {
		return nil, err
	}

	views, err := s.toViews([]models.Transaction{*transaction})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// DeleteTransaction deletes a transaction and reverses its effect on the
// account balance in one unit of work.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	var view TransactionView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transaction, err := findOwned[models.Transaction](tx, userID, transactionID, apperrors.ErrTransactionNotFound)
		if err != nil {
			return err
		}

		account, err := s.accountService.LockAccount(tx, userID, transaction.AccountID)
		if err != nil {
			return err
		}

		if err := s.accountService.ApplyTransactionEffect(tx, account, transaction.Type, transaction.Amount, true); err != nil {
			return err
		}

		result := tx.Delete(transaction)
		if result.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		// A concurrent delete already reversed the balance.
		if result.RowsAffected == 0 {
			return apperrors.ErrTransactionNotFound
		}

		view = newTransactionView(transaction, account.Name, "")
		balance := account.Balance
		view.AccountBalance = &balance
		return nil
	})
	if err != nil {
		return err
	}

	publishLedgerEvent(ctx, s.publisher, events.TypeTransactionDeleted, userID, &view)
	return nil
}

// GetExpensesByCategory totals a user's EXPENSE transactions per category,
// largest first. The range is [from, to) and a nil bound leaves that side open.
func (s *transactionService) GetExpensesByCategory(userID string, from, to *time.Time) ([]CategoryExpense, error) {
	q := s.db.Model(&models.Transaction{}).
		Select("category_id", "amount").
		Where("user_id = ? AND type = ?", userID, models.TransactionTypeExpense)
	q = applyTransactionFilters(q, TransactionFilter{FromDate: from, ToDate: to})

	var rows []models.Transaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals := make(map[string]decimal.Decimal)
	for _, r := range rows {
		totals[r.CategoryID] = totals[r.CategoryID].Add(r.Amount)
	}
	if len(totals) == 0 {
		return []CategoryExpense{}, nil
	}

	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	var categories []models.Category
	if err := s.db.Unscoped().Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	byID := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	result := make([]CategoryExpense, 0, len(totals))
	for id, total := range totals {
		c := byID[id]
		color := c.Color
		if color == "" {
			color = models.DefaultCategoryColor
		}
		result = append(result, CategoryExpense{
			CategoryID:   id,
			CategoryName: c.Name,
			Color:        color,
			Total:        total,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Total.Equal(result[j].Total) {
			return result[i].Total.GreaterThan(result[j].Total)
		}
		return result[i].CategoryName < result[j].CategoryName
	})
	return result, nil
}

// GetMonthlyStats returns income and expense totals for the last months
// calendar months, the current month included, oldest first. Months without
// transactions are present with zero totals.
func (s *transactionService) GetMonthlyStats(userID string, months int) ([]MonthlyStat, error) {
	if months < 1 || months > maxStatsMonths {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "months must be between 1 and 24")
	}

	starts := calendar.TrailingMonths(s.now(), months)
	buckets := make([]MonthlyStat, len(starts))
	index := make(map[string]int, len(starts))
	for i, start := range starts {
		key := calendar.MonthKey(start)
		buckets[i] = MonthlyStat{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
		index[key] = i
	}

	var rows []models.Transaction
	if err := s.db.Model(&models.Transaction{}).
		Select("type", "amount", "date").
		Where("user_id = ? AND date >= ?", userID, starts[0]).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, r := range rows {
		i, ok := index[calendar.MonthKey(r.Date)]
		if !ok {
			continue
		}
		switch r.Type {
		case models.TransactionTypeIncome:
			buckets[i].Income = buckets[i].Income.Add(r.Amount)
		case models.TransactionTypeExpense:
			buckets[i].Expense = buckets[i].Expense.Add(r.Amount)
		}
	}
	return buckets, nil
}

func publishLedgerEvent(ctx context.Context, publisher events.Publisher, eventType, userID string, view *TransactionView) {
	event := events.LedgerEvent{
		Type:            eventType,
		UserID:          userID,
		AccountID:       view.AccountID,
		TransactionID:   view.ID,
		TransactionType: view.Type,
		Amount:          view.Amount,
		OccurredAt:      time.Now().UTC(),
	}
	if view.RecurringTransactionID != nil {
		event.RecurringTransactionID = *view.RecurringTransactionID
	}
	if view.AccountBalance != nil {
		event.Balance = *view.AccountBalance
	}

	if err := publisher.Publish(ctx, event); err != nil {
		logger.Named("events").Warnw("failed to publish ledger event",
			"type", eventType,
			"transaction_id", view.ID,
			"error", err,
		)
	}
}
