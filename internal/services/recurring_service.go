package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"moneymanager/internal/calendar"
	apperrors "moneymanager/internal/errors"
	"moneymanager/internal/events"
	"moneymanager/internal/logger"
	"moneymanager/internal/models"
	"moneymanager/internal/pagination"
)

// RecurringDescriptionSuffix marks transactions created from a template.
const RecurringDescriptionSuffix = " (recurring)"

// recurringService manages recurring templates and the sweep that turns due
// templates into transactions.
type recurringService struct {
	db           *gorm.DB
	accounts     AccountServicer
	transactions TransactionServicer
	publisher    events.Publisher
	now          func() time.Time
	log          *zap.SugaredLogger
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB, accounts AccountServicer, transactions TransactionServicer, publisher events.Publisher) RecurringServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &recurringService{
		db:           db,
		accounts:     accounts,
		transactions: transactions,
		publisher:    publisher,
		now:          time.Now,
		log:          logger.Named("recurring"),
	}
}

// CreateRecurring stores a monthly template. When the first payment date is
// today or earlier, one occurrence is materialized right away in the same
// unit of work and the schedule moves one month ahead.
func (s *recurringService) CreateRecurring(ctx context.Context, userID string, input CreateRecurringInput, today time.Time) (*models.RecurringTransaction, error) {
	if err := validateTransactionInput(CreateTransactionInput{
		AccountID:  input.AccountID,
		CategoryID: input.CategoryID,
		Type:       input.Type,
		Amount:     input.Amount,
	}); err != nil {
		return nil, err
	}

	today = calendar.Date(today)
	start := today
	if !input.StartDate.IsZero() {
		start = calendar.Date(input.StartDate)
	}

	rec := &models.RecurringTransaction{
		UserID:          userID,
		AccountID:       input.AccountID,
		CategoryID:      input.CategoryID,
		Description:     strings.TrimSpace(input.Description),
		Amount:          input.Amount,
		Type:            input.Type,
		StartDate:       start,
		NextPaymentDate: start,
		Active:          true,
	}

	var materialized *TransactionView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.accounts.LockAccount(tx, userID, input.AccountID); err != nil {
			return err
		}
		if _, err := findOwned[models.Category](tx, userID, input.CategoryID, apperrors.ErrCategoryNotFound); err != nil {
			return err
		}

		if err := tx.Create(rec).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if calendar.UTCDate(rec.NextPaymentDate).After(today) {
			return nil
		}

		view, err := s.materialize(tx, rec)
		if err != nil {
			return err
		}
		materialized = view
		return nil
	})
	if err != nil {
		return nil, err
	}

	if materialized != nil {
		publishLedgerEvent(ctx, s.publisher, events.TypeRecurringMaterialized, userID, materialized)
	}
	return rec, nil
}

// GetUserRecurring lists a user's templates, optionally filtered by state.
func (s *recurringService) GetUserRecurring(userID string, page pagination.PageRequest, active *bool) (*pagination.PageResponse[models.RecurringTransaction], error) {
	page.Defaults()

	base := s.db.Model(&models.RecurringTransaction{}).Where("user_id = ?", userID)
	if active != nil {
		base = base.Where("active = ?", *active)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var records []models.RecurringTransaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("next_payment_date ASC").Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(records, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetRecurringByID retrieves one of the user's templates.
func (s *recurringService) GetRecurringByID(userID, recurringID string) (*models.RecurringTransaction, error) {
	return findOwned[models.RecurringTransaction](s.db, userID, recurringID, apperrors.ErrRecurringNotFound)
}

// CancelRecurring deactivates a template so no further occurrences are
// created. Cancelling an already cancelled template succeeds without change.
func (s *recurringService) CancelRecurring(userID, recurringID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var rec models.RecurringTransaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", recurringID, userID).
			First(&rec).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrRecurringNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if !rec.Active {
			return nil
		}

		if err := tx.Model(&rec).Updates(map[string]interface{}{
			"active":       false,
			"cancelled_at": s.now().UTC(),
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// RunDueCycle materializes every active template whose next payment date is
// on or before today. Each occurrence is its own unit of work that advances
// the schedule by one month. A template that is several months behind is
// caught up in this same call, one occurrence per month, rather than one
// month per daily run, so running again with the same today creates nothing.
// Months are stepped from the start date's day of month and clamped to
// shorter months (Jan 31, Feb 29, Mar 31), so a schedule never drifts to an
// earlier day. A failing template is logged and skipped, keeping its next
// payment date for the next run; the rest of the batch still runs. The
// returned error is only set when the due set cannot be read or ctx is
// cancelled.
func (s *recurringService) RunDueCycle(ctx context.Context, today time.Time) (*SweepResult, error) {
	today = calendar.Date(today)
	result := &SweepResult{Date: today.Format(calendar.DateLayout)}

	var dueIDs []string
	if err := s.db.WithContext(ctx).Model(&models.RecurringTransaction{}).
		Where("active = ? AND next_payment_date <= ?", true, today).
		Order("id ASC").
		Pluck("id", &dueIDs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	result.Due = len(dueIDs)

	for i, id := range dueIDs {
		if err := ctx.Err(); err != nil {
			s.log.Warnw("recurring sweep interrupted", "date", result.Date, "remaining", len(dueIDs)-i)
			return result, err
		}

		n, err := s.catchUp(ctx, id, today)
		result.Materialized += n
		if err != nil {
			result.Failed++
			s.log.Errorw("failed to materialize recurring transaction",
				"recurring_id", id,
				"date", result.Date,
				"occurrences", n,
				"error", describeErr(err),
			)
		}
	}

	s.log.Infow("recurring sweep completed",
		"date", result.Date,
		"due", result.Due,
		"materialized", result.Materialized,
		"failed", result.Failed,
	)
	return result, nil
}

// catchUp materializes occurrences of one template until its next payment
// date is after today. It returns how many occurrences were created.
func (s *recurringService) catchUp(ctx context.Context, recurringID string, today time.Time) (int, error) {
	created := 0
	for {
		view, err := s.materializeNext(ctx, recurringID, today)
		if err != nil {
			return created, err
		}
		if view == nil {
			return created, nil
		}
		created++
		publishLedgerEvent(ctx, s.publisher, events.TypeRecurringMaterialized, view.userID, &view.TransactionView)
	}
}

type materializedView struct {
	TransactionView
	userID string
}

// materializeNext creates the occurrence due on the template's next payment
// date, or returns nil when the template is no longer active or due.
func (s *recurringService) materializeNext(ctx context.Context, recurringID string, today time.Time) (*materializedView, error) {
	var out *materializedView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.RecurringTransaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND active = ?", recurringID, true).
			First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if calendar.UTCDate(rec.NextPaymentDate).After(today) {
			return nil
		}

		view, err := s.materialize(tx, &rec)
		if err != nil {
			return err
		}
		out = &materializedView{TransactionView: *view, userID: rec.UserID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// materialize creates the transaction for rec's next payment date and
// advances the schedule by one month, inside tx.
func (s *recurringService) materialize(tx *gorm.DB, rec *models.RecurringTransaction) (*TransactionView, error) {
	due := calendar.UTCDate(rec.NextPaymentDate)
	recurringID := rec.ID

	view, err := s.transactions.CreateTransactionTx(tx, rec.UserID, CreateTransactionInput{
		AccountID:              rec.AccountID,
		CategoryID:             rec.CategoryID,
		Type:                   rec.Type,
		Amount:                 rec.Amount,
		Description:            rec.Description + RecurringDescriptionSuffix,
		Date:                   due,
		RecurringTransactionID: &recurringID,
	})
	if err != nil {
		return nil, err
	}

	next := calendar.AddMonth(due, calendar.UTCDate(rec.StartDate).Day())
	ranAt := s.now().UTC()
	if err := tx.Model(rec).Updates(map[string]interface{}{
		"next_payment_date": next,
		"last_run_at":       ranAt,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	rec.NextPaymentDate = next
	rec.LastRunAt = &ranAt
	return view, nil
}

// describeErr includes the wrapped cause of an AppError for logging.
func describeErr(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Internal != nil {
		return appErr.Code + ": " + appErr.Internal.Error()
	}
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return err.Error()
}
