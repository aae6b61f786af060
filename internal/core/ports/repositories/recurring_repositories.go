package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// RecurringReader defines read operations for recurring payment data
type RecurringReader interface {
	// FindRecurringByID retrieves a specific recurring payment.
	FindRecurringByID(ctx context.Context, recurringID string) (*domain.RecurringPayment, error)

	// ListRecurring retrieves all recurring payments of an agency.
	ListRecurring(ctx context.Context, agencyID string) ([]domain.RecurringPayment, error)
}

// RecurringWriter defines write operations for recurring payment data
type RecurringWriter interface {
	// SaveRecurring persists a new recurring payment.
	SaveRecurring(ctx context.Context, rec domain.RecurringPayment) error

	// UpdateRecurring updates an existing recurring payment.
	UpdateRecurring(ctx context.Context, rec domain.RecurringPayment) error

	// DeleteRecurring removes a recurring payment.
	DeleteRecurring(ctx context.Context, recurringID string) error
}

// RecurringGenerationSupport defines the locked-row operations used by the
// run-due generation flow. Rows are locked FOR UPDATE so two concurrent
// triggers cannot double-generate a payment.
type RecurringGenerationSupport interface {
	// FindDueForUpdate selects and locks the agency's recurring rows due on
	// or before today within the given transaction.
	FindDueForUpdate(ctx context.Context, tx pgx.Tx, agencyID string, today time.Time) ([]domain.RecurringPayment, error)

	// AdvanceNextDueInTx moves a recurring row's next due date within the
	// given transaction.
	AdvanceNextDueInTx(ctx context.Context, tx pgx.Tx, recurringID string, nextDue time.Time, updatedBy string, now time.Time) error
}

// RecurringRepositoryFacade combines all recurring-payment repository interfaces.
type RecurringRepositoryFacade interface {
	RecurringReader
	RecurringWriter
	RecurringGenerationSupport
	TransactionManager
}
