package services

import (
	"context"
	"time"

	"github.com/travesia-app/travesia-backend/internal/core/domain"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// RecurringReaderSvc defines read operations for recurring payment schedules
type RecurringReaderSvc interface {
	// GetRecurringByID retrieves a specific schedule.
	GetRecurringByID(ctx context.Context, agencyID string, recurringID string, userID string) (*domain.RecurringPayment, error)

	// ListRecurring retrieves all schedules of an agency.
	ListRecurring(ctx context.Context, agencyID string, userID string) ([]domain.RecurringPayment, error)
}

// RecurringWriterSvc defines write operations for recurring payment schedules
type RecurringWriterSvc interface {
	// CreateRecurring persists a new schedule with NextDueDate set to StartDate.
	CreateRecurring(ctx context.Context, agencyID string, req dto.CreateRecurringPaymentRequest, userID string) (*domain.RecurringPayment, error)

	// UpdateRecurring updates an existing schedule.
	UpdateRecurring(ctx context.Context, agencyID string, recurringID string, req dto.UpdateRecurringPaymentRequest, userID string) (*domain.RecurringPayment, error)

	// DeleteRecurring removes a schedule. Already-generated payments remain.
	DeleteRecurring(ctx context.Context, agencyID string, recurringID string, userID string) error
}

// RecurringGeneratorSvc runs the due-payment generation pass
type RecurringGeneratorSvc interface {
	// RunDue locks the agency's due schedules, generates the operator
	// EXPENSE payments and advances each schedule's next due date, all in
	// one transaction. An external daily scheduler calls this.
	RunDue(ctx context.Context, agencyID string, userID string, today time.Time) (*dto.RunDueResponse, error)
}

// RecurringSvcFacade combines all recurring-payment service interfaces
type RecurringSvcFacade interface {
	RecurringReaderSvc
	RecurringWriterSvc
	RecurringGeneratorSvc
}
