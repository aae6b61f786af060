package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// OperationReader defines read operations for operation data
type OperationReader interface {
	// FindOperationByID retrieves a specific operation.
	FindOperationByID(ctx context.Context, operationID string) (*domain.Operation, error)

	// ListOperations retrieves a page of an agency's operations, newest first.
	ListOperations(ctx context.Context, agencyID string, limit, offset int) ([]domain.Operation, error)
}

// OperationWriter defines write operations for operation data
type OperationWriter interface {
	// SaveOperation persists a new operation.
	SaveOperation(ctx context.Context, op domain.Operation) error

	// UpdateOperation updates an existing operation.
	UpdateOperation(ctx context.Context, op domain.Operation) error
}

// PaymentReader defines read operations for payment data
type PaymentReader interface {
	// FindPaymentByID retrieves a specific payment.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// ListPaymentsByOperation retrieves all payments of an operation.
	ListPaymentsByOperation(ctx context.Context, operationID string) ([]domain.Payment, error)

	// ListPayments retrieves an agency's payments, newest due date first,
	// optionally filtered by status. Includes payments generated by
	// recurring schedules, which carry no operation.
	ListPayments(ctx context.Context, agencyID string, status *domain.PaymentStatus, limit, offset int) ([]domain.Payment, error)
}

// PaymentWriter defines write operations for payment data
type PaymentWriter interface {
	// SavePayment persists a new payment.
	SavePayment(ctx context.Context, payment domain.Payment) error

	// UpdatePaymentStatus updates a payment's settlement state.
	UpdatePaymentStatus(ctx context.Context, paymentID string, status domain.PaymentStatus, updatedBy string) error

	// SavePaymentInTx persists a payment inside an existing transaction.
	SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error

	// UpdatePaymentSettlementInTx updates a payment's status, paid-at
	// timestamp and settlement account inside an existing transaction.
	UpdatePaymentSettlementInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error
}

// OperationRepositoryFacade combines operation and payment repository interfaces.
type OperationRepositoryFacade interface {
	OperationReader
	OperationWriter
	PaymentReader
	PaymentWriter
	TransactionManager
}
