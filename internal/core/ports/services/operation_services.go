package services

import (
	"context"

	"github.com/travesia-app/travesia-backend/internal/core/domain"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// OperationReaderSvc defines read operations for operation data
type OperationReaderSvc interface {
	// GetOperationByID retrieves a specific operation.
	GetOperationByID(ctx context.Context, agencyID string, operationID string, userID string) (*domain.Operation, error)

	// ListOperations retrieves a page of an agency's operations, newest first.
	ListOperations(ctx context.Context, agencyID string, userID string, limit, offset int) ([]domain.Operation, error)
}

// OperationWriterSvc defines write operations for operation data
type OperationWriterSvc interface {
	// CreateOperation persists a new DRAFT operation; margin is derived as
	// sale minus cost.
	CreateOperation(ctx context.Context, agencyID string, req dto.CreateOperationRequest, userID string) (*domain.Operation, error)

	// UpdateOperation updates a DRAFT operation and re-derives its margin.
	UpdateOperation(ctx context.Context, agencyID string, operationID string, req dto.UpdateOperationRequest, userID string) (*domain.Operation, error)

	// ConfirmOperation moves a DRAFT operation to CONFIRMED and recalculates
	// its commissions.
	ConfirmOperation(ctx context.Context, agencyID string, operationID string, userID string) (*domain.Operation, error)

	// CancelOperation moves an operation to CANCELLED and recalculates its
	// commissions (which zero out).
	CancelOperation(ctx context.Context, agencyID string, operationID string, userID string) (*domain.Operation, error)
}

// PaymentSvc defines operations for payments attached to operations
type PaymentSvc interface {
	// CreatePayment registers a PENDING payment on an operation.
	CreatePayment(ctx context.Context, agencyID string, operationID string, req dto.CreatePaymentRequest, userID string) (*domain.Payment, error)

	// ListPaymentsByOperation retrieves all payments of an operation.
	ListPaymentsByOperation(ctx context.Context, agencyID string, operationID string, userID string) ([]domain.Payment, error)

	// ListPayments retrieves an agency's payments, optionally by status.
	ListPayments(ctx context.Context, agencyID string, userID string, status *domain.PaymentStatus, limit, offset int) ([]domain.Payment, error)

	// UpdatePaymentStatus changes a payment's settlement state. Marking PAID
	// posts the ledger movement in the same transaction and triggers a
	// commission recalculation for the payment's operation.
	UpdatePaymentStatus(ctx context.Context, agencyID string, paymentID string, req dto.UpdatePaymentStatusRequest, userID string) (*domain.Payment, error)
}

// OperationSvcFacade combines operation and payment service interfaces
type OperationSvcFacade interface {
	OperationReaderSvc
	OperationWriterSvc
	PaymentSvc
}
