package services

import (
	"context"

	"github.com/travesia-app/travesia-backend/internal/core/domain"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// LedgerReaderSvc defines read operations for ledger movement data
type LedgerReaderSvc interface {
	// GetMovementByID retrieves a specific movement.
	GetMovementByID(ctx context.Context, agencyID string, movementID string, userID string) (*domain.LedgerMovement, error)

	// ListMovementsByAccount retrieves a page of an account's movements,
	// newest first.
	ListMovementsByAccount(ctx context.Context, agencyID string, accountID string, userID string, limit, offset int) ([]domain.LedgerMovement, error)

	// ListMovementsByOperation retrieves the movements linked to an operation.
	ListMovementsByOperation(ctx context.Context, agencyID string, operationID string, userID string) ([]domain.LedgerMovement, error)
}

// LedgerWriterSvc defines write operations for ledger movement data
type LedgerWriterSvc interface {
	// CreateMovement registers a movement, resolving the exchange rate when
	// the request does not carry one and normalizing the amount to USD.
	CreateMovement(ctx context.Context, agencyID string, req dto.CreateMovementRequest, userID string) (*domain.LedgerMovement, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
