package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// MovementReader defines read operations for ledger movement data
type MovementReader interface {
	// FindMovementByID retrieves a specific movement.
	FindMovementByID(ctx context.Context, movementID string) (*domain.LedgerMovement, error)

	// ListMovementsByAccount retrieves a page of an account's movements,
	// newest first.
	ListMovementsByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.LedgerMovement, error)

	// ListMovementsByOperation retrieves all movements linked to an operation.
	ListMovementsByOperation(ctx context.Context, operationID string) ([]domain.LedgerMovement, error)

	// SumSignedAmountsByAccount aggregates the signed movement amounts for a
	// single account in its native currency.
	SumSignedAmountsByAccount(ctx context.Context, accountID string) (decimal.Decimal, error)

	// SumSignedAmountsByAccounts aggregates signed movement amounts for many
	// accounts in one query, keyed by account ID. Accounts without movements
	// are absent from the map.
	SumSignedAmountsByAccounts(ctx context.Context, accountIDs []string) (map[string]decimal.Decimal, error)
}

// MovementWriter defines write operations for ledger movement data
type MovementWriter interface {
	// SaveMovements inserts one or more movements atomically. The versions
	// map carries the expected version of every affected account; the insert
	// fails with apperrors.ErrConflict if any account row changed underneath.
	SaveMovements(ctx context.Context, movements []domain.LedgerMovement, versions map[string]int64) error

	// SaveMovementsInTx is SaveMovements running inside an existing
	// transaction, for flows that pair the insert with other writes.
	SaveMovementsInTx(ctx context.Context, tx pgx.Tx, movements []domain.LedgerMovement, versions map[string]int64) error
}

// MovementRepositoryFacade combines all movement-related repository interfaces.
type MovementRepositoryFacade interface {
	MovementReader
	MovementWriter
	TransactionManager
}
