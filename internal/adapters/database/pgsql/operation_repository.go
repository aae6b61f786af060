package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travesia-app/travesia-backend/internal/apperrors"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
)

type PgxOperationRepository struct {
	BaseRepository
}

// newPgxOperationRepository creates a new repository for operation and
// payment data.
func newPgxOperationRepository(pool *pgxpool.Pool) portsrepo.OperationRepositoryFacade {
	return &PgxOperationRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.OperationRepositoryFacade = (*PgxOperationRepository)(nil)

const operationColumns = `operation_id, agency_id, lead_id, status, currency, sale_amount, cost_amount, margin_amount, region, seller_id, secondary_seller_id, operation_date, created_at, created_by, last_updated_at, last_updated_by`

func scanOperation(row pgx.Row) (*domain.Operation, error) {
	var op domain.Operation
	err := row.Scan(
		&op.OperationID,
		&op.AgencyID,
		&op.LeadID,
		&op.Status,
		&op.Currency,
		&op.SaleAmount,
		&op.CostAmount,
		&op.MarginAmount,
		&op.Region,
		&op.SellerID,
		&op.SecondarySellerID,
		&op.OperationDate,
		&op.CreatedAt,
		&op.CreatedBy,
		&op.LastUpdatedAt,
		&op.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// SaveOperation inserts a new operation.
func (r *PgxOperationRepository) SaveOperation(ctx context.Context, op domain.Operation) error {
	query := `
		INSERT INTO operations (` + operationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.Pool.Exec(ctx, query,
		op.OperationID,
		op.AgencyID,
		op.LeadID,
		op.Status,
		op.Currency,
		op.SaleAmount,
		op.CostAmount,
		op.MarginAmount,
		op.Region,
		op.SellerID,
		op.SecondarySellerID,
		op.OperationDate,
		op.CreatedAt,
		op.CreatedBy,
		op.LastUpdatedAt,
		op.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: operation %s already exists", apperrors.ErrDuplicate, op.OperationID)
		}
		return fmt.Errorf("failed to save operation %s: %w", op.OperationID, err)
	}
	return nil
}

// FindOperationByID retrieves an operation by its ID.
func (r *PgxOperationRepository) FindOperationByID(ctx context.Context, operationID string) (*domain.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations WHERE operation_id = $1;`
	op, err := scanOperation(r.Pool.QueryRow(ctx, query, operationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find operation by ID %s: %w", operationID, err)
	}
	return op, nil
}

// ListOperations retrieves a page of an agency's operations, newest first.
func (r *PgxOperationRepository) ListOperations(ctx context.Context, agencyID string, limit, offset int) ([]domain.Operation, error) {
	query := `
		SELECT ` + operationColumns + `
		FROM operations
		WHERE agency_id = $1
		ORDER BY operation_date DESC, created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, agencyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations of agency %s: %w", agencyID, err)
	}
	defer rows.Close()

	var ops []domain.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation row: %w", err)
		}
		ops = append(ops, *op)
	}
	return ops, rows.Err()
}

// UpdateOperation updates an operation's mutable fields.
func (r *PgxOperationRepository) UpdateOperation(ctx context.Context, op domain.Operation) error {
	query := `
		UPDATE operations
		SET lead_id = $2, status = $3, sale_amount = $4, cost_amount = $5,
		    margin_amount = $6, region = $7, seller_id = $8,
		    secondary_seller_id = $9, operation_date = $10,
		    last_updated_at = $11, last_updated_by = $12
		WHERE operation_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		op.OperationID,
		op.LeadID,
		op.Status,
		op.SaleAmount,
		op.CostAmount,
		op.MarginAmount,
		op.Region,
		op.SellerID,
		op.SecondarySellerID,
		op.OperationDate,
		op.LastUpdatedAt,
		op.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update operation %s: %w", op.OperationID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

const paymentColumns = `payment_id, agency_id, operation_id, direction, counterparty, status, currency, amount, due_date, paid_at, account_id, created_at, created_by, last_updated_at, last_updated_by`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.PaymentID,
		&p.AgencyID,
		&p.OperationID,
		&p.Direction,
		&p.Counterparty,
		&p.Status,
		&p.Currency,
		&p.Amount,
		&p.DueDate,
		&p.PaidAt,
		&p.AccountID,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePayment inserts a new payment.
func (r *PgxOperationRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	return r.savePayment(ctx, r.Pool, payment)
}

// SavePaymentInTx inserts a new payment inside an existing transaction.
func (r *PgxOperationRepository) SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	return r.savePayment(ctx, tx, payment)
}

// execer is the subset of pgxpool.Pool and pgx.Tx the payment insert needs.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (r *PgxOperationRepository) savePayment(ctx context.Context, db execer, payment domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := db.Exec(ctx, query,
		payment.PaymentID,
		payment.AgencyID,
		payment.OperationID,
		payment.Direction,
		payment.Counterparty,
		payment.Status,
		payment.Currency,
		payment.Amount,
		payment.DueDate,
		payment.PaidAt,
		payment.AccountID,
		payment.CreatedAt,
		payment.CreatedBy,
		payment.LastUpdatedAt,
		payment.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: payment %s already exists", apperrors.ErrDuplicate, payment.PaymentID)
		}
		return fmt.Errorf("failed to save payment %s: %w", payment.PaymentID, err)
	}
	return nil
}

// FindPaymentByID retrieves a payment by its ID.
func (r *PgxOperationRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1;`
	p, err := scanPayment(r.Pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment by ID %s: %w", paymentID, err)
	}
	return p, nil
}

// ListPaymentsByOperation retrieves all payments of an operation.
func (r *PgxOperationRepository) ListPaymentsByOperation(ctx context.Context, operationID string) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE operation_id = $1 ORDER BY due_date, created_at;`
	rows, err := r.Pool.Query(ctx, query, operationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments of operation %s: %w", operationID, err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

// ListPayments retrieves an agency's payments, optionally filtered by status.
func (r *PgxOperationRepository) ListPayments(ctx context.Context, agencyID string, status *domain.PaymentStatus, limit, offset int) ([]domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE agency_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY due_date DESC, created_at DESC
		LIMIT $3 OFFSET $4;
	`
	rows, err := r.Pool.Query(ctx, query, agencyID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments of agency %s: %w", agencyID, err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

func collectPayments(rows pgx.Rows) ([]domain.Payment, error) {
	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

// UpdatePaymentStatus updates a payment's settlement state.
func (r *PgxOperationRepository) UpdatePaymentStatus(ctx context.Context, paymentID string, status domain.PaymentStatus, updatedBy string) error {
	query := `
		UPDATE payments
		SET status = $2, last_updated_at = NOW(), last_updated_by = $3
		WHERE payment_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, paymentID, status, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update status of payment %s: %w", paymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdatePaymentSettlementInTx updates a payment's status, paid-at timestamp
// and settlement account inside an existing transaction.
func (r *PgxOperationRepository) UpdatePaymentSettlementInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	query := `
		UPDATE payments
		SET status = $2, paid_at = $3, account_id = $4,
		    last_updated_at = $5, last_updated_by = $6
		WHERE payment_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		payment.PaymentID,
		payment.Status,
		payment.PaidAt,
		payment.AccountID,
		payment.LastUpdatedAt,
		payment.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to settle payment %s: %w", payment.PaymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
