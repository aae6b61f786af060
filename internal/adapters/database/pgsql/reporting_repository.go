package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
)

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates the read-only repository behind reports.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingReader {
	return &PgxReportingRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingReader = (*PgxReportingRepository)(nil)

// ListConfirmedOperations retrieves the agency's CONFIRMED operations in the
// date range, optionally filtered by seller. sellerID matches both primary
// and secondary seller so shared sales show up for either.
func (r *PgxReportingRepository) ListConfirmedOperations(ctx context.Context, agencyID string, from, to time.Time, sellerID string) ([]domain.Operation, error) {
	query := `
		SELECT ` + operationColumns + `
		FROM operations
		WHERE agency_id = $1 AND status = $2
		  AND operation_date BETWEEN $3 AND $4
		  AND ($5 = '' OR seller_id = $5 OR secondary_seller_id = $5)
		ORDER BY operation_date;
	`
	rows, err := r.Pool.Query(ctx, query, agencyID, domain.OperationConfirmed, from, to, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed operations: %w", err)
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
