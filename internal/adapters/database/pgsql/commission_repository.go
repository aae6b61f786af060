package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travesia-app/travesia-backend/internal/apperrors"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
)

type PgxCommissionRepository struct {
	BaseRepository
}

// newPgxCommissionRepository creates a new repository for commission rules
// and records.
func newPgxCommissionRepository(pool *pgxpool.Pool) portsrepo.CommissionRepositoryFacade {
	return &PgxCommissionRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.CommissionRepositoryFacade = (*PgxCommissionRepository)(nil)

const ruleColumns = `rule_id, agency_id, rule_type, basis, value, region, valid_from, valid_to, created_at, created_by, last_updated_at, last_updated_by`

func scanRule(row pgx.Row) (*domain.CommissionRule, error) {
	var rule domain.CommissionRule
	err := row.Scan(
		&rule.RuleID,
		&rule.AgencyID,
		&rule.RuleType,
		&rule.Basis,
		&rule.Value,
		&rule.Region,
		&rule.ValidFrom,
		&rule.ValidTo,
		&rule.CreatedAt,
		&rule.CreatedBy,
		&rule.LastUpdatedAt,
		&rule.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// SaveRule inserts a new commission rule.
func (r *PgxCommissionRepository) SaveRule(ctx context.Context, rule domain.CommissionRule) error {
	query := `
		INSERT INTO commission_rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		rule.RuleID,
		rule.AgencyID,
		rule.RuleType,
		rule.Basis,
		rule.Value,
		rule.Region,
		rule.ValidFrom,
		rule.ValidTo,
		rule.CreatedAt,
		rule.CreatedBy,
		rule.LastUpdatedAt,
		rule.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: rule %s already exists", apperrors.ErrDuplicate, rule.RuleID)
		}
		return fmt.Errorf("failed to save commission rule %s: %w", rule.RuleID, err)
	}
	return nil
}

// FindRuleByID retrieves a rule by its ID.
func (r *PgxCommissionRepository) FindRuleByID(ctx context.Context, ruleID string) (*domain.CommissionRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM commission_rules WHERE rule_id = $1;`
	rule, err := scanRule(r.Pool.QueryRow(ctx, query, ruleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find commission rule by ID %s: %w", ruleID, err)
	}
	return rule, nil
}

// ListRules retrieves all rules of an agency.
func (r *PgxCommissionRepository) ListRules(ctx context.Context, agencyID string) ([]domain.CommissionRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM commission_rules WHERE agency_id = $1 ORDER BY valid_from DESC;`
	rows, err := r.Pool.Query(ctx, query, agencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list commission rules of agency %s: %w", agencyID, err)
	}
	defer rows.Close()
	return collectRules(rows)
}

// FindActiveRules retrieves the rules of the given type whose validity window
// contains asOf, most recent ValidFrom first.
func (r *PgxCommissionRepository) FindActiveRules(ctx context.Context, agencyID string, ruleType domain.CommissionRuleType, asOf time.Time) ([]domain.CommissionRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM commission_rules
		WHERE agency_id = $1 AND rule_type = $2
		  AND valid_from <= $3
		  AND (valid_to IS NULL OR valid_to >= $3)
		ORDER BY valid_from DESC;
	`
	rows, err := r.Pool.Query(ctx, query, agencyID, ruleType, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to find active commission rules: %w", err)
	}
	defer rows.Close()
	return collectRules(rows)
}

func collectRules(rows pgx.Rows) ([]domain.CommissionRule, error) {
	var rules []domain.CommissionRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission rule row: %w", err)
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

// UpdateRule updates a rule's value and validity end.
func (r *PgxCommissionRepository) UpdateRule(ctx context.Context, rule domain.CommissionRule) error {
	query := `
		UPDATE commission_rules
		SET value = $2, valid_to = $3, last_updated_at = $4, last_updated_by = $5
		WHERE rule_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		rule.RuleID,
		rule.Value,
		rule.ValidTo,
		rule.LastUpdatedAt,
		rule.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update commission rule %s: %w", rule.RuleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteRule removes a rule. commission_records.rule_id is not a foreign key
// so existing records keep their reference.
func (r *PgxCommissionRepository) DeleteRule(ctx context.Context, ruleID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM commission_rules WHERE rule_id = $1;`, ruleID)
	if err != nil {
		return fmt.Errorf("failed to delete commission rule %s: %w", ruleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

const recordColumns = `record_id, agency_id, operation_id, seller_id, amount, percentage, rule_id, status, created_at, created_by, last_updated_at, last_updated_by`

func scanRecord(row pgx.Row) (*domain.CommissionRecord, error) {
	var rec domain.CommissionRecord
	err := row.Scan(
		&rec.RecordID,
		&rec.AgencyID,
		&rec.OperationID,
		&rec.SellerID,
		&rec.Amount,
		&rec.Percentage,
		&rec.RuleID,
		&rec.Status,
		&rec.CreatedAt,
		&rec.CreatedBy,
		&rec.LastUpdatedAt,
		&rec.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecordsByOperation retrieves the commission records of an operation.
func (r *PgxCommissionRepository) ListRecordsByOperation(ctx context.Context, operationID string) ([]domain.CommissionRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM commission_records WHERE operation_id = $1 ORDER BY seller_id;`
	rows, err := r.Pool.Query(ctx, query, operationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list commission records of operation %s: %w", operationID, err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListRecordsBySeller retrieves a seller's commission records in an agency.
func (r *PgxCommissionRepository) ListRecordsBySeller(ctx context.Context, agencyID, sellerID string) ([]domain.CommissionRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM commission_records
		WHERE agency_id = $1 AND seller_id = $2
		ORDER BY created_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, agencyID, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list commission records of seller %s: %w", sellerID, err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]domain.CommissionRecord, error) {
	var records []domain.CommissionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission record row: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// UpsertRecords writes the operation's record set atomically: each record is
// upserted on (operation_id, seller_id) and records for sellers no longer in
// the set are removed. Recalculation is therefore idempotent.
func (r *PgxCommissionRepository) UpsertRecords(ctx context.Context, operationID string, records []domain.CommissionRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	sellerIDs := make([]string, 0, len(records))
	for _, rec := range records {
		sellerIDs = append(sellerIDs, rec.SellerID)
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM commission_records
		WHERE operation_id = $1 AND seller_id != ALL($2);
	`, operationID, sellerIDs); err != nil {
		return fmt.Errorf("failed to remove stale commission records of operation %s: %w", operationID, err)
	}

	upsertQuery := `
		INSERT INTO commission_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (operation_id, seller_id) DO UPDATE
		SET amount = EXCLUDED.amount,
		    percentage = EXCLUDED.percentage,
		    rule_id = EXCLUDED.rule_id,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`
	for _, rec := range records {
		if _, err := tx.Exec(ctx, upsertQuery,
			rec.RecordID,
			rec.AgencyID,
			rec.OperationID,
			rec.SellerID,
			rec.Amount,
			rec.Percentage,
			rec.RuleID,
			rec.Status,
			rec.CreatedAt,
			rec.CreatedBy,
			rec.LastUpdatedAt,
			rec.LastUpdatedBy,
		); err != nil {
			return fmt.Errorf("failed to upsert commission record for seller %s: %w", rec.SellerID, err)
		}
	}

	return r.Commit(ctx, tx)
}
