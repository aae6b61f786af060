package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travesia-app/travesia-backend/internal/apperrors"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
)

type PgxBillingRepository struct {
	BaseRepository
}

// newPgxBillingRepository creates a new repository for plans, subscriptions
// and billing events.
func newPgxBillingRepository(pool *pgxpool.Pool) portsrepo.BillingRepositoryFacade {
	return &PgxBillingRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.BillingRepositoryFacade = (*PgxBillingRepository)(nil)

const planColumns = `plan_id, code, name, monthly_price, currency, features, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanPlan(row pgx.Row) (*domain.SubscriptionPlan, error) {
	var p domain.SubscriptionPlan
	err := row.Scan(
		&p.PlanID,
		&p.Code,
		&p.Name,
		&p.MonthlyPrice,
		&p.Currency,
		&p.Features,
		&p.IsActive,
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

// SavePlan inserts a new plan.
func (r *PgxBillingRepository) SavePlan(ctx context.Context, plan domain.SubscriptionPlan) error {
	query := `
		INSERT INTO subscription_plans (` + planColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		plan.PlanID,
		plan.Code,
		plan.Name,
		plan.MonthlyPrice,
		plan.Currency,
		plan.Features,
		plan.IsActive,
		plan.CreatedAt,
		plan.CreatedBy,
		plan.LastUpdatedAt,
		plan.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: plan code %s already exists", apperrors.ErrDuplicate, plan.Code)
		}
		return fmt.Errorf("failed to save plan %s: %w", plan.PlanID, err)
	}
	return nil
}

// FindPlanByID retrieves a plan by its ID.
func (r *PgxBillingRepository) FindPlanByID(ctx context.Context, planID string) (*domain.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE plan_id = $1;`
	plan, err := scanPlan(r.Pool.QueryRow(ctx, query, planID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find plan by ID %s: %w", planID, err)
	}
	return plan, nil
}

// ListPlans retrieves the active plan catalogue, cheapest first.
func (r *PgxBillingRepository) ListPlans(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE is_active ORDER BY monthly_price;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []domain.SubscriptionPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

const subscriptionColumns = `subscription_id, agency_id, plan_id, status, current_period_start, current_period_end, created_at, created_by, last_updated_at, last_updated_by`

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	err := row.Scan(
		&s.SubscriptionID,
		&s.AgencyID,
		&s.PlanID,
		&s.Status,
		&s.CurrentPeriodStart,
		&s.CurrentPeriodEnd,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSubscription inserts a new subscription.
func (r *PgxBillingRepository) SaveSubscription(ctx context.Context, sub domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		sub.SubscriptionID,
		sub.AgencyID,
		sub.PlanID,
		sub.Status,
		sub.CurrentPeriodStart,
		sub.CurrentPeriodEnd,
		sub.CreatedAt,
		sub.CreatedBy,
		sub.LastUpdatedAt,
		sub.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: agency %s already has a subscription", apperrors.ErrDuplicate, sub.AgencyID)
		}
		return fmt.Errorf("failed to save subscription %s: %w", sub.SubscriptionID, err)
	}
	return nil
}

// FindSubscriptionByAgency retrieves the agency's subscription.
func (r *PgxBillingRepository) FindSubscriptionByAgency(ctx context.Context, agencyID string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE agency_id = $1;`
	sub, err := scanSubscription(r.Pool.QueryRow(ctx, query, agencyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find subscription of agency %s: %w", agencyID, err)
	}
	return sub, nil
}

const billingEventColumns = `event_id, agency_id, subscription_id, event_type, amount, currency, details, created_at, created_by, last_updated_at, last_updated_by`

// ChangePlan updates the subscription row and appends the billing events in
// one transaction, so the history can never drift from the plan.
func (r *PgxBillingRepository) ChangePlan(ctx context.Context, sub domain.Subscription, events []domain.BillingEvent) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	updateQuery := `
		UPDATE subscriptions
		SET plan_id = $2, status = $3, current_period_start = $4,
		    current_period_end = $5, last_updated_at = $6, last_updated_by = $7
		WHERE subscription_id = $1;
	`
	tag, err := tx.Exec(ctx, updateQuery,
		sub.SubscriptionID,
		sub.PlanID,
		sub.Status,
		sub.CurrentPeriodStart,
		sub.CurrentPeriodEnd,
		sub.LastUpdatedAt,
		sub.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription %s: %w", sub.SubscriptionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	insertQuery := `
		INSERT INTO billing_events (` + billingEventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	for _, ev := range events {
		if _, err := tx.Exec(ctx, insertQuery,
			ev.EventID,
			ev.AgencyID,
			ev.SubscriptionID,
			ev.EventType,
			ev.Amount,
			ev.Currency,
			ev.Details,
			ev.CreatedAt,
			ev.CreatedBy,
			ev.LastUpdatedAt,
			ev.LastUpdatedBy,
		); err != nil {
			return fmt.Errorf("failed to insert billing event %s: %w", ev.EventID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// ListBillingEvents retrieves an agency's billing events, newest first.
func (r *PgxBillingRepository) ListBillingEvents(ctx context.Context, agencyID string, limit, offset int) ([]domain.BillingEvent, error) {
	query := `
		SELECT ` + billingEventColumns + `
		FROM billing_events
		WHERE agency_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, agencyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list billing events of agency %s: %w", agencyID, err)
	}
	defer rows.Close()

	var events []domain.BillingEvent
	for rows.Next() {
		var ev domain.BillingEvent
		err := rows.Scan(
			&ev.EventID,
			&ev.AgencyID,
			&ev.SubscriptionID,
			&ev.EventType,
			&ev.Amount,
			&ev.Currency,
			&ev.Details,
			&ev.CreatedAt,
			&ev.CreatedBy,
			&ev.LastUpdatedAt,
			&ev.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan billing event row: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
