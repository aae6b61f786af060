package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all pgx repositories against the shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AgencyRepo:       newPgxAgencyRepository(dbPool),
		UserRepo:         newPgxUserRepository(dbPool),
		AccountRepo:      newPgxAccountRepository(dbPool),
		MovementRepo:     newPgxMovementRepository(dbPool),
		ExchangeRateRepo: newPgxExchangeRateRepository(dbPool),
		OperationRepo:    newPgxOperationRepository(dbPool),
		CommissionRepo:   newPgxCommissionRepository(dbPool),
		RecurringRepo:    newPgxRecurringRepository(dbPool),
		BillingRepo:      newPgxBillingRepository(dbPool),
		ReportingRepo:    newPgxReportingRepository(dbPool),
	}
}
