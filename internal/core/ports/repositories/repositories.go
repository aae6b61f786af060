package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AgencyRepo       AgencyRepositoryFacade
	UserRepo         UserRepositoryFacade
	AccountRepo      AccountRepositoryFacade
	MovementRepo     MovementRepositoryFacade
	ExchangeRateRepo ExchangeRateRepositoryFacade
	OperationRepo    OperationRepositoryFacade
	CommissionRepo   CommissionRepositoryFacade
	RecurringRepo    RecurringRepositoryFacade
	BillingRepo      BillingRepositoryFacade
	ReportingRepo    ReportingReader
}
