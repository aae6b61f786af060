package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Agency       AgencySvcFacade
	User         UserSvcFacade
	Token        TokenSvcFacade
	GoogleOAuth  GoogleOAuthHandlerSvcFacade
	Account      AccountSvcFacade
	ExchangeRate ExchangeRateSvcFacade
	Ledger       LedgerSvcFacade
	Operation    OperationSvcFacade
	Commission   CommissionSvcFacade
	Recurring    RecurringSvcFacade
	Billing      BillingSvcFacade
	Reporting    ReportingSvcFacade
}
