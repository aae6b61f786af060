package services

import (
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/pkg/config"
)

// NewServiceContainer wires every service with its repositories and peer
// services. The agency service doubles as the authorizer the other services
// check agency membership through.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	agencySvc := NewAgencyService(repos.AgencyRepo, repos.BillingRepo)
	userSvc := NewUserService(repos.UserRepo)
	tokenSvc := NewTokenService(cfg, userSvc, repos.UserRepo)
	googleOAuthSvc := NewGoogleOAuthHandlerService(cfg)

	rateSvc := NewExchangeRateService(repos.ExchangeRateRepo, agencySvc, cfg.FallbackExchangeRate)
	accountSvc := NewAccountService(repos.AccountRepo, repos.MovementRepo, rateSvc, agencySvc, cfg)
	ledgerSvc := NewLedgerService(repos.MovementRepo, repos.AccountRepo, rateSvc, agencySvc)
	commissionSvc := NewCommissionService(repos.CommissionRepo, repos.OperationRepo, repos.OperationRepo, agencySvc, cfg.CommissionSplitRatio)
	operationSvc := NewOperationService(repos.OperationRepo, repos.MovementRepo, repos.AccountRepo, rateSvc, commissionSvc, agencySvc)
	recurringSvc := NewRecurringService(repos.RecurringRepo, repos.OperationRepo, agencySvc)
	billingSvc := NewBillingService(repos.BillingRepo, agencySvc, cfg)
	reportingSvc := NewReportingService(repos.ReportingRepo, rateSvc, agencySvc)

	return &portssvc.ServiceContainer{
		Agency:       agencySvc,
		User:         userSvc,
		Token:        tokenSvc,
		GoogleOAuth:  googleOAuthSvc,
		Account:      accountSvc,
		ExchangeRate: rateSvc,
		Ledger:       ledgerSvc,
		Operation:    operationSvc,
		Commission:   commissionSvc,
		Recurring:    recurringSvc,
		Billing:      billingSvc,
		Reporting:    reportingSvc,
	}
}
