package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/travesia-app/travesia-backend/internal/apperrors"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// ledgerService registers and reads ledger movements. Every write normalizes
// the amount to USD through domain.ConvertToUSD before it hits the database.
type ledgerService struct {
	BaseService
	movementRepo portsrepo.MovementRepositoryFacade
	accountRepo  portsrepo.AccountReader
	rateService  portssvc.ExchangeRateSvcFacade
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(movementRepo portsrepo.MovementRepositoryFacade, accountRepo portsrepo.AccountReader, rateService portssvc.ExchangeRateSvcFacade, authorizer portssvc.AgencyAuthorizerSvc) portssvc.LedgerSvcFacade {
	return &ledgerService{
		BaseService:  BaseService{AgencyAuthorizer: authorizer},
		movementRepo: movementRepo,
		accountRepo:  accountRepo,
		rateService:  rateService,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) GetMovementByID(ctx context.Context, agencyID string, movementID string, userID string) (*domain.LedgerMovement, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	movement, err := s.movementRepo.FindMovementByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if movement.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	return movement, nil
}

func (s *ledgerService) ListMovementsByAccount(ctx context.Context, agencyID string, accountID string, userID string, limit, offset int) ([]domain.LedgerMovement, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.movementRepo.ListMovementsByAccount(ctx, accountID, limit, offset)
}

func (s *ledgerService) ListMovementsByOperation(ctx context.Context, agencyID string, operationID string, userID string) ([]domain.LedgerMovement, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	movements, err := s.movementRepo.ListMovementsByOperation(ctx, operationID)
	if err != nil {
		return nil, err
	}
	filtered := movements[:0]
	for _, m := range movements {
		if m.AgencyID == agencyID {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

// buildMovement assembles a LedgerMovement from a request, resolving the
// exchange rate for ARS amounts when the caller did not supply one. The
// returned movement carries the USD equivalent already computed.
func (s *ledgerService) buildMovement(ctx context.Context, agencyID string, req dto.CreateMovementRequest, userID string, account *domain.FinancialAccount) (*domain.LedgerMovement, error) {
	if req.AmountOriginal.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if req.Currency != account.Currency {
		return nil, fmt.Errorf("%w: movement currency %s does not match account currency %s", apperrors.ErrValidation, req.Currency, account.Currency)
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}

	var rate *decimal.Decimal
	notes := req.Notes
	if req.Currency == domain.ARS {
		if req.ExchangeRate != nil {
			if req.ExchangeRate.LessThanOrEqual(decimal.Zero) {
				return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
			}
			rate = req.ExchangeRate
		} else {
			resolved, err := s.rateService.ResolveRate(ctx, agencyID, date)
			if err != nil {
				return nil, err
			}
			r := resolved.Rate
			rate = &r
			if resolved.Source == domain.RateSourceFallback {
				notes = appendNote(notes, fmt.Sprintf("rate %s from configured fallback", resolved.Rate))
			}
		}
	}

	usdRate := decimal.Zero
	if rate != nil {
		usdRate = *rate
	}
	amountUSD, err := domain.ConvertToUSD(req.AmountOriginal, req.Currency, usdRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}

	now := time.Now().UTC()
	return &domain.LedgerMovement{
		MovementID:          uuid.NewString(),
		AgencyID:            agencyID,
		AccountID:           account.AccountID,
		Type:                req.MovementType,
		Concept:             req.Concept,
		Currency:            req.Currency,
		AmountOriginal:      req.AmountOriginal,
		ExchangeRate:        rate,
		AmountUSDEquivalent: amountUSD,
		OperationID:         req.OperationID,
		LeadID:              req.LeadID,
		SellerID:            req.SellerID,
		Notes:               notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}, nil
}

func (s *ledgerService) CreateMovement(ctx context.Context, agencyID string, req dto.CreateMovementRequest, userID string) (*domain.LedgerMovement, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, writerRoles...); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, account.AccountID)
	}

	movement, err := s.buildMovement(ctx, agencyID, req, userID, account)
	if err != nil {
		return nil, err
	}

	versions := map[string]int64{account.AccountID: account.Version}
	if err := s.movementRepo.SaveMovements(ctx, []domain.LedgerMovement{*movement}, versions); err != nil {
		s.LogError(ctx, err, "failed to save movement", "account_id", account.AccountID)
		return nil, err
	}
	return movement, nil
}

func appendNote(existing, extra string) string {
	if strings.TrimSpace(existing) == "" {
		return extra
	}
	return existing + "; " + extra
}
