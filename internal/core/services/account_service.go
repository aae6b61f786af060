package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/travesia-app/travesia-backend/internal/apperrors"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
	"github.com/travesia-app/travesia-backend/internal/utils"
	"github.com/travesia-app/travesia-backend/pkg/config"
)

const deleteAccountTokenPurpose = "delete-account-with-movements"

// fxToleranceUSD is the largest USD difference between the two legs of a
// cross-currency transfer that is absorbed without an FX movement.
var fxToleranceUSD = decimal.NewFromFloat(0.01)

// accountService manages financial accounts: CRUD, derived balances,
// transfers and the deletion state machine.
type accountService struct {
	BaseService
	accountRepo  portsrepo.AccountRepositoryFacade
	movementRepo portsrepo.MovementRepositoryFacade
	rateService  portssvc.ExchangeRateSvcFacade
	cfg          *config.Config
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, movementRepo portsrepo.MovementRepositoryFacade, rateService portssvc.ExchangeRateSvcFacade, authorizer portssvc.AgencyAuthorizerSvc, cfg *config.Config) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService:  BaseService{AgencyAuthorizer: authorizer},
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		rateService:  rateService,
		cfg:          cfg,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, agencyID string, req dto.CreateAccountRequest, userID string) (*domain.FinancialAccount, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, writerRoles...); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := domain.FinancialAccount{
		AccountID:      uuid.NewString(),
		AgencyID:       agencyID,
		Name:           req.Name,
		AccountType:    req.AccountType,
		Currency:       req.Currency,
		InitialBalance: req.InitialBalance,
		Description:    req.Description,
		IsActive:       true,
		Version:        1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &account, nil
}

// getOwnedAccount loads an account and verifies it belongs to the agency.
func (s *accountService) getOwnedAccount(ctx context.Context, agencyID, accountID string) (*domain.FinancialAccount, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, agencyID string, accountID string, userID string) (*domain.FinancialAccount, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	return s.getOwnedAccount(ctx, agencyID, accountID)
}

func (s *accountService) ListAccounts(ctx context.Context, agencyID string, userID string, includeInactive bool) ([]domain.FinancialAccount, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	return s.accountRepo.ListAccounts(ctx, agencyID, includeInactive)
}

func (s *accountService) UpdateAccount(ctx context.Context, agencyID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.FinancialAccount, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, writerRoles...); err != nil {
		return nil, err
	}
	account, err := s.getOwnedAccount(ctx, agencyID, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, err
	}
	account.Version++
	return account, nil
}

func (s *accountService) CalculateAccountBalance(ctx context.Context, agencyID string, accountID string, userID string) (decimal.Decimal, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return decimal.Zero, err
	}
	account, err := s.getOwnedAccount(ctx, agencyID, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	sum, err := s.movementRepo.SumSignedAmountsByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to aggregate account movements: %w", err)
	}
	return account.InitialBalance.Add(sum), nil
}

func (s *accountService) CalculateAccountBalances(ctx context.Context, agencyID string, userID string) (map[string]decimal.Decimal, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, agencyID, true)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(accounts))
	for i, acc := range accounts {
		ids[i] = acc.AccountID
	}
	sums, err := s.movementRepo.SumSignedAmountsByAccounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate account movements: %w", err)
	}
	balances := make(map[string]decimal.Decimal, len(accounts))
	for _, acc := range accounts {
		balances[acc.AccountID] = acc.InitialBalance.Add(sums[acc.AccountID])
	}
	return balances, nil
}

// buildTransferMovements produces the transfer's ledger legs: an EXPENSE on
// the source, an INCOME on the destination with the amount converted through
// the resolved rate when currencies differ, and an FX adjustment leg on the
// destination when rounding moves the two sides apart by more than one cent
// USD.
func (s *accountService) buildTransferMovements(ctx context.Context, agencyID string, from, to *domain.FinancialAccount, amount decimal.Decimal, concept string, date time.Time, userID string) ([]domain.LedgerMovement, *dto.TransferResponse, error) {
	var srcRate, dstRate *decimal.Decimal
	var resolvedNote string
	if from.Currency == domain.ARS || to.Currency == domain.ARS {
		resolved, err := s.rateService.ResolveRate(ctx, agencyID, date)
		if err != nil {
			return nil, nil, err
		}
		r := resolved.Rate
		if from.Currency == domain.ARS {
			srcRate = &r
		}
		if to.Currency == domain.ARS {
			dstRate = &r
		}
		if resolved.Source == domain.RateSourceFallback {
			resolvedNote = fmt.Sprintf("rate %s from configured fallback", resolved.Rate)
		}
	}

	srcUSD, err := domain.ConvertToUSD(amount, from.Currency, derefOrZero(srcRate))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}

	destAmount := amount
	if from.Currency != to.Currency {
		if to.Currency == domain.USD {
			destAmount = srcUSD.Round(2)
		} else {
			destAmount = srcUSD.Mul(*dstRate).Round(2)
		}
	}
	dstUSD, err := domain.ConvertToUSD(destAmount, to.Currency, derefOrZero(dstRate))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID}
	if concept == "" {
		concept = fmt.Sprintf("Transfer %s -> %s", from.Name, to.Name)
	}

	outLeg := domain.LedgerMovement{
		MovementID:          uuid.NewString(),
		AgencyID:            agencyID,
		AccountID:           from.AccountID,
		Type:                domain.Expense,
		Concept:             concept,
		Currency:            from.Currency,
		AmountOriginal:      amount,
		ExchangeRate:        srcRate,
		AmountUSDEquivalent: srcUSD,
		Notes:               resolvedNote,
		AuditFields:         audit,
	}
	inLeg := domain.LedgerMovement{
		MovementID:          uuid.NewString(),
		AgencyID:            agencyID,
		AccountID:           to.AccountID,
		Type:                domain.Income,
		Concept:             concept,
		Currency:            to.Currency,
		AmountOriginal:      destAmount,
		ExchangeRate:        dstRate,
		AmountUSDEquivalent: dstUSD,
		Notes:               resolvedNote,
		AuditFields:         audit,
	}
	movements := []domain.LedgerMovement{outLeg, inLeg}
	resp := &dto.TransferResponse{FromMovementID: outLeg.MovementID, ToMovementID: inLeg.MovementID}

	if from.Currency != to.Currency {
		deltaUSD := dstUSD.Sub(srcUSD)
		if deltaUSD.Abs().GreaterThan(fxToleranceUSD) {
			fxType := domain.FXGain
			if deltaUSD.IsNegative() {
				fxType = domain.FXLoss
			}
			fxAmount := deltaUSD.Abs()
			var fxRate *decimal.Decimal
			if to.Currency == domain.ARS {
				fxAmount = deltaUSD.Abs().Mul(*dstRate).Round(2)
				fxRate = dstRate
			}
			fxLeg := domain.LedgerMovement{
				MovementID:          uuid.NewString(),
				AgencyID:            agencyID,
				AccountID:           to.AccountID,
				Type:                fxType,
				Concept:             concept + " (FX adjustment)",
				Currency:            to.Currency,
				AmountOriginal:      fxAmount,
				ExchangeRate:        fxRate,
				AmountUSDEquivalent: deltaUSD.Abs(),
				Notes:               resolvedNote,
				AuditFields:         audit,
			}
			movements = append(movements, fxLeg)
			resp.FXMovementID = &fxLeg.MovementID
			resp.FXAmountUSD = &deltaUSD
		}
	}
	return movements, resp, nil
}

func (s *accountService) Transfer(ctx context.Context, agencyID string, req dto.TransferRequest, userID string) (*dto.TransferResponse, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, writerRoles...); err != nil {
		return nil, err
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: transfer amount must be positive", apperrors.ErrValidation)
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, fmt.Errorf("%w: cannot transfer an account to itself", apperrors.ErrValidation)
	}

	from, err := s.getOwnedAccount(ctx, agencyID, req.FromAccountID)
	if err != nil {
		return nil, err
	}
	to, err := s.getOwnedAccount(ctx, agencyID, req.ToAccountID)
	if err != nil {
		return nil, err
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}

	movements, resp, err := s.buildTransferMovements(ctx, agencyID, from, to, req.Amount, req.Concept, date, userID)
	if err != nil {
		return nil, err
	}

	versions := map[string]int64{
		from.AccountID: from.Version,
		to.AccountID:   to.Version,
	}
	if err := s.movementRepo.SaveMovements(ctx, movements, versions); err != nil {
		s.LogError(ctx, err, "failed to post transfer movements",
			"from_account_id", from.AccountID, "to_account_id", to.AccountID)
		return nil, err
	}
	return resp, nil
}

// DeleteAccount resolves a delete request through the deletion state machine.
func (s *accountService) DeleteAccount(ctx context.Context, agencyID string, accountID string, userID string, transferToAccountID string, confirmationToken string) (*dto.DeleteAccountResult, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	account, err := s.getOwnedAccount(ctx, agencyID, accountID)
	if err != nil {
		return nil, err
	}

	sum, err := s.movementRepo.SumSignedAmountsByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate account movements: %w", err)
	}
	balance := account.InitialBalance.Add(sum)

	total, err := s.accountRepo.CountAccounts(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	lastAccount := total <= 1

	switch {
	case transferToAccountID != "":
		return s.deleteWithTransfer(ctx, agencyID, account, balance, transferToAccountID, userID)

	case lastAccount:
		return s.deleteLastAccount(ctx, account, confirmationToken, userID)

	case !balance.IsZero():
		return nil, fmt.Errorf("%w: account holds a non-zero balance of %s %s; transfer it first or pass transferTo", apperrors.ErrValidation, balance, account.Currency)

	default:
		count, err := s.accountRepo.DeleteAccountWithMovements(ctx, accountID)
		if err != nil {
			return nil, err
		}
		s.LogInfo(ctx, "account deleted", "account_id", accountID, "deleted_movements", count)
		return &dto.DeleteAccountResult{Deleted: true, DeletedMovementsCount: count}, nil
	}
}

func (s *accountService) deleteWithTransfer(ctx context.Context, agencyID string, account *domain.FinancialAccount, balance decimal.Decimal, transferToAccountID, userID string) (*dto.DeleteAccountResult, error) {
	if transferToAccountID == account.AccountID {
		return nil, fmt.Errorf("%w: cannot transfer an account to itself", apperrors.ErrValidation)
	}
	if balance.IsNegative() {
		return nil, fmt.Errorf("%w: cannot transfer a negative balance of %s %s", apperrors.ErrValidation, balance, account.Currency)
	}

	if balance.IsPositive() {
		_, err := s.Transfer(ctx, agencyID, dto.TransferRequest{
			FromAccountID: account.AccountID,
			ToAccountID:   transferToAccountID,
			Amount:        balance,
			Concept:       fmt.Sprintf("Balance transfer on deletion of %s", account.Name),
		}, userID)
		if err != nil {
			return nil, err
		}
	} else if _, err := s.getOwnedAccount(ctx, agencyID, transferToAccountID); err != nil {
		return nil, err
	}

	count, err := s.accountRepo.DeleteAccountWithMovements(ctx, account.AccountID)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "account deleted after balance transfer",
		"account_id", account.AccountID, "transferred_to", transferToAccountID, "deleted_movements", count)
	return &dto.DeleteAccountResult{Deleted: true, DeletedMovementsCount: count, TransferredTo: &transferToAccountID}, nil
}

// deleteLastAccount gates the destruction of the agency's entire ledger
// history behind a server-issued short-lived confirmation token bound to the
// account.
func (s *accountService) deleteLastAccount(ctx context.Context, account *domain.FinancialAccount, confirmationToken, userID string) (*dto.DeleteAccountResult, error) {
	if confirmationToken == "" {
		token, err := utils.GenerateConfirmationToken(deleteAccountTokenPurpose, account.AccountID, s.cfg.JWTSecret, s.cfg.DeleteConfirmationTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to issue confirmation token: %w", err)
		}
		return &dto.DeleteAccountResult{RequiresConfirmation: true, ConfirmationToken: token}, nil
	}

	if err := utils.ValidateConfirmationToken(confirmationToken, deleteAccountTokenPurpose, account.AccountID, s.cfg.JWTSecret); err != nil {
		if errors.Is(err, utils.ErrConfirmationMismatch) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
		}
		return nil, fmt.Errorf("%w: invalid or expired confirmation token", apperrors.ErrValidation)
	}

	count, err := s.accountRepo.DeleteAccountWithMovements(ctx, account.AccountID)
	if err != nil {
		return nil, err
	}
	s.LogWarn(ctx, "last account hard-deleted with its full movement history",
		"account_id", account.AccountID, "deleted_movements", count, "deleted_by", userID)
	return &dto.DeleteAccountResult{Deleted: true, DeletedMovementsCount: count}, nil
}

func derefOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
