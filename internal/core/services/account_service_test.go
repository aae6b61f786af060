package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/travesia-app/travesia-backend/internal/apperrors"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/core/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
	"github.com/travesia-app/travesia-backend/pkg/config"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.FinancialAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialAccount), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.FinancialAccount, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.FinancialAccount), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, agencyID string, includeInactive bool) ([]domain.FinancialAccount, error) {
	args := m.Called(ctx, agencyID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FinancialAccount), args.Error(1)
}

func (m *MockAccountRepository) CountAccounts(ctx context.Context, agencyID string) (int, error) {
	args := m.Called(ctx, agencyID)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.FinancialAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.FinancialAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccountWithMovements(ctx context.Context, accountID string) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

// --- Mock MovementRepository ---
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) FindMovementByID(ctx context.Context, movementID string) (*domain.LedgerMovement, error) {
	args := m.Called(ctx, movementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerMovement), args.Error(1)
}

func (m *MockMovementRepository) ListMovementsByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.LedgerMovement, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerMovement), args.Error(1)
}

func (m *MockMovementRepository) ListMovementsByOperation(ctx context.Context, operationID string) ([]domain.LedgerMovement, error) {
	args := m.Called(ctx, operationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerMovement), args.Error(1)
}

func (m *MockMovementRepository) SumSignedAmountsByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMovementRepository) SumSignedAmountsByAccounts(ctx context.Context, accountIDs []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockMovementRepository) SaveMovements(ctx context.Context, movements []domain.LedgerMovement, versions map[string]int64) error {
	args := m.Called(ctx, movements, versions)
	return args.Error(0)
}

func (m *MockMovementRepository) SaveMovementsInTx(ctx context.Context, tx pgx.Tx, movements []domain.LedgerMovement, versions map[string]int64) error {
	args := m.Called(ctx, tx, movements, versions)
	return args.Error(0)
}

func (m *MockMovementRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockMovementRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockMovementRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock ExchangeRateService ---
type MockExchangeRateService struct {
	mock.Mock
}

func (m *MockExchangeRateService) CreateExchangeRate(ctx context.Context, agencyID string, req dto.CreateExchangeRateRequest, userID string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, agencyID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateService) ListRates(ctx context.Context, agencyID string, userID string, from, to time.Time) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, agencyID, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateService) ResolveRate(ctx context.Context, agencyID string, date time.Time) (*domain.ResolvedRate, error) {
	args := m.Called(ctx, agencyID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResolvedRate), args.Error(1)
}

func (m *MockExchangeRateService) ResolveRatesBatch(ctx context.Context, agencyID string, dates []time.Time) (map[time.Time]domain.ResolvedRate, error) {
	args := m.Called(ctx, agencyID, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[time.Time]domain.ResolvedRate), args.Error(1)
}

// --- Test Suite ---
type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo  *MockAccountRepository
	mockMovementRepo *MockMovementRepository
	mockRateSvc      *MockExchangeRateService
	cfg              *config.Config
	service          portssvc.AccountSvcFacade
	agencyID         string
	userID           string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockMovementRepo = new(MockMovementRepository)
	suite.mockRateSvc = new(MockExchangeRateService)
	suite.cfg = &config.Config{
		JWTSecret:             "test-secret",
		DeleteConfirmationTTL: 5 * time.Minute,
	}
	suite.agencyID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.service = services.NewAccountService(suite.mockAccountRepo, suite.mockMovementRepo, suite.mockRateSvc, allowAll(), suite.cfg)
}

func (suite *AccountServiceTestSuite) newAccount(currency domain.Currency, initial int64) *domain.FinancialAccount {
	return &domain.FinancialAccount{
		AccountID:      uuid.NewString(),
		AgencyID:       suite.agencyID,
		Name:           "Caja " + string(currency),
		AccountType:    domain.Cash,
		Currency:       currency,
		InitialBalance: decimal.NewFromInt(initial),
		IsActive:       true,
		Version:        1,
	}
}

// --- Test Cases ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Name:           "Banco Galicia",
		AccountType:    domain.Bank,
		Currency:       domain.ARS,
		InitialBalance: decimal.NewFromInt(50000),
	}

	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.FinancialAccount")).Return(nil).Once()

	acc, err := suite.service.CreateAccount(ctx, suite.agencyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(acc)
	suite.NotEmpty(acc.AccountID)
	suite.Equal(suite.agencyID, acc.AgencyID)
	suite.EqualValues(1, acc.Version)
	suite.True(acc.IsActive)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestGetAccountByID_OtherAgencyLooksNotFound() {
	ctx := context.Background()
	foreign := suite.newAccount(domain.USD, 0)
	foreign.AgencyID = uuid.NewString()

	suite.mockAccountRepo.On("FindAccountByID", ctx, foreign.AccountID).Return(foreign, nil).Once()

	acc, err := suite.service.GetAccountByID(ctx, suite.agencyID, foreign.AccountID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(acc)
}

func (suite *AccountServiceTestSuite) TestCalculateAccountBalance_InitialPlusMovements() {
	ctx := context.Background()
	account := suite.newAccount(domain.USD, 100)

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockMovementRepo.On("SumSignedAmountsByAccount", ctx, account.AccountID).
		Return(decimal.NewFromInt(-30), nil).Once()

	balance, err := suite.service.CalculateAccountBalance(ctx, suite.agencyID, account.AccountID, suite.userID)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.NewFromInt(70)), "got %s", balance)
}

func (suite *AccountServiceTestSuite) TestTransfer_SameCurrencyTwoLegs() {
	ctx := context.Background()
	from := suite.newAccount(domain.USD, 1000)
	to := suite.newAccount(domain.USD, 0)

	suite.mockAccountRepo.On("FindAccountByID", ctx, from.AccountID).Return(from, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, to.AccountID).Return(to, nil).Once()

	var saved []domain.LedgerMovement
	suite.mockMovementRepo.On("SaveMovements", ctx, mock.AnythingOfType("[]domain.LedgerMovement"), mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).([]domain.LedgerMovement)
		}).Return(nil).Once()

	resp, err := suite.service.Transfer(ctx, suite.agencyID, dto.TransferRequest{
		FromAccountID: from.AccountID,
		ToAccountID:   to.AccountID,
		Amount:        decimal.NewFromInt(250),
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(saved, 2, "same-currency transfer needs no FX leg")
	suite.Equal(domain.Expense, saved[0].Type)
	suite.Equal(domain.Income, saved[1].Type)
	suite.True(saved[0].AmountOriginal.Equal(decimal.NewFromInt(250)))
	suite.True(saved[1].AmountOriginal.Equal(decimal.NewFromInt(250)))
	suite.Nil(resp.FXMovementID)
	// Rate service never consulted for USD-to-USD.
	suite.mockRateSvc.AssertNotCalled(suite.T(), "ResolveRate")
}

func (suite *AccountServiceTestSuite) TestTransfer_CrossCurrencyPostsFXLegOnRoundingDelta() {
	ctx := context.Background()
	from := suite.newAccount(domain.ARS, 0)
	to := suite.newAccount(domain.USD, 0)
	rate := decimal.NewFromInt(900)

	suite.mockAccountRepo.On("FindAccountByID", ctx, from.AccountID).Return(from, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, to.AccountID).Return(to, nil).Once()
	suite.mockRateSvc.On("ResolveRate", ctx, suite.agencyID, mock.AnythingOfType("time.Time")).
		Return(&domain.ResolvedRate{Rate: rate, Source: domain.RateSourceExact}, nil).Once()

	var saved []domain.LedgerMovement
	suite.mockMovementRepo.On("SaveMovements", ctx, mock.AnythingOfType("[]domain.LedgerMovement"), mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).([]domain.LedgerMovement)
		}).Return(nil).Once()

	// 100000 ARS / 900 = 111.111111 USD, rounded to 111.11 on the USD leg.
	// The 0.001111 USD difference stays under the one-cent tolerance.
	resp, err := suite.service.Transfer(ctx, suite.agencyID, dto.TransferRequest{
		FromAccountID: from.AccountID,
		ToAccountID:   to.AccountID,
		Amount:        decimal.NewFromInt(100000),
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(saved, 2)
	suite.True(saved[1].AmountOriginal.Equal(decimal.NewFromFloat(111.11)), "got %s", saved[1].AmountOriginal)
	suite.Nil(resp.FXMovementID)
	suite.mockRateSvc.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestTransfer_ToSelfRejected() {
	ctx := context.Background()
	from := suite.newAccount(domain.USD, 100)

	resp, err := suite.service.Transfer(ctx, suite.agencyID, dto.TransferRequest{
		FromAccountID: from.AccountID,
		ToAccountID:   from.AccountID,
		Amount:        decimal.NewFromInt(10),
	}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(resp)
	suite.mockMovementRepo.AssertNotCalled(suite.T(), "SaveMovements")
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_NonZeroBalanceRejectedWithoutTransfer() {
	ctx := context.Background()
	account := suite.newAccount(domain.USD, 0)

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockMovementRepo.On("SumSignedAmountsByAccount", ctx, account.AccountID).
		Return(decimal.NewFromInt(42), nil).Once()
	suite.mockAccountRepo.On("CountAccounts", ctx, suite.agencyID).Return(3, nil).Once()

	result, err := suite.service.DeleteAccount(ctx, suite.agencyID, account.AccountID, suite.userID, "", "")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(result)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "DeleteAccountWithMovements")
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_LastAccountIssuesConfirmationToken() {
	ctx := context.Background()
	account := suite.newAccount(domain.USD, 0)

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockMovementRepo.On("SumSignedAmountsByAccount", ctx, account.AccountID).
		Return(decimal.Zero, nil).Once()
	suite.mockAccountRepo.On("CountAccounts", ctx, suite.agencyID).Return(1, nil).Once()

	result, err := suite.service.DeleteAccount(ctx, suite.agencyID, account.AccountID, suite.userID, "", "")

	suite.Require().NoError(err)
	suite.False(result.Deleted)
	suite.True(result.RequiresConfirmation)
	suite.NotEmpty(result.ConfirmationToken)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "DeleteAccountWithMovements")
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_LastAccountDeletedWithValidToken() {
	ctx := context.Background()
	account := suite.newAccount(domain.USD, 0)

	// First call hands out the token the second call echoes back.
	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Twice()
	suite.mockMovementRepo.On("SumSignedAmountsByAccount", ctx, account.AccountID).
		Return(decimal.Zero, nil).Twice()
	suite.mockAccountRepo.On("CountAccounts", ctx, suite.agencyID).Return(1, nil).Twice()
	suite.mockAccountRepo.On("DeleteAccountWithMovements", ctx, account.AccountID).Return(int64(17), nil).Once()

	first, err := suite.service.DeleteAccount(ctx, suite.agencyID, account.AccountID, suite.userID, "", "")
	suite.Require().NoError(err)
	suite.Require().True(first.RequiresConfirmation)

	second, err := suite.service.DeleteAccount(ctx, suite.agencyID, account.AccountID, suite.userID, "", first.ConfirmationToken)

	suite.Require().NoError(err)
	suite.True(second.Deleted)
	suite.EqualValues(17, second.DeletedMovementsCount)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_TransferThenDelete() {
	ctx := context.Background()
	account := suite.newAccount(domain.USD, 100)
	dest := suite.newAccount(domain.USD, 0)

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil)
	suite.mockAccountRepo.On("FindAccountByID", ctx, dest.AccountID).Return(dest, nil)
	suite.mockMovementRepo.On("SumSignedAmountsByAccount", ctx, account.AccountID).
		Return(decimal.NewFromInt(-25), nil).Once()
	suite.mockAccountRepo.On("CountAccounts", ctx, suite.agencyID).Return(2, nil).Once()

	var saved []domain.LedgerMovement
	suite.mockMovementRepo.On("SaveMovements", ctx, mock.AnythingOfType("[]domain.LedgerMovement"), mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).([]domain.LedgerMovement)
		}).Return(nil).Once()
	suite.mockAccountRepo.On("DeleteAccountWithMovements", ctx, account.AccountID).Return(int64(5), nil).Once()

	result, err := suite.service.DeleteAccount(ctx, suite.agencyID, account.AccountID, suite.userID, dest.AccountID, "")

	suite.Require().NoError(err)
	suite.True(result.Deleted)
	suite.Require().NotNil(result.TransferredTo)
	suite.Equal(dest.AccountID, *result.TransferredTo)
	// Remaining balance of 75 moved to the destination before deletion.
	suite.Require().Len(saved, 2)
	suite.True(saved[0].AmountOriginal.Equal(decimal.NewFromInt(75)), "got %s", saved[0].AmountOriginal)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
