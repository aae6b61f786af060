package services_test

import (
	"context"
	"testing"

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
)

// --- Mock OperationRepository ---
type MockOperationRepository struct {
	mock.Mock
}

func (m *MockOperationRepository) FindOperationByID(ctx context.Context, operationID string) (*domain.Operation, error) {
	args := m.Called(ctx, operationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) ListOperations(ctx context.Context, agencyID string, limit, offset int) ([]domain.Operation, error) {
	args := m.Called(ctx, agencyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) SaveOperation(ctx context.Context, op domain.Operation) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

func (m *MockOperationRepository) UpdateOperation(ctx context.Context, op domain.Operation) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

func (m *MockOperationRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockOperationRepository) ListPaymentsByOperation(ctx context.Context, operationID string) ([]domain.Payment, error) {
	args := m.Called(ctx, operationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockOperationRepository) ListPayments(ctx context.Context, agencyID string, status *domain.PaymentStatus, limit, offset int) ([]domain.Payment, error) {
	args := m.Called(ctx, agencyID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockOperationRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockOperationRepository) UpdatePaymentStatus(ctx context.Context, paymentID string, status domain.PaymentStatus, updatedBy string) error {
	args := m.Called(ctx, paymentID, status, updatedBy)
	return args.Error(0)
}

func (m *MockOperationRepository) SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	args := m.Called(ctx, tx, payment)
	return args.Error(0)
}

func (m *MockOperationRepository) UpdatePaymentSettlementInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	args := m.Called(ctx, tx, payment)
	return args.Error(0)
}

func (m *MockOperationRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockOperationRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockOperationRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock CommissionCalculator ---
type MockCommissionCalculator struct {
	mock.Mock
}

func (m *MockCommissionCalculator) CalculateForOperation(ctx context.Context, agencyID string, operationID string, userID string) (*domain.CommissionResult, error) {
	args := m.Called(ctx, agencyID, operationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionResult), args.Error(1)
}

func (m *MockCommissionCalculator) RecalculateForOperation(ctx context.Context, agencyID string, operationID string, userID string) ([]domain.CommissionRecord, error) {
	args := m.Called(ctx, agencyID, operationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommissionRecord), args.Error(1)
}

func (m *MockCommissionCalculator) ListRecordsByOperation(ctx context.Context, agencyID string, operationID string, userID string) ([]domain.CommissionRecord, error) {
	args := m.Called(ctx, agencyID, operationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommissionRecord), args.Error(1)
}

func (m *MockCommissionCalculator) ListRecordsBySeller(ctx context.Context, agencyID string, sellerID string, userID string) ([]domain.CommissionRecord, error) {
	args := m.Called(ctx, agencyID, sellerID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommissionRecord), args.Error(1)
}

// --- Test Suite ---
type OperationServiceTestSuite struct {
	suite.Suite
	mockOperationRepo  *MockOperationRepository
	mockMovementWriter *MockMovementRepository
	mockAccountReader  *MockAccountRepository
	mockRateService    *MockExchangeRateService
	mockCommissionCalc *MockCommissionCalculator
	service            portssvc.OperationSvcFacade
	agencyID           string
	userID             string
}

func (suite *OperationServiceTestSuite) SetupTest() {
	suite.mockOperationRepo = new(MockOperationRepository)
	suite.mockMovementWriter = new(MockMovementRepository)
	suite.mockAccountReader = new(MockAccountRepository)
	suite.mockRateService = new(MockExchangeRateService)
	suite.mockCommissionCalc = new(MockCommissionCalculator)
	suite.agencyID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.service = services.NewOperationService(
		suite.mockOperationRepo, suite.mockMovementWriter, suite.mockAccountReader,
		suite.mockRateService, suite.mockCommissionCalc, allowAll())
}

func (suite *OperationServiceTestSuite) draftOperation() *domain.Operation {
	return &domain.Operation{
		OperationID:   uuid.NewString(),
		AgencyID:      suite.agencyID,
		Status:        domain.OperationDraft,
		Currency:      domain.USD,
		SaleAmount:    decimal.NewFromInt(5000),
		CostAmount:    decimal.NewFromInt(4000),
		MarginAmount:  decimal.NewFromInt(1000),
		Region:        "Caribe",
		SellerID:      uuid.NewString(),
		OperationDate: day(2024, 3, 1),
	}
}

func (suite *OperationServiceTestSuite) pendingPayment(op *domain.Operation, currency domain.Currency, amount int64) *domain.Payment {
	return &domain.Payment{
		PaymentID:    uuid.NewString(),
		AgencyID:     suite.agencyID,
		OperationID:  &op.OperationID,
		Direction:    domain.PaymentIncome,
		Counterparty: domain.CounterpartyCustomer,
		Status:       domain.PaymentPending,
		Currency:     currency,
		Amount:       decimal.NewFromInt(amount),
		DueDate:      day(2024, 3, 10),
	}
}

func (suite *OperationServiceTestSuite) settlementAccount(currency domain.Currency) *domain.FinancialAccount {
	return &domain.FinancialAccount{
		AccountID:   uuid.NewString(),
		AgencyID:    suite.agencyID,
		Name:        "Caja " + string(currency),
		AccountType: domain.Cash,
		Currency:    currency,
		IsActive:    true,
		Version:     4,
	}
}

// --- Test Cases ---

func (suite *OperationServiceTestSuite) TestCreateOperation_ComputesMargin() {
	ctx := context.Background()
	req := dto.CreateOperationRequest{
		Currency:      domain.USD,
		SaleAmount:    decimal.NewFromInt(5000),
		CostAmount:    decimal.NewFromInt(4200),
		Region:        "Europa",
		SellerID:      uuid.NewString(),
		OperationDate: day(2024, 3, 1),
	}

	var saved domain.Operation
	suite.mockOperationRepo.On("SaveOperation", ctx, mock.AnythingOfType("domain.Operation")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.Operation)
		}).Return(nil).Once()

	op, err := suite.service.CreateOperation(ctx, suite.agencyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.OperationDraft, op.Status)
	suite.True(saved.MarginAmount.Equal(decimal.NewFromInt(800)), "got %s", saved.MarginAmount)
}

func (suite *OperationServiceTestSuite) TestCreateOperation_SecondaryEqualsPrimaryRejected() {
	ctx := context.Background()
	sellerID := uuid.NewString()
	req := dto.CreateOperationRequest{
		Currency:          domain.USD,
		SaleAmount:        decimal.NewFromInt(100),
		CostAmount:        decimal.NewFromInt(50),
		Region:            "Europa",
		SellerID:          sellerID,
		SecondarySellerID: &sellerID,
		OperationDate:     day(2024, 3, 1),
	}

	op, err := suite.service.CreateOperation(ctx, suite.agencyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(op)
	suite.mockOperationRepo.AssertNotCalled(suite.T(), "SaveOperation")
}

func (suite *OperationServiceTestSuite) TestConfirmOperation_TriggersCommissionRefresh() {
	ctx := context.Background()
	op := suite.draftOperation()

	suite.mockOperationRepo.On("FindOperationByID", ctx, op.OperationID).Return(op, nil).Once()
	var updated domain.Operation
	suite.mockOperationRepo.On("UpdateOperation", ctx, mock.AnythingOfType("domain.Operation")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(domain.Operation)
		}).Return(nil).Once()
	suite.mockCommissionCalc.On("RecalculateForOperation", ctx, suite.agencyID, op.OperationID, suite.userID).
		Return([]domain.CommissionRecord{}, nil).Once()

	confirmed, err := suite.service.ConfirmOperation(ctx, suite.agencyID, op.OperationID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.OperationConfirmed, confirmed.Status)
	suite.Equal(domain.OperationConfirmed, updated.Status)
	suite.mockCommissionCalc.AssertExpectations(suite.T())
}

func (suite *OperationServiceTestSuite) TestConfirmOperation_NonDraftRejected() {
	ctx := context.Background()
	op := suite.draftOperation()
	op.Status = domain.OperationConfirmed

	suite.mockOperationRepo.On("FindOperationByID", ctx, op.OperationID).Return(op, nil).Once()

	_, err := suite.service.ConfirmOperation(ctx, suite.agencyID, op.OperationID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockOperationRepo.AssertNotCalled(suite.T(), "UpdateOperation")
}

func (suite *OperationServiceTestSuite) TestUpdateOperation_ConfirmedRejected() {
	ctx := context.Background()
	op := suite.draftOperation()
	op.Status = domain.OperationConfirmed
	newSale := decimal.NewFromInt(6000)

	suite.mockOperationRepo.On("FindOperationByID", ctx, op.OperationID).Return(op, nil).Once()

	_, err := suite.service.UpdateOperation(ctx, suite.agencyID, op.OperationID, dto.UpdateOperationRequest{SaleAmount: &newSale}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *OperationServiceTestSuite) TestCreatePayment_CancelledOperationRejected() {
	ctx := context.Background()
	op := suite.draftOperation()
	op.Status = domain.OperationCancelled

	suite.mockOperationRepo.On("FindOperationByID", ctx, op.OperationID).Return(op, nil).Once()

	req := dto.CreatePaymentRequest{
		Direction:    domain.PaymentIncome,
		Counterparty: domain.CounterpartyCustomer,
		Currency:     domain.USD,
		Amount:       decimal.NewFromInt(100),
		DueDate:      day(2024, 3, 10),
	}
	_, err := suite.service.CreatePayment(ctx, suite.agencyID, op.OperationID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockOperationRepo.AssertNotCalled(suite.T(), "SavePayment")
}

func (suite *OperationServiceTestSuite) TestSettlePayment_PostsLedgerMovementInTx() {
	ctx := context.Background()
	op := suite.draftOperation()
	op.Status = domain.OperationConfirmed
	payment := suite.pendingPayment(op, domain.ARS, 900000)
	account := suite.settlementAccount(domain.ARS)

	suite.mockOperationRepo.On("FindPaymentByID", ctx, payment.PaymentID).Return(payment, nil).Once()
	suite.mockAccountReader.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockRateService.On("ResolveRate", ctx, suite.agencyID, mock.AnythingOfType("time.Time")).
		Return(&domain.ResolvedRate{Rate: decimal.NewFromInt(900), Source: domain.RateSourceExact, RateDate: day(2024, 3, 10)}, nil).Once()

	suite.mockOperationRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockOperationRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	var savedMovements []domain.LedgerMovement
	var savedVersions map[string]int64
	suite.mockMovementWriter.On("SaveMovementsInTx", ctx, mock.Anything, mock.AnythingOfType("[]domain.LedgerMovement"), mock.AnythingOfType("map[string]int64")).
		Run(func(args mock.Arguments) {
			savedMovements = args.Get(2).([]domain.LedgerMovement)
			savedVersions = args.Get(3).(map[string]int64)
		}).Return(nil).Once()
	var settled domain.Payment
	suite.mockOperationRepo.On("UpdatePaymentSettlementInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Payment")).
		Run(func(args mock.Arguments) {
			settled = args.Get(2).(domain.Payment)
		}).Return(nil).Once()
	suite.mockOperationRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()
	suite.mockCommissionCalc.On("RecalculateForOperation", ctx, suite.agencyID, op.OperationID, suite.userID).
		Return([]domain.CommissionRecord{}, nil).Once()

	accountID := account.AccountID
	resp, err := suite.service.UpdatePaymentStatus(ctx, suite.agencyID, payment.PaymentID, dto.UpdatePaymentStatusRequest{
		Status:    domain.PaymentPaid,
		AccountID: &accountID,
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.PaymentPaid, resp.Status)
	suite.Require().NotNil(resp.PaidAt)
	suite.Require().NotNil(resp.AccountID)
	suite.Equal(account.AccountID, *resp.AccountID)

	suite.Require().Len(savedMovements, 1)
	mv := savedMovements[0]
	suite.Equal(domain.Income, mv.Type)
	suite.Equal(account.AccountID, mv.AccountID)
	suite.True(mv.AmountOriginal.Equal(decimal.NewFromInt(900000)))
	suite.Require().NotNil(mv.ExchangeRate)
	suite.True(mv.ExchangeRate.Equal(decimal.NewFromInt(900)))
	// 900000 ARS at 900 settles for 1000 USD equivalent.
	suite.True(mv.AmountUSDEquivalent.Equal(decimal.NewFromInt(1000)), "got %s", mv.AmountUSDEquivalent)
	suite.Require().NotNil(mv.OperationID)
	suite.Equal(op.OperationID, *mv.OperationID)
	suite.Equal(account.Version, savedVersions[account.AccountID])
	suite.Equal(domain.PaymentPaid, settled.Status)
	suite.mockCommissionCalc.AssertExpectations(suite.T())
}

func (suite *OperationServiceTestSuite) TestSettlePayment_ExpensePostsExpenseMovement() {
	ctx := context.Background()
	op := suite.draftOperation()
	payment := suite.pendingPayment(op, domain.USD, 400)
	payment.Direction = domain.PaymentExpense
	payment.Counterparty = domain.CounterpartyOperator
	account := suite.settlementAccount(domain.USD)

	suite.mockOperationRepo.On("FindPaymentByID", ctx, payment.PaymentID).Return(payment, nil).Once()
	suite.mockAccountReader.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockOperationRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockOperationRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	var savedMovements []domain.LedgerMovement
	suite.mockMovementWriter.On("SaveMovementsInTx", ctx, mock.Anything, mock.AnythingOfType("[]domain.LedgerMovement"), mock.AnythingOfType("map[string]int64")).
		Run(func(args mock.Arguments) {
			savedMovements = args.Get(2).([]domain.LedgerMovement)
		}).Return(nil).Once()
	suite.mockOperationRepo.On("UpdatePaymentSettlementInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Payment")).Return(nil).Once()
	suite.mockOperationRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()
	suite.mockCommissionCalc.On("RecalculateForOperation", ctx, suite.agencyID, op.OperationID, suite.userID).
		Return([]domain.CommissionRecord{}, nil).Once()

	accountID := account.AccountID
	resp, err := suite.service.UpdatePaymentStatus(ctx, suite.agencyID, payment.PaymentID, dto.UpdatePaymentStatusRequest{
		Status:    domain.PaymentPaid,
		AccountID: &accountID,
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.PaymentPaid, resp.Status)
	suite.Require().Len(savedMovements, 1)
	suite.Equal(domain.Expense, savedMovements[0].Type)
	// USD payments settle without a rate.
	suite.Nil(savedMovements[0].ExchangeRate)
	suite.True(savedMovements[0].AmountUSDEquivalent.Equal(decimal.NewFromInt(400)))
	suite.mockRateService.AssertNotCalled(suite.T(), "ResolveRate")
}

func (suite *OperationServiceTestSuite) TestSettlePayment_MissingAccountRejected() {
	ctx := context.Background()
	op := suite.draftOperation()
	payment := suite.pendingPayment(op, domain.USD, 400)

	suite.mockOperationRepo.On("FindPaymentByID", ctx, payment.PaymentID).Return(payment, nil).Once()

	_, err := suite.service.UpdatePaymentStatus(ctx, suite.agencyID, payment.PaymentID, dto.UpdatePaymentStatusRequest{
		Status: domain.PaymentPaid,
	}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockMovementWriter.AssertNotCalled(suite.T(), "SaveMovementsInTx")
}

func (suite *OperationServiceTestSuite) TestSettlePayment_CurrencyMismatchRejected() {
	ctx := context.Background()
	op := suite.draftOperation()
	payment := suite.pendingPayment(op, domain.ARS, 90000)
	account := suite.settlementAccount(domain.USD)

	suite.mockOperationRepo.On("FindPaymentByID", ctx, payment.PaymentID).Return(payment, nil).Once()
	suite.mockAccountReader.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	accountID := account.AccountID
	_, err := suite.service.UpdatePaymentStatus(ctx, suite.agencyID, payment.PaymentID, dto.UpdatePaymentStatusRequest{
		Status:    domain.PaymentPaid,
		AccountID: &accountID,
	}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockMovementWriter.AssertNotCalled(suite.T(), "SaveMovementsInTx")
}

func (suite *OperationServiceTestSuite) TestUpdatePaymentStatus_SettledPaymentImmutable() {
	ctx := context.Background()
	op := suite.draftOperation()
	payment := suite.pendingPayment(op, domain.USD, 400)
	payment.Status = domain.PaymentPaid

	suite.mockOperationRepo.On("FindPaymentByID", ctx, payment.PaymentID).Return(payment, nil).Once()

	_, err := suite.service.UpdatePaymentStatus(ctx, suite.agencyID, payment.PaymentID, dto.UpdatePaymentStatusRequest{
		Status: domain.PaymentCancelled,
	}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockOperationRepo.AssertNotCalled(suite.T(), "UpdatePaymentStatus")
}

func TestOperationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OperationServiceTestSuite))
}
