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
)

// --- Mock RecurringRepository ---
type MockRecurringRepository struct {
	mock.Mock
}

func (m *MockRecurringRepository) FindRecurringByID(ctx context.Context, recurringID string) (*domain.RecurringPayment, error) {
	args := m.Called(ctx, recurringID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringPayment), args.Error(1)
}

func (m *MockRecurringRepository) ListRecurring(ctx context.Context, agencyID string) ([]domain.RecurringPayment, error) {
	args := m.Called(ctx, agencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringPayment), args.Error(1)
}

func (m *MockRecurringRepository) SaveRecurring(ctx context.Context, rec domain.RecurringPayment) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRecurringRepository) UpdateRecurring(ctx context.Context, rec domain.RecurringPayment) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRecurringRepository) DeleteRecurring(ctx context.Context, recurringID string) error {
	args := m.Called(ctx, recurringID)
	return args.Error(0)
}

func (m *MockRecurringRepository) FindDueForUpdate(ctx context.Context, tx pgx.Tx, agencyID string, today time.Time) ([]domain.RecurringPayment, error) {
	args := m.Called(ctx, tx, agencyID, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringPayment), args.Error(1)
}

func (m *MockRecurringRepository) AdvanceNextDueInTx(ctx context.Context, tx pgx.Tx, recurringID string, nextDue time.Time, updatedBy string, now time.Time) error {
	args := m.Called(ctx, tx, recurringID, nextDue, updatedBy, now)
	return args.Error(0)
}

func (m *MockRecurringRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockRecurringRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockRecurringRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock PaymentWriter ---
type MockPaymentWriter struct {
	mock.Mock
}

func (m *MockPaymentWriter) SavePayment(ctx context.Context, payment domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentWriter) UpdatePaymentStatus(ctx context.Context, paymentID string, status domain.PaymentStatus, updatedBy string) error {
	args := m.Called(ctx, paymentID, status, updatedBy)
	return args.Error(0)
}

func (m *MockPaymentWriter) SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	args := m.Called(ctx, tx, payment)
	return args.Error(0)
}

func (m *MockPaymentWriter) UpdatePaymentSettlementInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	args := m.Called(ctx, tx, payment)
	return args.Error(0)
}

// --- Test Suite ---
type RecurringServiceTestSuite struct {
	suite.Suite
	mockRecurringRepo *MockRecurringRepository
	mockPaymentWriter *MockPaymentWriter
	service           portssvc.RecurringSvcFacade
	agencyID          string
	userID            string
}

func (suite *RecurringServiceTestSuite) SetupTest() {
	suite.mockRecurringRepo = new(MockRecurringRepository)
	suite.mockPaymentWriter = new(MockPaymentWriter)
	suite.agencyID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.service = services.NewRecurringService(suite.mockRecurringRepo, suite.mockPaymentWriter, allowAll())
}

func (suite *RecurringServiceTestSuite) monthlySchedule(nextDue time.Time) domain.RecurringPayment {
	return domain.RecurringPayment{
		RecurringID:  uuid.NewString(),
		AgencyID:     suite.agencyID,
		OperatorName: "Aerolineas Argentinas",
		Concept:      "block seats",
		Currency:     domain.USD,
		Amount:       decimal.NewFromInt(1500),
		Frequency:    domain.FrequencyMonthly,
		NextDueDate:  nextDue,
		StartDate:    nextDue.AddDate(0, -6, 0),
		IsActive:     true,
	}
}

func (suite *RecurringServiceTestSuite) expectTx() {
	suite.mockRecurringRepo.On("Begin", mock.Anything).Return(nil, nil).Once()
	suite.mockRecurringRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockRecurringRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil).Maybe()
}

// --- Test Cases ---

func (suite *RecurringServiceTestSuite) TestRunDue_GeneratesSinglePaymentWhenDueToday() {
	ctx := context.Background()
	today := day(2024, 4, 10)
	rec := suite.monthlySchedule(today)
	accountID := uuid.NewString()
	rec.AccountID = &accountID

	suite.expectTx()
	suite.mockRecurringRepo.On("FindDueForUpdate", ctx, mock.Anything, suite.agencyID, today).
		Return([]domain.RecurringPayment{rec}, nil).Once()

	var generated []domain.Payment
	suite.mockPaymentWriter.On("SavePaymentInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Payment")).
		Run(func(args mock.Arguments) {
			generated = append(generated, args.Get(2).(domain.Payment))
		}).Return(nil).Once()
	suite.mockRecurringRepo.On("AdvanceNextDueInTx", ctx, mock.Anything, rec.RecurringID, day(2024, 5, 10), suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	resp, err := suite.service.RunDue(ctx, suite.agencyID, suite.userID, today)

	suite.Require().NoError(err)
	suite.Equal(1, resp.GeneratedCount)
	suite.Require().Len(generated, 1)
	p := generated[0]
	suite.Equal(domain.PaymentExpense, p.Direction)
	suite.Equal(domain.CounterpartyOperator, p.Counterparty)
	suite.Equal(domain.PaymentPending, p.Status)
	suite.True(p.Amount.Equal(rec.Amount))
	suite.Equal(rec.Currency, p.Currency)
	suite.True(p.DueDate.Equal(today))
	suite.Require().NotNil(p.AccountID)
	suite.Equal(accountID, *p.AccountID)
	suite.mockRecurringRepo.AssertExpectations(suite.T())
}

func (suite *RecurringServiceTestSuite) TestRunDue_CatchesUpOnePaymentPerMissedPeriod() {
	ctx := context.Background()
	today := day(2024, 3, 15)
	rec := suite.monthlySchedule(day(2024, 1, 10))

	suite.expectTx()
	suite.mockRecurringRepo.On("FindDueForUpdate", ctx, mock.Anything, suite.agencyID, today).
		Return([]domain.RecurringPayment{rec}, nil).Once()

	var dueDates []time.Time
	suite.mockPaymentWriter.On("SavePaymentInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Payment")).
		Run(func(args mock.Arguments) {
			dueDates = append(dueDates, args.Get(2).(domain.Payment).DueDate)
		}).Return(nil).Times(3)
	suite.mockRecurringRepo.On("AdvanceNextDueInTx", ctx, mock.Anything, rec.RecurringID, day(2024, 4, 10), suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	resp, err := suite.service.RunDue(ctx, suite.agencyID, suite.userID, today)

	suite.Require().NoError(err)
	suite.Equal(3, resp.GeneratedCount)
	suite.Require().Len(dueDates, 3)
	suite.True(dueDates[0].Equal(day(2024, 1, 10)))
	suite.True(dueDates[1].Equal(day(2024, 2, 10)))
	suite.True(dueDates[2].Equal(day(2024, 3, 10)))
	suite.mockRecurringRepo.AssertExpectations(suite.T())
}

func (suite *RecurringServiceTestSuite) TestRunDue_ExpiredScheduleGeneratesNothing() {
	ctx := context.Background()
	today := day(2024, 3, 15)
	rec := suite.monthlySchedule(day(2024, 1, 10))
	end := day(2024, 2, 1)
	rec.EndDate = &end

	suite.expectTx()
	suite.mockRecurringRepo.On("FindDueForUpdate", ctx, mock.Anything, suite.agencyID, today).
		Return([]domain.RecurringPayment{rec}, nil).Once()

	resp, err := suite.service.RunDue(ctx, suite.agencyID, suite.userID, today)

	suite.Require().NoError(err)
	suite.Equal(0, resp.GeneratedCount)
	suite.Empty(resp.GeneratedPaymentIDs)
	suite.mockPaymentWriter.AssertNotCalled(suite.T(), "SavePaymentInTx")
	suite.mockRecurringRepo.AssertNotCalled(suite.T(), "AdvanceNextDueInTx")
}

func (suite *RecurringServiceTestSuite) TestRunDue_NothingDueCommitsEmptyRun() {
	ctx := context.Background()
	today := day(2024, 3, 15)

	suite.expectTx()
	suite.mockRecurringRepo.On("FindDueForUpdate", ctx, mock.Anything, suite.agencyID, today).
		Return([]domain.RecurringPayment{}, nil).Once()

	resp, err := suite.service.RunDue(ctx, suite.agencyID, suite.userID, today)

	suite.Require().NoError(err)
	suite.Equal(0, resp.GeneratedCount)
	suite.mockRecurringRepo.AssertExpectations(suite.T())
}

func (suite *RecurringServiceTestSuite) TestCreateRecurring_StartsWithStartDateDue() {
	ctx := context.Background()
	start := day(2024, 5, 1)
	req := dto.CreateRecurringPaymentRequest{
		OperatorName: "Despegar",
		Concept:      "hotel block",
		Currency:     domain.ARS,
		Amount:       decimal.NewFromInt(90000),
		Frequency:    domain.FrequencyBiweekly,
		StartDate:    start,
	}

	var saved domain.RecurringPayment
	suite.mockRecurringRepo.On("SaveRecurring", ctx, mock.AnythingOfType("domain.RecurringPayment")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.RecurringPayment)
		}).Return(nil).Once()

	rec, err := suite.service.CreateRecurring(ctx, suite.agencyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(rec.IsActive)
	suite.True(saved.NextDueDate.Equal(start))
	suite.Equal(suite.userID, saved.CreatedBy)
}

func (suite *RecurringServiceTestSuite) TestCreateRecurring_NonPositiveAmountRejected() {
	ctx := context.Background()
	req := dto.CreateRecurringPaymentRequest{
		OperatorName: "Despegar",
		Concept:      "hotel block",
		Currency:     domain.ARS,
		Amount:       decimal.Zero,
		Frequency:    domain.FrequencyMonthly,
		StartDate:    day(2024, 5, 1),
	}

	rec, err := suite.service.CreateRecurring(ctx, suite.agencyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(rec)
	suite.mockRecurringRepo.AssertNotCalled(suite.T(), "SaveRecurring")
}

func (suite *RecurringServiceTestSuite) TestCreateRecurring_EndBeforeStartRejected() {
	ctx := context.Background()
	end := day(2024, 4, 1)
	req := dto.CreateRecurringPaymentRequest{
		OperatorName: "Despegar",
		Concept:      "hotel block",
		Currency:     domain.USD,
		Amount:       decimal.NewFromInt(100),
		Frequency:    domain.FrequencyMonthly,
		StartDate:    day(2024, 5, 1),
		EndDate:      &end,
	}

	_, err := suite.service.CreateRecurring(ctx, suite.agencyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *RecurringServiceTestSuite) TestGetRecurringByID_OtherAgencyLooksNotFound() {
	ctx := context.Background()
	rec := suite.monthlySchedule(day(2024, 4, 10))
	rec.AgencyID = uuid.NewString()

	suite.mockRecurringRepo.On("FindRecurringByID", ctx, rec.RecurringID).Return(&rec, nil).Once()

	got, err := suite.service.GetRecurringByID(ctx, suite.agencyID, rec.RecurringID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(got)
}

func TestRecurringServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RecurringServiceTestSuite))
}
