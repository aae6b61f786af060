package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/travesia-app/travesia-backend/internal/apperrors"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/core/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// --- Mock AgencyAuthorizer (shared across the service tests) ---
type MockAgencyAuthorizer struct {
	mock.Mock
}

func (m *MockAgencyAuthorizer) AuthorizeUserAction(ctx context.Context, agencyID string, userID string, requiredRoles ...domain.UserAgencyRole) (*domain.UserAgency, error) {
	args := m.Called(ctx, agencyID, userID, requiredRoles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserAgency), args.Error(1)
}

// allowAll returns an authorizer that grants every role check.
func allowAll() *MockAgencyAuthorizer {
	m := new(MockAgencyAuthorizer)
	m.On("AuthorizeUserAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.UserAgency{Role: domain.RoleAdmin}, nil)
	return m
}

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindRateByDate(ctx context.Context, agencyID string, date time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, agencyID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) FindNearestPriorRate(ctx context.Context, agencyID string, date time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, agencyID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) FindLatestRate(ctx context.Context, agencyID string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, agencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) FindRatesOnOrBefore(ctx context.Context, agencyID string, dates []time.Time) (map[time.Time]domain.ExchangeRate, error) {
	args := m.Called(ctx, agencyID, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[time.Time]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListRates(ctx context.Context, agencyID string, from, to time.Time) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, agencyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

// --- Test Suite ---
type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo *MockExchangeRateRepository
	service      portssvc.ExchangeRateSvcFacade
	agencyID     string
	userID       string
	fallback     decimal.Decimal
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.agencyID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.fallback = decimal.NewFromInt(1000)
	suite.service = services.NewExchangeRateService(suite.mockRateRepo, allowAll(), suite.fallback)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// --- Test Cases ---

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_Success() {
	ctx := context.Background()
	req := dto.CreateExchangeRateRequest{
		RateDate: time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC),
		Rate:     decimal.NewFromInt(950),
	}

	suite.mockRateRepo.On("SaveExchangeRate", ctx, mock.AnythingOfType("domain.ExchangeRate")).Return(nil).Once()

	rate, err := suite.service.CreateExchangeRate(ctx, suite.agencyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(rate)
	suite.NotEmpty(rate.ExchangeRateID)
	// Intraday timestamps collapse to midnight UTC: one rate row per day.
	suite.Equal(day(2024, 3, 15), rate.RateDate)
	suite.True(rate.Rate.Equal(decimal.NewFromInt(950)))
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_RejectsNonPositiveRate() {
	ctx := context.Background()
	req := dto.CreateExchangeRateRequest{
		RateDate: day(2024, 3, 15),
		Rate:     decimal.Zero,
	}

	rate, err := suite.service.CreateExchangeRate(ctx, suite.agencyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(rate)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "SaveExchangeRate")
}

func (suite *ExchangeRateServiceTestSuite) TestResolveRate_ExactMatch() {
	ctx := context.Background()
	wanted := day(2024, 1, 15)
	stored := &domain.ExchangeRate{AgencyID: suite.agencyID, RateDate: wanted, Rate: decimal.NewFromInt(920)}

	suite.mockRateRepo.On("FindRateByDate", ctx, suite.agencyID, wanted).Return(stored, nil).Once()

	resolved, err := suite.service.ResolveRate(ctx, suite.agencyID, wanted)

	suite.Require().NoError(err)
	suite.Equal(domain.RateSourceExact, resolved.Source)
	suite.True(resolved.Rate.Equal(decimal.NewFromInt(920)))
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestResolveRate_FallsBackToNearestPrior() {
	ctx := context.Background()
	wanted := day(2024, 1, 15)
	prior := &domain.ExchangeRate{AgencyID: suite.agencyID, RateDate: day(2024, 1, 1), Rate: decimal.NewFromInt(900)}

	suite.mockRateRepo.On("FindRateByDate", ctx, suite.agencyID, wanted).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindNearestPriorRate", ctx, suite.agencyID, wanted).Return(prior, nil).Once()

	resolved, err := suite.service.ResolveRate(ctx, suite.agencyID, wanted)

	suite.Require().NoError(err)
	suite.Equal(domain.RateSourceNearestPrior, resolved.Source)
	suite.True(resolved.Rate.Equal(decimal.NewFromInt(900)))
	suite.Equal(day(2024, 1, 1), resolved.RateDate)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestResolveRate_FallsBackToLatestWhenDateBeforeAllRates() {
	ctx := context.Background()
	wanted := day(2023, 12, 1)
	latest := &domain.ExchangeRate{AgencyID: suite.agencyID, RateDate: day(2024, 1, 1), Rate: decimal.NewFromInt(900)}

	suite.mockRateRepo.On("FindRateByDate", ctx, suite.agencyID, wanted).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindNearestPriorRate", ctx, suite.agencyID, wanted).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindLatestRate", ctx, suite.agencyID).Return(latest, nil).Once()

	resolved, err := suite.service.ResolveRate(ctx, suite.agencyID, wanted)

	suite.Require().NoError(err)
	suite.Equal(domain.RateSourceLatest, resolved.Source)
	suite.True(resolved.Rate.Equal(decimal.NewFromInt(900)))
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestResolveRate_ConfiguredFallbackWhenNoRatesExist() {
	ctx := context.Background()
	wanted := day(2024, 6, 1)

	suite.mockRateRepo.On("FindRateByDate", ctx, suite.agencyID, wanted).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindNearestPriorRate", ctx, suite.agencyID, wanted).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindLatestRate", ctx, suite.agencyID).Return(nil, apperrors.ErrNotFound).Once()

	resolved, err := suite.service.ResolveRate(ctx, suite.agencyID, wanted)

	suite.Require().NoError(err)
	suite.Equal(domain.RateSourceFallback, resolved.Source)
	suite.True(resolved.Rate.Equal(suite.fallback))
	suite.True(resolved.RateDate.IsZero())
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestResolveRatesBatch_MixedSources() {
	ctx := context.Background()
	exactDay := day(2024, 2, 10)
	priorDay := day(2024, 2, 20)
	missingDay := day(2023, 11, 5)

	found := map[time.Time]domain.ExchangeRate{
		exactDay: {RateDate: exactDay, Rate: decimal.NewFromInt(940)},
		priorDay: {RateDate: day(2024, 2, 15), Rate: decimal.NewFromInt(945)},
	}
	latest := &domain.ExchangeRate{RateDate: day(2024, 2, 15), Rate: decimal.NewFromInt(945)}

	suite.mockRateRepo.On("FindRatesOnOrBefore", ctx, suite.agencyID, mock.AnythingOfType("[]time.Time")).Return(found, nil).Once()
	suite.mockRateRepo.On("FindLatestRate", ctx, suite.agencyID).Return(latest, nil).Once()

	resolved, err := suite.service.ResolveRatesBatch(ctx, suite.agencyID, []time.Time{exactDay, priorDay, missingDay, exactDay})

	suite.Require().NoError(err)
	suite.Len(resolved, 3)
	suite.Equal(domain.RateSourceExact, resolved[exactDay].Source)
	suite.Equal(domain.RateSourceNearestPrior, resolved[priorDay].Source)
	suite.Equal(domain.RateSourceLatest, resolved[missingDay].Source)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestResolveRatesBatch_FallbackForAllWhenEmpty() {
	ctx := context.Background()
	wanted := day(2024, 5, 2)

	suite.mockRateRepo.On("FindRatesOnOrBefore", ctx, suite.agencyID, mock.AnythingOfType("[]time.Time")).
		Return(map[time.Time]domain.ExchangeRate{}, nil).Once()
	suite.mockRateRepo.On("FindLatestRate", ctx, suite.agencyID).Return(nil, apperrors.ErrNotFound).Once()

	resolved, err := suite.service.ResolveRatesBatch(ctx, suite.agencyID, []time.Time{wanted})

	suite.Require().NoError(err)
	suite.Equal(domain.RateSourceFallback, resolved[wanted].Source)
	suite.True(resolved[wanted].Rate.Equal(suite.fallback))
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_Forbidden() {
	ctx := context.Background()
	denying := new(MockAgencyAuthorizer)
	denying.On("AuthorizeUserAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrForbidden)
	svc := services.NewExchangeRateService(suite.mockRateRepo, denying, suite.fallback)

	req := dto.CreateExchangeRateRequest{RateDate: day(2024, 3, 15), Rate: decimal.NewFromInt(950)}
	rate, err := svc.CreateExchangeRate(ctx, suite.agencyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(rate)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "SaveExchangeRate")
}

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
