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
)

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) ListConfirmedOperations(ctx context.Context, agencyID string, from, to time.Time, sellerID string) ([]domain.Operation, error) {
	args := m.Called(ctx, agencyID, from, to, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Operation), args.Error(1)
}

// --- Test Suite ---
type ReportingServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	mockRateService   *MockExchangeRateService
	service           portssvc.ReportingSvcFacade
	agencyID          string
	userID            string
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.mockRateService = new(MockExchangeRateService)
	suite.agencyID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.service = services.NewReportingService(suite.mockReportingRepo, suite.mockRateService, allowAll())
}

func (suite *ReportingServiceTestSuite) confirmedOp(sellerID string, date time.Time, currency domain.Currency, sale, cost int64) domain.Operation {
	return domain.Operation{
		OperationID:   uuid.NewString(),
		AgencyID:      suite.agencyID,
		Status:        domain.OperationConfirmed,
		Currency:      currency,
		SaleAmount:    decimal.NewFromInt(sale),
		CostAmount:    decimal.NewFromInt(cost),
		MarginAmount:  decimal.NewFromInt(sale - cost),
		Region:        "Caribe",
		SellerID:      sellerID,
		OperationDate: date,
	}
}

// --- Test Cases ---

func (suite *ReportingServiceTestSuite) TestMarginsReport_GroupsBySellerAcrossCurrencies() {
	ctx := context.Background()
	from, to := day(2024, 3, 1), day(2024, 3, 31)
	seller := "seller-a"
	opUSD := suite.confirmedOp(seller, day(2024, 3, 5), domain.USD, 5000, 4000)
	opARS := suite.confirmedOp(seller, day(2024, 3, 12), domain.ARS, 900000, 450000)

	suite.mockReportingRepo.On("ListConfirmedOperations", ctx, suite.agencyID, from, to, "").
		Return([]domain.Operation{opUSD, opARS}, nil).Once()
	suite.mockRateService.On("ResolveRatesBatch", ctx, suite.agencyID, mock.AnythingOfType("[]time.Time")).
		Return(map[time.Time]domain.ResolvedRate{
			day(2024, 3, 5):  {Rate: decimal.NewFromInt(890), Source: domain.RateSourceExact},
			day(2024, 3, 12): {Rate: decimal.NewFromInt(900), Source: domain.RateSourceExact},
		}, nil).Once()

	rows, err := suite.service.MarginsReport(ctx, suite.agencyID, suite.userID, from, to, "", portssvc.MarginsBySeller)

	suite.Require().NoError(err)
	suite.Require().Len(rows, 1)
	row := rows[0]
	suite.Equal(seller, row.Group)
	suite.Equal(2, row.OperationCount)
	// USD op contributes as-is; the ARS op normalizes at 900: 1000/500 USD.
	suite.True(row.SaleUSD.Equal(decimal.NewFromInt(6000)), "got %s", row.SaleUSD)
	suite.True(row.CostUSD.Equal(decimal.NewFromInt(4500)), "got %s", row.CostUSD)
	suite.True(row.MarginUSD.Equal(decimal.NewFromInt(1500)), "got %s", row.MarginUSD)
}

func (suite *ReportingServiceTestSuite) TestMarginsReport_MonthlyViewSortedChronologically() {
	ctx := context.Background()
	from, to := day(2024, 1, 1), day(2024, 4, 30)
	opMar := suite.confirmedOp("seller-a", day(2024, 3, 5), domain.USD, 3000, 2000)
	opJan := suite.confirmedOp("seller-b", day(2024, 1, 20), domain.USD, 1000, 600)

	suite.mockReportingRepo.On("ListConfirmedOperations", ctx, suite.agencyID, from, to, "").
		Return([]domain.Operation{opMar, opJan}, nil).Once()
	suite.mockRateService.On("ResolveRatesBatch", ctx, suite.agencyID, mock.AnythingOfType("[]time.Time")).
		Return(map[time.Time]domain.ResolvedRate{}, nil).Once()

	rows, err := suite.service.MarginsReport(ctx, suite.agencyID, suite.userID, from, to, "", portssvc.MarginsByMonth)

	suite.Require().NoError(err)
	suite.Require().Len(rows, 2)
	suite.Equal("2024-01", rows[0].Group)
	suite.Equal("2024-03", rows[1].Group)
	suite.True(rows[0].MarginUSD.Equal(decimal.NewFromInt(400)))
	suite.True(rows[1].MarginUSD.Equal(decimal.NewFromInt(1000)))
}

func (suite *ReportingServiceTestSuite) TestMarginsReport_EmptyRangeReturnsNoRows() {
	ctx := context.Background()
	from, to := day(2024, 3, 1), day(2024, 3, 31)

	suite.mockReportingRepo.On("ListConfirmedOperations", ctx, suite.agencyID, from, to, "").
		Return([]domain.Operation{}, nil).Once()

	rows, err := suite.service.MarginsReport(ctx, suite.agencyID, suite.userID, from, to, "", portssvc.MarginsBySeller)

	suite.Require().NoError(err)
	suite.Empty(rows)
	suite.mockRateService.AssertNotCalled(suite.T(), "ResolveRatesBatch")
}

func (suite *ReportingServiceTestSuite) TestMarginsReport_InvertedRangeRejected() {
	ctx := context.Background()

	rows, err := suite.service.MarginsReport(ctx, suite.agencyID, suite.userID, day(2024, 3, 31), day(2024, 3, 1), "", portssvc.MarginsBySeller)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(rows)
}

func (suite *ReportingServiceTestSuite) TestMarginsReport_SellerFilterPassedThrough() {
	ctx := context.Background()
	from, to := day(2024, 3, 1), day(2024, 3, 31)
	seller := "seller-a"
	op := suite.confirmedOp(seller, day(2024, 3, 5), domain.USD, 2000, 1500)

	suite.mockReportingRepo.On("ListConfirmedOperations", ctx, suite.agencyID, from, to, seller).
		Return([]domain.Operation{op}, nil).Once()
	suite.mockRateService.On("ResolveRatesBatch", ctx, suite.agencyID, mock.AnythingOfType("[]time.Time")).
		Return(map[time.Time]domain.ResolvedRate{}, nil).Once()

	rows, err := suite.service.MarginsReport(ctx, suite.agencyID, suite.userID, from, to, seller, portssvc.MarginsBySeller)

	suite.Require().NoError(err)
	suite.Require().Len(rows, 1)
	suite.Equal(seller, rows[0].Group)
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
