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
	"github.com/travesia-app/travesia-backend/pkg/config"
)

// --- Mock BillingRepository ---
type MockBillingRepository struct {
	mock.Mock
}

func (m *MockBillingRepository) FindPlanByID(ctx context.Context, planID string) (*domain.SubscriptionPlan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubscriptionPlan), args.Error(1)
}

func (m *MockBillingRepository) ListPlans(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubscriptionPlan), args.Error(1)
}

func (m *MockBillingRepository) SavePlan(ctx context.Context, plan domain.SubscriptionPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockBillingRepository) FindSubscriptionByAgency(ctx context.Context, agencyID string) (*domain.Subscription, error) {
	args := m.Called(ctx, agencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockBillingRepository) SaveSubscription(ctx context.Context, sub domain.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockBillingRepository) ChangePlan(ctx context.Context, sub domain.Subscription, events []domain.BillingEvent) error {
	args := m.Called(ctx, sub, events)
	return args.Error(0)
}

func (m *MockBillingRepository) ListBillingEvents(ctx context.Context, agencyID string, limit, offset int) ([]domain.BillingEvent, error) {
	args := m.Called(ctx, agencyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BillingEvent), args.Error(1)
}

// --- Test Suite ---
type BillingServiceTestSuite struct {
	suite.Suite
	mockBillingRepo *MockBillingRepository
	service         portssvc.BillingSvcFacade
	agencyID        string
	userID          string
}

func (suite *BillingServiceTestSuite) SetupTest() {
	suite.mockBillingRepo = new(MockBillingRepository)
	suite.agencyID = uuid.NewString()
	suite.userID = uuid.NewString()
	cfg := &config.Config{
		JWTSecret:             "test-secret",
		DeleteConfirmationTTL: 5 * time.Minute,
		PlatformAdminUserIDs:  []string{suite.userID},
	}
	suite.service = services.NewBillingService(suite.mockBillingRepo, allowAll(), cfg)
}

func plan(price int64) *domain.SubscriptionPlan {
	return &domain.SubscriptionPlan{
		PlanID:       uuid.NewString(),
		Code:         "PLAN-" + uuid.NewString()[:8],
		Name:         "Plan",
		MonthlyPrice: decimal.NewFromInt(price),
		Currency:     domain.USD,
		IsActive:     true,
	}
}

// midPeriodSubscription builds an active subscription whose 30-day billing
// period has exactly 15 days left as of today.
func (suite *BillingServiceTestSuite) midPeriodSubscription(planID string) *domain.Subscription {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return &domain.Subscription{
		SubscriptionID:     uuid.NewString(),
		AgencyID:           suite.agencyID,
		PlanID:             planID,
		Status:             domain.SubscriptionActive,
		CurrentPeriodStart: today.AddDate(0, 0, -15),
		CurrentPeriodEnd:   today.AddDate(0, 0, 15),
	}
}

// --- Test Cases ---

func (suite *BillingServiceTestSuite) TestPreviewPlanChange_UpgradeChargedProRata() {
	ctx := context.Background()
	currentPlan := plan(30)
	newPlan := plan(60)
	sub := suite.midPeriodSubscription(currentPlan.PlanID)

	suite.mockBillingRepo.On("FindSubscriptionByAgency", ctx, suite.agencyID).Return(sub, nil).Once()
	suite.mockBillingRepo.On("FindPlanByID", ctx, currentPlan.PlanID).Return(currentPlan, nil).Once()
	suite.mockBillingRepo.On("FindPlanByID", ctx, newPlan.PlanID).Return(newPlan, nil).Once()

	resp, err := suite.service.PreviewPlanChange(ctx, suite.agencyID, dto.PlanChangePreviewRequest{NewPlanID: newPlan.PlanID}, suite.userID)

	suite.Require().NoError(err)
	suite.True(resp.IsUpgrade)
	suite.Equal(30, resp.DaysInPeriod)
	suite.Equal(15, resp.DaysRemaining)
	// Half the period left: credit 15, new cost 30, charge the 15 difference.
	suite.True(resp.Credit.Equal(decimal.NewFromInt(15)), "got %s", resp.Credit)
	suite.True(resp.NewCost.Equal(decimal.NewFromInt(30)), "got %s", resp.NewCost)
	suite.True(resp.Charge.Equal(decimal.NewFromInt(15)), "got %s", resp.Charge)
	suite.False(resp.RequiresConfirmation)
	suite.Empty(resp.ConfirmationToken)
}

func (suite *BillingServiceTestSuite) TestPreviewPlanChange_DowngradeIssuesConfirmationToken() {
	ctx := context.Background()
	currentPlan := plan(60)
	newPlan := plan(30)
	sub := suite.midPeriodSubscription(currentPlan.PlanID)

	suite.mockBillingRepo.On("FindSubscriptionByAgency", ctx, suite.agencyID).Return(sub, nil).Once()
	suite.mockBillingRepo.On("FindPlanByID", ctx, currentPlan.PlanID).Return(currentPlan, nil).Once()
	suite.mockBillingRepo.On("FindPlanByID", ctx, newPlan.PlanID).Return(newPlan, nil).Once()

	resp, err := suite.service.PreviewPlanChange(ctx, suite.agencyID, dto.PlanChangePreviewRequest{NewPlanID: newPlan.PlanID}, suite.userID)

	suite.Require().NoError(err)
	suite.False(resp.IsUpgrade)
	suite.True(resp.Charge.IsZero())
	suite.True(resp.RequiresConfirmation)
	suite.NotEmpty(resp.ConfirmationToken)
}

func (suite *BillingServiceTestSuite) TestPreviewPlanChange_SamePlanRejected() {
	ctx := context.Background()
	currentPlan := plan(30)
	sub := suite.midPeriodSubscription(currentPlan.PlanID)

	suite.mockBillingRepo.On("FindSubscriptionByAgency", ctx, suite.agencyID).Return(sub, nil).Once()

	resp, err := suite.service.PreviewPlanChange(ctx, suite.agencyID, dto.PlanChangePreviewRequest{NewPlanID: currentPlan.PlanID}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(resp)
	suite.mockBillingRepo.AssertNotCalled(suite.T(), "FindPlanByID")
}

func (suite *BillingServiceTestSuite) TestChangePlan_UpgradeWritesChangeAndChargeEvents() {
	ctx := context.Background()
	currentPlan := plan(30)
	newPlan := plan(60)
	sub := suite.midPeriodSubscription(currentPlan.PlanID)

	suite.mockBillingRepo.On("FindSubscriptionByAgency", ctx, suite.agencyID).Return(sub, nil).Once()
	suite.mockBillingRepo.On("FindPlanByID", ctx, currentPlan.PlanID).Return(currentPlan, nil).Once()
	suite.mockBillingRepo.On("FindPlanByID", ctx, newPlan.PlanID).Return(newPlan, nil).Once()

	var savedEvents []domain.BillingEvent
	suite.mockBillingRepo.On("ChangePlan", ctx, mock.AnythingOfType("domain.Subscription"), mock.AnythingOfType("[]domain.BillingEvent")).
		Run(func(args mock.Arguments) {
			savedEvents = args.Get(2).([]domain.BillingEvent)
		}).Return(nil).Once()

	updated, err := suite.service.ChangePlan(ctx, suite.agencyID, dto.ChangePlanRequest{NewPlanID: newPlan.PlanID}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(newPlan.PlanID, updated.PlanID)
	suite.Require().Len(savedEvents, 2)
	suite.Equal(domain.EventPlanUpgrade, savedEvents[0].EventType)
	suite.Equal(domain.EventProratedCharge, savedEvents[1].EventType)
	suite.Require().NotNil(savedEvents[1].Amount)
	suite.True(savedEvents[1].Amount.Equal(decimal.NewFromInt(15)), "got %s", savedEvents[1].Amount)
}

func (suite *BillingServiceTestSuite) TestChangePlan_DowngradeWithoutTokenRejected() {
	ctx := context.Background()
	currentPlan := plan(60)
	newPlan := plan(30)
	sub := suite.midPeriodSubscription(currentPlan.PlanID)

	suite.mockBillingRepo.On("FindSubscriptionByAgency", ctx, suite.agencyID).Return(sub, nil).Once()
	suite.mockBillingRepo.On("FindPlanByID", ctx, currentPlan.PlanID).Return(currentPlan, nil).Once()
	suite.mockBillingRepo.On("FindPlanByID", ctx, newPlan.PlanID).Return(newPlan, nil).Once()

	updated, err := suite.service.ChangePlan(ctx, suite.agencyID, dto.ChangePlanRequest{NewPlanID: newPlan.PlanID}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(updated)
	suite.mockBillingRepo.AssertNotCalled(suite.T(), "ChangePlan")
}

func (suite *BillingServiceTestSuite) TestChangePlan_DowngradeWithPreviewTokenSucceeds() {
	ctx := context.Background()
	currentPlan := plan(60)
	newPlan := plan(30)
	sub := suite.midPeriodSubscription(currentPlan.PlanID)

	suite.mockBillingRepo.On("FindSubscriptionByAgency", ctx, suite.agencyID).Return(sub, nil).Twice()
	suite.mockBillingRepo.On("FindPlanByID", ctx, currentPlan.PlanID).Return(currentPlan, nil).Twice()
	suite.mockBillingRepo.On("FindPlanByID", ctx, newPlan.PlanID).Return(newPlan, nil).Twice()

	preview, err := suite.service.PreviewPlanChange(ctx, suite.agencyID, dto.PlanChangePreviewRequest{NewPlanID: newPlan.PlanID}, suite.userID)
	suite.Require().NoError(err)
	suite.Require().NotEmpty(preview.ConfirmationToken)

	var savedEvents []domain.BillingEvent
	suite.mockBillingRepo.On("ChangePlan", ctx, mock.AnythingOfType("domain.Subscription"), mock.AnythingOfType("[]domain.BillingEvent")).
		Run(func(args mock.Arguments) {
			savedEvents = args.Get(2).([]domain.BillingEvent)
		}).Return(nil).Once()

	updated, err := suite.service.ChangePlan(ctx, suite.agencyID, dto.ChangePlanRequest{
		NewPlanID:         newPlan.PlanID,
		ConfirmationToken: preview.ConfirmationToken,
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(newPlan.PlanID, updated.PlanID)
	suite.Require().Len(savedEvents, 1)
	suite.Equal(domain.EventPlanDowngrade, savedEvents[0].EventType)
	suite.Nil(savedEvents[0].Amount)
}

func (suite *BillingServiceTestSuite) TestChangePlan_InactiveSubscriptionRejected() {
	ctx := context.Background()
	sub := suite.midPeriodSubscription(uuid.NewString())
	sub.Status = domain.SubscriptionCancelled

	suite.mockBillingRepo.On("FindSubscriptionByAgency", ctx, suite.agencyID).Return(sub, nil).Once()

	_, err := suite.service.ChangePlan(ctx, suite.agencyID, dto.ChangePlanRequest{NewPlanID: uuid.NewString()}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BillingServiceTestSuite) TestCreatePlan_NonPlatformAdminForbidden() {
	ctx := context.Background()
	req := dto.CreatePlanRequest{
		Code:         "PRO",
		Name:         "Pro",
		MonthlyPrice: decimal.NewFromInt(60),
		Currency:     domain.USD,
	}

	created, err := suite.service.CreatePlan(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(created)
	suite.mockBillingRepo.AssertNotCalled(suite.T(), "SavePlan")
}

func (suite *BillingServiceTestSuite) TestCreatePlan_NegativePriceRejected() {
	ctx := context.Background()
	req := dto.CreatePlanRequest{
		Code:         "PRO",
		Name:         "Pro",
		MonthlyPrice: decimal.NewFromInt(-10),
		Currency:     domain.USD,
	}

	created, err := suite.service.CreatePlan(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(created)
	suite.mockBillingRepo.AssertNotCalled(suite.T(), "SavePlan")
}

func TestBillingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BillingServiceTestSuite))
}
