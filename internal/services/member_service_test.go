package services

import (
	"context"
	"testing"
	"time"

	"hauntedadmin/internal/lifecycle"
	"hauntedadmin/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MemberServiceTestSuite struct {
	suite.Suite
	memberRepo *MockMemberRepository
	planRepo   *MockPlanRepository
	cacheSvc   *MockCacheService
	auditSvc   *MockAuditLogsService
	service    MemberService
}

func (suite *MemberServiceTestSuite) SetupTest() {
	suite.memberRepo = &MockMemberRepository{}
	suite.planRepo = &MockPlanRepository{}
	suite.cacheSvc = &MockCacheService{}
	suite.auditSvc = &MockAuditLogsService{}
	suite.service = NewMemberService(suite.memberRepo, suite.planRepo, suite.cacheSvc, suite.auditSvc)

	suite.memberRepo.Test(suite.T())
	suite.planRepo.Test(suite.T())
}

func (suite *MemberServiceTestSuite) TearDownTest() {
	suite.memberRepo.AssertExpectations(suite.T())
	suite.planRepo.AssertExpectations(suite.T())
}

func TestMemberServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MemberServiceTestSuite))
}

func (suite *MemberServiceTestSuite) expectAuditLog() {
	suite.auditSvc.On("LogActivity", mock.Anything, "members", mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func strPtr(s string) *string { return &s }

func dayPtr(n int) *int { return &n }

func (suite *MemberServiceTestSuite) TestCreate_DerivesEndDateFromPlanDuration() {
	ctx := context.Background()
	planID := uuid.New()
	duration := 30
	plan := &models.Plan{
		ID:           planID,
		Name:         "Haunted",
		PriceCents:   13000,
		DurationDays: &duration,
		Active:       true,
	}

	suite.planRepo.On("GetByID", ctx, planID).Return(plan, nil)
	suite.expectAuditLog()
	suite.memberRepo.On("Create", ctx, mock.AnythingOfType("*models.Member")).Return(nil).Run(func(args mock.Arguments) {
		member := args.Get(1).(*models.Member)
		assert.Equal(suite.T(), "Haunted", member.PlanName)
		assert.False(suite.T(), member.Lifetime)
		assert.NotNil(suite.T(), member.EndDate)
		assert.Equal(suite.T(), "2024-12-01", member.EndDate.Format("2006-01-02"))
	})

	view, err := suite.service.Create(ctx, &CreateMemberRequest{
		Name:      "Vlad",
		Email:     "vlad@example.com",
		PlanID:    planID.String(),
		StartDate: strPtr("2024-11-01"),
	})
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), view)
	assert.Equal(suite.T(), "active", view.Status)
	assert.NotNil(suite.T(), view.FinalPriceCents)
	assert.Equal(suite.T(), int64(13000), *view.FinalPriceCents)
}

func (suite *MemberServiceTestSuite) TestCreate_LifetimePlanHasNoEndDate() {
	ctx := context.Background()
	planID := uuid.New()
	plan := &models.Plan{
		ID:         planID,
		Name:       "Forever Haunted",
		PriceCents: 66600,
		Active:     true,
	}

	suite.planRepo.On("GetByID", ctx, planID).Return(plan, nil)
	suite.expectAuditLog()
	suite.memberRepo.On("Create", ctx, mock.AnythingOfType("*models.Member")).Return(nil).Run(func(args mock.Arguments) {
		member := args.Get(1).(*models.Member)
		assert.True(suite.T(), member.Lifetime)
		assert.Nil(suite.T(), member.EndDate)
	})

	view, err := suite.service.Create(ctx, &CreateMemberRequest{
		Name:   "Morticia",
		Email:  "morticia@example.com",
		PlanID: planID.String(),
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Active", view.LifecycleStatus)
	assert.Equal(suite.T(), "∞", view.DaysLeft)
}

func (suite *MemberServiceTestSuite) TestCreate_PendingPaymentOverridesDates() {
	ctx := context.Background()
	planID := uuid.New()
	duration := 365
	plan := &models.Plan{
		ID:           planID,
		Name:         "Killore",
		PriceCents:   25000,
		DurationDays: &duration,
		Active:       true,
	}

	suite.planRepo.On("GetByID", ctx, planID).Return(plan, nil)
	suite.expectAuditLog()
	suite.memberRepo.On("Create", ctx, mock.AnythingOfType("*models.Member")).Return(nil)

	view, err := suite.service.Create(ctx, &CreateMemberRequest{
		Name:           "Gomez",
		Email:          "gomez@example.com",
		PlanID:         planID.String(),
		StartDate:      strPtr("2024-11-01"),
		PendingPayment: true,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusPending, view.Status)
	assert.Equal(suite.T(), "Pending payment", view.LifecycleStatus)
	assert.Equal(suite.T(), "", view.DaysLeft)
}

func (suite *MemberServiceTestSuite) TestCreate_InactivePlanRejected() {
	ctx := context.Background()
	planID := uuid.New()
	plan := &models.Plan{ID: planID, Name: "Retired", PriceCents: 100, Active: false}

	suite.planRepo.On("GetByID", ctx, planID).Return(plan, nil)

	view, err := suite.service.Create(ctx, &CreateMemberRequest{
		Name:   "Fester",
		Email:  "fester@example.com",
		PlanID: planID.String(),
	})
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), view)
	assert.Contains(suite.T(), err.Error(), "not active")
}

func (suite *MemberServiceTestSuite) TestCreate_InvalidDiscountRejected() {
	ctx := context.Background()

	view, err := suite.service.Create(ctx, &CreateMemberRequest{
		Name:            "Wednesday",
		Email:           "wednesday@example.com",
		PlanID:          uuid.New().String(),
		DiscountPercent: 150,
	})
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), view)
	assert.Contains(suite.T(), err.Error(), "discount_percent")
}

func (suite *MemberServiceTestSuite) TestGetByID_CacheHitSkipsRepository() {
	ctx := context.Background()
	memberID := uuid.New()
	cached := &models.Member{
		ID:       memberID,
		Name:     "Lurch",
		Email:    "lurch@example.com",
		PlanName: "Haunted",
		Lifetime: true,
		Status:   "active",
	}

	suite.cacheSvc.On("GetMember", ctx, memberID).Return(cached, nil)

	view, err := suite.service.GetByID(ctx, memberID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Lurch", view.Name)
	assert.Equal(suite.T(), "Active", view.LifecycleStatus)
	suite.memberRepo.AssertNotCalled(suite.T(), "GetByID")
}

func (suite *MemberServiceTestSuite) TestExtend_AnchorsOnFutureEndDate() {
	ctx := context.Background()
	memberID := uuid.New()
	currentEnd := lifecycle.DateOnly(time.Now()).AddDate(0, 0, 10)
	member := &models.Member{
		ID:       memberID,
		Name:     "Vlad",
		Email:    "vlad@example.com",
		PlanName: "Haunted",
		EndDate:  &currentEnd,
		Status:   "active",
	}

	suite.memberRepo.On("GetByID", ctx, memberID).Return(member, nil)
	suite.expectAuditLog()
	suite.cacheSvc.On("DeleteMember", ctx, memberID).Return(nil)
	suite.memberRepo.On("Update", ctx, mock.AnythingOfType("*models.Member")).Return(nil)

	view, err := suite.service.Extend(ctx, memberID, &ExtendMemberRequest{Days: dayPtr(30)})
	assert.NoError(suite.T(), err)

	expected := currentEnd.AddDate(0, 0, 30)
	assert.Equal(suite.T(), expected, *view.EndDate)
}

func (suite *MemberServiceTestSuite) TestExtend_ExpiredMemberAnchorsToday() {
	ctx := context.Background()
	memberID := uuid.New()
	pastEnd := lifecycle.DateOnly(time.Now()).AddDate(0, 0, -12)
	member := &models.Member{
		ID:       memberID,
		Name:     "Gomez",
		Email:    "gomez@example.com",
		PlanName: "Killore",
		EndDate:  &pastEnd,
		Status:   "active",
	}

	suite.memberRepo.On("GetByID", ctx, memberID).Return(member, nil)
	suite.expectAuditLog()
	suite.cacheSvc.On("DeleteMember", ctx, memberID).Return(nil)
	suite.memberRepo.On("Update", ctx, mock.AnythingOfType("*models.Member")).Return(nil)

	view, err := suite.service.Extend(ctx, memberID, &ExtendMemberRequest{Days: dayPtr(90)})
	assert.NoError(suite.T(), err)

	// The lapsed stretch is not backfilled; the new period starts today.
	expected := lifecycle.DateOnly(time.Now()).AddDate(0, 0, 90)
	assert.Equal(suite.T(), expected, *view.EndDate)
}

func (suite *MemberServiceTestSuite) TestExtend_PendingMemberBecomesActive() {
	ctx := context.Background()
	memberID := uuid.New()
	end := lifecycle.DateOnly(time.Now()).AddDate(0, 0, 5)
	member := &models.Member{
		ID:       memberID,
		Name:     "Fester",
		Email:    "fester@example.com",
		PlanName: "Haunted",
		EndDate:  &end,
		Status:   models.StatusPending,
	}

	suite.memberRepo.On("GetByID", ctx, memberID).Return(member, nil)
	suite.expectAuditLog()
	suite.cacheSvc.On("DeleteMember", ctx, memberID).Return(nil)
	suite.memberRepo.On("Update", ctx, mock.AnythingOfType("*models.Member")).Return(nil).Run(func(args mock.Arguments) {
		updated := args.Get(1).(*models.Member)
		assert.Equal(suite.T(), "active", updated.Status)
	})

	view, err := suite.service.Extend(ctx, memberID, &ExtendMemberRequest{Days: dayPtr(30)})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "active", view.Status)
}

func (suite *MemberServiceTestSuite) TestExtend_RejectsDaysAndDateTogether() {
	ctx := context.Background()
	memberID := uuid.New()
	end := lifecycle.DateOnly(time.Now()).AddDate(0, 0, 5)
	member := &models.Member{
		ID:      memberID,
		Name:    "Vlad",
		Email:   "vlad@example.com",
		EndDate: &end,
		Status:  "active",
	}

	suite.memberRepo.On("GetByID", ctx, memberID).Return(member, nil)

	view, err := suite.service.Extend(ctx, memberID, &ExtendMemberRequest{
		Days:       dayPtr(30),
		NewEndDate: strPtr("2025-06-01"),
	})
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), view)
	assert.ErrorIs(suite.T(), err, lifecycle.ErrInvalidInput)
}

func (suite *MemberServiceTestSuite) TestUpdate_StartDateChangeRecomputesEndDate() {
	ctx := context.Background()
	memberID := uuid.New()
	oldStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	oldEnd := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	member := &models.Member{
		ID:        memberID,
		Name:      "Vlad",
		Email:     "vlad@example.com",
		PlanName:  "Haunted",
		StartDate: &oldStart,
		EndDate:   &oldEnd,
		Status:    "active",
	}
	duration := 30
	plan := &models.Plan{Name: "Haunted", PriceCents: 13000, DurationDays: &duration, Active: true}

	suite.memberRepo.On("GetByID", ctx, memberID).Return(member, nil)
	suite.planRepo.On("GetByName", ctx, "Haunted").Return(plan, nil)
	suite.expectAuditLog()
	suite.cacheSvc.On("DeleteMember", ctx, memberID).Return(nil)
	suite.memberRepo.On("Update", ctx, mock.AnythingOfType("*models.Member")).Return(nil)

	view, err := suite.service.Update(ctx, memberID, &UpdateMemberRequest{
		StartDate: strPtr("2024-03-01"),
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "2024-03-31", view.EndDate.Format("2006-01-02"))
}

func (suite *MemberServiceTestSuite) TestHardDelete_RequiresSoftDeleteFirst() {
	ctx := context.Background()
	memberID := uuid.New()
	member := &models.Member{
		ID:     memberID,
		Name:   "Vlad",
		Email:  "vlad@example.com",
		Status: "active",
	}

	suite.memberRepo.On("GetByID", ctx, memberID).Return(member, nil)

	err := suite.service.HardDelete(ctx, memberID)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "soft-deleted")
	suite.memberRepo.AssertNotCalled(suite.T(), "HardDelete")
}

func (suite *MemberServiceTestSuite) TestRestore_NotDeletedRejected() {
	ctx := context.Background()
	memberID := uuid.New()
	member := &models.Member{
		ID:     memberID,
		Name:   "Vlad",
		Email:  "vlad@example.com",
		Status: "active",
	}

	suite.memberRepo.On("GetByID", ctx, memberID).Return(member, nil)

	view, err := suite.service.Restore(ctx, memberID)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), view)
	assert.Contains(suite.T(), err.Error(), "not deleted")
}
