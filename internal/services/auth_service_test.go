package services

import (
	"context"
	"testing"
	"time"

	"hauntedadmin/internal/identity"
	"hauntedadmin/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	adminRepo *MockAdminRepository
	provider  *MockIdentityProvider
	cacheSvc  *MockCacheService
	service   AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.adminRepo = &MockAdminRepository{}
	suite.provider = &MockIdentityProvider{}
	suite.cacheSvc = &MockCacheService{}
	suite.service = NewAuthService(suite.adminRepo, suite.provider, suite.cacheSvc, 24*time.Hour)

	suite.adminRepo.Test(suite.T())
	suite.provider.Test(suite.T())
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.adminRepo.AssertExpectations(suite.T())
	suite.provider.AssertExpectations(suite.T())
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) signInResponse(providerUserID string) *identity.SignInResponse {
	return &identity.SignInResponse{
		AccessToken: "token-abc",
		TokenType:   "bearer",
		ExpiresIn:   3600,
		User:        identity.User{ID: providerUserID, Email: "admin@hauntedfam.com"},
	}
}

func (suite *AuthServiceTestSuite) TestSignIn_Success() {
	ctx := context.Background()
	providerUserID := uuid.NewString()
	admin := &models.AdminAccount{
		ID:             uuid.New(),
		Email:          "admin@hauntedfam.com",
		Role:           "owner",
		Status:         models.AdminStatusActive,
		ProviderUserID: providerUserID,
	}

	suite.cacheSvc.On("IsRateLimited", ctx, "signin:admin@hauntedfam.com", 10, time.Minute).Return(false, nil)
	suite.provider.On("SignInWithPassword", ctx, "admin@hauntedfam.com", "secret123").Return(suite.signInResponse(providerUserID), nil)
	suite.adminRepo.On("GetByProviderUserID", ctx, providerUserID).Return(admin, nil)
	suite.adminRepo.On("TouchLastSeen", ctx, admin.ID).Return(nil)
	suite.cacheSvc.On("SetSession", ctx, admin.ID.String(), providerUserID, 24*time.Hour).Return(nil)

	result, err := suite.service.SignIn(ctx, "Admin@HauntedFam.com", "secret123")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "token-abc", result.AccessToken)
	assert.Equal(suite.T(), admin.ID, result.Admin.ID)
}

func (suite *AuthServiceTestSuite) TestSignIn_InvitedAdminBecomesActive() {
	ctx := context.Background()
	providerUserID := uuid.NewString()
	admin := &models.AdminAccount{
		ID:             uuid.New(),
		Email:          "new@hauntedfam.com",
		Role:           "admin",
		Status:         models.AdminStatusInvited,
		ProviderUserID: providerUserID,
	}

	suite.cacheSvc.On("IsRateLimited", ctx, mock.AnythingOfType("string"), 10, time.Minute).Return(false, nil)
	suite.provider.On("SignInWithPassword", ctx, "new@hauntedfam.com", "secret123").Return(suite.signInResponse(providerUserID), nil)
	suite.adminRepo.On("GetByProviderUserID", ctx, providerUserID).Return(admin, nil)
	suite.adminRepo.On("UpdateStatus", ctx, admin.ID, models.AdminStatusActive).Return(nil)
	suite.adminRepo.On("TouchLastSeen", ctx, admin.ID).Return(nil)
	suite.cacheSvc.On("SetSession", ctx, admin.ID.String(), providerUserID, 24*time.Hour).Return(nil)

	result, err := suite.service.SignIn(ctx, "new@hauntedfam.com", "secret123")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.AdminStatusActive, result.Admin.Status)
}

func (suite *AuthServiceTestSuite) TestSignIn_DisabledAdminRejected() {
	ctx := context.Background()
	providerUserID := uuid.NewString()
	admin := &models.AdminAccount{
		ID:             uuid.New(),
		Email:          "gone@hauntedfam.com",
		Status:         models.AdminStatusDisabled,
		ProviderUserID: providerUserID,
	}

	suite.cacheSvc.On("IsRateLimited", ctx, mock.AnythingOfType("string"), 10, time.Minute).Return(false, nil)
	suite.provider.On("SignInWithPassword", ctx, "gone@hauntedfam.com", "secret123").Return(suite.signInResponse(providerUserID), nil)
	suite.adminRepo.On("GetByProviderUserID", ctx, providerUserID).Return(admin, nil)

	result, err := suite.service.SignIn(ctx, "gone@hauntedfam.com", "secret123")
	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, ErrAdminDisabled)
}

func (suite *AuthServiceTestSuite) TestSignIn_BadCredentials() {
	ctx := context.Background()

	suite.cacheSvc.On("IsRateLimited", ctx, mock.AnythingOfType("string"), 10, time.Minute).Return(false, nil)
	suite.provider.On("SignInWithPassword", ctx, "admin@hauntedfam.com", "wrong").
		Return(nil, &identity.Error{StatusCode: 400, Message: "invalid grant"})

	result, err := suite.service.SignIn(ctx, "admin@hauntedfam.com", "wrong")
	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestSignIn_UnknownProviderUser() {
	ctx := context.Background()
	providerUserID := uuid.NewString()

	suite.cacheSvc.On("IsRateLimited", ctx, mock.AnythingOfType("string"), 10, time.Minute).Return(false, nil)
	suite.provider.On("SignInWithPassword", ctx, "stranger@hauntedfam.com", "secret123").Return(suite.signInResponse(providerUserID), nil)
	suite.adminRepo.On("GetByProviderUserID", ctx, providerUserID).Return(nil, pgx.ErrNoRows)

	result, err := suite.service.SignIn(ctx, "stranger@hauntedfam.com", "secret123")
	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestSignIn_RateLimited() {
	ctx := context.Background()

	suite.cacheSvc.On("IsRateLimited", ctx, "signin:spam@hauntedfam.com", 10, time.Minute).Return(true, nil)

	result, err := suite.service.SignIn(ctx, "spam@hauntedfam.com", "secret123")
	assert.Nil(suite.T(), result)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "too many sign-in attempts")
	suite.provider.AssertNotCalled(suite.T(), "SignInWithPassword")
}

func (suite *AuthServiceTestSuite) TestChangePassword_TooShort() {
	ctx := context.Background()

	err := suite.service.ChangePassword(ctx, uuid.New(), "short")
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "at least 8 characters")
}

func (suite *AuthServiceTestSuite) TestResolveAdmin_Success() {
	ctx := context.Background()
	providerUserID := uuid.NewString()
	admin := &models.AdminAccount{
		ID:             uuid.New(),
		Email:          "admin@hauntedfam.com",
		Status:         models.AdminStatusActive,
		ProviderUserID: providerUserID,
	}

	suite.adminRepo.On("GetByProviderUserID", ctx, providerUserID).Return(admin, nil)
	suite.cacheSvc.On("GetSession", ctx, admin.ID.String()).Return(providerUserID, nil)

	resolved, err := suite.service.ResolveAdmin(ctx, providerUserID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), admin.ID, resolved.ID)
}

func (suite *AuthServiceTestSuite) TestResolveAdmin_SignedOutSessionRejected() {
	ctx := context.Background()
	providerUserID := uuid.NewString()
	admin := &models.AdminAccount{
		ID:             uuid.New(),
		Email:          "admin@hauntedfam.com",
		Status:         models.AdminStatusActive,
		ProviderUserID: providerUserID,
	}

	// Sign-out deleted the session record, so the token is no longer good.
	suite.adminRepo.On("GetByProviderUserID", ctx, providerUserID).Return(admin, nil)
	suite.cacheSvc.On("GetSession", ctx, admin.ID.String()).Return("", nil)

	resolved, err := suite.service.ResolveAdmin(ctx, providerUserID)
	assert.Nil(suite.T(), resolved)
	assert.ErrorIs(suite.T(), err, ErrSessionExpired)
}

func (suite *AuthServiceTestSuite) TestResolveAdmin_CacheOutageFailsOpen() {
	ctx := context.Background()
	providerUserID := uuid.NewString()
	admin := &models.AdminAccount{
		ID:             uuid.New(),
		Email:          "admin@hauntedfam.com",
		Status:         models.AdminStatusActive,
		ProviderUserID: providerUserID,
	}

	suite.adminRepo.On("GetByProviderUserID", ctx, providerUserID).Return(admin, nil)
	suite.cacheSvc.On("GetSession", ctx, admin.ID.String()).Return("", assert.AnError)

	resolved, err := suite.service.ResolveAdmin(ctx, providerUserID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), admin.ID, resolved.ID)
}

func (suite *AuthServiceTestSuite) TestResolveAdmin_Disabled() {
	ctx := context.Background()
	providerUserID := uuid.NewString()
	admin := &models.AdminAccount{
		ID:             uuid.New(),
		Status:         models.AdminStatusDisabled,
		ProviderUserID: providerUserID,
	}

	suite.adminRepo.On("GetByProviderUserID", ctx, providerUserID).Return(admin, nil)

	resolved, err := suite.service.ResolveAdmin(ctx, providerUserID)
	assert.Nil(suite.T(), resolved)
	assert.ErrorIs(suite.T(), err, ErrAdminDisabled)
}
