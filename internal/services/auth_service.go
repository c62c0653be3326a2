package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"hauntedadmin/internal/caching"
	"hauntedadmin/internal/identity"
	"hauntedadmin/internal/models"
	"hauntedadmin/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAdminDisabled      = errors.New("admin account is disabled")
	ErrTooManyAttempts    = errors.New("too many sign-in attempts, try again later")
	ErrSessionExpired     = errors.New("session expired, sign in again")
)

// SignInResult is what a successful login returns: the provider-issued
// access token plus the local admin account it maps to.
type SignInResult struct {
	AccessToken  string               `json:"access_token"`
	TokenType    string               `json:"token_type"`
	ExpiresIn    int64                `json:"expires_in"`
	RefreshToken string               `json:"refresh_token,omitempty"`
	Admin        *models.AdminAccount `json:"admin"`
}

type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	SignOut(ctx context.Context, adminID uuid.UUID) error
	ChangePassword(ctx context.Context, adminID uuid.UUID, newPassword string) error
	// ResolveAdmin maps a verified provider user ID from a session token
	// to the local admin account, rejecting disabled accounts.
	ResolveAdmin(ctx context.Context, providerUserID string) (*models.AdminAccount, error)
}

type authService struct {
	adminRepo  repositories.AdminRepository
	provider   identity.Provider
	cacheSvc   caching.CacheService
	sessionTTL time.Duration
}

func NewAuthService(adminRepo repositories.AdminRepository, provider identity.Provider, cacheSvc caching.CacheService, sessionTTL time.Duration) AuthService {
	return &authService{
		adminRepo:  adminRepo,
		provider:   provider,
		cacheSvc:   cacheSvc,
		sessionTTL: sessionTTL,
	}
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	// Throttle per email to slow credential stuffing.
	limited, err := s.cacheSvc.IsRateLimited(ctx, "signin:"+email, 10, time.Minute)
	if err != nil {
		log.Printf("WARN: rate limit check failed for %s: %v", email, err)
	} else if limited {
		return nil, ErrTooManyAttempts
	}

	providerResp, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		if identity.IsUnauthorized(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("sign-in failed: %w", err)
	}

	admin, err := s.adminRepo.GetByProviderUserID(ctx, providerResp.User.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The provider knows this user but we have no admin record.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if admin.Status == models.AdminStatusDisabled {
		return nil, ErrAdminDisabled
	}

	// First successful sign-in completes an invitation.
	if admin.Status == models.AdminStatusInvited {
		if err := s.adminRepo.UpdateStatus(ctx, admin.ID, models.AdminStatusActive); err != nil {
			log.Printf("WARN: failed to activate invited admin %s: %v", admin.ID, err)
		} else {
			admin.Status = models.AdminStatusActive
		}
	}

	if err := s.adminRepo.TouchLastSeen(ctx, admin.ID); err != nil {
		log.Printf("WARN: failed to update last_seen_at for admin %s: %v", admin.ID, err)
	}
	if err := s.cacheSvc.SetSession(ctx, admin.ID.String(), providerResp.User.ID, s.sessionTTL); err != nil {
		log.Printf("WARN: failed to record session for admin %s: %v", admin.ID, err)
	}

	return &SignInResult{
		AccessToken:  providerResp.AccessToken,
		TokenType:    providerResp.TokenType,
		ExpiresIn:    providerResp.ExpiresIn,
		RefreshToken: providerResp.RefreshToken,
		Admin:        admin,
	}, nil
}

func (s *authService) SignOut(ctx context.Context, adminID uuid.UUID) error {
	return s.cacheSvc.DeleteSession(ctx, adminID.String())
}

func (s *authService) ChangePassword(ctx context.Context, adminID uuid.UUID, newPassword string) error {
	if len(newPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAdminNotFound
		}
		return err
	}

	if err := s.provider.UpdatePassword(ctx, admin.ProviderUserID, newPassword); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

func (s *authService) ResolveAdmin(ctx context.Context, providerUserID string) (*models.AdminAccount, error) {
	admin, err := s.adminRepo.GetByProviderUserID(ctx, providerUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	if admin.Status == models.AdminStatusDisabled {
		return nil, ErrAdminDisabled
	}

	// Signing out deletes the session record, which revokes any tokens
	// still in the wild. A cache outage fails open so Redis downtime does
	// not lock every admin out.
	session, err := s.cacheSvc.GetSession(ctx, admin.ID.String())
	if err != nil {
		log.Printf("WARN: session lookup failed for admin %s: %v", admin.ID, err)
	} else if session == "" {
		return nil, ErrSessionExpired
	}

	return admin, nil
}
