package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"hauntedadmin/internal/identity"
	"hauntedadmin/internal/models"
	"hauntedadmin/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrAdminNotFound = errors.New("admin account not found")

type InviteAdminRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AdminProfile is the local account enriched with live state from the
// identity provider.
type AdminProfile struct {
	*models.AdminAccount
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time `json:"last_sign_in_at,omitempty"`
}

type AdminService interface {
	// Invite creates the account at the identity provider, which sends
	// the invitation email, and records the linked local account.
	Invite(ctx context.Context, req *InviteAdminRequest) (*models.AdminAccount, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.AdminAccount, error)
	// Describe merges the local account with provider introspection data.
	Describe(ctx context.Context, id uuid.UUID) (*AdminProfile, error)
	Disable(ctx context.Context, id uuid.UUID) error
	Enable(ctx context.Context, id uuid.UUID) error
	Remove(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.AdminAccount, error)
}

type adminService struct {
	adminRepo repositories.AdminRepository
	provider  identity.Provider
	auditSvc  AuditLogsService
}

func NewAdminService(adminRepo repositories.AdminRepository, provider identity.Provider, auditSvc AuditLogsService) AdminService {
	return &adminService{
		adminRepo: adminRepo,
		provider:  provider,
		auditSvc:  auditSvc,
	}
}

func (s *adminService) Invite(ctx context.Context, req *InviteAdminRequest) (*models.AdminAccount, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("a valid email is required")
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = "admin"
	}

	if _, err := s.adminRepo.GetByEmail(ctx, email); err == nil {
		return nil, errors.New("an admin with this email already exists")
	}

	providerUser, err := s.provider.InviteByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to invite admin: %w", err)
	}

	admin := &models.AdminAccount{
		ID:             uuid.New(),
		Email:          email,
		Role:           role,
		Status:         models.AdminStatusInvited,
		ProviderUserID: providerUser.ID,
	}

	if err := s.adminRepo.Create(ctx, admin); err != nil {
		// Roll back the provider account so the email can be re-invited.
		if delErr := s.provider.DeleteUser(ctx, providerUser.ID); delErr != nil {
			log.Printf("WARN: failed to clean up provider user %s after create failure: %v", providerUser.ID, delErr)
		}
		return nil, fmt.Errorf("failed to create admin account: %w", err)
	}

	s.logActivity(ctx, admin.ID, models.ActionInsert, nil, adminValues(admin))
	return admin, nil
}

func (s *adminService) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminAccount, error) {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}

func (s *adminService) Describe(ctx context.Context, id uuid.UUID) (*AdminProfile, error) {
	admin, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := &AdminProfile{AdminAccount: admin}
	user, err := s.provider.GetUser(ctx, admin.ProviderUserID)
	if err != nil {
		// The local record is still useful when the provider is down.
		log.Printf("WARN: provider lookup failed for admin %s: %v", admin.ID, err)
		return profile, nil
	}
	profile.EmailConfirmedAt = user.EmailConfirmedAt
	profile.LastSignInAt = user.LastSignInAt
	return profile, nil
}

func (s *adminService) Disable(ctx context.Context, id uuid.UUID) error {
	return s.setStatus(ctx, id, models.AdminStatusDisabled)
}

func (s *adminService) Enable(ctx context.Context, id uuid.UUID) error {
	return s.setStatus(ctx, id, models.AdminStatusActive)
}

func (s *adminService) setStatus(ctx context.Context, id uuid.UUID, status string) error {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAdminNotFound
		}
		return err
	}
	if admin.Status == status {
		return nil
	}

	// The last active admin cannot be disabled.
	if status == models.AdminStatusDisabled && admin.Status == models.AdminStatusActive {
		if err := s.requireAnotherActive(ctx, "cannot disable the last active admin"); err != nil {
			return err
		}
	}

	oldValues := adminValues(admin)
	if err := s.adminRepo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to update admin status: %w", err)
	}
	admin.Status = status

	s.logActivity(ctx, id, models.ActionUpdate, oldValues, adminValues(admin))
	return nil
}

func (s *adminService) Remove(ctx context.Context, id uuid.UUID) error {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAdminNotFound
		}
		return err
	}

	// Removing the last active admin would lock everyone out, same as
	// disabling it.
	if admin.Status == models.AdminStatusActive {
		if err := s.requireAnotherActive(ctx, "cannot remove the last active admin"); err != nil {
			return err
		}
	}

	if err := s.provider.DeleteUser(ctx, admin.ProviderUserID); err != nil && !identity.IsNotFound(err) {
		return fmt.Errorf("failed to remove provider account: %w", err)
	}

	if err := s.adminRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to remove admin account: %w", err)
	}

	s.logActivity(ctx, id, models.ActionDelete, adminValues(admin), nil)
	return nil
}

// requireAnotherActive fails with msg unless at least two admins are
// currently active.
func (s *adminService) requireAnotherActive(ctx context.Context, msg string) error {
	admins, err := s.adminRepo.List(ctx, 1000, 0)
	if err != nil {
		return err
	}
	activeCount := 0
	for _, a := range admins {
		if a.Status == models.AdminStatusActive {
			activeCount++
		}
	}
	if activeCount <= 1 {
		return errors.New(msg)
	}
	return nil
}

func (s *adminService) List(ctx context.Context, limit, offset int) ([]*models.AdminAccount, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.adminRepo.List(ctx, limit, offset)
}

func (s *adminService) logActivity(ctx context.Context, id uuid.UUID, action string, oldValues, newValues models.JSONB) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.LogActivity(ctx, "admin_accounts", id.String(), action, changedByFromContext(ctx), oldValues, newValues); err != nil {
		log.Printf("WARN: failed to write audit log for admin %s: %v", id, err)
	}
}

func adminValues(admin *models.AdminAccount) models.JSONB {
	return models.JSONB{
		"email":  admin.Email,
		"role":   admin.Role,
		"status": admin.Status,
	}
}
