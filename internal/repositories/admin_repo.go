package repositories

import (
	"context"

	"hauntedadmin/internal/models"

	"github.com/google/uuid"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *models.AdminAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AdminAccount, error)
	GetByEmail(ctx context.Context, email string) (*models.AdminAccount, error)
	GetByProviderUserID(ctx context.Context, providerUserID string) (*models.AdminAccount, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	TouchLastSeen(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.AdminAccount, error)
}

type adminRepo struct {
	db DB
}

func NewAdminRepo(db DB) AdminRepository {
	return &adminRepo{db: db}
}

const adminColumns = `id, email, role, status, provider_user_id, created_at, last_seen_at`

func scanAdmin(row interface{ Scan(dest ...any) error }) (*models.AdminAccount, error) {
	admin := &models.AdminAccount{}
	err := row.Scan(&admin.ID, &admin.Email, &admin.Role, &admin.Status, &admin.ProviderUserID, &admin.CreatedAt, &admin.LastSeenAt)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

func (r *adminRepo) Create(ctx context.Context, admin *models.AdminAccount) error {
	query := `
		INSERT INTO admin_accounts (id, email, role, status, provider_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, admin.ID, admin.Email, admin.Role, admin.Status, admin.ProviderUserID)
	return err
}

func (r *adminRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminAccount, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_accounts WHERE id = $1`
	return scanAdmin(r.db.QueryRow(ctx, query, id))
}

func (r *adminRepo) GetByEmail(ctx context.Context, email string) (*models.AdminAccount, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_accounts WHERE email = $1`
	return scanAdmin(r.db.QueryRow(ctx, query, email))
}

func (r *adminRepo) GetByProviderUserID(ctx context.Context, providerUserID string) (*models.AdminAccount, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_accounts WHERE provider_user_id = $1`
	return scanAdmin(r.db.QueryRow(ctx, query, providerUserID))
}

func (r *adminRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE admin_accounts SET status = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, status, id)
	return err
}

func (r *adminRepo) TouchLastSeen(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE admin_accounts SET last_seen_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *adminRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM admin_accounts WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *adminRepo) List(ctx context.Context, limit, offset int) ([]*models.AdminAccount, error) {
	query := `
		SELECT ` + adminColumns + `
		FROM admin_accounts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []*models.AdminAccount
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, admin)
	}
	return admins, rows.Err()
}
