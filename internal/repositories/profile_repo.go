package repositories

import (
	"context"
	"fmt"

	"visionm/internal/models"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdateMembership(ctx context.Context, id, companyID uuid.UUID, role string) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Profile, error)
}

type profileRepo struct {
	db Database
}

func NewProfileRepo(db Database) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, name, email, phone, company_id, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, profile.ID, profile.Name, profile.Email, profile.Phone, profile.CompanyID, profile.Role, profile.PasswordHash)
	return err
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, name, email, phone, company_id, role, password_hash, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&profile.ID, &profile.Name, &profile.Email, &profile.Phone, &profile.CompanyID, &profile.Role, &profile.PasswordHash, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, name, email, phone, company_id, role, password_hash, created_at, updated_at
		FROM profiles
		WHERE email = $1
	`
	err := r.db.QueryRow(ctx, query, email).Scan(&profile.ID, &profile.Name, &profile.Email, &profile.Phone, &profile.CompanyID, &profile.Role, &profile.PasswordHash, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *profileRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM profiles WHERE email = $1)`
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *profileRepo) Update(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles
		SET name = $1, phone = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, profile.Name, profile.Phone, profile.ID)
	return err
}

// UpdateMembership sets the profile's company and role in one statement.
func (r *profileRepo) UpdateMembership(ctx context.Context, id, companyID uuid.UUID, role string) error {
	query := `
		UPDATE profiles
		SET company_id = $1, role = $2, updated_at = NOW()
		WHERE id = $3
	`
	tag, err := r.db.Exec(ctx, query, companyID, role, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %s not found", id)
	}
	return nil
}

func (r *profileRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Profile, error) {
	query := `
		SELECT id, name, email, phone, company_id, role, password_hash, created_at, updated_at
		FROM profiles
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		profile := &models.Profile{}
		if err := rows.Scan(&profile.ID, &profile.Name, &profile.Email, &profile.Phone, &profile.CompanyID, &profile.Role, &profile.PasswordHash, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}
