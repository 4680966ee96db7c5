package repositories

import (
	"context"

	"visionm/internal/models"

	"github.com/google/uuid"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	GetByNameAndAdminEmail(ctx context.Context, name, adminEmail string) (*models.Company, error)
	List(ctx context.Context, limit, offset int) ([]*models.Company, error)
}

type companyRepo struct {
	db Database
}

func NewCompanyRepo(db Database) CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (id, name, admin_email, created_by, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, company.ID, company.Name, company.AdminEmail, company.CreatedBy)
	return err
}

func (r *companyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company := &models.Company{}
	query := `
		SELECT id, name, admin_email, created_by, created_at
		FROM companies
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&company.ID, &company.Name, &company.AdminEmail, &company.CreatedBy, &company.CreatedAt)
	if err != nil {
		return nil, err
	}
	return company, nil
}

// GetByNameAndAdminEmail resolves a company by the exact pair the approval
// workflow matches on.
func (r *companyRepo) GetByNameAndAdminEmail(ctx context.Context, name, adminEmail string) (*models.Company, error) {
	company := &models.Company{}
	query := `
		SELECT id, name, admin_email, created_by, created_at
		FROM companies
		WHERE name = $1 AND admin_email = $2
	`
	err := r.db.QueryRow(ctx, query, name, adminEmail).Scan(&company.ID, &company.Name, &company.AdminEmail, &company.CreatedBy, &company.CreatedAt)
	if err != nil {
		return nil, err
	}
	return company, nil
}

func (r *companyRepo) List(ctx context.Context, limit, offset int) ([]*models.Company, error) {
	query := `
		SELECT id, name, admin_email, created_by, created_at
		FROM companies
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		company := &models.Company{}
		if err := rows.Scan(&company.ID, &company.Name, &company.AdminEmail, &company.CreatedBy, &company.CreatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}
