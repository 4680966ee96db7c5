package repositories

import (
	"context"
	"fmt"

	"visionm/internal/models"

	"github.com/google/uuid"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Project, error)
	CountByCompany(ctx context.Context, companyID uuid.UUID) (int, error)
}

type projectRepo struct {
	db Database
}

func NewProjectRepo(db Database) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (id, company_id, name, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, project.ID, project.CompanyID, project.Name, project.Description, project.CreatedBy)
	return err
}

func (r *projectRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Project, error) {
	project := &models.Project{}
	query := `
		SELECT id, company_id, name, description, created_by, created_at, updated_at
		FROM projects
		WHERE company_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, companyID, id).Scan(&project.ID, &project.CompanyID, &project.Name, &project.Description, &project.CreatedBy, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (r *projectRepo) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET name = $1, description = $2, updated_at = NOW()
		WHERE company_id = $3 AND id = $4
	`
	tag, err := r.db.Exec(ctx, query, project.Name, project.Description, project.CompanyID, project.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s not found", project.ID)
	}
	return nil
}

func (r *projectRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	query := `DELETE FROM projects WHERE company_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, companyID, id)
	return err
}

func (r *projectRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Project, error) {
	query := `
		SELECT id, company_id, name, description, created_by, created_at, updated_at
		FROM projects
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project := &models.Project{}
		if err := rows.Scan(&project.ID, &project.CompanyID, &project.Name, &project.Description, &project.CreatedBy, &project.CreatedAt, &project.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (r *projectRepo) CountByCompany(ctx context.Context, companyID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM projects WHERE company_id = $1`
	if err := r.db.QueryRow(ctx, query, companyID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
