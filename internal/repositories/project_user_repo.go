package repositories

import (
	"context"

	"visionm/internal/models"

	"github.com/google/uuid"
)

type ProjectUserRepository interface {
	Create(ctx context.Context, projectUser *models.ProjectUser) error
	GetByProjectAndEmail(ctx context.Context, projectID uuid.UUID, email string) (*models.ProjectUser, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]*models.ProjectUser, error)
	Delete(ctx context.Context, projectID, id uuid.UUID) error
}

type projectUserRepo struct {
	db Database
}

func NewProjectUserRepo(db Database) ProjectUserRepository {
	return &projectUserRepo{db: db}
}

func (r *projectUserRepo) Create(ctx context.Context, projectUser *models.ProjectUser) error {
	query := `
		INSERT INTO project_users (id, project_id, user_email, hashed_password, invited_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, projectUser.ID, projectUser.ProjectID, projectUser.UserEmail, projectUser.HashedPassword, projectUser.InvitedBy)
	return err
}

func (r *projectUserRepo) GetByProjectAndEmail(ctx context.Context, projectID uuid.UUID, email string) (*models.ProjectUser, error) {
	projectUser := &models.ProjectUser{}
	query := `
		SELECT id, project_id, user_email, hashed_password, invited_by, created_at
		FROM project_users
		WHERE project_id = $1 AND user_email = $2
	`
	err := r.db.QueryRow(ctx, query, projectID, email).Scan(&projectUser.ID, &projectUser.ProjectID, &projectUser.UserEmail, &projectUser.HashedPassword, &projectUser.InvitedBy, &projectUser.CreatedAt)
	if err != nil {
		return nil, err
	}
	return projectUser, nil
}

func (r *projectUserRepo) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]*models.ProjectUser, error) {
	query := `
		SELECT id, project_id, user_email, hashed_password, invited_by, created_at
		FROM project_users
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projectUsers []*models.ProjectUser
	for rows.Next() {
		projectUser := &models.ProjectUser{}
		if err := rows.Scan(&projectUser.ID, &projectUser.ProjectID, &projectUser.UserEmail, &projectUser.HashedPassword, &projectUser.InvitedBy, &projectUser.CreatedAt); err != nil {
			return nil, err
		}
		projectUsers = append(projectUsers, projectUser)
	}
	return projectUsers, rows.Err()
}

func (r *projectUserRepo) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	query := `DELETE FROM project_users WHERE project_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, projectID, id)
	return err
}
