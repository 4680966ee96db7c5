package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"visionm/internal/models"
	"visionm/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProjectService interface {
	Create(ctx context.Context, companyID, createdBy uuid.UUID, name string, description *string) (*models.Project, error)
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Project, error)
}

type projectService struct {
	projectRepo repositories.ProjectRepository
}

func NewProjectService(projectRepo repositories.ProjectRepository) ProjectService {
	return &projectService{projectRepo: projectRepo}
}

func (s *projectService) Create(ctx context.Context, companyID, createdBy uuid.UUID, name string, description *string) (*models.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("project name is required")
	}

	project := &models.Project{
		ID:          uuid.New(),
		CompanyID:   companyID,
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedBy:   createdBy,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *projectService) Update(ctx context.Context, project *models.Project) error {
	if strings.TrimSpace(project.Name) == "" {
		return errors.New("project name is required")
	}
	return s.projectRepo.Update(ctx, project)
}

func (s *projectService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return s.projectRepo.Delete(ctx, companyID, id)
}

func (s *projectService) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Project, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	projects, err := s.projectRepo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}
