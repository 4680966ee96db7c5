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
	"golang.org/x/crypto/bcrypt"
)

// ProjectInviteService grants password-gated access to a single project. The
// shared password is bcrypt-hashed before it touches the store and is never
// included in the notification email.
type ProjectInviteService interface {
	Invite(ctx context.Context, companyID, projectID uuid.UUID, userEmail, projectPassword string, invitedBy uuid.UUID) (*models.ProjectUser, error)
	VerifyAccess(ctx context.Context, projectID uuid.UUID, userEmail, password string) (bool, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]*models.ProjectUser, error)
}

type projectInviteService struct {
	projectRepo     repositories.ProjectRepository
	projectUserRepo repositories.ProjectUserRepository
	notifier        Notifier
	baseURL         string
	bcryptCost      int
}

func NewProjectInviteService(projectRepo repositories.ProjectRepository, projectUserRepo repositories.ProjectUserRepository, notifier Notifier, baseURL string, bcryptCost int) ProjectInviteService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &projectInviteService{
		projectRepo:     projectRepo,
		projectUserRepo: projectUserRepo,
		notifier:        notifier,
		baseURL:         strings.TrimRight(baseURL, "/"),
		bcryptCost:      bcryptCost,
	}
}

// Invite stores the hashed credential, then sends the access email. Unlike
// the other flows the email failure is surfaced as a hard error: the email is
// the only channel telling the user the access record exists at all. The
// inserted row is kept so a retry of the same invite can be resolved by the
// operator instead of silently vanishing.
func (s *projectInviteService) Invite(ctx context.Context, companyID, projectID uuid.UUID, userEmail, projectPassword string, invitedBy uuid.UUID) (*models.ProjectUser, error) {
	userEmail = strings.TrimSpace(userEmail)
	if userEmail == "" {
		return nil, errors.New("user email is required")
	}
	if projectPassword == "" {
		return nil, errors.New("project password is required")
	}

	project, err := s.projectRepo.GetByID(ctx, companyID, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolve project: %w", err)
	}

	if existing, err := s.projectUserRepo.GetByProjectAndEmail(ctx, projectID, userEmail); err == nil && existing != nil {
		return nil, fmt.Errorf("user %s on project %s: %w", userEmail, project.Name, ErrDuplicateAccess)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(projectPassword), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash project password: %w", err)
	}

	projectUser := &models.ProjectUser{
		ID:             uuid.New(),
		ProjectID:      projectID,
		UserEmail:      userEmail,
		HashedPassword: string(hashed),
		InvitedBy:      invitedBy,
	}
	if err := s.projectUserRepo.Create(ctx, projectUser); err != nil {
		return nil, fmt.Errorf("create project user: %w", err)
	}

	accessLink := fmt.Sprintf("%s/projects/%s/access", s.baseURL, projectID)
	if sendErr := s.notifier.ProjectAccessGranted(ctx, userEmail, project.Name, accessLink); sendErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmailDeliveryFailed, sendErr)
	}

	return projectUser, nil
}

func (s *projectInviteService) VerifyAccess(ctx context.Context, projectID uuid.UUID, userEmail, password string) (bool, error) {
	projectUser, err := s.projectUserRepo.GetByProjectAndEmail(ctx, projectID, strings.TrimSpace(userEmail))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("resolve project user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(projectUser.HashedPassword), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *projectInviteService) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]*models.ProjectUser, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.projectUserRepo.ListByProject(ctx, projectID, limit, offset)
}
