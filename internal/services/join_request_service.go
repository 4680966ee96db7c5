package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"visionm/internal/caching"
	"visionm/internal/models"
	"visionm/internal/repositories"
	"visionm/pkg/mail"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateJoinRequestResult reports the stored request plus whether the admin
// notification actually went out. The request row is never rolled back when
// the email fails.
type CreateJoinRequestResult struct {
	Request   *models.JoinRequest `json:"request"`
	EmailSent bool                `json:"email_sent"`
}

// ApprovalResult is the outcome of a successful approval.
type ApprovalResult struct {
	CompanyID      uuid.UUID `json:"company_id"`
	CompanyName    string    `json:"company_name"`
	CreatedCompany bool      `json:"created_company"`
	EmailSent      bool      `json:"email_sent"`
}

// RejectionResult is the outcome of a successful rejection.
type RejectionResult struct {
	EmailSent bool `json:"email_sent"`
}

type JoinRequestService interface {
	Create(ctx context.Context, userID uuid.UUID, companyName, adminEmail string) (*CreateJoinRequestResult, error)
	Approve(ctx context.Context, token string) (*ApprovalResult, error)
	Reject(ctx context.Context, token string) (*RejectionResult, error)
	ListPending(ctx context.Context, adminEmail string, limit, offset int) ([]*models.JoinRequest, error)
}

type joinRequestService struct {
	requestRepo repositories.JoinRequestRepository
	profileRepo repositories.ProfileRepository
	companyRepo repositories.CompanyRepository
	cacheSvc    caching.CacheService
	notifier    Notifier
	baseURL     string
}

func NewJoinRequestService(requestRepo repositories.JoinRequestRepository, profileRepo repositories.ProfileRepository, companyRepo repositories.CompanyRepository, cacheSvc caching.CacheService, notifier Notifier, baseURL string) JoinRequestService {
	return &joinRequestService{
		requestRepo: requestRepo,
		profileRepo: profileRepo,
		companyRepo: companyRepo,
		cacheSvc:    cacheSvc,
		notifier:    notifier,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// Create records a join request and notifies the target admin. The requester's
// email is taken from their stored profile, never from the payload, so the
// "from" identity cannot be spoofed.
func (s *joinRequestService) Create(ctx context.Context, userID uuid.UUID, companyName, adminEmail string) (*CreateJoinRequestResult, error) {
	if strings.TrimSpace(companyName) == "" {
		return nil, errors.New("company name is required")
	}
	if strings.TrimSpace(adminEmail) == "" {
		return nil, errors.New("admin email is required")
	}

	requester, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolve requester profile: %w", err)
	}

	token, err := generateCapabilityToken()
	if err != nil {
		return nil, err
	}

	request := &models.JoinRequest{
		ID:          uuid.New(),
		UserID:      requester.ID,
		CompanyName: strings.TrimSpace(companyName),
		AdminEmail:  strings.TrimSpace(adminEmail),
		Token:       token,
		Status:      models.JoinRequestPending,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("create join request: %w", err)
	}

	result := &CreateJoinRequestResult{Request: request}

	sendErr := s.notifier.JoinRequestReceived(ctx, request.AdminEmail, requester.Name, requester.Email, request.CompanyName, s.approveLink(token), s.rejectLink(token))
	switch {
	case sendErr == nil:
		result.EmailSent = true
		request.Status = models.JoinRequestEmailSent
		if err := s.requestRepo.SetEmailOutcome(ctx, request.ID, models.JoinRequestEmailSent, nil); err != nil {
			log.Printf("Failed to record email_sent for join request %s: %v", request.ID, err)
		}
	case errors.Is(sendErr, mail.ErrDisabled):
		// No email channel configured; the request stays pending and shows
		// up in the in-app panel.
	default:
		message := sendErr.Error()
		request.Status = models.JoinRequestEmailFailed
		request.ErrorMessage = &message
		if err := s.requestRepo.SetEmailOutcome(ctx, request.ID, models.JoinRequestEmailFailed, &message); err != nil {
			log.Printf("Failed to record email_failed for join request %s: %v", request.ID, err)
		}
	}

	return result, nil
}

// Approve consumes the token and runs the approval state machine. The status
// transition is a conditional update, so concurrent approvals of the same
// token resolve to exactly one winner; losers see ErrAlreadyProcessed.
func (s *joinRequestService) Approve(ctx context.Context, token string) (*ApprovalResult, error) {
	request, err := s.transition(ctx, token, models.JoinRequestApproved)
	if err != nil {
		return nil, err
	}

	requester, err := s.profileRepo.GetByID(ctx, request.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve requester profile: %w", err)
	}

	createdCompany := false
	company, err := s.companyRepo.GetByNameAndAdminEmail(ctx, request.CompanyName, request.AdminEmail)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("resolve company: %w", err)
		}
		// No such company yet: the requester founds it. The new company's
		// admin_email is the requester's own email, not the admin_email of
		// the request.
		company = &models.Company{
			ID:         uuid.New(),
			Name:       request.CompanyName,
			AdminEmail: requester.Email,
			CreatedBy:  requester.ID,
		}
		if err := s.companyRepo.Create(ctx, company); err != nil {
			return nil, fmt.Errorf("create company: %w", err)
		}
		createdCompany = true
	}

	role := models.RoleMember
	if createdCompany {
		role = models.RoleAdmin
	}
	if err := s.profileRepo.UpdateMembership(ctx, requester.ID, company.ID, role); err != nil {
		return nil, fmt.Errorf("update requester membership: %w", err)
	}
	if cacheErr := s.cacheSvc.DeleteProfile(ctx, requester.ID); cacheErr != nil {
		log.Printf("Failed to invalidate cache for profile %s: %v", requester.ID, cacheErr)
	}

	result := &ApprovalResult{
		CompanyID:      company.ID,
		CompanyName:    company.Name,
		CreatedCompany: createdCompany,
	}

	// All state is committed; the notification is best-effort
	if sendErr := s.notifier.JoinRequestApproved(ctx, requester.Email, requester.Name, company.Name); sendErr != nil {
		if !errors.Is(sendErr, mail.ErrDisabled) {
			log.Printf("Failed to send approval notification for request %s: %v", request.ID, sendErr)
		}
	} else {
		result.EmailSent = true
	}

	return result, nil
}

// Reject marks the request terminal in the other direction. The requester
// notification is best-effort and never fails the rejection.
func (s *joinRequestService) Reject(ctx context.Context, token string) (*RejectionResult, error) {
	request, err := s.transition(ctx, token, models.JoinRequestRejected)
	if err != nil {
		return nil, err
	}

	result := &RejectionResult{}

	requester, err := s.profileRepo.GetByID(ctx, request.UserID)
	if err != nil {
		log.Printf("Failed to resolve requester for rejection notice on request %s: %v", request.ID, err)
		return result, nil
	}
	if sendErr := s.notifier.JoinRequestRejected(ctx, requester.Email, requester.Name, request.CompanyName); sendErr != nil {
		if !errors.Is(sendErr, mail.ErrDisabled) {
			log.Printf("Failed to send rejection notification for request %s: %v", request.ID, sendErr)
		}
	} else {
		result.EmailSent = true
	}

	return result, nil
}

func (s *joinRequestService) ListPending(ctx context.Context, adminEmail string, limit, offset int) ([]*models.JoinRequest, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.requestRepo.ListPendingByAdminEmail(ctx, adminEmail, limit, offset)
}

func (s *joinRequestService) transition(ctx context.Context, token, toStatus string) (*models.JoinRequest, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("token is required")
	}

	request, err := s.requestRepo.Transition(ctx, token, toStatus)
	if err == nil {
		return request, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transition join request: %w", err)
	}

	// The conditional update matched nothing: either the token is unknown or
	// another transition got there first.
	if _, lookupErr := s.requestRepo.GetByToken(ctx, token); lookupErr != nil {
		if errors.Is(lookupErr, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("look up join request: %w", lookupErr)
	}
	return nil, ErrAlreadyProcessed
}

func (s *joinRequestService) approveLink(token string) string {
	return fmt.Sprintf("%s/v1/workspace-requests/approve?token=%s", s.baseURL, token)
}

func (s *joinRequestService) rejectLink(token string) string {
	return fmt.Sprintf("%s/v1/workspace-requests/reject?token=%s", s.baseURL, token)
}
