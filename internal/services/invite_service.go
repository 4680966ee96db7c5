package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"visionm/internal/caching"
	"visionm/internal/models"
	"visionm/internal/repositories"
	"visionm/pkg/mail"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const defaultInviteExpiry = 72 * time.Hour

// CreateInviteResult carries the stored invite, the link embedded in the
// email, and whether the email went out.
type CreateInviteResult struct {
	Invite     *models.CompanyInvite `json:"invite"`
	InviteLink string                `json:"invite_link"`
	EmailSent  bool                  `json:"email_sent"`
}

// InviteDetails is the non-mutating view a signup form pre-fills from.
type InviteDetails struct {
	ID          uuid.UUID `json:"id"`
	CompanyID   uuid.UUID `json:"company_id"`
	CompanyName string    `json:"company_name"`
	InviteEmail string    `json:"invite_email"`
}

type InviteService interface {
	Create(ctx context.Context, invitedBy, companyID uuid.UUID, inviteEmail, inviteName string) (*CreateInviteResult, error)
	Validate(ctx context.Context, token string) (*InviteDetails, error)
	Accept(ctx context.Context, token string, userID uuid.UUID) error
	Revoke(ctx context.Context, companyID, inviteID uuid.UUID) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.CompanyInvite, error)
}

// InviteOption customises InviteService behaviour.
type InviteOption func(*inviteService)

// WithInviteExpiry overrides the invite token lifetime.
func WithInviteExpiry(d time.Duration) InviteOption {
	return func(s *inviteService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithInviteClock injects a custom clock, primarily for tests.
func WithInviteClock(clock func() time.Time) InviteOption {
	return func(s *inviteService) {
		if clock != nil {
			s.now = clock
		}
	}
}

type inviteService struct {
	inviteRepo  repositories.CompanyInviteRepository
	profileRepo repositories.ProfileRepository
	companyRepo repositories.CompanyRepository
	cacheSvc    caching.CacheService
	notifier    Notifier
	baseURL     string
	expiry      time.Duration
	now         func() time.Time
}

func NewInviteService(inviteRepo repositories.CompanyInviteRepository, profileRepo repositories.ProfileRepository, companyRepo repositories.CompanyRepository, cacheSvc caching.CacheService, notifier Notifier, baseURL string, opts ...InviteOption) InviteService {
	s := &inviteService{
		inviteRepo:  inviteRepo,
		profileRepo: profileRepo,
		companyRepo: companyRepo,
		cacheSvc:    cacheSvc,
		notifier:    notifier,
		baseURL:     strings.TrimRight(baseURL, "/"),
		expiry:      defaultInviteExpiry,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create issues a new invite token for the target email. The caller must be
// an admin of the company. The email is best-effort: the invite link is
// returned either way and can be shared manually.
func (s *inviteService) Create(ctx context.Context, invitedBy, companyID uuid.UUID, inviteEmail, inviteName string) (*CreateInviteResult, error) {
	inviteEmail = strings.TrimSpace(inviteEmail)
	if inviteEmail == "" {
		return nil, errors.New("invite email is required")
	}

	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolve company: %w", err)
	}

	inviter, err := s.profileRepo.GetByID(ctx, invitedBy)
	if err != nil {
		return nil, fmt.Errorf("resolve inviter profile: %w", err)
	}
	if !models.IsCompanyAdmin(inviter, company) {
		return nil, ErrNotAdmin
	}

	token, err := generateCapabilityToken()
	if err != nil {
		return nil, err
	}

	invite := &models.CompanyInvite{
		ID:        uuid.New(),
		CompanyID: company.ID,
		Email:     inviteEmail,
		Token:     token,
		Status:    models.InvitePending,
		ExpiresAt: s.now().Add(s.expiry),
		InvitedBy: inviter.ID,
	}
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}

	result := &CreateInviteResult{
		Invite:     invite,
		InviteLink: s.inviteLink(token),
	}

	if sendErr := s.notifier.CompanyInviteCreated(ctx, inviteEmail, inviteName, company.Name, result.InviteLink); sendErr != nil {
		if !errors.Is(sendErr, mail.ErrDisabled) {
			log.Printf("Failed to send invite email for invite %s: %v", invite.ID, sendErr)
		}
	} else {
		result.EmailSent = true
	}

	return result, nil
}

// Validate checks the token without mutating anything. Error precedence is
// fixed: existence, then accepted, then revoked, then expiry.
func (s *inviteService) Validate(ctx context.Context, token string) (*InviteDetails, error) {
	invite, err := s.lookup(ctx, token)
	if err != nil {
		return nil, err
	}

	company, err := s.companyRepo.GetByID(ctx, invite.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("resolve invite company: %w", err)
	}

	return &InviteDetails{
		ID:          invite.ID,
		CompanyID:   invite.CompanyID,
		CompanyName: company.Name,
		InviteEmail: invite.Email,
	}, nil
}

// Accept re-validates the token, requires the accepting identity's stored
// email to equal the invite email exactly (case-sensitive), then applies the
// profile promotion and the invite transition in one transaction. Invite-based
// joins always land as member, never admin.
func (s *inviteService) Accept(ctx context.Context, token string, userID uuid.UUID) error {
	invite, err := s.lookup(ctx, token)
	if err != nil {
		return err
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("resolve accepting profile: %w", err)
	}
	if profile.Email != invite.Email {
		return ErrEmailMismatch
	}

	if err := s.inviteRepo.Accept(ctx, invite.ID, profile.ID, invite.CompanyID); err != nil {
		return fmt.Errorf("accept invite: %w", err)
	}

	if cacheErr := s.cacheSvc.DeleteProfile(ctx, profile.ID); cacheErr != nil {
		log.Printf("Failed to invalidate cache for profile %s: %v", profile.ID, cacheErr)
	}
	return nil
}

func (s *inviteService) Revoke(ctx context.Context, companyID, inviteID uuid.UUID) error {
	return s.inviteRepo.Revoke(ctx, companyID, inviteID)
}

func (s *inviteService) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.CompanyInvite, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.inviteRepo.ListByCompany(ctx, companyID, limit, offset)
}

func (s *inviteService) lookup(ctx context.Context, token string) (*models.CompanyInvite, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("token is required")
	}

	invite, err := s.inviteRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find invite: %w", err)
	}

	switch invite.Status {
	case models.InviteAccepted:
		return nil, ErrAlreadyAccepted
	case models.InviteRevoked:
		return nil, ErrRevoked
	}
	if invite.ExpiresAt.Before(s.now()) {
		return nil, ErrExpired
	}
	return invite, nil
}

func (s *inviteService) inviteLink(token string) string {
	return fmt.Sprintf("%s/signup?invite_token=%s", s.baseURL, token)
}
