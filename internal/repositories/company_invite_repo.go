package repositories

import (
	"context"
	"fmt"

	"visionm/internal/models"

	"github.com/google/uuid"
)

type CompanyInviteRepository interface {
	Create(ctx context.Context, invite *models.CompanyInvite) error
	GetByToken(ctx context.Context, token string) (*models.CompanyInvite, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.CompanyInvite, error)
	Revoke(ctx context.Context, companyID, id uuid.UUID) error
	Accept(ctx context.Context, inviteID, profileID, companyID uuid.UUID) error
}

type companyInviteRepo struct {
	db Database
}

func NewCompanyInviteRepo(db Database) CompanyInviteRepository {
	return &companyInviteRepo{db: db}
}

func (r *companyInviteRepo) Create(ctx context.Context, invite *models.CompanyInvite) error {
	query := `
		INSERT INTO company_invites (id, company_id, email, token, status, expires_at, invited_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query, invite.ID, invite.CompanyID, invite.Email, invite.Token, invite.Status, invite.ExpiresAt, invite.InvitedBy)
	return err
}

func (r *companyInviteRepo) GetByToken(ctx context.Context, token string) (*models.CompanyInvite, error) {
	invite := &models.CompanyInvite{}
	query := `
		SELECT id, company_id, email, token, status, expires_at, accepted_by, accepted_at, invited_by, created_at
		FROM company_invites
		WHERE token = $1
	`
	err := r.db.QueryRow(ctx, query, token).Scan(&invite.ID, &invite.CompanyID, &invite.Email, &invite.Token, &invite.Status, &invite.ExpiresAt, &invite.AcceptedBy, &invite.AcceptedAt, &invite.InvitedBy, &invite.CreatedAt)
	if err != nil {
		return nil, err
	}
	return invite, nil
}

func (r *companyInviteRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.CompanyInvite, error) {
	query := `
		SELECT id, company_id, email, token, status, expires_at, accepted_by, accepted_at, invited_by, created_at
		FROM company_invites
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []*models.CompanyInvite
	for rows.Next() {
		invite := &models.CompanyInvite{}
		if err := rows.Scan(&invite.ID, &invite.CompanyID, &invite.Email, &invite.Token, &invite.Status, &invite.ExpiresAt, &invite.AcceptedBy, &invite.AcceptedAt, &invite.InvitedBy, &invite.CreatedAt); err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}
	return invites, rows.Err()
}

func (r *companyInviteRepo) Revoke(ctx context.Context, companyID, id uuid.UUID) error {
	query := `
		UPDATE company_invites
		SET status = 'revoked'
		WHERE company_id = $1 AND id = $2 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invite %s not pending", id)
	}
	return nil
}

// Accept promotes the profile into the invite's company and marks the invite
// accepted in a single transaction, so the two rows can never diverge the way
// two independent writes could.
func (r *companyInviteRepo) Accept(ctx context.Context, inviteID, profileID, companyID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin accept transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	profileQuery := `
		UPDATE profiles
		SET company_id = $1, role = 'member', updated_at = NOW()
		WHERE id = $2
	`
	tag, err := tx.Exec(ctx, profileQuery, companyID, profileID)
	if err != nil {
		return fmt.Errorf("update profile membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update profile membership: profile %s not found", profileID)
	}

	inviteQuery := `
		UPDATE company_invites
		SET status = 'accepted', accepted_by = $1, accepted_at = NOW()
		WHERE id = $2 AND status = 'pending'
	`
	tag, err = tx.Exec(ctx, inviteQuery, profileID, inviteID)
	if err != nil {
		return fmt.Errorf("mark invite accepted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark invite accepted: invite %s not pending", inviteID)
	}

	return tx.Commit(ctx)
}
