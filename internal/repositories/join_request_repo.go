package repositories

import (
	"context"

	"visionm/internal/models"

	"github.com/google/uuid"
)

type JoinRequestRepository interface {
	Create(ctx context.Context, request *models.JoinRequest) error
	GetByToken(ctx context.Context, token string) (*models.JoinRequest, error)
	ListPendingByAdminEmail(ctx context.Context, adminEmail string, limit, offset int) ([]*models.JoinRequest, error)
	SetEmailOutcome(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error
	Transition(ctx context.Context, token, toStatus string) (*models.JoinRequest, error)
}

type joinRequestRepo struct {
	db Database
}

func NewJoinRequestRepo(db Database) JoinRequestRepository {
	return &joinRequestRepo{db: db}
}

func (r *joinRequestRepo) Create(ctx context.Context, request *models.JoinRequest) error {
	query := `
		INSERT INTO join_requests (id, user_id, company_name, admin_email, token, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, request.ID, request.UserID, request.CompanyName, request.AdminEmail, request.Token, request.Status)
	return err
}

func (r *joinRequestRepo) GetByToken(ctx context.Context, token string) (*models.JoinRequest, error) {
	request := &models.JoinRequest{}
	query := `
		SELECT id, user_id, company_name, admin_email, token, status, error_message, created_at, updated_at
		FROM join_requests
		WHERE token = $1
	`
	err := r.db.QueryRow(ctx, query, token).Scan(&request.ID, &request.UserID, &request.CompanyName, &request.AdminEmail, &request.Token, &request.Status, &request.ErrorMessage, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (r *joinRequestRepo) ListPendingByAdminEmail(ctx context.Context, adminEmail string, limit, offset int) ([]*models.JoinRequest, error) {
	query := `
		SELECT id, user_id, company_name, admin_email, token, status, error_message, created_at, updated_at
		FROM join_requests
		WHERE admin_email = $1 AND status IN ('pending', 'email_sent', 'email_failed')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, adminEmail, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*models.JoinRequest
	for rows.Next() {
		request := &models.JoinRequest{}
		if err := rows.Scan(&request.ID, &request.UserID, &request.CompanyName, &request.AdminEmail, &request.Token, &request.Status, &request.ErrorMessage, &request.CreatedAt, &request.UpdatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

// SetEmailOutcome records whether the notification email for a fresh request
// went out. The request row itself is never rolled back on a send failure.
func (r *joinRequestRepo) SetEmailOutcome(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error {
	query := `
		UPDATE join_requests
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, status, errorMessage, id)
	return err
}

// Transition moves a request to a terminal status, conditioned on the row
// still being non-terminal. Two concurrent approvals of the same token race on
// this statement and exactly one of them gets the row back; the loser sees
// pgx.ErrNoRows and must fall back to GetByToken to tell "unknown token" apart
// from "already decided".
func (r *joinRequestRepo) Transition(ctx context.Context, token, toStatus string) (*models.JoinRequest, error) {
	request := &models.JoinRequest{}
	query := `
		UPDATE join_requests
		SET status = $2, updated_at = NOW()
		WHERE token = $1 AND status IN ('pending', 'email_sent', 'email_failed')
		RETURNING id, user_id, company_name, admin_email, token, status, error_message, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, token, toStatus).Scan(&request.ID, &request.UserID, &request.CompanyName, &request.AdminEmail, &request.Token, &request.Status, &request.ErrorMessage, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return request, nil
}
