package models

import (
	"time"

	"github.com/google/uuid"
)

// Join request statuses. Approved and rejected are terminal; the approval and
// rejection workflows only transition out of the first three.
const (
	JoinRequestPending     = "pending"
	JoinRequestEmailSent   = "email_sent"
	JoinRequestEmailFailed = "email_failed"
	JoinRequestApproved    = "approved"
	JoinRequestRejected    = "rejected"
)

type JoinRequest struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	CompanyName  string    `json:"company_name" db:"company_name"`
	AdminEmail   string    `json:"admin_email" db:"admin_email"`
	Token        string    `json:"-" db:"token"` // Bearer capability, never listed back out
	Status       string    `json:"status" db:"status"`
	ErrorMessage *string   `json:"error_message" db:"error_message"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Terminal reports whether the request can no longer transition.
func (r *JoinRequest) Terminal() bool {
	return r.Status == JoinRequestApproved || r.Status == JoinRequestRejected
}
