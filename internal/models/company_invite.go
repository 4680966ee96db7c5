package models

import (
	"time"

	"github.com/google/uuid"
)

// Company invite statuses. Accepted is one-way; expiry is checked at
// validation time against expires_at, there is no sweep job flipping rows.
const (
	InvitePending  = "pending"
	InviteAccepted = "accepted"
	InviteRevoked  = "revoked"
)

type CompanyInvite struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	CompanyID  uuid.UUID  `json:"company_id" db:"company_id"`
	Email      string     `json:"email" db:"email"`
	Token      string     `json:"-" db:"token"`
	Status     string     `json:"status" db:"status"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	AcceptedBy *uuid.UUID `json:"accepted_by" db:"accepted_by"`
	AcceptedAt *time.Time `json:"accepted_at" db:"accepted_at"`
	InvitedBy  uuid.UUID  `json:"invited_by" db:"invited_by"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
