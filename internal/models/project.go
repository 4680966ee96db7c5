package models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CompanyID   uuid.UUID `json:"company_id" db:"company_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	CreatedBy   uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ProjectUser grants password-gated access to a single project, independent of
// company membership. Only the bcrypt hash of the shared password is stored.
type ProjectUser struct {
	ID             uuid.UUID `json:"id" db:"id"`
	ProjectID      uuid.UUID `json:"project_id" db:"project_id"`
	UserEmail      string    `json:"user_email" db:"user_email"`
	HashedPassword string    `json:"-" db:"hashed_password"`
	InvitedBy      uuid.UUID `json:"invited_by" db:"invited_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
