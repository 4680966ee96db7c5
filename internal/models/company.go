package models

import (
	"time"

	"github.com/google/uuid"
)

type Company struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	AdminEmail string    `json:"admin_email" db:"admin_email"`
	CreatedBy  uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
