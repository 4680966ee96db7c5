package models

import (
	"time"

	"github.com/google/uuid"
)

// Dataset statuses. Ready and failed are terminal; the client poller stops on
// either.
const (
	DatasetProcessing = "processing"
	DatasetReady      = "ready"
	DatasetFailed     = "failed"
)

type Dataset struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ProjectID    uuid.UUID `json:"project_id" db:"project_id"`
	Version      string    `json:"version" db:"version"`
	Status       string    `json:"status" db:"status"`
	TotalImages  int       `json:"total_images" db:"total_images"`
	SizeBytes    int64     `json:"size_bytes" db:"size_bytes"`
	ErrorMessage *string   `json:"error_message" db:"error_message"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type DatasetFile struct {
	ID          uuid.UUID `json:"id" db:"id"`
	DatasetID   uuid.UUID `json:"dataset_id" db:"dataset_id"`
	FileName    string    `json:"file_name" db:"file_name"`
	StoragePath string    `json:"storage_path" db:"storage_path"`
	SizeBytes   int64     `json:"size_bytes" db:"size_bytes"`
	ContentType string    `json:"content_type" db:"content_type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
