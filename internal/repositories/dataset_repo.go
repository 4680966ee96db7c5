package repositories

import (
	"context"

	"visionm/internal/models"

	"github.com/google/uuid"
)

// CompanyStorageStats aggregates dataset usage for one company, fed into the
// workspace analytics cache.
type CompanyStorageStats struct {
	Datasets    int   `json:"datasets"`
	TotalImages int   `json:"total_images"`
	SizeBytes   int64 `json:"size_bytes"`
}

type DatasetRepository interface {
	Create(ctx context.Context, dataset *models.Dataset) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dataset, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]*models.Dataset, error)
	Finalize(ctx context.Context, id uuid.UUID, status string, totalImages int, sizeBytes int64, errorMessage *string) error
	CreateFile(ctx context.Context, file *models.DatasetFile) error
	ListFiles(ctx context.Context, datasetID uuid.UUID) ([]*models.DatasetFile, error)
	StorageStatsByCompany(ctx context.Context, companyID uuid.UUID) (*CompanyStorageStats, error)
}

type datasetRepo struct {
	db Database
}

func NewDatasetRepo(db Database) DatasetRepository {
	return &datasetRepo{db: db}
}

func (r *datasetRepo) Create(ctx context.Context, dataset *models.Dataset) error {
	query := `
		INSERT INTO datasets (id, project_id, version, status, total_images, size_bytes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, dataset.ID, dataset.ProjectID, dataset.Version, dataset.Status, dataset.TotalImages, dataset.SizeBytes)
	return err
}

func (r *datasetRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Dataset, error) {
	dataset := &models.Dataset{}
	query := `
		SELECT id, project_id, version, status, total_images, size_bytes, error_message, created_at, updated_at
		FROM datasets
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&dataset.ID, &dataset.ProjectID, &dataset.Version, &dataset.Status, &dataset.TotalImages, &dataset.SizeBytes, &dataset.ErrorMessage, &dataset.CreatedAt, &dataset.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return dataset, nil
}

func (r *datasetRepo) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]*models.Dataset, error) {
	query := `
		SELECT id, project_id, version, status, total_images, size_bytes, error_message, created_at, updated_at
		FROM datasets
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var datasets []*models.Dataset
	for rows.Next() {
		dataset := &models.Dataset{}
		if err := rows.Scan(&dataset.ID, &dataset.ProjectID, &dataset.Version, &dataset.Status, &dataset.TotalImages, &dataset.SizeBytes, &dataset.ErrorMessage, &dataset.CreatedAt, &dataset.UpdatedAt); err != nil {
			return nil, err
		}
		datasets = append(datasets, dataset)
	}
	return datasets, rows.Err()
}

// Finalize flips a processing dataset to its terminal status and records the
// tallies in one statement.
func (r *datasetRepo) Finalize(ctx context.Context, id uuid.UUID, status string, totalImages int, sizeBytes int64, errorMessage *string) error {
	query := `
		UPDATE datasets
		SET status = $1, total_images = $2, size_bytes = $3, error_message = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, status, totalImages, sizeBytes, errorMessage, id)
	return err
}

func (r *datasetRepo) CreateFile(ctx context.Context, file *models.DatasetFile) error {
	query := `
		INSERT INTO dataset_files (id, dataset_id, file_name, storage_path, size_bytes, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, file.ID, file.DatasetID, file.FileName, file.StoragePath, file.SizeBytes, file.ContentType)
	return err
}

func (r *datasetRepo) ListFiles(ctx context.Context, datasetID uuid.UUID) ([]*models.DatasetFile, error) {
	query := `
		SELECT id, dataset_id, file_name, storage_path, size_bytes, content_type, created_at
		FROM dataset_files
		WHERE dataset_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, datasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*models.DatasetFile
	for rows.Next() {
		file := &models.DatasetFile{}
		if err := rows.Scan(&file.ID, &file.DatasetID, &file.FileName, &file.StoragePath, &file.SizeBytes, &file.ContentType, &file.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func (r *datasetRepo) StorageStatsByCompany(ctx context.Context, companyID uuid.UUID) (*CompanyStorageStats, error) {
	stats := &CompanyStorageStats{}
	query := `
		SELECT COUNT(d.id), COALESCE(SUM(d.total_images), 0), COALESCE(SUM(d.size_bytes), 0)
		FROM datasets d
		JOIN projects p ON p.id = d.project_id
		WHERE p.company_id = $1
	`
	err := r.db.QueryRow(ctx, query, companyID).Scan(&stats.Datasets, &stats.TotalImages, &stats.SizeBytes)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
