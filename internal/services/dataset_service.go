package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"visionm/internal/caching"
	"visionm/internal/models"
	"visionm/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	datasetBucket = "visionm-datasets"

	// Terminal statuses can be cached for longer; a processing dataset is
	// polled every few seconds and its cache entry has to stay fresh.
	processingStatusTTL = 2 * time.Second
	terminalStatusTTL   = 15 * time.Minute
)

// UploadFile is one part of a multipart dataset upload.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type DatasetService interface {
	Upload(ctx context.Context, companyID, projectID uuid.UUID, version string, files []UploadFile) (*models.Dataset, error)
	GetStatus(ctx context.Context, id uuid.UUID) (*models.Dataset, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]*models.Dataset, error)
	ListFiles(ctx context.Context, datasetID uuid.UUID) ([]*models.DatasetFile, error)
}

type datasetService struct {
	datasetRepo repositories.DatasetRepository
	projectRepo repositories.ProjectRepository
	storageSvc  StorageService
	cacheSvc    caching.CacheService
}

func NewDatasetService(datasetRepo repositories.DatasetRepository, projectRepo repositories.ProjectRepository, storageSvc StorageService, cacheSvc caching.CacheService) DatasetService {
	return &datasetService{
		datasetRepo: datasetRepo,
		projectRepo: projectRepo,
		storageSvc:  storageSvc,
		cacheSvc:    cacheSvc,
	}
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true,
	".gif": true, ".webp": true, ".tif": true, ".tiff": true,
}

// Upload creates the dataset row in processing, streams every file to object
// storage, tallies image count and byte size, and flips the row to ready.
// A file whose upload fails is skipped; it does not fail the dataset.
func (s *datasetService) Upload(ctx context.Context, companyID, projectID uuid.UUID, version string, files []UploadFile) (*models.Dataset, error) {
	if strings.TrimSpace(version) == "" {
		return nil, errors.New("dataset version is required")
	}
	if len(files) == 0 {
		return nil, errors.New("at least one file is required")
	}

	project, err := s.projectRepo.GetByID(ctx, companyID, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolve project: %w", err)
	}

	if err := s.storageSvc.EnsureBucketExists(ctx, datasetBucket); err != nil {
		return nil, fmt.Errorf("ensure dataset bucket: %w", err)
	}

	dataset := &models.Dataset{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Version:   strings.TrimSpace(version),
		Status:    models.DatasetProcessing,
	}
	if err := s.datasetRepo.Create(ctx, dataset); err != nil {
		return nil, fmt.Errorf("create dataset: %w", err)
	}

	totalImages := 0
	var sizeBytes int64
	for _, file := range files {
		objectName := fmt.Sprintf("%s/%s/%s/%s", companyID, project.ID, dataset.ID, file.Name)
		if err := s.storageSvc.UploadFile(ctx, datasetBucket, objectName, file.Reader, file.Size, file.ContentType); err != nil {
			log.Printf("Skipping file %s for dataset %s: upload failed: %v", file.Name, dataset.ID, err)
			continue
		}

		record := &models.DatasetFile{
			ID:          uuid.New(),
			DatasetID:   dataset.ID,
			FileName:    file.Name,
			StoragePath: objectName,
			SizeBytes:   file.Size,
			ContentType: file.ContentType,
		}
		if err := s.datasetRepo.CreateFile(ctx, record); err != nil {
			log.Printf("Failed to record file %s for dataset %s: %v", file.Name, dataset.ID, err)
			continue
		}

		if imageExtensions[strings.ToLower(filepath.Ext(file.Name))] {
			totalImages++
		}
		sizeBytes += file.Size
	}

	dataset.TotalImages = totalImages
	dataset.SizeBytes = sizeBytes
	dataset.Status = models.DatasetReady
	if err := s.datasetRepo.Finalize(ctx, dataset.ID, models.DatasetReady, totalImages, sizeBytes, nil); err != nil {
		return nil, fmt.Errorf("finalize dataset: %w", err)
	}

	if cacheErr := s.cacheSvc.SetDataset(ctx, dataset, terminalStatusTTL); cacheErr != nil {
		log.Printf("Failed to cache dataset %s: %v", dataset.ID, cacheErr)
	}
	return dataset, nil
}

// GetStatus serves the polling clients. A short cache TTL in front of the
// store absorbs the fixed-interval polling traffic.
func (s *datasetService) GetStatus(ctx context.Context, id uuid.UUID) (*models.Dataset, error) {
	if cached, err := s.cacheSvc.GetDataset(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("Cache error for dataset %s: %v", id, err)
	}

	dataset, err := s.datasetRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ttl := processingStatusTTL
	if dataset.Status != models.DatasetProcessing {
		ttl = terminalStatusTTL
	}
	if cacheErr := s.cacheSvc.SetDataset(ctx, dataset, ttl); cacheErr != nil {
		log.Printf("Failed to cache dataset %s: %v", id, cacheErr)
	}
	return dataset, nil
}

func (s *datasetService) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]*models.Dataset, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.datasetRepo.ListByProject(ctx, projectID, limit, offset)
}

func (s *datasetService) ListFiles(ctx context.Context, datasetID uuid.UUID) ([]*models.DatasetFile, error) {
	return s.datasetRepo.ListFiles(ctx, datasetID)
}
