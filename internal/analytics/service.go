package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"visionm/internal/caching"
	"visionm/internal/repositories"

	"github.com/google/uuid"
)

const analyticsTTL = 15 * time.Minute

// AnalyticsService aggregates workspace-level dataset usage. Results are
// cached per company and refreshed in the background by the job scheduler.
type AnalyticsService struct {
	projectRepo repositories.ProjectRepository
	datasetRepo repositories.DatasetRepository
	companyRepo repositories.CompanyRepository
	cacheSvc    caching.CacheService
}

func NewAnalyticsService(projectRepo repositories.ProjectRepository, datasetRepo repositories.DatasetRepository, companyRepo repositories.CompanyRepository, cacheSvc caching.CacheService) *AnalyticsService {
	return &AnalyticsService{
		projectRepo: projectRepo,
		datasetRepo: datasetRepo,
		companyRepo: companyRepo,
		cacheSvc:    cacheSvc,
	}
}

// WorkspaceAnalytics returns project/dataset counts and storage usage for one
// company, preferring the cached aggregate.
func (s *AnalyticsService) WorkspaceAnalytics(ctx context.Context, companyID uuid.UUID) (map[string]interface{}, error) {
	if cached, err := s.cacheSvc.GetWorkspaceAnalytics(ctx, companyID); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("Cache error for workspace analytics %s: %v", companyID, err)
	}

	return s.computeAndCache(ctx, companyID)
}

// RefreshAll recomputes the cached aggregates for every company. Called from
// the background scheduler.
func (s *AnalyticsService) RefreshAll(ctx context.Context) error {
	const pageSize = 100
	offset := 0
	for {
		companies, err := s.companyRepo.List(ctx, pageSize, offset)
		if err != nil {
			return fmt.Errorf("list companies: %w", err)
		}
		for _, company := range companies {
			if _, err := s.computeAndCache(ctx, company.ID); err != nil {
				log.Printf("Failed to refresh analytics for company %s: %v", company.ID, err)
			}
		}
		if len(companies) < pageSize {
			return nil
		}
		offset += pageSize
	}
}

func (s *AnalyticsService) computeAndCache(ctx context.Context, companyID uuid.UUID) (map[string]interface{}, error) {
	projectCount, err := s.projectRepo.CountByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}

	stats, err := s.datasetRepo.StorageStatsByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("aggregate dataset stats: %w", err)
	}

	analytics := map[string]interface{}{
		"projects":     projectCount,
		"datasets":     stats.Datasets,
		"total_images": stats.TotalImages,
		"size_bytes":   stats.SizeBytes,
		"refreshed_at": time.Now().UTC().Format(time.RFC3339),
	}

	if cacheErr := s.cacheSvc.SetWorkspaceAnalytics(ctx, companyID, analytics, analyticsTTL); cacheErr != nil {
		log.Printf("Failed to cache workspace analytics for %s: %v", companyID, cacheErr)
	}
	return analytics, nil
}
