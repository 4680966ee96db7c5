package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"visionm/internal/caching"
	"visionm/internal/models"
	"visionm/internal/repositories"

	"github.com/google/uuid"
)

// Workspace is the hydrated identity of a caller: the profile, its company
// (when it belongs to one) and the derived admin flag.
type Workspace struct {
	Profile *models.Profile `json:"profile"`
	Company *models.Company `json:"company,omitempty"`
	IsAdmin bool            `json:"is_admin"`
}

type ProfileService interface {
	Resolve(ctx context.Context, profileID uuid.UUID) (*Workspace, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, profile *models.Profile) error
}

type profileService struct {
	profileRepo repositories.ProfileRepository
	companyRepo repositories.CompanyRepository
	cacheSvc    caching.CacheService
}

func NewProfileService(profileRepo repositories.ProfileRepository, companyRepo repositories.CompanyRepository, cacheSvc caching.CacheService) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		companyRepo: companyRepo,
		cacheSvc:    cacheSvc,
	}
}

// Resolve hydrates the caller's workspace. Admin status is derived through
// models.IsCompanyAdmin, never read from a stored flag elsewhere.
func (s *profileService) Resolve(ctx context.Context, profileID uuid.UUID) (*Workspace, error) {
	profile, err := s.getProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	workspace := &Workspace{Profile: profile}
	if profile.CompanyID == nil {
		return workspace, nil
	}

	company, err := s.getCompany(ctx, *profile.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("resolve company %s: %w", profile.CompanyID, err)
	}

	workspace.Company = company
	workspace.IsAdmin = models.IsCompanyAdmin(profile, company)
	return workspace, nil
}

func (s *profileService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.profileRepo.EmailExists(ctx, email)
}

func (s *profileService) Update(ctx context.Context, profile *models.Profile) error {
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return err
	}
	if cacheErr := s.cacheSvc.DeleteProfile(ctx, profile.ID); cacheErr != nil {
		log.Printf("Failed to invalidate cache for profile %s: %v\n", profile.ID.String(), cacheErr)
	}
	return nil
}

func (s *profileService) getProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	if cached, err := s.cacheSvc.GetProfile(ctx, profileID); cached != nil {
		return cached, nil
	} else if err != nil {
		// Cache errors never fail the operation
		log.Printf("Cache error for profile %s: %v\n", profileID.String(), err)
	}

	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheSvc.SetProfile(ctx, profile, 5*time.Minute); cacheErr != nil {
		log.Printf("Failed to cache profile %s: %v\n", profileID.String(), cacheErr)
	}
	return profile, nil
}

func (s *profileService) getCompany(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	if cached, err := s.cacheSvc.GetCompany(ctx, companyID); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("Cache error for company %s: %v\n", companyID.String(), err)
	}

	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheSvc.SetCompany(ctx, company, 15*time.Minute); cacheErr != nil {
		log.Printf("Failed to cache company %s: %v\n", companyID.String(), cacheErr)
	}
	return company, nil
}
