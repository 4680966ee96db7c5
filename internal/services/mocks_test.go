package services

import (
	"context"
	"io"
	"time"

	"visionm/internal/models"
	"visionm/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock repositories and collaborators shared by the service tests

type MockJoinRequestRepository struct {
	mock.Mock
}

func (m *MockJoinRequestRepository) Create(ctx context.Context, request *models.JoinRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockJoinRequestRepository) GetByToken(ctx context.Context, token string) (*models.JoinRequest, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JoinRequest), args.Error(1)
}

func (m *MockJoinRequestRepository) ListPendingByAdminEmail(ctx context.Context, adminEmail string, limit, offset int) ([]*models.JoinRequest, error) {
	args := m.Called(ctx, adminEmail, limit, offset)
	return args.Get(0).([]*models.JoinRequest), args.Error(1)
}

func (m *MockJoinRequestRepository) SetEmailOutcome(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error {
	args := m.Called(ctx, id, status, errorMessage)
	return args.Error(0)
}

func (m *MockJoinRequestRepository) Transition(ctx context.Context, token, toStatus string) (*models.JoinRequest, error) {
	args := m.Called(ctx, token, toStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JoinRequest), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdateMembership(ctx context.Context, id, companyID uuid.UUID, role string) error {
	args := m.Called(ctx, id, companyID, role)
	return args.Error(0)
}

func (m *MockProfileRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Profile, error) {
	args := m.Called(ctx, companyID, limit, offset)
	return args.Get(0).([]*models.Profile), args.Error(1)
}

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Create(ctx context.Context, company *models.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) GetByNameAndAdminEmail(ctx context.Context, name, adminEmail string) (*models.Company, error) {
	args := m.Called(ctx, name, adminEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) List(ctx context.Context, limit, offset int) ([]*models.Company, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Company), args.Error(1)
}

type MockCompanyInviteRepository struct {
	mock.Mock
}

func (m *MockCompanyInviteRepository) Create(ctx context.Context, invite *models.CompanyInvite) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}

func (m *MockCompanyInviteRepository) GetByToken(ctx context.Context, token string) (*models.CompanyInvite, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CompanyInvite), args.Error(1)
}

func (m *MockCompanyInviteRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.CompanyInvite, error) {
	args := m.Called(ctx, companyID, limit, offset)
	return args.Get(0).([]*models.CompanyInvite), args.Error(1)
}

func (m *MockCompanyInviteRepository) Revoke(ctx context.Context, companyID, id uuid.UUID) error {
	args := m.Called(ctx, companyID, id)
	return args.Error(0)
}

func (m *MockCompanyInviteRepository) Accept(ctx context.Context, inviteID, profileID, companyID uuid.UUID) error {
	args := m.Called(ctx, inviteID, profileID, companyID)
	return args.Error(0)
}

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepository) Update(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	args := m.Called(ctx, companyID, id)
	return args.Error(0)
}

func (m *MockProjectRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Project, error) {
	args := m.Called(ctx, companyID, limit, offset)
	return args.Get(0).([]*models.Project), args.Error(1)
}

func (m *MockProjectRepository) CountByCompany(ctx context.Context, companyID uuid.UUID) (int, error) {
	args := m.Called(ctx, companyID)
	return args.Int(0), args.Error(1)
}

type MockProjectUserRepository struct {
	mock.Mock
}

func (m *MockProjectUserRepository) Create(ctx context.Context, projectUser *models.ProjectUser) error {
	args := m.Called(ctx, projectUser)
	return args.Error(0)
}

func (m *MockProjectUserRepository) GetByProjectAndEmail(ctx context.Context, projectID uuid.UUID, email string) (*models.ProjectUser, error) {
	args := m.Called(ctx, projectID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectUser), args.Error(1)
}

func (m *MockProjectUserRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]*models.ProjectUser, error) {
	args := m.Called(ctx, projectID, limit, offset)
	return args.Get(0).([]*models.ProjectUser), args.Error(1)
}

func (m *MockProjectUserRepository) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	args := m.Called(ctx, projectID, id)
	return args.Error(0)
}

type MockDatasetRepository struct {
	mock.Mock
}

func (m *MockDatasetRepository) Create(ctx context.Context, dataset *models.Dataset) error {
	args := m.Called(ctx, dataset)
	return args.Error(0)
}

func (m *MockDatasetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dataset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dataset), args.Error(1)
}

func (m *MockDatasetRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]*models.Dataset, error) {
	args := m.Called(ctx, projectID, limit, offset)
	return args.Get(0).([]*models.Dataset), args.Error(1)
}

func (m *MockDatasetRepository) Finalize(ctx context.Context, id uuid.UUID, status string, totalImages int, sizeBytes int64, errorMessage *string) error {
	args := m.Called(ctx, id, status, totalImages, sizeBytes, errorMessage)
	return args.Error(0)
}

func (m *MockDatasetRepository) CreateFile(ctx context.Context, file *models.DatasetFile) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockDatasetRepository) ListFiles(ctx context.Context, datasetID uuid.UUID) ([]*models.DatasetFile, error) {
	args := m.Called(ctx, datasetID)
	return args.Get(0).([]*models.DatasetFile), args.Error(1)
}

func (m *MockDatasetRepository) StorageStatsByCompany(ctx context.Context, companyID uuid.UUID) (*repositories.CompanyStorageStats, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.CompanyStorageStats), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) JoinRequestReceived(ctx context.Context, adminEmail, requesterName, requesterEmail, companyName, approveLink, rejectLink string) error {
	args := m.Called(ctx, adminEmail, requesterName, requesterEmail, companyName, approveLink, rejectLink)
	return args.Error(0)
}

func (m *MockNotifier) JoinRequestApproved(ctx context.Context, requesterEmail, requesterName, companyName string) error {
	args := m.Called(ctx, requesterEmail, requesterName, companyName)
	return args.Error(0)
}

func (m *MockNotifier) JoinRequestRejected(ctx context.Context, requesterEmail, requesterName, companyName string) error {
	args := m.Called(ctx, requesterEmail, requesterName, companyName)
	return args.Error(0)
}

func (m *MockNotifier) CompanyInviteCreated(ctx context.Context, inviteEmail, inviteName, companyName, inviteLink string) error {
	args := m.Called(ctx, inviteEmail, inviteName, companyName, inviteLink)
	return args.Error(0)
}

func (m *MockNotifier) ProjectAccessGranted(ctx context.Context, userEmail, projectName, accessLink string) error {
	args := m.Called(ctx, userEmail, projectName, accessLink)
	return args.Error(0)
}

type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) UploadFile(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockStorageService) GetPresignedURL(bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) DeleteFile(ctx context.Context, bucketName, objectName string) error {
	args := m.Called(ctx, bucketName, objectName)
	return args.Error(0)
}

func (m *MockStorageService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockCacheService) SetProfile(ctx context.Context, profile *models.Profile, ttl time.Duration) error {
	args := m.Called(ctx, profile, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteProfile(ctx context.Context, profileID uuid.UUID) error {
	args := m.Called(ctx, profileID)
	return args.Error(0)
}

func (m *MockCacheService) GetCompany(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCacheService) SetCompany(ctx context.Context, company *models.Company, ttl time.Duration) error {
	args := m.Called(ctx, company, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetDataset(ctx context.Context, datasetID uuid.UUID) (*models.Dataset, error) {
	args := m.Called(ctx, datasetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dataset), args.Error(1)
}

func (m *MockCacheService) SetDataset(ctx context.Context, dataset *models.Dataset, ttl time.Duration) error {
	args := m.Called(ctx, dataset, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetWorkspaceAnalytics(ctx context.Context, companyID uuid.UUID) (map[string]interface{}, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

func (m *MockCacheService) SetWorkspaceAnalytics(ctx context.Context, companyID uuid.UUID, analytics map[string]interface{}, ttl time.Duration) error {
	args := m.Called(ctx, companyID, analytics, ttl)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	args := m.Called(ctx, key, window)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
