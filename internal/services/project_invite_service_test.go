package services

import (
	"context"
	"errors"
	"testing"

	"visionm/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type ProjectInviteServiceTestSuite struct {
	suite.Suite
	projectRepo     *MockProjectRepository
	projectUserRepo *MockProjectUserRepository
	notifier        *MockNotifier
	service         ProjectInviteService
	context         context.Context

	companyID uuid.UUID
	project   *models.Project
	invitedBy uuid.UUID
}

func (suite *ProjectInviteServiceTestSuite) SetupTest() {
	suite.projectRepo = new(MockProjectRepository)
	suite.projectUserRepo = new(MockProjectUserRepository)
	suite.notifier = new(MockNotifier)
	// MinCost keeps the bcrypt rounds cheap in tests
	suite.service = NewProjectInviteService(suite.projectRepo, suite.projectUserRepo, suite.notifier, "https://app.example.test", bcrypt.MinCost)
	suite.context = context.Background()

	suite.companyID = uuid.New()
	suite.project = &models.Project{
		ID:        uuid.New(),
		CompanyID: suite.companyID,
		Name:      "defect-detection",
	}
	suite.invitedBy = uuid.New()
}

func TestProjectInviteServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectInviteServiceTestSuite))
}

// The stored credential is a bcrypt hash that verifies against the original
// password; the plaintext is never persisted.
func (suite *ProjectInviteServiceTestSuite) TestInvite_HashesPassword() {
	suite.projectRepo.On("GetByID", suite.context, suite.companyID, suite.project.ID).Return(suite.project, nil)
	suite.projectUserRepo.On("GetByProjectAndEmail", suite.context, suite.project.ID, "viewer@ext.test").Return(nil, pgx.ErrNoRows)
	suite.projectUserRepo.On("Create", suite.context, mock.AnythingOfType("*models.ProjectUser")).Return(nil)
	suite.notifier.On("ProjectAccessGranted", suite.context, "viewer@ext.test", "defect-detection", mock.Anything).Return(nil)

	grant, err := suite.service.Invite(suite.context, suite.companyID, suite.project.ID, "viewer@ext.test", "s3cret-pass", suite.invitedBy)
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), "s3cret-pass", grant.HashedPassword)
	assert.NoError(suite.T(), bcrypt.CompareHashAndPassword([]byte(grant.HashedPassword), []byte("s3cret-pass")))
	suite.projectUserRepo.AssertExpectations(suite.T())
}

// Project access emails are mandatory: a delivery failure fails the call even
// though the access row was written.
func (suite *ProjectInviteServiceTestSuite) TestInvite_EmailFailureIsHard() {
	suite.projectRepo.On("GetByID", suite.context, suite.companyID, suite.project.ID).Return(suite.project, nil)
	suite.projectUserRepo.On("GetByProjectAndEmail", suite.context, suite.project.ID, "viewer@ext.test").Return(nil, pgx.ErrNoRows)
	suite.projectUserRepo.On("Create", suite.context, mock.AnythingOfType("*models.ProjectUser")).Return(nil)
	suite.notifier.On("ProjectAccessGranted", suite.context, "viewer@ext.test", "defect-detection", mock.Anything).Return(errors.New("smtp: connection refused"))

	grant, err := suite.service.Invite(suite.context, suite.companyID, suite.project.ID, "viewer@ext.test", "s3cret-pass", suite.invitedBy)
	assert.Nil(suite.T(), grant)
	assert.ErrorIs(suite.T(), err, ErrEmailDeliveryFailed)
	suite.projectUserRepo.AssertCalled(suite.T(), "Create", suite.context, mock.AnythingOfType("*models.ProjectUser"))
}

func (suite *ProjectInviteServiceTestSuite) TestInvite_DuplicateAccess() {
	existing := &models.ProjectUser{
		ID:        uuid.New(),
		ProjectID: suite.project.ID,
		UserEmail: "viewer@ext.test",
	}
	suite.projectRepo.On("GetByID", suite.context, suite.companyID, suite.project.ID).Return(suite.project, nil)
	suite.projectUserRepo.On("GetByProjectAndEmail", suite.context, suite.project.ID, "viewer@ext.test").Return(existing, nil)

	grant, err := suite.service.Invite(suite.context, suite.companyID, suite.project.ID, "viewer@ext.test", "s3cret-pass", suite.invitedBy)
	assert.Nil(suite.T(), grant)
	assert.ErrorIs(suite.T(), err, ErrDuplicateAccess)
	suite.projectUserRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *ProjectInviteServiceTestSuite) TestVerifyAccess_RoundTrip() {
	hashed, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	assert.NoError(suite.T(), err)

	grant := &models.ProjectUser{
		ID:             uuid.New(),
		ProjectID:      suite.project.ID,
		UserEmail:      "viewer@ext.test",
		HashedPassword: string(hashed),
	}
	suite.projectUserRepo.On("GetByProjectAndEmail", suite.context, suite.project.ID, "viewer@ext.test").Return(grant, nil)

	granted, err := suite.service.VerifyAccess(suite.context, suite.project.ID, "viewer@ext.test", "s3cret-pass")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), granted)

	granted, err = suite.service.VerifyAccess(suite.context, suite.project.ID, "viewer@ext.test", "wrong-pass")
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), granted)
}

func (suite *ProjectInviteServiceTestSuite) TestVerifyAccess_UnknownGrant() {
	suite.projectUserRepo.On("GetByProjectAndEmail", suite.context, suite.project.ID, "nobody@ext.test").Return(nil, pgx.ErrNoRows)

	granted, err := suite.service.VerifyAccess(suite.context, suite.project.ID, "nobody@ext.test", "whatever")
	assert.False(suite.T(), granted)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}
