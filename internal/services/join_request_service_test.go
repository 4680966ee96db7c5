package services

import (
	"context"
	"errors"
	"testing"

	"visionm/internal/models"
	"visionm/pkg/mail"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type JoinRequestServiceTestSuite struct {
	suite.Suite
	requestRepo *MockJoinRequestRepository
	profileRepo *MockProfileRepository
	companyRepo *MockCompanyRepository
	cacheSvc    *MockCacheService
	notifier    *MockNotifier
	service     JoinRequestService
	context     context.Context

	requester *models.Profile
}

func (suite *JoinRequestServiceTestSuite) SetupTest() {
	suite.requestRepo = new(MockJoinRequestRepository)
	suite.profileRepo = new(MockProfileRepository)
	suite.companyRepo = new(MockCompanyRepository)
	suite.cacheSvc = new(MockCacheService)
	suite.notifier = new(MockNotifier)
	suite.service = NewJoinRequestService(suite.requestRepo, suite.profileRepo, suite.companyRepo, suite.cacheSvc, suite.notifier, "https://app.example.test")
	suite.context = context.Background()

	suite.requester = &models.Profile{
		ID:    uuid.New(),
		Name:  "Dana",
		Email: "dana@user.test",
	}
}

func TestJoinRequestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JoinRequestServiceTestSuite))
}

func (suite *JoinRequestServiceTestSuite) TestCreate_EmailSent() {
	suite.profileRepo.On("GetByID", suite.context, suite.requester.ID).Return(suite.requester, nil)
	suite.requestRepo.On("Create", suite.context, mock.AnythingOfType("*models.JoinRequest")).Return(nil)
	suite.notifier.On("JoinRequestReceived", suite.context, "admin@acme.test", "Dana", "dana@user.test", "Acme Vision", mock.Anything, mock.Anything).Return(nil)
	suite.requestRepo.On("SetEmailOutcome", suite.context, mock.AnythingOfType("uuid.UUID"), models.JoinRequestEmailSent, (*string)(nil)).Return(nil)

	result, err := suite.service.Create(suite.context, suite.requester.ID, "Acme Vision", "admin@acme.test")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.EmailSent)
	assert.Equal(suite.T(), models.JoinRequestEmailSent, result.Request.Status)
	assert.NotEmpty(suite.T(), result.Request.Token)
	suite.requestRepo.AssertExpectations(suite.T())
	suite.notifier.AssertExpectations(suite.T())
}

// The request row survives a failed notification; the failure is recorded on
// the row instead of rolling anything back.
func (suite *JoinRequestServiceTestSuite) TestCreate_EmailFailureKeepsRequest() {
	suite.profileRepo.On("GetByID", suite.context, suite.requester.ID).Return(suite.requester, nil)
	suite.requestRepo.On("Create", suite.context, mock.AnythingOfType("*models.JoinRequest")).Return(nil)
	suite.notifier.On("JoinRequestReceived", suite.context, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp: connection refused"))
	suite.requestRepo.On("SetEmailOutcome", suite.context, mock.AnythingOfType("uuid.UUID"), models.JoinRequestEmailFailed, mock.AnythingOfType("*string")).Return(nil)

	result, err := suite.service.Create(suite.context, suite.requester.ID, "Acme Vision", "admin@acme.test")
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.EmailSent)
	assert.Equal(suite.T(), models.JoinRequestEmailFailed, result.Request.Status)
	assert.NotNil(suite.T(), result.Request.ErrorMessage)
	suite.requestRepo.AssertExpectations(suite.T())
}

// With mail disabled the request simply stays pending; no outcome is recorded
// and the response reports the email as not sent.
func (suite *JoinRequestServiceTestSuite) TestCreate_MailDisabledStaysPending() {
	suite.profileRepo.On("GetByID", suite.context, suite.requester.ID).Return(suite.requester, nil)
	suite.requestRepo.On("Create", suite.context, mock.AnythingOfType("*models.JoinRequest")).Return(nil)
	suite.notifier.On("JoinRequestReceived", suite.context, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(mail.ErrDisabled)

	result, err := suite.service.Create(suite.context, suite.requester.ID, "Acme Vision", "admin@acme.test")
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.EmailSent)
	assert.Equal(suite.T(), models.JoinRequestPending, result.Request.Status)
	suite.requestRepo.AssertNotCalled(suite.T(), "SetEmailOutcome", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JoinRequestServiceTestSuite) TestApprove_CreatesCompanyAndPromotesAdmin() {
	request := &models.JoinRequest{
		ID:          uuid.New(),
		UserID:      suite.requester.ID,
		CompanyName: "Acme Vision",
		AdminEmail:  "admin@acme.test",
		Token:       "tok-1",
		Status:      models.JoinRequestApproved,
	}
	suite.requestRepo.On("Transition", suite.context, "tok-1", models.JoinRequestApproved).Return(request, nil)
	suite.profileRepo.On("GetByID", suite.context, suite.requester.ID).Return(suite.requester, nil)
	suite.companyRepo.On("GetByNameAndAdminEmail", suite.context, "Acme Vision", "admin@acme.test").Return(nil, pgx.ErrNoRows)
	suite.companyRepo.On("Create", suite.context, mock.AnythingOfType("*models.Company")).Return(nil)
	suite.profileRepo.On("UpdateMembership", suite.context, suite.requester.ID, mock.AnythingOfType("uuid.UUID"), models.RoleAdmin).Return(nil)
	suite.cacheSvc.On("DeleteProfile", suite.context, suite.requester.ID).Return(nil)
	suite.notifier.On("JoinRequestApproved", suite.context, "dana@user.test", "Dana", "Acme Vision").Return(nil)

	result, err := suite.service.Approve(suite.context, "tok-1")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.CreatedCompany)
	assert.True(suite.T(), result.EmailSent)
	assert.Equal(suite.T(), "Acme Vision", result.CompanyName)

	// The founded company's admin email is the requester's, not the address
	// the request was sent to.
	createdCompany := suite.companyRepo.Calls[1].Arguments.Get(1).(*models.Company)
	assert.Equal(suite.T(), "dana@user.test", createdCompany.AdminEmail)
	assert.Equal(suite.T(), suite.requester.ID, createdCompany.CreatedBy)
	suite.companyRepo.AssertExpectations(suite.T())
	suite.profileRepo.AssertExpectations(suite.T())
}

func (suite *JoinRequestServiceTestSuite) TestApprove_ExistingCompanyJoinsAsMember() {
	company := &models.Company{
		ID:         uuid.New(),
		Name:       "Acme Vision",
		AdminEmail: "admin@acme.test",
	}
	request := &models.JoinRequest{
		ID:          uuid.New(),
		UserID:      suite.requester.ID,
		CompanyName: "Acme Vision",
		AdminEmail:  "admin@acme.test",
		Token:       "tok-2",
		Status:      models.JoinRequestApproved,
	}
	suite.requestRepo.On("Transition", suite.context, "tok-2", models.JoinRequestApproved).Return(request, nil)
	suite.profileRepo.On("GetByID", suite.context, suite.requester.ID).Return(suite.requester, nil)
	suite.companyRepo.On("GetByNameAndAdminEmail", suite.context, "Acme Vision", "admin@acme.test").Return(company, nil)
	suite.profileRepo.On("UpdateMembership", suite.context, suite.requester.ID, company.ID, models.RoleMember).Return(nil)
	suite.cacheSvc.On("DeleteProfile", suite.context, suite.requester.ID).Return(nil)
	suite.notifier.On("JoinRequestApproved", suite.context, "dana@user.test", "Dana", "Acme Vision").Return(mail.ErrDisabled)

	result, err := suite.service.Approve(suite.context, "tok-2")
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.CreatedCompany)
	assert.False(suite.T(), result.EmailSent)
	assert.Equal(suite.T(), company.ID, result.CompanyID)
	suite.companyRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	suite.profileRepo.AssertExpectations(suite.T())
}

func (suite *JoinRequestServiceTestSuite) TestApprove_UnknownToken() {
	suite.requestRepo.On("Transition", suite.context, "nope", models.JoinRequestApproved).Return(nil, pgx.ErrNoRows)
	suite.requestRepo.On("GetByToken", suite.context, "nope").Return(nil, pgx.ErrNoRows)

	result, err := suite.service.Approve(suite.context, "nope")
	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

// A second decision on the same token loses the conditional update but finds
// the row, so the caller learns it was already handled rather than missing.
func (suite *JoinRequestServiceTestSuite) TestReject_AlreadyProcessed() {
	processed := &models.JoinRequest{
		ID:     uuid.New(),
		Token:  "tok-3",
		Status: models.JoinRequestApproved,
	}
	suite.requestRepo.On("Transition", suite.context, "tok-3", models.JoinRequestRejected).Return(nil, pgx.ErrNoRows)
	suite.requestRepo.On("GetByToken", suite.context, "tok-3").Return(processed, nil)

	result, err := suite.service.Reject(suite.context, "tok-3")
	assert.Nil(suite.T(), result)
	assert.ErrorIs(suite.T(), err, ErrAlreadyProcessed)
}

func (suite *JoinRequestServiceTestSuite) TestReject_NotifiesRequester() {
	request := &models.JoinRequest{
		ID:          uuid.New(),
		UserID:      suite.requester.ID,
		CompanyName: "Acme Vision",
		Token:       "tok-4",
		Status:      models.JoinRequestRejected,
	}
	suite.requestRepo.On("Transition", suite.context, "tok-4", models.JoinRequestRejected).Return(request, nil)
	suite.profileRepo.On("GetByID", suite.context, suite.requester.ID).Return(suite.requester, nil)
	suite.notifier.On("JoinRequestRejected", suite.context, "dana@user.test", "Dana", "Acme Vision").Return(nil)

	result, err := suite.service.Reject(suite.context, "tok-4")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.EmailSent)
	suite.notifier.AssertExpectations(suite.T())
}
