package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"visionm/internal/models"
	"visionm/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockJoinRequestService struct {
	mock.Mock
}

func (m *MockJoinRequestService) Create(ctx context.Context, userID uuid.UUID, companyName, adminEmail string) (*services.CreateJoinRequestResult, error) {
	args := m.Called(ctx, userID, companyName, adminEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CreateJoinRequestResult), args.Error(1)
}

func (m *MockJoinRequestService) Approve(ctx context.Context, token string) (*services.ApprovalResult, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ApprovalResult), args.Error(1)
}

func (m *MockJoinRequestService) Reject(ctx context.Context, token string) (*services.RejectionResult, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RejectionResult), args.Error(1)
}

func (m *MockJoinRequestService) ListPending(ctx context.Context, adminEmail string, limit, offset int) ([]*models.JoinRequest, error) {
	args := m.Called(ctx, adminEmail, limit, offset)
	return args.Get(0).([]*models.JoinRequest), args.Error(1)
}

func approveContext(method, accept, target string, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if accept != "" {
		req.Header.Set(echo.HeaderAccept, accept)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// A browser click on the email link gets a confirmation page.
func TestApprove_BrowserGetsHTML(t *testing.T) {
	svc := new(MockJoinRequestService)
	companyID := uuid.New()
	svc.On("Approve", mock.Anything, "tok-1").Return(&services.ApprovalResult{
		CompanyID:   companyID,
		CompanyName: "Acme Vision",
		EmailSent:   true,
	}, nil)

	h := NewWorkspaceRequestHandlers(svc, nil)
	c, rec := approveContext(http.MethodGet, "text/html,application/xhtml+xml", "/v1/workspace-requests/approve?token=tok-1", "")

	require.NoError(t, h.Approve(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
	assert.Contains(t, rec.Body.String(), "Request Approved")
	assert.Contains(t, rec.Body.String(), "Acme Vision")
}

// The in-app panel posts the token and reads JSON back.
func TestApprove_APICallerGetsJSON(t *testing.T) {
	svc := new(MockJoinRequestService)
	companyID := uuid.New()
	svc.On("Approve", mock.Anything, "tok-1").Return(&services.ApprovalResult{
		CompanyID:      companyID,
		CompanyName:    "Acme Vision",
		CreatedCompany: true,
	}, nil)

	h := NewWorkspaceRequestHandlers(svc, nil)
	c, rec := approveContext(http.MethodPost, "application/json", "/v1/workspace-requests/approve", `{"token":"tok-1"}`)

	require.NoError(t, h.Approve(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, companyID.String(), payload["company_id"])
	assert.Equal(t, true, payload["created_company"])
}

func TestApprove_AlreadyProcessedConflict(t *testing.T) {
	svc := new(MockJoinRequestService)
	svc.On("Approve", mock.Anything, "tok-1").Return(nil, services.ErrAlreadyProcessed)

	h := NewWorkspaceRequestHandlers(svc, nil)
	c, rec := approveContext(http.MethodPost, "application/json", "/v1/workspace-requests/approve", `{"token":"tok-1"}`)

	require.NoError(t, h.Approve(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ALREADY_PROCESSED")
}

func TestApprove_UnknownTokenAsHTML(t *testing.T) {
	svc := new(MockJoinRequestService)
	svc.On("Approve", mock.Anything, "bad").Return(nil, services.ErrNotFound)

	h := NewWorkspaceRequestHandlers(svc, nil)
	c, rec := approveContext(http.MethodGet, "text/html", "/v1/workspace-requests/approve?token=bad", "")

	require.NoError(t, h.Approve(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something Went Wrong")
}

func TestReject_MissingToken(t *testing.T) {
	svc := new(MockJoinRequestService)
	h := NewWorkspaceRequestHandlers(svc, nil)
	c, rec := approveContext(http.MethodGet, "application/json", "/v1/workspace-requests/reject", "")

	require.NoError(t, h.Reject(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Reject", mock.Anything, mock.Anything)
}
