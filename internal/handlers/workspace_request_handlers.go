package handlers

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	"visionm/internal/common"
	"visionm/internal/services"

	"github.com/labstack/echo/v4"
)

// WorkspaceRequestHandlers exposes the join-request workflow: a signed-in user
// asks to join a company workspace, the company admin approves or rejects
// through emailed links.
type WorkspaceRequestHandlers struct {
	joinRequestService services.JoinRequestService
	profileService     services.ProfileService
}

func NewWorkspaceRequestHandlers(joinRequestService services.JoinRequestService, profileService services.ProfileService) *WorkspaceRequestHandlers {
	return &WorkspaceRequestHandlers{
		joinRequestService: joinRequestService,
		profileService:     profileService,
	}
}

// CreateWorkspaceRequestRequest represents the join-request payload. The
// requester's own email is resolved server side from their profile.
type CreateWorkspaceRequestRequest struct {
	CompanyName string `json:"company_name" validate:"required"`
	AdminEmail  string `json:"admin_email" validate:"required,email"`
}

// Create handles POST /v1/workspace-requests
func (h *WorkspaceRequestHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateWorkspaceRequestRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.CompanyName, "company_name"); err != nil {
		return common.SendValidationError(c, "company_name", err.Error())
	}
	if err := common.ValidateEmail(req.AdminEmail, "admin_email"); err != nil {
		return common.SendValidationError(c, "admin_email", err.Error())
	}

	result, err := h.joinRequestService.Create(ctx, userID, req.CompanyName, req.AdminEmail)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Profile")
		}
		return common.SendServerError(c, "Failed to create workspace request")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":    true,
		"request_id": result.Request.ID,
		"email_sent": result.EmailSent,
	})
}

// ListPending handles GET /v1/workspace-requests/pending. The list is scoped
// to requests addressed to the caller's own email, so only the admin who was
// asked sees them.
func (h *WorkspaceRequestHandlers) ListPending(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	workspace, err := h.profileService.Resolve(ctx, userID)
	if err != nil {
		return common.SendServerError(c, "Failed to resolve profile")
	}

	limit, offset := parsePagination(c)
	requests, err := h.joinRequestService.ListPending(ctx, workspace.Profile.Email, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list workspace requests")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
	})
}

// Approve handles GET and POST /v1/workspace-requests/approve. GET serves the
// links embedded in admin emails, POST serves the in-app pending panel. The
// response format follows the Accept header so a browser click shows a page
// while API callers get JSON.
func (h *WorkspaceRequestHandlers) Approve(c echo.Context) error {
	ctx := c.Request().Context()

	token, err := decisionToken(c)
	if err != nil {
		return h.decisionError(c, http.StatusBadRequest, common.CodeValidation, "A request token is required")
	}

	result, err := h.joinRequestService.Approve(ctx, token)
	if err != nil {
		return h.mapDecisionError(c, err)
	}

	message := fmt.Sprintf("Request approved. The user now belongs to %s.", result.CompanyName)
	if wantsHTML(c) {
		return c.HTML(http.StatusOK, decisionPage("Request Approved", message))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":         true,
		"message":         message,
		"company_id":      result.CompanyID,
		"created_company": result.CreatedCompany,
		"email_sent":      result.EmailSent,
	})
}

// Reject handles GET and POST /v1/workspace-requests/reject
func (h *WorkspaceRequestHandlers) Reject(c echo.Context) error {
	ctx := c.Request().Context()

	token, err := decisionToken(c)
	if err != nil {
		return h.decisionError(c, http.StatusBadRequest, common.CodeValidation, "A request token is required")
	}

	result, err := h.joinRequestService.Reject(ctx, token)
	if err != nil {
		return h.mapDecisionError(c, err)
	}

	message := "Request rejected. The requester has been notified."
	if wantsHTML(c) {
		return c.HTML(http.StatusOK, decisionPage("Request Rejected", message))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    message,
		"email_sent": result.EmailSent,
	})
}

// decisionToken pulls the capability token from the query string on GET or
// the JSON body on POST.
func decisionToken(c echo.Context) (string, error) {
	if token := c.QueryParam("token"); token != "" {
		return token, nil
	}
	if c.Request().Method == http.MethodPost {
		var body struct {
			Token string `json:"token"`
		}
		if err := c.Bind(&body); err == nil && body.Token != "" {
			return body.Token, nil
		}
	}
	return "", errors.New("missing token")
}

func (h *WorkspaceRequestHandlers) mapDecisionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return h.decisionError(c, http.StatusNotFound, common.CodeNotFound, "This request link is not valid")
	case errors.Is(err, services.ErrAlreadyProcessed):
		return h.decisionError(c, http.StatusConflict, common.CodeAlreadyProcessed, "This request has already been handled")
	default:
		return h.decisionError(c, http.StatusInternalServerError, common.CodeUpstreamFailure, "Failed to process the request")
	}
}

func (h *WorkspaceRequestHandlers) decisionError(c echo.Context, status int, code, message string) error {
	if wantsHTML(c) {
		return c.HTML(status, decisionPage("Something Went Wrong", message))
	}
	return c.JSON(status, common.CreateErrorResponse(code, message, nil))
}

// wantsHTML reports whether the caller prefers an HTML page over JSON.
// Browsers following an email link send text/html first.
func wantsHTML(c echo.Context) bool {
	accept := c.Request().Header.Get(echo.HeaderAccept)
	htmlIdx := strings.Index(accept, echo.MIMETextHTML)
	jsonIdx := strings.Index(accept, echo.MIMEApplicationJSON)
	if htmlIdx == -1 {
		return false
	}
	return jsonIdx == -1 || htmlIdx < jsonIdx
}

func decisionPage(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body style="font-family: sans-serif; max-width: 32rem; margin: 4rem auto;">
<h1>%s</h1>
<p>%s</p>
<p>You can close this window.</p>
</body>
</html>`, html.EscapeString(title), html.EscapeString(title), html.EscapeString(message))
}

// parsePagination reads limit/offset query params with sane defaults.
func parsePagination(c echo.Context) (int, int) {
	limit := 50
	offset := 0
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
