package handlers

import (
	"errors"
	"net/http"

	"visionm/internal/common"
	"visionm/internal/services"

	"github.com/labstack/echo/v4"
)

// InviteHandlers exposes company invites: an admin invites a known email
// address, the invitee validates the token on the signup form and accepts it
// once signed in.
type InviteHandlers struct {
	inviteService services.InviteService
}

func NewInviteHandlers(inviteService services.InviteService) *InviteHandlers {
	return &InviteHandlers{inviteService: inviteService}
}

// CreateInviteRequest represents the invite creation payload
type CreateInviteRequest struct {
	InviteEmail string `json:"invite_email" validate:"required,email"`
	InviteName  string `json:"invite_name" validate:"required"`
}

// Create handles POST /v1/invites. Admin only.
func (h *InviteHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendForbiddenError(c, "You must belong to a company to invite members")
	}

	var req CreateInviteRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if err := common.ValidateEmail(req.InviteEmail, "invite_email"); err != nil {
		return common.SendValidationError(c, "invite_email", err.Error())
	}
	if err := common.ValidateRequiredString(req.InviteName, "invite_name"); err != nil {
		return common.SendValidationError(c, "invite_name", err.Error())
	}

	result, err := h.inviteService.Create(ctx, userID, companyID, req.InviteEmail, req.InviteName)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotAdmin):
			return common.SendForbiddenError(c, "Only company admins can send invites")
		case errors.Is(err, services.ErrNotFound):
			return common.SendNotFoundError(c, "Company")
		default:
			return common.SendServerError(c, "Failed to create invite")
		}
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":     true,
		"invite":      result.Invite,
		"invite_link": result.InviteLink,
		"email_sent":  result.EmailSent,
	})
}

// ValidateInviteRequest represents the token validation payload
type ValidateInviteRequest struct {
	Token string `json:"token" validate:"required"`
}

// Validate handles POST /v1/invites/validate. Unauthenticated: the signup
// form calls this before an account exists. Never mutates the invite.
func (h *InviteHandlers) Validate(c echo.Context) error {
	ctx := c.Request().Context()

	var req ValidateInviteRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if req.Token == "" {
		return common.SendValidationError(c, "token", "token is required")
	}

	details, err := h.inviteService.Validate(ctx, req.Token)
	if err != nil {
		return mapInviteError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":     true,
		"invite": details,
	})
}

// AcceptInviteRequest represents the invite acceptance payload
type AcceptInviteRequest struct {
	Token string `json:"token" validate:"required"`
}

// Accept handles POST /v1/invites/accept. The caller's signed-in identity is
// what gets attached to the company, not anything in the payload.
func (h *InviteHandlers) Accept(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req AcceptInviteRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if req.Token == "" {
		return common.SendValidationError(c, "token", "token is required")
	}

	if err := h.inviteService.Accept(ctx, req.Token, userID); err != nil {
		return mapInviteError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok": true,
	})
}

// Revoke handles DELETE /v1/invites/:id. Admin only, scoped to the caller's
// company.
func (h *InviteHandlers) Revoke(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendForbiddenError(c, "You must belong to a company")
	}

	inviteID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.inviteService.Revoke(ctx, companyID, inviteID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Invite")
		}
		return common.SendServerError(c, "Failed to revoke invite")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok": true,
	})
}

// List handles GET /v1/invites. Admin only, scoped to the caller's company.
func (h *InviteHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendForbiddenError(c, "You must belong to a company")
	}

	limit, offset := parsePagination(c)
	invites, err := h.inviteService.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list invites")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"invites": invites,
		"count":   len(invites),
	})
}

// mapInviteError translates invite service sentinels into the response
// vocabulary the frontend branches on.
func mapInviteError(c echo.Context, err error) error {
	var status int
	var code, message string
	switch {
	case errors.Is(err, services.ErrNotFound):
		status, code, message = http.StatusNotFound, common.CodeNotFound, "Invite not found"
	case errors.Is(err, services.ErrAlreadyAccepted):
		status, code, message = http.StatusConflict, common.CodeAlreadyAccepted, "This invite has already been accepted"
	case errors.Is(err, services.ErrRevoked):
		status, code, message = http.StatusGone, common.CodeRevoked, "This invite has been revoked"
	case errors.Is(err, services.ErrExpired):
		status, code, message = http.StatusGone, common.CodeExpired, "This invite has expired"
	case errors.Is(err, services.ErrEmailMismatch):
		status, code, message = http.StatusForbidden, common.CodeEmailMismatch, "This invite was issued to a different email address"
	default:
		status, code, message = http.StatusInternalServerError, common.CodeUpstreamFailure, "Failed to process invite"
	}
	resp := common.CreateErrorResponse(code, message, nil)
	return c.JSON(status, map[string]interface{}{
		"ok":    false,
		"error": resp.Error,
	})
}
