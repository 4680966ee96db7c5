package handlers

import (
	"net/http"

	"visionm/internal/common"
	"visionm/internal/services"

	"github.com/labstack/echo/v4"
)

// ProfileHandlers serves the caller's own identity
type ProfileHandlers struct {
	profileService services.ProfileService
}

func NewProfileHandlers(profileService services.ProfileService) *ProfileHandlers {
	return &ProfileHandlers{profileService: profileService}
}

// Me handles GET /v1/me. Returns the hydrated workspace: profile, company
// when one is attached, and the derived admin flag.
func (h *ProfileHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	workspace, err := h.profileService.Resolve(ctx, userID)
	if err != nil {
		return common.SendServerError(c, "Failed to resolve profile")
	}

	return c.JSON(http.StatusOK, workspace)
}

// CheckEmailRequest represents the email existence check payload
type CheckEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CheckEmailExists handles POST /v1/check-email-exists. Unauthenticated: the
// invite form uses it to warn before sending an invite to an unknown address.
func (h *ProfileHandlers) CheckEmailExists(c echo.Context) error {
	ctx := c.Request().Context()

	var req CheckEmailRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if err := common.ValidateEmail(req.Email, "email"); err != nil {
		return common.SendValidationError(c, "email", err.Error())
	}

	exists, err := h.profileService.EmailExists(ctx, req.Email)
	if err != nil {
		return common.SendServerError(c, "Failed to check email")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"exists": exists,
	})
}
