package handlers

import (
	"errors"
	"net/http"

	"visionm/internal/common"
	"visionm/internal/services"

	"github.com/labstack/echo/v4"
)

// ProjectHandlers exposes project CRUD and password-gated project access
type ProjectHandlers struct {
	projectService       services.ProjectService
	projectInviteService services.ProjectInviteService
}

func NewProjectHandlers(projectService services.ProjectService, projectInviteService services.ProjectInviteService) *ProjectHandlers {
	return &ProjectHandlers{
		projectService:       projectService,
		projectInviteService: projectInviteService,
	}
}

// CreateProjectRequest represents the project creation payload
type CreateProjectRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

// Create handles POST /v1/projects
func (h *ProjectHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendForbiddenError(c, "You must belong to a company to create projects")
	}

	var req CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	project, err := h.projectService.Create(ctx, companyID, userID, req.Name, req.Description)
	if err != nil {
		return common.SendServerError(c, "Failed to create project")
	}

	return c.JSON(http.StatusCreated, project)
}

// Get handles GET /v1/projects/:id
func (h *ProjectHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendForbiddenError(c, "You must belong to a company")
	}
	projectID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	project, err := h.projectService.GetByID(ctx, companyID, projectID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Project")
		}
		return common.SendServerError(c, "Failed to fetch project")
	}

	return c.JSON(http.StatusOK, project)
}

// UpdateProjectRequest represents the project update payload
type UpdateProjectRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

// Update handles PUT /v1/projects/:id
func (h *ProjectHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendForbiddenError(c, "You must belong to a company")
	}
	projectID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateProjectRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	project, err := h.projectService.GetByID(ctx, companyID, projectID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Project")
		}
		return common.SendServerError(c, "Failed to fetch project")
	}

	project.Name = req.Name
	project.Description = req.Description
	if err := h.projectService.Update(ctx, project); err != nil {
		return common.SendServerError(c, "Failed to update project")
	}

	return c.JSON(http.StatusOK, project)
}

// Delete handles DELETE /v1/projects/:id
func (h *ProjectHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendForbiddenError(c, "You must belong to a company")
	}
	projectID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.projectService.Delete(ctx, companyID, projectID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Project")
		}
		return common.SendServerError(c, "Failed to delete project")
	}

	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/projects
func (h *ProjectHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendForbiddenError(c, "You must belong to a company")
	}

	limit, offset := parsePagination(c)
	projects, err := h.projectService.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list projects")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"projects": projects,
		"count":    len(projects),
	})
}

// InviteUserRequest represents the project access grant payload
type InviteUserRequest struct {
	UserEmail       string `json:"user_email" validate:"required,email"`
	ProjectPassword string `json:"project_password" validate:"required,min=8"`
}

// InviteUser handles POST /v1/projects/:id/users. Grants password-gated
// access and emails the user; the grant fails outright when the email cannot
// be delivered.
func (h *ProjectHandlers) InviteUser(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendForbiddenError(c, "You must belong to a company")
	}
	projectID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req InviteUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if err := common.ValidateEmail(req.UserEmail, "user_email"); err != nil {
		return common.SendValidationError(c, "user_email", err.Error())
	}
	if len(req.ProjectPassword) < 8 {
		return common.SendValidationError(c, "project_password", "project_password must be at least 8 characters")
	}

	grant, err := h.projectInviteService.Invite(ctx, companyID, projectID, req.UserEmail, req.ProjectPassword, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return common.SendNotFoundError(c, "Project")
		case errors.Is(err, services.ErrDuplicateAccess):
			return common.SendClientError(c, common.CodeAlreadyProcessed, "User already has access to this project")
		case errors.Is(err, services.ErrEmailDeliveryFailed):
			return c.JSON(http.StatusBadGateway, common.CreateErrorResponse(common.CodeUpstreamFailure, "Access was recorded but the notification email failed", nil))
		default:
			return common.SendServerError(c, "Failed to grant project access")
		}
	}

	return c.JSON(http.StatusCreated, grant)
}

// VerifyAccessRequest represents the project password check payload
type VerifyAccessRequest struct {
	UserEmail string `json:"user_email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

// VerifyAccess handles POST /v1/projects/:id/access
func (h *ProjectHandlers) VerifyAccess(c echo.Context) error {
	ctx := c.Request().Context()

	projectID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req VerifyAccessRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if err := common.ValidateEmail(req.UserEmail, "user_email"); err != nil {
		return common.SendValidationError(c, "user_email", err.Error())
	}

	granted, err := h.projectInviteService.VerifyAccess(ctx, projectID, req.UserEmail, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendForbiddenError(c, "Invalid project credentials")
		}
		return common.SendServerError(c, "Failed to verify project access")
	}
	if !granted {
		return common.SendForbiddenError(c, "Invalid project credentials")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"granted": true,
	})
}

// ListUsers handles GET /v1/projects/:id/users
func (h *ProjectHandlers) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	if _, ok := common.GetCompanyIDFromContext(ctx); !ok {
		return common.SendForbiddenError(c, "You must belong to a company")
	}
	projectID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	limit, offset := parsePagination(c)
	users, err := h.projectInviteService.ListByProject(ctx, projectID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list project users")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"users": users,
		"count": len(users),
	})
}
