package handlers

import (
	"net/http"

	"visionm/internal/analytics"
	"visionm/internal/common"

	"github.com/labstack/echo/v4"
)

// AnalyticsHandlers serves workspace-level usage numbers
type AnalyticsHandlers struct {
	analyticsService *analytics.AnalyticsService
}

func NewAnalyticsHandlers(analyticsService *analytics.AnalyticsService) *AnalyticsHandlers {
	return &AnalyticsHandlers{analyticsService: analyticsService}
}

// Workspace handles GET /v1/analytics/workspace
func (h *AnalyticsHandlers) Workspace(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendForbiddenError(c, "You must belong to a company")
	}

	stats, err := h.analyticsService.WorkspaceAnalytics(ctx, companyID)
	if err != nil {
		return common.SendServerError(c, "Failed to compute workspace analytics")
	}

	return c.JSON(http.StatusOK, stats)
}
