package middleware

import (
	"net/http"

	"visionm/internal/common"
	"visionm/internal/services"

	"github.com/labstack/echo/v4"
)

// AdminMiddleware gates company-admin-only routes. Admin status is derived
// through the workspace resolver, never trusted from the token.
type AdminMiddleware struct {
	profileSvc services.ProfileService
}

func NewAdminMiddleware(profileSvc services.ProfileService) *AdminMiddleware {
	return &AdminMiddleware{profileSvc: profileSvc}
}

func (m *AdminMiddleware) RequireCompanyAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			userID, ok := common.GetUserIDFromContext(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}

			workspace, err := m.profileSvc.Resolve(ctx, userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Failed to resolve workspace")
			}
			if !workspace.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "Company admin rights required")
			}

			return next(c)
		}
	}
}
