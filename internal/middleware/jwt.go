package middleware

import (
	"context"
	"net/http"

	"visionm/internal/common"
	"visionm/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware validates the bearer token and places the caller's user and
// company IDs into the request context, where handlers read them through
// common.GetUserIDFromContext and common.GetCompanyIDFromContext.
func JWTMiddleware(jwtSecret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: jwtSecret,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(services.TokenClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*services.TokenClaims)
			if !ok {
				return
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				// Leave the context unset; handlers reject the request
				return
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			if claims.CompanyID != nil {
				if companyID, err := uuid.Parse(*claims.CompanyID); err == nil {
					ctx = context.WithValue(ctx, common.CompanyIDKey, companyID)
				}
			}
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	})
}
