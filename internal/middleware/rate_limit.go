package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"visionm/internal/caching"
	"visionm/internal/common"

	"github.com/labstack/echo/v4"
)

// RateLimitMiddleware throttles the public capability-token endpoints with a
// per-IP redis counter. Approve/reject links and invite validation accept
// unauthenticated traffic, so token guessing has to be slowed down somewhere.
type RateLimitMiddleware struct {
	cacheSvc caching.CacheService
	limit    int
	window   time.Duration
}

func NewRateLimitMiddleware(cacheSvc caching.CacheService, limit int, window time.Duration) *RateLimitMiddleware {
	if limit <= 0 {
		limit = 30
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimitMiddleware{
		cacheSvc: cacheSvc,
		limit:    limit,
		window:   window,
	}
}

// Limit returns route middleware counting requests under the given scope.
// A redis outage fails open: emailed decision links must keep working when
// the cache is down.
func (m *RateLimitMiddleware) Limit(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := fmt.Sprintf("%s:%s", scope, c.RealIP())

			limited, err := m.cacheSvc.IsRateLimited(ctx, key, m.limit, m.window)
			if err != nil {
				log.Printf("Rate limit check failed for %s: %v", key, err)
				return next(c)
			}
			if limited {
				return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse(common.CodeRateLimited, "Too many requests, try again later", nil))
			}

			if err := m.cacheSvc.IncrementRateLimit(ctx, key, m.window); err != nil {
				log.Printf("Rate limit increment failed for %s: %v", key, err)
			}
			return next(c)
		}
	}
}
