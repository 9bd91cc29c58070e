package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/juruladenbam/bam-sub001/common/ratelimit"
)

// ClientIDHeader lets portal frontends identify the end user being served
const ClientIDHeader = "X-Client-ID"

// clientID identifies the caller for rate limiting
func clientID(c echo.Context) string {
	if id := c.Request().Header.Get(ClientIDHeader); id != "" {
		return id
	}
	return c.RealIP()
}

// ClientRateLimitMiddleware checks per-client rate limits
// Skips rate limiting for internal service-to-service calls
func ClientRateLimitMiddleware(checker ratelimit.Checker, policy ratelimit.Policy, internalSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isInternalRequest(c, internalSecret) {
				return next(c)
			}

			client := clientID(c)
			result, err := checker.CheckClientLimit(c.Request().Context(), client, policy)
			if err != nil {
				// On error, allow request (fail open for availability)
				return next(c)
			}

			if !result.Allowed {
				c.Response().Header().Set("Retry-After", strconv.FormatInt(result.RetryAfterSeconds, 10))
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":   "rate_limit_exceeded",
					"message": "You have exceeded your request quota. Please wait before trying again.",
					"details": map[string]interface{}{
						"client":              client,
						"limit":               result.Limit,
						"window":              policy.Describe(),
						"current_count":       result.CurrentCount,
						"retry_after_seconds": result.RetryAfterSeconds,
					},
				})
			}

			return next(c)
		}
	}
}
