package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// InternalServiceHeader carries the shared secret of internal callers
const InternalServiceHeader = "X-Internal-Service"

// isInternalRequest checks if the request is from an internal service
func isInternalRequest(c echo.Context, secret string) bool {
	header := c.Request().Header.Get(InternalServiceHeader)
	if header == "" || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(secret)) == 1
}

// RequireInternalService rejects requests without the shared secret.
// Graph mutation hooks are only accepted from the CRUD layer.
func RequireInternalService(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !isInternalRequest(c, secret) {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error":   "unauthorized",
					"message": "internal service credentials required",
				})
			}
			return next(c)
		}
	}
}
