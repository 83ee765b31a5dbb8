package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRol enforces that the authenticated user's role is in the allowed
// set. It assumes JWTAuth already stored "rol" in the context; a missing or
// unknown role is rejected the same way as a disallowed one.
func RequireRol(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rol, ok := c.Get("rol").(string)
			if !ok || !allowed[rol] {
				return c.JSON(http.StatusForbidden, echo.Map{"mensaje": "Acceso no autorizado"})
			}
			return next(c)
		}
	}
}
