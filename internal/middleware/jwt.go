package middleware // middleware contains reusable HTTP middleware for the panel API

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ceforseg/panel-backend/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer session token
// and injects the authenticated identity into the request context under
// "user_id" (uint64) and "rol" (string). Downstream handlers use these for
// attribution (e.g. who recorded a payment). Error bodies follow the panel
// convention of {mensaje: string}, matching what the front end expects.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"mensaje": "Token requerido"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")
			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"mensaje": "Token inválido"})
			}
			c.Set("user_id", claims.UserID)
			c.Set("rol", claims.Rol)
			return next(c)
		}
	}
}
