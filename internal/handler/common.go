package handler // handler implements the HTTP endpoints of the panel API

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"
)

// dbTimeout bounds every storage call made from a handler.
const dbTimeout = 5 * time.Second

// identity pulls the authenticated user id and role that JWTAuth stored in
// the context. Handlers behind the auth middleware can rely on both being
// present; the error covers misuse (route registered without the guard).
func identity(c echo.Context) (uint64, string, error) {
	id, okID := c.Get("user_id").(uint64)
	rol, okRol := c.Get("rol").(string)
	if !okID || !okRol || id == 0 || rol == "" {
		return 0, "", errors.New("missing identity in context")
	}
	return id, rol, nil
}
