package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a plain liveness endpoint for load balancers and monitoring.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Home answers the root path with the panel banner.
func Home(c echo.Context) error {
	return c.String(http.StatusOK, "Panel CEFORSEG funcionando 🚀")
}
