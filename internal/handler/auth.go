package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ceforseg/panel-backend/internal/config"
	"github.com/ceforseg/panel-backend/internal/repository"
	"github.com/ceforseg/panel-backend/internal/utils"
)

// AuthHandler bundles dependencies for the login endpoint.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewAuthHandler(cfg config.Config, users UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

type loginReq struct {
	Usuario  string `json:"usuario"`
	Password string `json:"password"`
}

// Login verifies credentials and returns a signed session token together
// with the role and login name the panel UI needs. Unknown user and wrong
// password produce the same 401 so the endpoint does not leak which logins
// exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Cuerpo inválido"})
	}
	req.Usuario = strings.ToLower(strings.TrimSpace(req.Usuario))
	if req.Usuario == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Usuario y password requeridos"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByUsuario(ctx, req.Usuario)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"mensaje": "Credenciales inválidas"})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"mensaje": "Credenciales inválidas"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Rol, h.Cfg.TokenTTLMin)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":   access.Token,
		"rol":     u.Rol,
		"usuario": u.Usuario,
	})
}
