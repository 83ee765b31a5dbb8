package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ceforseg/panel-backend/internal/model"
	"github.com/ceforseg/panel-backend/internal/repository"
)

// UserStore is the slice of the user repository the handlers need.
type UserStore interface {
	Create(ctx context.Context, usuario, password, rol string, cost int) (uint64, error)
	GetByUsuario(ctx context.Context, usuario string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id uint64) error
}

// UserHandler implements the gerente-only staff account endpoints.
type UserHandler struct {
	Users      UserStore
	BcryptCost int
}

func NewUserHandler(users UserStore, bcryptCost int) *UserHandler {
	return &UserHandler{Users: users, BcryptCost: bcryptCost}
}

type userResp struct {
	ID      uint64 `json:"id"`
	Usuario string `json:"usuario"`
	Rol     string `json:"rol"`
}

// List handles GET /api/usuarios.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	items := make([]userResp, 0, len(users))
	for _, u := range users {
		items = append(items, userResp{ID: u.ID, Usuario: u.Usuario, Rol: u.Rol})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create handles POST /api/usuarios.
func (h *UserHandler) Create(c echo.Context) error {
	var body struct {
		Usuario  string `json:"usuario"`
		Password string `json:"password"`
		Rol      string `json:"rol"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Cuerpo inválido"})
	}
	body.Usuario = strings.ToLower(strings.TrimSpace(body.Usuario))
	if body.Usuario == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Usuario y password requeridos"})
	}
	if !model.ValidRol(body.Rol) {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Rol inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Users.Create(ctx, body.Usuario, body.Password, body.Rol, h.BcryptCost)
	if err != nil {
		if err == repository.ErrUsuarioExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "El usuario ya existe"})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	return c.JSON(http.StatusCreated, userResp{ID: id, Usuario: body.Usuario, Rol: body.Rol})
}

// Delete handles DELETE /api/usuarios/:id. Deleting your own account and
// deleting the last gerente are both rejected; the panel must never lock
// everyone out.
func (h *UserHandler) Delete(c echo.Context) error {
	callerID, _, err := identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"mensaje": "Token requerido"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "ID inválido"})
	}
	if id == callerID {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "No puede eliminar su propio usuario"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		switch err {
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"mensaje": "Usuario no encontrado"})
		case repository.ErrLastGerente:
			return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "No puede eliminar el último gerente"})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"mensaje": "Usuario eliminado"})
}
