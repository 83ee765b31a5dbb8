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

// CourseStore is the slice of the course repository the handlers need.
type CourseStore interface {
	Create(ctx context.Context, nombre, descripcion string, precio int64) (uint64, error)
	ListActive(ctx context.Context) ([]model.Course, error)
	Get(ctx context.Context, id uint64) (model.Course, error)
	Deactivate(ctx context.Context, id uint64) error
}

// CourseHandler implements the course catalog endpoints.
type CourseHandler struct {
	Courses CourseStore
}

func NewCourseHandler(courses CourseStore) *CourseHandler {
	return &CourseHandler{Courses: courses}
}

type courseResp struct {
	ID          uint64 `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	Precio      int64  `json:"precio"`
	Activo      bool   `json:"activo"`
}

// List handles GET /api/cursos, returning active courses only.
func (h *CourseHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	courses, err := h.Courses.ListActive(ctx)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	items := make([]courseResp, 0, len(courses))
	for _, cu := range courses {
		items = append(items, courseResp{ID: cu.ID, Nombre: cu.Nombre,
			Descripcion: cu.Descripcion, Precio: cu.Precio, Activo: cu.Activo})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create handles POST /api/cursos (gerente only).
func (h *CourseHandler) Create(c echo.Context) error {
	var body struct {
		Nombre      string `json:"nombre"`
		Descripcion string `json:"descripcion"`
		Precio      int64  `json:"precio"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Cuerpo inválido"})
	}
	body.Nombre = strings.TrimSpace(body.Nombre)
	if body.Nombre == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Nombre requerido"})
	}
	if body.Precio < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Precio inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Courses.Create(ctx, body.Nombre, body.Descripcion, body.Precio)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	return c.JSON(http.StatusCreated, courseResp{ID: id, Nombre: body.Nombre,
		Descripcion: body.Descripcion, Precio: body.Precio, Activo: true})
}

// Delete handles DELETE /api/cursos/:id (gerente only). Courses are soft
// deleted: historical enrollments keep pointing at the row.
func (h *CourseHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "ID inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Courses.Deactivate(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"mensaje": "Curso no encontrado"})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"mensaje": "Curso desactivado"})
}
