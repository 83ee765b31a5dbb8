package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ceforseg/panel-backend/internal/model"
	"github.com/ceforseg/panel-backend/internal/repository"
	"github.com/ceforseg/panel-backend/internal/storage"
)

// StudentStore is the slice of the student repository the handlers need.
type StudentStore interface {
	CreateWithEnrollments(ctx context.Context, s *model.Student, cursoIDs []uint64) ([]repository.CourseStatus, error)
	AddCourse(ctx context.Context, studentID, cursoID uint64) error
	List(ctx context.Context, q string) ([]repository.StudentSummary, error)
	Get(ctx context.Context, id uint64) (model.Student, error)
	Enrollments(ctx context.Context, studentID uint64) ([]repository.EnrollmentDetail, error)
	Update(ctx context.Context, s *model.Student) error
	Delete(ctx context.Context, id uint64) error
}

// StudentHandler implements student CRUD and enrollment endpoints.
type StudentHandler struct {
	Students StudentStore
	Files    *storage.FileStore
}

func NewStudentHandler(students StudentStore, files *storage.FileStore) *StudentHandler {
	return &StudentHandler{Students: students, Files: files}
}

type studentResp struct {
	ID        uint64 `json:"id"`
	Nombre    string `json:"nombre"`
	Cedula    string `json:"cedula"`
	Telefono  string `json:"telefono"`
	Ciudad    string `json:"ciudad"`
	Direccion string `json:"direccion"`
	Foto      string `json:"foto,omitempty"`
}

func toStudentResp(s model.Student) studentResp {
	return studentResp{ID: s.ID, Nombre: s.Nombre, Cedula: s.Cedula,
		Telefono: s.Telefono, Ciudad: s.Ciudad, Direccion: s.Direccion, Foto: s.Foto}
}

// parseCursoIDs reads the repeated `cursos` form field. Values may also be
// comma separated; blanks and non-numbers are dropped.
func parseCursoIDs(values []string) []uint64 {
	var out []uint64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if id, err := strconv.ParseUint(part, 10, 64); err == nil && id > 0 {
				out = append(out, id)
			}
		}
	}
	return out
}

// Create handles POST /api/estudiantes. The body is multipart/form-data with
// the student fields, an optional photo under `foto`, and zero or more
// `cursos` values selecting initial enrollments. The response reports the
// outcome per requested course so an invalid id is visible to the caller
// rather than silently dropped.
func (h *StudentHandler) Create(c echo.Context) error {
	params, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Formulario inválido"})
	}
	s := model.Student{
		Nombre:    strings.TrimSpace(c.FormValue("nombre")),
		Cedula:    strings.TrimSpace(c.FormValue("cedula")),
		Telefono:  strings.TrimSpace(c.FormValue("telefono")),
		Ciudad:    strings.TrimSpace(c.FormValue("ciudad")),
		Direccion: strings.TrimSpace(c.FormValue("direccion")),
	}
	if s.Nombre == "" || s.Cedula == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Nombre y cédula requeridos"})
	}
	if fh, err := c.FormFile("foto"); err == nil && fh != nil {
		ref, err := h.Files.Save("fotos", fh)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error guardando la foto"})
		}
		s.Foto = ref
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	statuses, err := h.Students.CreateWithEnrollments(ctx, &s, parseCursoIDs(params["cursos"]))
	if err != nil {
		if err == repository.ErrCedulaExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Ya existe un estudiante con esa cédula"})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"estudiante": toStudentResp(s),
		"cursos":     statuses,
	})
}

// List handles GET /api/estudiantes with optional ?q= matching name, cédula
// or phone. Each row aggregates course names and the summed balance.
func (h *StudentHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	summaries, err := h.Students.List(ctx, c.QueryParam("q"))
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	type row struct {
		studentResp
		Cursos     []string `json:"cursos"`
		SaldoTotal int64    `json:"saldo_total"`
	}
	items := make([]row, 0, len(summaries))
	for _, s := range summaries {
		cursos := s.Cursos
		if cursos == nil {
			cursos = []string{}
		}
		items = append(items, row{studentResp: toStudentResp(s.Student), Cursos: cursos, SaldoTotal: s.SaldoTotal})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /api/estudiantes/:id with the enrollment breakdown.
func (h *StudentHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "ID inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Students.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"mensaje": "Estudiante no encontrado"})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	enrollments, err := h.Students.Enrollments(ctx, id)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	type enrollmentRow struct {
		ID          uint64 `json:"id"`
		CursoID     uint64 `json:"curso_id"`
		CursoNombre string `json:"curso_nombre"`
		PrecioCurso int64  `json:"precio_curso"`
		Saldo       int64  `json:"saldo"`
	}
	rows := make([]enrollmentRow, 0, len(enrollments))
	for _, e := range enrollments {
		rows = append(rows, enrollmentRow{ID: e.ID, CursoID: e.CursoID,
			CursoNombre: e.CursoNombre, PrecioCurso: e.PrecioCurso, Saldo: e.Saldo})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"estudiante": toStudentResp(s),
		"matriculas": rows,
	})
}

// Update handles PUT /api/estudiantes/:id. Contact fields are replaced; the
// photo only changes when a new file is uploaded. The cédula is identity and
// cannot be edited here.
func (h *StudentHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "ID inválido"})
	}
	s := model.Student{
		ID:        id,
		Nombre:    strings.TrimSpace(c.FormValue("nombre")),
		Telefono:  strings.TrimSpace(c.FormValue("telefono")),
		Ciudad:    strings.TrimSpace(c.FormValue("ciudad")),
		Direccion: strings.TrimSpace(c.FormValue("direccion")),
	}
	if s.Nombre == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Nombre requerido"})
	}
	if fh, err := c.FormFile("foto"); err == nil && fh != nil {
		ref, err := h.Files.Save("fotos", fh)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error guardando la foto"})
		}
		s.Foto = ref
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Students.Update(ctx, &s); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"mensaje": "Estudiante no encontrado"})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"mensaje": "Estudiante actualizado"})
}

// Delete handles DELETE /api/estudiantes/:id (gerente only).
func (h *StudentHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "ID inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Students.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"mensaje": "Estudiante no encontrado"})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"mensaje": "Estudiante eliminado"})
}

// AddCourse handles POST /api/estudiantes/:id/curso, enrolling an existing
// student in one more course at the course's current full price.
func (h *StudentHandler) AddCourse(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "ID inválido"})
	}
	var body struct {
		CursoID uint64 `json:"curso_id"`
	}
	if err := c.Bind(&body); err != nil || body.CursoID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "curso_id requerido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Students.AddCourse(ctx, id, body.CursoID); err != nil {
		switch err {
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"mensaje": "Estudiante no encontrado"})
		case repository.ErrCursoInvalido:
			return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Curso inválido"})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"mensaje": "Curso agregado"})
}
