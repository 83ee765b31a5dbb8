package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ceforseg/panel-backend/internal/model"
	"github.com/ceforseg/panel-backend/internal/queue"
	"github.com/ceforseg/panel-backend/internal/repository"
)

// PaymentStore is the slice of the payment repository the handlers need.
type PaymentStore interface {
	Record(ctx context.Context, p *model.Payment) (int64, error)
	ListByStudent(ctx context.Context, studentID uint64) ([]repository.PaymentDetail, error)
	ListRecent(ctx context.Context, limit int) ([]repository.PaymentDetail, error)
}

// PaymentHandler implements the abono endpoints. Publish, when set, sends an
// AbonoRegistradoEvent after a successful commit; it is best effort and
// never fails the request.
type PaymentHandler struct {
	Payments PaymentStore
	Students StudentStore
	Courses  CourseStore
	Publish  func(ctx context.Context, ev queue.AbonoRegistradoEvent) error
}

func NewPaymentHandler(payments PaymentStore, students StudentStore, courses CourseStore) *PaymentHandler {
	return &PaymentHandler{Payments: payments, Students: students, Courses: courses}
}

type paymentResp struct {
	ID           uint64 `json:"id"`
	EstudianteID uint64 `json:"estudiante_id"`
	CursoID      uint64 `json:"curso_id"`
	Valor        int64  `json:"valor"`
	Metodo       string `json:"metodo"`
	Nota         string `json:"nota,omitempty"`
	UsuarioID    uint64 `json:"usuario_id"`
	RolUsuario   string `json:"rol_usuario"`
	Fecha        string `json:"fecha"`
}

// Create handles POST /api/abonos. The amount must be positive and may not
// exceed the enrollment's outstanding balance; the repository enforces the
// overdraft rule under a row lock so the balance can never go negative even
// with concurrent requests.
func (h *PaymentHandler) Create(c echo.Context) error {
	userID, rol, err := identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"mensaje": "Token requerido"})
	}
	var body struct {
		EstudianteID uint64 `json:"estudiante_id"`
		CursoID      uint64 `json:"curso_id"`
		Valor        int64  `json:"valor"`
		Metodo       string `json:"metodo"`
		Nota         string `json:"nota"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Cuerpo inválido"})
	}
	if body.EstudianteID == 0 || body.CursoID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "estudiante_id y curso_id requeridos"})
	}
	if body.Valor <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "El valor debe ser positivo"})
	}
	if !model.ValidMetodo(body.Metodo) {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Método de pago inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p := model.Payment{
		EstudianteID: body.EstudianteID,
		CursoID:      body.CursoID,
		Valor:        body.Valor,
		Metodo:       body.Metodo,
		Nota:         body.Nota,
		UsuarioID:    userID,
		RolUsuario:   rol,
	}
	saldo, err := h.Payments.Record(ctx, &p)
	if err != nil {
		switch err {
		case repository.ErrCursoInvalido:
			return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Curso inválido"})
		case repository.ErrSobregiro:
			return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "El abono excede el saldo"})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}

	if h.Publish != nil {
		go h.publishEvent(p, saldo)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"abono": paymentResp{ID: p.ID, EstudianteID: p.EstudianteID, CursoID: p.CursoID,
			Valor: p.Valor, Metodo: p.Metodo, Nota: p.Nota, UsuarioID: p.UsuarioID,
			RolUsuario: p.RolUsuario, Fecha: p.CreatedAt.Format(time.RFC3339)},
		"saldo": saldo,
	})
}

// publishEvent enriches the committed payment with display names and hands
// it to the broker. Runs outside the request; failures are only logged by
// the publisher.
func (h *PaymentHandler) publishEvent(p model.Payment, saldo int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ev := queue.AbonoRegistradoEvent{
		AbonoID:      p.ID,
		EstudianteID: p.EstudianteID,
		CursoID:      p.CursoID,
		Valor:        p.Valor,
		Metodo:       p.Metodo,
		SaldoNuevo:   saldo,
		UsuarioID:    p.UsuarioID,
		RolUsuario:   p.RolUsuario,
		RegistradoEn: p.CreatedAt.Format(time.RFC3339),
	}
	if s, err := h.Students.Get(ctx, p.EstudianteID); err == nil {
		ev.EstudianteNombre = s.Nombre
	}
	if cu, err := h.Courses.Get(ctx, p.CursoID); err == nil {
		ev.CursoNombre = cu.Nombre
	}
	_ = h.Publish(ctx, ev)
}

// ListByStudent handles GET /api/abonos/:id, returning a student's payments
// newest first with recorder and course names attached.
func (h *PaymentHandler) ListByStudent(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "ID inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	details, err := h.Payments.ListByStudent(ctx, id)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toPaymentRows(details)})
}

// ListRecent handles GET /api/abonos, the latest payments across students.
func (h *PaymentHandler) ListRecent(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limite"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	details, err := h.Payments.ListRecent(ctx, limit)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toPaymentRows(details)})
}

type paymentRow struct {
	paymentResp
	Usuario string `json:"usuario"`
	Curso   string `json:"curso"`
}

func toPaymentRows(details []repository.PaymentDetail) []paymentRow {
	rows := make([]paymentRow, 0, len(details))
	for _, d := range details {
		rows = append(rows, paymentRow{
			paymentResp: paymentResp{ID: d.ID, EstudianteID: d.EstudianteID, CursoID: d.CursoID,
				Valor: d.Valor, Metodo: d.Metodo, Nota: d.Nota, UsuarioID: d.UsuarioID,
				RolUsuario: d.RolUsuario, Fecha: d.CreatedAt.Format(time.RFC3339)},
			Usuario: d.UsuarioNombre,
			Curso:   d.CursoNombre,
		})
	}
	return rows
}
