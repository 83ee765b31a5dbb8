package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ceforseg/panel-backend/internal/model"
	"github.com/ceforseg/panel-backend/internal/repository"
)

// ClosingStore is the slice of the closing repository the handlers need.
type ClosingStore interface {
	Create(ctx context.Context, c *model.CashClosing) error
	ExistsForDate(ctx context.Context, fecha string) (bool, error)
	List(ctx context.Context) ([]model.CashClosing, error)
}

// PaymentTotals provides the per-method payment sums the closing needs.
type PaymentTotals interface {
	TotalsForDate(ctx context.Context, fecha string) (map[string]int64, error)
}

// ClosingHandler implements the cierre de caja endpoints.
type ClosingHandler struct {
	Closings ClosingStore
	Payments PaymentTotals
	Now      func() time.Time // injectable clock for tests; defaults to time.Now
}

func NewClosingHandler(closings ClosingStore, payments PaymentTotals) *ClosingHandler {
	return &ClosingHandler{Closings: closings, Payments: payments, Now: time.Now}
}

// today returns the local calendar date the register operates on.
func (h *ClosingHandler) today() string {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	return now().Format("2006-01-02")
}

// sumTotals adds up a method->amount map.
func sumTotals(m map[string]int64) int64 {
	var total int64
	for _, v := range m {
		total += v
	}
	return total
}

type closingResp struct {
	ID         uint64           `json:"id"`
	Fecha      string           `json:"fecha"`
	Sistema    map[string]int64 `json:"totales_sistema"`
	Reportado  map[string]int64 `json:"totales_reportados"`
	Diferencia int64            `json:"diferencia"`
	UsuarioID  uint64           `json:"usuario_id"`
}

// Today handles GET /api/cierre-caja/hoy: the system's per-method totals for
// the current day plus whether the day is already closed.
func (h *ClosingHandler) Today(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	fecha := h.today()
	totals, err := h.Payments.TotalsForDate(ctx, fecha)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	cerrado, err := h.Closings.ExistsForDate(ctx, fecha)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"fecha":   fecha,
		"totales": totals,
		"total":   sumTotals(totals),
		"cerrado": cerrado,
	})
}

// Close handles POST /api/cierre-caja. It compares the manually counted
// totals against the system's, persists the reconciliation record and
// refuses to run twice for the same date. Once stored, the record is
// immutable; there is no reopen or amend operation.
func (h *ClosingHandler) Close(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"mensaje": "Token requerido"})
	}
	var body struct {
		Reportado map[string]int64 `json:"reportado"`
	}
	if err := c.Bind(&body); err != nil || body.Reportado == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Totales reportados requeridos"})
	}
	for metodo, valor := range body.Reportado {
		if !model.ValidMetodo(metodo) {
			return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Método de pago inválido"})
		}
		if valor < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Los totales no pueden ser negativos"})
		}
	}
	// Absent methods count as zero so the stored record always covers the
	// full method set.
	reportado := make(map[string]int64, len(model.Metodos))
	for _, m := range model.Metodos {
		reportado[m] = body.Reportado[m]
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	fecha := h.today()
	sistema, err := h.Payments.TotalsForDate(ctx, fecha)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}

	record := model.CashClosing{
		Fecha:      fecha,
		Sistema:    sistema,
		Reportado:  reportado,
		Diferencia: sumTotals(reportado) - sumTotals(sistema),
		UsuarioID:  userID,
	}
	if err := h.Closings.Create(ctx, &record); err != nil {
		if err == repository.ErrDiaCerrado {
			return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "El día ya fue cerrado"})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	return c.JSON(http.StatusCreated, closingResp{ID: record.ID, Fecha: record.Fecha,
		Sistema: record.Sistema, Reportado: record.Reportado,
		Diferencia: record.Diferencia, UsuarioID: record.UsuarioID})
}

// History handles GET /api/cierres-caja (gerente only), newest date first.
func (h *ClosingHandler) History(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	closings, err := h.Closings.List(ctx)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	items := make([]closingResp, 0, len(closings))
	for _, r := range closings {
		items = append(items, closingResp{ID: r.ID, Fecha: r.Fecha, Sistema: r.Sistema,
			Reportado: r.Reportado, Diferencia: r.Diferencia, UsuarioID: r.UsuarioID})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
