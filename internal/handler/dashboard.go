package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Stat providers for the dashboard. Kept separate from the CRUD store
// interfaces so the handler only sees the aggregates it reads.
type StudentStats interface {
	Count(ctx context.Context) (int, error)
	OutstandingTotal(ctx context.Context) (int64, error)
}

type CourseStats interface {
	CountActive(ctx context.Context) (int, error)
}

// DashboardHandler serves the panel's landing numbers. The aggregates are
// gathered with plain sequential queries.
type DashboardHandler struct {
	Students StudentStats
	Courses  CourseStats
	Payments PaymentTotals
	Now      func() time.Time
}

func NewDashboardHandler(students StudentStats, courses CourseStats, payments PaymentTotals) *DashboardHandler {
	return &DashboardHandler{Students: students, Courses: courses, Payments: payments, Now: time.Now}
}

// Get handles GET /api/dashboard.
func (h *DashboardHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	students, err := h.Students.Count(ctx)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	courses, err := h.Courses.CountActive(ctx)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	outstanding, err := h.Students.OutstandingTotal(ctx)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	totals, err := h.Payments.TotalsForDate(ctx, now().Format("2006-01-02"))
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"estudiantes":      students,
		"cursos_activos":   courses,
		"saldo_pendiente":  outstanding,
		"recaudo_hoy":      sumTotals(totals),
		"recaudo_por_pago": totals,
	})
}
