package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ceforseg/panel-backend/internal/model"
)

// jsonCtx builds an Echo context for a JSON request.
func jsonCtx(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// formCtx builds an Echo context for a urlencoded form request.
func formCtx(method, target, form string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asStaff injects the identity JWTAuth would have stored.
func asStaff(c echo.Context, id uint64, rol string) {
	c.Set("user_id", id)
	c.Set("rol", rol)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return m
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func wantMensaje(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if got := decode(t, rec)["mensaje"]; got != want {
		t.Fatalf("mensaje = %v, want %q", got, want)
	}
}

func uitoa(v uint64) string { return strconv.FormatUint(v, 10) }

func studentFixture(cedula string) *model.Student {
	return &model.Student{Nombre: "Juan Pérez", Cedula: cedula, Telefono: "3001234567", Ciudad: "Bogotá"}
}
