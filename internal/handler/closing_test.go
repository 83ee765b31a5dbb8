package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ceforseg/panel-backend/internal/model"
)

// closingFixture wires payment and closing handlers over one store with a
// fixed clock so "today" is stable.
func closingFixture(t *testing.T) (*memStore, *PaymentHandler, *ClosingHandler, string) {
	t.Helper()
	store := newMemStore()
	at := time.Date(2026, 8, 31, 10, 0, 0, 0, time.Local)
	clock := func() time.Time { return at }

	payments := paymentStore{memStore: store, now: clock}
	ph := NewPaymentHandler(payments, studentStore{store}, courseStore{store})
	ch := NewClosingHandler(closingStore{store}, payments)
	ch.Now = clock
	return store, ph, ch, at.Format("2006-01-02")
}

func TestTodayTotals(t *testing.T) {
	store, ph, ch, fecha := closingFixture(t)
	studentID, cursoID := paymentFixture(t, store)

	postAbono(t, ph, `{"estudiante_id":`+uitoa(studentID)+`,"curso_id":`+uitoa(cursoID)+`,"valor":40,"metodo":"efectivo"}`)
	postAbono(t, ph, `{"estudiante_id":`+uitoa(studentID)+`,"curso_id":`+uitoa(cursoID)+`,"valor":25,"metodo":"nequi"}`)

	c, rec := jsonCtx(http.MethodGet, "/api/cierre-caja/hoy", "")
	if err := ch.Today(c); err != nil {
		t.Fatalf("today: %v", err)
	}
	wantStatus(t, rec, http.StatusOK)

	body := decode(t, rec)
	if body["fecha"] != fecha {
		t.Fatalf("fecha = %v, want %s", body["fecha"], fecha)
	}
	if body["cerrado"] != false {
		t.Fatal("day reported as closed before any closing")
	}
	totals := body["totales"].(map[string]any)
	if totals["efectivo"].(float64) != 40 || totals["nequi"].(float64) != 25 {
		t.Fatalf("totales = %v, want efectivo 40 / nequi 25", totals)
	}
	if body["total"].(float64) != 65 {
		t.Fatalf("total = %v, want 65", body["total"])
	}
}

func TestCloseComputesDifference(t *testing.T) {
	store, ph, ch, fecha := closingFixture(t)
	studentID, cursoID := paymentFixture(t, store)
	postAbono(t, ph, `{"estudiante_id":`+uitoa(studentID)+`,"curso_id":`+uitoa(cursoID)+`,"valor":40,"metodo":"efectivo"}`)

	// The drawer came up short: 35 counted against 40 in the system.
	c, rec := jsonCtx(http.MethodPost, "/api/cierre-caja", `{"reportado":{"efectivo":35}}`)
	asStaff(c, 7, model.RolSecretaria)
	if err := ch.Close(c); err != nil {
		t.Fatalf("close: %v", err)
	}
	wantStatus(t, rec, http.StatusCreated)

	body := decode(t, rec)
	if body["diferencia"].(float64) != -5 {
		t.Fatalf("diferencia = %v, want -5", body["diferencia"])
	}
	// The omitted method is stored as zero, not dropped.
	reportado := body["totales_reportados"].(map[string]any)
	if reportado["nequi"].(float64) != 0 {
		t.Fatalf("reportado nequi = %v, want 0", reportado["nequi"])
	}

	stored, ok := store.closings[fecha]
	if !ok {
		t.Fatalf("no closing stored for %s", fecha)
	}
	if stored.UsuarioID != 7 || stored.Diferencia != -5 {
		t.Fatalf("stored closing = %+v", stored)
	}
}

func TestCloseTwiceRejected(t *testing.T) {
	store, _, ch, fecha := closingFixture(t)

	c, rec := jsonCtx(http.MethodPost, "/api/cierre-caja", `{"reportado":{"efectivo":0}}`)
	asStaff(c, 7, model.RolGerente)
	if err := ch.Close(c); err != nil {
		t.Fatalf("first close: %v", err)
	}
	wantStatus(t, rec, http.StatusCreated)
	first := store.closings[fecha]

	c, rec = jsonCtx(http.MethodPost, "/api/cierre-caja", `{"reportado":{"efectivo":999}}`)
	asStaff(c, 8, model.RolGerente)
	if err := ch.Close(c); err != nil {
		t.Fatalf("second close: %v", err)
	}
	wantStatus(t, rec, http.StatusBadRequest)
	wantMensaje(t, rec, "El día ya fue cerrado")

	// The stored record is untouched by the rejected attempt.
	if got := store.closings[fecha]; got.UsuarioID != first.UsuarioID || got.Reportado["efectivo"] != 0 {
		t.Fatalf("closing mutated by rejected attempt: %+v", got)
	}
}

func TestCloseRejectsBadTotals(t *testing.T) {
	_, _, ch, _ := closingFixture(t)

	for body, mensaje := range map[string]string{
		`{"reportado":{"bitcoin":10}}`:  "Método de pago inválido",
		`{"reportado":{"efectivo":-1}}`: "Los totales no pueden ser negativos",
		`{}`:                            "Totales reportados requeridos",
	} {
		c, rec := jsonCtx(http.MethodPost, "/api/cierre-caja", body)
		asStaff(c, 7, model.RolGerente)
		if err := ch.Close(c); err != nil {
			t.Fatalf("close %s: %v", body, err)
		}
		wantStatus(t, rec, http.StatusBadRequest)
		wantMensaje(t, rec, mensaje)
	}
}

// TestRegisterDayFlow walks a full register day: enroll at 100, receive 40,
// reject an overdrawing 70, close with a matching drawer, refuse a second
// close.
func TestRegisterDayFlow(t *testing.T) {
	store, ph, ch, fecha := closingFixture(t)
	cursoID := store.CreateCourse("Fundamentación", 100)
	statuses, err := studentStore{store}.CreateWithEnrollments(context.Background(), studentFixture("1001"), []uint64{cursoID})
	if err != nil || len(statuses) != 1 {
		t.Fatalf("enroll: %v %+v", err, statuses)
	}
	studentID := store.enrollments[0].EstudianteID

	rec := postAbono(t, ph, `{"estudiante_id":`+uitoa(studentID)+`,"curso_id":`+uitoa(cursoID)+`,"valor":40,"metodo":"efectivo"}`)
	wantStatus(t, rec, http.StatusCreated)
	if decode(t, rec)["saldo"].(float64) != 60 {
		t.Fatal("saldo after 40 on 100 should be 60")
	}

	rec = postAbono(t, ph, `{"estudiante_id":`+uitoa(studentID)+`,"curso_id":`+uitoa(cursoID)+`,"valor":70,"metodo":"efectivo"}`)
	wantStatus(t, rec, http.StatusBadRequest)
	if store.enrollments[0].Saldo != 60 {
		t.Fatalf("saldo = %d after rejected overdraft, want 60", store.enrollments[0].Saldo)
	}

	c, rec2 := jsonCtx(http.MethodPost, "/api/cierre-caja", `{"reportado":{"efectivo":40,"nequi":0}}`)
	asStaff(c, 7, model.RolSecretaria)
	if err := ch.Close(c); err != nil {
		t.Fatalf("close: %v", err)
	}
	wantStatus(t, rec2, http.StatusCreated)
	if decode(t, rec2)["diferencia"].(float64) != 0 {
		t.Fatal("matching drawer should close with diferencia 0")
	}

	c, rec2 = jsonCtx(http.MethodPost, "/api/cierre-caja", `{"reportado":{"efectivo":40}}`)
	asStaff(c, 7, model.RolSecretaria)
	if err := ch.Close(c); err != nil {
		t.Fatalf("second close: %v", err)
	}
	wantStatus(t, rec2, http.StatusBadRequest)

	if _, ok := store.closings[fecha]; !ok {
		t.Fatalf("closing for %s missing", fecha)
	}
}
