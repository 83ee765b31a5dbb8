package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ceforseg/panel-backend/internal/model"
	"github.com/ceforseg/panel-backend/internal/storage"
)

// CertificateStore is the slice of the certificate repository the handlers
// need.
type CertificateStore interface {
	Create(ctx context.Context, cert *model.Certificate) error
	ListByCedula(ctx context.Context, cedula string) ([]model.Certificate, error)
}

// CertificateHandler implements certificate issuance and the public
// validation lookup.
type CertificateHandler struct {
	Certs CertificateStore
	Files *storage.FileStore
	Now   func() time.Time // injectable clock for tests; defaults to time.Now
}

func NewCertificateHandler(certs CertificateStore, files *storage.FileStore) *CertificateHandler {
	return &CertificateHandler{Certs: certs, Files: files, Now: time.Now}
}

type certificateResp struct {
	ID           uint64 `json:"id"`
	Curso        string `json:"curso"`
	FechaEmision string `json:"fecha_emision"`
	Archivo      string `json:"archivo"`
}

// Issue handles POST /api/certificados: multipart form with cedula, nombre,
// curso, optional fecha_emision (YYYY-MM-DD, defaults to today) and the PDF
// under `pdf`. The registry is append-only; reissues simply add rows.
func (h *CertificateHandler) Issue(c echo.Context) error {
	cedula := strings.TrimSpace(c.FormValue("cedula"))
	nombre := strings.TrimSpace(c.FormValue("nombre"))
	curso := strings.TrimSpace(c.FormValue("curso"))
	if cedula == "" || nombre == "" || curso == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Cédula, nombre y curso requeridos"})
	}

	fecha := strings.TrimSpace(c.FormValue("fecha_emision"))
	if fecha == "" {
		now := time.Now
		if h.Now != nil {
			now = h.Now
		}
		fecha = now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", fecha); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Fecha de emisión inválida"})
	}

	fh, err := c.FormFile("pdf")
	if err != nil || fh == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Archivo PDF requerido"})
	}
	ref, err := h.Files.Save("certificados", fh)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error guardando el archivo"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cert := model.Certificate{Cedula: cedula, Nombre: nombre, Curso: curso,
		FechaEmision: fecha, Archivo: ref}
	if err := h.Certs.Create(ctx, &cert); err != nil {
		// The row never landed, so the stored PDF would be orphaned.
		_ = h.Files.Remove(ref)
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":            cert.ID,
		"cedula":        cert.Cedula,
		"nombre":        cert.Nombre,
		"curso":         cert.Curso,
		"fecha_emision": cert.FechaEmision,
		"archivo":       cert.Archivo,
	})
}

// Validate handles GET /api/validar/:cedula. Public and unauthenticated: an
// employer can check a certificate with nothing but the national ID. An
// unknown cedula yields {valido:false}, never an error.
func (h *CertificateHandler) Validate(c echo.Context) error {
	cedula := strings.TrimSpace(c.Param("cedula"))
	if cedula == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensaje": "Cédula requerida"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	certs, err := h.Certs.ListByCedula(ctx, cedula)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"mensaje": "Error interno"})
	}
	if len(certs) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"valido": false})
	}
	items := make([]certificateResp, 0, len(certs))
	for _, cert := range certs {
		items = append(items, certificateResp{ID: cert.ID, Curso: cert.Curso,
			FechaEmision: cert.FechaEmision, Archivo: cert.Archivo})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"valido":       true,
		"nombre":       certs[0].Nombre,
		"certificados": items,
	})
}
