package repository

import (
	"context"
	"database/sql"

	"github.com/ceforseg/panel-backend/internal/model"
)

type CertificateRepo struct{ DB *sql.DB }

func NewCertificateRepo(db *sql.DB) *CertificateRepo { return &CertificateRepo{DB: db} }

// Create appends a certificate row. There is no uniqueness constraint:
// reissues and multiple certificates per cedula are expected.
func (r *CertificateRepo) Create(ctx context.Context, c *model.Certificate) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO certificados (cedula, nombre, curso, fecha_emision, archivo) VALUES (?,?,?,?,?)",
		c.Cedula, c.Nombre, c.Curso, c.FechaEmision, c.Archivo)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// ListByCedula returns every certificate for a national ID, newest issue
// date first. An empty slice (not an error) means the id has none.
func (r *CertificateRepo) ListByCedula(ctx context.Context, cedula string) ([]model.Certificate, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, cedula, nombre, curso, DATE_FORMAT(fecha_emision, '%Y-%m-%d'), archivo, creado_en
		FROM certificados WHERE cedula=? ORDER BY fecha_emision DESC, id DESC`, cedula)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Certificate
	for rows.Next() {
		var c model.Certificate
		if err := rows.Scan(&c.ID, &c.Cedula, &c.Nombre, &c.Curso,
			&c.FechaEmision, &c.Archivo, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
