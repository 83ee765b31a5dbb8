package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/ceforseg/panel-backend/internal/model"
)

type ClosingRepo struct{ DB *sql.DB }

func NewClosingRepo(db *sql.DB) *ClosingRepo { return &ClosingRepo{DB: db} }

// Create persists a closing record. The unique key on fecha is the arbiter
// for the one-per-day invariant, so even two racing close requests cannot
// both land; the loser gets ErrDiaCerrado.
func (r *ClosingRepo) Create(ctx context.Context, c *model.CashClosing) error {
	sistema, err := json.Marshal(c.Sistema)
	if err != nil {
		return err
	}
	reportado, err := json.Marshal(c.Reportado)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO cierres_caja (fecha, totales_sistema, totales_reportados, diferencia, usuario_id)
		VALUES (?,?,?,?,?)`,
		c.Fecha, sistema, reportado, c.Diferencia, c.UsuarioID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDiaCerrado
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// ExistsForDate reports whether a closing already exists for the date.
func (r *ClosingRepo) ExistsForDate(ctx context.Context, fecha string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM cierres_caja WHERE fecha=? LIMIT 1", fecha).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns all closings, newest date first.
func (r *ClosingRepo) List(ctx context.Context) ([]model.CashClosing, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, DATE_FORMAT(fecha, '%Y-%m-%d'), totales_sistema, totales_reportados,
			diferencia, usuario_id, creado_en
		FROM cierres_caja ORDER BY fecha DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CashClosing
	for rows.Next() {
		var c model.CashClosing
		var sistema, reportado []byte
		if err := rows.Scan(&c.ID, &c.Fecha, &sistema, &reportado,
			&c.Diferencia, &c.UsuarioID, &c.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(sistema, &c.Sistema); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(reportado, &c.Reportado); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
