package repository

import (
	"context"
	"database/sql"

	"github.com/ceforseg/panel-backend/internal/model"
)

type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

// PaymentDetail joins a payment with the recorder's login and the course
// name for presentation. UsuarioNombre is empty when the staff account was
// deleted after recording.
type PaymentDetail struct {
	model.Payment
	UsuarioNombre string
	CursoNombre   string
}

// Record inserts a payment and decrements the enrollment balance atomically.
// The enrollment row is locked with FOR UPDATE so two simultaneous payments
// against the same balance serialize; the second one re-reads the already
// decremented saldo and is rejected if it would overdraw. When the student
// holds several enrollments for the same course, the oldest one with an open
// balance receives the payment.
//
// Callers must validate Valor > 0 and the method before calling; this
// function enforces the existence and overdraft invariants.
func (r *PaymentRepo) Record(ctx context.Context, p *model.Payment) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var matriculaID uint64
	var saldo int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, saldo FROM matriculas
		WHERE estudiante_id=? AND curso_id=?
		ORDER BY (saldo > 0) DESC, creado_en, id LIMIT 1 FOR UPDATE`,
		p.EstudianteID, p.CursoID).Scan(&matriculaID, &saldo)
	if err == sql.ErrNoRows {
		return 0, ErrCursoInvalido
	}
	if err != nil {
		return 0, err
	}
	if p.Valor > saldo {
		return 0, ErrSobregiro
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO abonos (estudiante_id, curso_id, valor, metodo, nota, usuario_id, rol_usuario)
		VALUES (?,?,?,?,?,?,?)`,
		p.EstudianteID, p.CursoID, p.Valor, p.Metodo, p.Nota, p.UsuarioID, p.RolUsuario)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	p.ID = uint64(id)

	if _, err := tx.ExecContext(ctx,
		"UPDATE matriculas SET saldo = saldo - ? WHERE id=?", p.Valor, matriculaID); err != nil {
		return 0, err
	}
	if err := tx.QueryRowContext(ctx,
		"SELECT creado_en FROM abonos WHERE id=?", p.ID).Scan(&p.CreatedAt); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return saldo - p.Valor, nil
}

// ListByStudent returns a student's payments newest first, joined with the
// recorder's login and the course name.
func (r *PaymentRepo) ListByStudent(ctx context.Context, studentID uint64) ([]PaymentDetail, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT a.id, a.estudiante_id, a.curso_id, a.valor, a.metodo, a.nota,
			a.usuario_id, a.rol_usuario, a.creado_en,
			COALESCE(u.usuario, ''), c.nombre
		FROM abonos a
		LEFT JOIN usuarios u ON u.id = a.usuario_id
		JOIN cursos c ON c.id = a.curso_id
		WHERE a.estudiante_id=? ORDER BY a.creado_en DESC, a.id DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPaymentDetails(rows)
}

// ListRecent returns the latest payments across all students for the panel's
// activity feed.
func (r *PaymentRepo) ListRecent(ctx context.Context, limit int) ([]PaymentDetail, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT a.id, a.estudiante_id, a.curso_id, a.valor, a.metodo, a.nota,
			a.usuario_id, a.rol_usuario, a.creado_en,
			COALESCE(u.usuario, ''), c.nombre
		FROM abonos a
		LEFT JOIN usuarios u ON u.id = a.usuario_id
		JOIN cursos c ON c.id = a.curso_id
		ORDER BY a.creado_en DESC, a.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPaymentDetails(rows)
}

func scanPaymentDetails(rows *sql.Rows) ([]PaymentDetail, error) {
	var out []PaymentDetail
	for rows.Next() {
		var d PaymentDetail
		if err := rows.Scan(&d.ID, &d.EstudianteID, &d.CursoID, &d.Valor, &d.Metodo,
			&d.Nota, &d.UsuarioID, &d.RolUsuario, &d.CreatedAt,
			&d.UsuarioNombre, &d.CursoNombre); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// TotalsForDate sums payments recorded on the given local calendar date
// (YYYY-MM-DD), grouped by method. Every known method appears in the result
// even when its total is zero, so reconciliation always covers the full set.
func (r *PaymentRepo) TotalsForDate(ctx context.Context, fecha string) (map[string]int64, error) {
	totals := make(map[string]int64, len(model.Metodos))
	for _, m := range model.Metodos {
		totals[m] = 0
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT metodo, COALESCE(SUM(valor),0) FROM abonos WHERE DATE(creado_en)=? GROUP BY metodo",
		fecha)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var metodo string
		var sum int64
		if err := rows.Scan(&metodo, &sum); err != nil {
			return nil, err
		}
		totals[metodo] = sum
	}
	return totals, rows.Err()
}
