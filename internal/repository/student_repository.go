package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ceforseg/panel-backend/internal/model"
)

type StudentRepo struct{ DB *sql.DB }

func NewStudentRepo(db *sql.DB) *StudentRepo { return &StudentRepo{DB: db} }

// Enrollment outcome per requested course in a batch enrollment. Invalid
// course ids are reported, never silently dropped.
const (
	EstadoMatriculado = "matriculado"
	EstadoInvalido    = "invalido"
)

// CourseStatus reports what happened to one requested course id.
type CourseStatus struct {
	CursoID uint64 `json:"curso_id"`
	Estado  string `json:"estado"`
}

// StudentSummary is one row of the student listing: the student plus the
// names of every enrolled course and the sum of their outstanding balances.
type StudentSummary struct {
	model.Student
	Cursos     []string
	SaldoTotal int64
}

// EnrollmentDetail joins an enrollment with its course name for display.
type EnrollmentDetail struct {
	model.Enrollment
	CursoNombre string
}

// CreateWithEnrollments inserts the student and one enrollment per requested
// active course, all in a single transaction. Each enrollment snapshots the
// course price and opens the balance at that price. The returned statuses
// report, per requested id, whether it was enrolled or skipped as invalid.
// A duplicate cedula aborts the whole operation with ErrCedulaExists.
func (r *StudentRepo) CreateWithEnrollments(ctx context.Context, s *model.Student, cursoIDs []uint64) ([]CourseStatus, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO estudiantes (nombre, cedula, telefono, ciudad, direccion, foto) VALUES (?,?,?,?,?,?)",
		s.Nombre, s.Cedula, s.Telefono, s.Ciudad, s.Direccion, s.Foto)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrCedulaExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	s.ID = uint64(id)

	statuses := make([]CourseStatus, 0, len(cursoIDs))
	for _, cid := range cursoIDs {
		var precio int64
		err := tx.QueryRowContext(ctx,
			"SELECT precio FROM cursos WHERE id=? AND activo=1", cid).Scan(&precio)
		if err == sql.ErrNoRows {
			statuses = append(statuses, CourseStatus{CursoID: cid, Estado: EstadoInvalido})
			continue
		}
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO matriculas (estudiante_id, curso_id, precio_curso, saldo) VALUES (?,?,?,?)",
			s.ID, cid, precio, precio); err != nil {
			return nil, err
		}
		statuses = append(statuses, CourseStatus{CursoID: cid, Estado: EstadoMatriculado})
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return statuses, nil
}

// AddCourse enrolls an existing student in one more course at the course's
// current full price. Missing or inactive courses are ErrCursoInvalido.
func (r *StudentRepo) AddCourse(ctx context.Context, studentID, cursoID uint64) error {
	var exists int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM estudiantes WHERE id=?", studentID).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	var precio int64
	err = r.DB.QueryRowContext(ctx,
		"SELECT precio FROM cursos WHERE id=? AND activo=1", cursoID).Scan(&precio)
	if err == sql.ErrNoRows {
		return ErrCursoInvalido
	}
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO matriculas (estudiante_id, curso_id, precio_curso, saldo) VALUES (?,?,?,?)",
		studentID, cursoID, precio, precio)
	return err
}

// List returns student summaries, optionally filtered by a search term that
// matches name, cedula or phone. Course names and balances are aggregated
// across all of the student's enrollments.
func (r *StudentRepo) List(ctx context.Context, q string) ([]StudentSummary, error) {
	query := `SELECT e.id, e.nombre, e.cedula, e.telefono, e.ciudad, e.direccion, e.foto, e.creado_en,
		COALESCE(GROUP_CONCAT(c.nombre ORDER BY m.creado_en SEPARATOR '||'), ''),
		COALESCE(SUM(m.saldo), 0)
		FROM estudiantes e
		LEFT JOIN matriculas m ON m.estudiante_id = e.id
		LEFT JOIN cursos c ON c.id = m.curso_id`
	args := []interface{}{}
	if q = strings.TrimSpace(q); q != "" {
		query += " WHERE e.nombre LIKE ? OR e.cedula LIKE ? OR e.telefono LIKE ?"
		like := "%" + q + "%"
		args = append(args, like, like, like)
	}
	query += " GROUP BY e.id ORDER BY e.nombre"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StudentSummary
	for rows.Next() {
		var s StudentSummary
		var cursos string
		if err := rows.Scan(&s.ID, &s.Nombre, &s.Cedula, &s.Telefono, &s.Ciudad,
			&s.Direccion, &s.Foto, &s.CreatedAt, &cursos, &s.SaldoTotal); err != nil {
			return nil, err
		}
		if cursos != "" {
			s.Cursos = strings.Split(cursos, "||")
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Get fetches a single student row.
func (r *StudentRepo) Get(ctx context.Context, id uint64) (model.Student, error) {
	var s model.Student
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,nombre,cedula,telefono,ciudad,direccion,foto,creado_en FROM estudiantes WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.Nombre, &s.Cedula, &s.Telefono, &s.Ciudad, &s.Direccion, &s.Foto, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Student{}, ErrNotFound
	}
	return s, err
}

// Enrollments lists a student's enrollments with course names, oldest first.
func (r *StudentRepo) Enrollments(ctx context.Context, studentID uint64) ([]EnrollmentDetail, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT m.id, m.estudiante_id, m.curso_id, m.precio_curso, m.saldo, m.creado_en, c.nombre
		FROM matriculas m JOIN cursos c ON c.id = m.curso_id
		WHERE m.estudiante_id=? ORDER BY m.creado_en, m.id`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EnrollmentDetail
	for rows.Next() {
		var d EnrollmentDetail
		if err := rows.Scan(&d.ID, &d.EstudianteID, &d.CursoID, &d.PrecioCurso,
			&d.Saldo, &d.CreatedAt, &d.CursoNombre); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update rewrites the student's contact fields. The photo reference is only
// replaced when foto is non-empty so a PUT without a file keeps the old one.
func (r *StudentRepo) Update(ctx context.Context, s *model.Student) error {
	query := "UPDATE estudiantes SET nombre=?, telefono=?, ciudad=?, direccion=?"
	args := []interface{}{s.Nombre, s.Telefono, s.Ciudad, s.Direccion}
	if s.Foto != "" {
		query += ", foto=?"
		args = append(args, s.Foto)
	}
	query += " WHERE id=?"
	args = append(args, s.ID)
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op update;
		// distinguish by checking existence.
		var one int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM estudiantes WHERE id=?", s.ID).Scan(&one); err == sql.ErrNoRows {
			return ErrNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a student together with their enrollments and payment
// history in one transaction.
func (r *StudentRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM estudiantes WHERE id=? FOR UPDATE", id).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM abonos WHERE estudiante_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM matriculas WHERE estudiante_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM estudiantes WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// Count returns the number of students (dashboard).
func (r *StudentRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM estudiantes").Scan(&n)
	return n, err
}

// OutstandingTotal sums every open balance across all enrollments (dashboard).
func (r *StudentRepo) OutstandingTotal(ctx context.Context) (int64, error) {
	var total int64
	err := r.DB.QueryRowContext(ctx, "SELECT COALESCE(SUM(saldo),0) FROM matriculas").Scan(&total)
	return total, err
}
