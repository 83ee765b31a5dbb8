package repository

import (
	"context"
	"database/sql"

	"github.com/ceforseg/panel-backend/internal/model"
)

type CourseRepo struct{ DB *sql.DB }

func NewCourseRepo(db *sql.DB) *CourseRepo { return &CourseRepo{DB: db} }

// Create inserts a course and returns its ID.
func (r *CourseRepo) Create(ctx context.Context, nombre, descripcion string, precio int64) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO cursos (nombre, descripcion, precio, activo) VALUES (?,?,?,1)",
		nombre, descripcion, precio)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListActive returns active courses only; deactivated ones stay out of
// listings and out of new enrollments but keep their historical references.
func (r *CourseRepo) ListActive(ctx context.Context) ([]model.Course, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,nombre,descripcion,precio,activo,creado_en FROM cursos WHERE activo=1 ORDER BY nombre")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Nombre, &c.Descripcion, &c.Precio, &c.Activo, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetActive fetches a single active course.
func (r *CourseRepo) GetActive(ctx context.Context, id uint64) (model.Course, error) {
	var c model.Course
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,nombre,descripcion,precio,activo,creado_en FROM cursos WHERE id=? AND activo=1 LIMIT 1",
		id).Scan(&c.ID, &c.Nombre, &c.Descripcion, &c.Precio, &c.Activo, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Course{}, ErrCursoInvalido
	}
	return c, err
}

// Get fetches a course regardless of its active flag. Historical records
// (enrollments, payments) may reference deactivated courses.
func (r *CourseRepo) Get(ctx context.Context, id uint64) (model.Course, error) {
	var c model.Course
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,nombre,descripcion,precio,activo,creado_en FROM cursos WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.Nombre, &c.Descripcion, &c.Precio, &c.Activo, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Course{}, ErrNotFound
	}
	return c, err
}

// Deactivate soft-deletes a course.
func (r *CourseRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE cursos SET activo=0 WHERE id=? AND activo=1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountActive returns the number of active courses (dashboard).
func (r *CourseRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM cursos WHERE activo=1").Scan(&n)
	return n, err
}
