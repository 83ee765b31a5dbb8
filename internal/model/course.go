package model

import "time"

// Course represents a row in the `cursos` table. Prices are whole currency
// units (COP has no cents in practice). Deleting a course only flips Activo
// so historical enrollments keep a valid reference.
type Course struct {
	ID          uint64    // cursos.id
	Nombre      string    // cursos.nombre
	Descripcion string    // cursos.descripcion
	Precio      int64     // cursos.precio
	Activo      bool      // cursos.activo
	CreatedAt   time.Time // cursos.creado_en
}
