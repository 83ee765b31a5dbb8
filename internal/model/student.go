package model

import "time"

// Student represents a row in the `estudiantes` table. Cedula is the
// national ID and is unique across students; Foto holds a relative path
// under the upload directory when a photo has been uploaded.
type Student struct {
	ID        uint64    // estudiantes.id
	Nombre    string    // estudiantes.nombre
	Cedula    string    // estudiantes.cedula
	Telefono  string    // estudiantes.telefono
	Ciudad    string    // estudiantes.ciudad
	Direccion string    // estudiantes.direccion
	Foto      string    // estudiantes.foto (may be empty)
	CreatedAt time.Time // estudiantes.creado_en
}

// Enrollment links a student to a course in the `matriculas` table.
// PrecioCurso snapshots the course price at enrollment time; Saldo starts
// equal to it and only ever decreases through payments.
type Enrollment struct {
	ID           uint64    // matriculas.id
	EstudianteID uint64    // matriculas.estudiante_id
	CursoID      uint64    // matriculas.curso_id
	PrecioCurso  int64     // matriculas.precio_curso
	Saldo        int64     // matriculas.saldo
	CreatedAt    time.Time // matriculas.creado_en
}
