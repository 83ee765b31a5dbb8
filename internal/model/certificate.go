package model

import "time"

// Certificate represents a row in the `certificados` table. The table is
// append-only: a student may hold several certificates, including reissues
// for the same course. Archivo is the stored PDF's relative path.
type Certificate struct {
	ID           uint64    // certificados.id
	Cedula       string    // certificados.cedula
	Nombre       string    // certificados.nombre
	Curso        string    // certificados.curso
	FechaEmision string    // certificados.fecha_emision (YYYY-MM-DD)
	Archivo      string    // certificados.archivo
	CreatedAt    time.Time // certificados.creado_en
}
