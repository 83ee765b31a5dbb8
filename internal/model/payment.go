package model

import "time"

// Payment methods form a closed set, mirrored in the cash-closing totals.
const (
	MetodoEfectivo = "efectivo"
	MetodoNequi    = "nequi"
)

// Metodos lists every accepted payment method. Cash-closing totals iterate
// this slice so a new method shows up in reconciliation automatically.
var Metodos = []string{MetodoEfectivo, MetodoNequi}

// ValidMetodo reports whether m is an accepted payment method.
func ValidMetodo(m string) bool {
	for _, v := range Metodos {
		if v == m {
			return true
		}
	}
	return false
}

// Payment represents an immutable row in the `abonos` table. UsuarioID and
// RolUsuario record who registered the payment at the time it happened; the
// role is a snapshot, not a join, so later role changes do not rewrite
// history.
type Payment struct {
	ID           uint64    // abonos.id
	EstudianteID uint64    // abonos.estudiante_id
	CursoID      uint64    // abonos.curso_id
	Valor        int64     // abonos.valor
	Metodo       string    // abonos.metodo
	Nota         string    // abonos.nota
	UsuarioID    uint64    // abonos.usuario_id
	RolUsuario   string    // abonos.rol_usuario
	CreatedAt    time.Time // abonos.creado_en
}
