// Package queue defines message payloads exchanged over the message broker.
package queue

// AbonoRegistradoEvent is published after a payment has been committed. It
// carries enough detail for downstream consumers (audit log, notifications)
// to act without querying the primary database.
type AbonoRegistradoEvent struct {
	AbonoID          uint64 `json:"abono_id"`
	EstudianteID     uint64 `json:"estudiante_id"`
	EstudianteNombre string `json:"estudiante_nombre"`
	CursoID          uint64 `json:"curso_id"`
	CursoNombre      string `json:"curso_nombre"`
	Valor            int64  `json:"valor"`
	Metodo           string `json:"metodo"`
	SaldoNuevo       int64  `json:"saldo_nuevo"`
	UsuarioID        uint64 `json:"usuario_id"`
	RolUsuario       string `json:"rol_usuario"`
	RegistradoEn     string `json:"registrado_en"`
}
