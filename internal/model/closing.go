package model

import "time"

// CashClosing represents a row in the `cierres_caja` table: the daily
// reconciliation between payments recorded by the system and the amounts
// physically counted at the register. At most one row exists per calendar
// date; once written it is never amended.
type CashClosing struct {
	ID         uint64           // cierres_caja.id
	Fecha      string           // cierres_caja.fecha (YYYY-MM-DD, unique)
	Sistema    map[string]int64 // cierres_caja.totales_sistema (JSON, method -> amount)
	Reportado  map[string]int64 // cierres_caja.totales_reportados (JSON, method -> amount)
	Diferencia int64            // cierres_caja.diferencia (reported - system)
	UsuarioID  uint64           // cierres_caja.usuario_id
	CreatedAt  time.Time        // cierres_caja.creado_en
}
