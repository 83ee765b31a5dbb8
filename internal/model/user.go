package model

import "time"

// Staff roles form a closed set. The role string travels inside the JWT and
// is snapshotted onto every payment a user records, so anything outside this
// set must be rejected at the boundary instead of stored.
const (
	RolGerente    = "gerente"
	RolSecretaria = "secretaria"
)

// ValidRol reports whether r is one of the known staff roles.
func ValidRol(r string) bool {
	return r == RolGerente || r == RolSecretaria
}

// User represents a staff account row in the `usuarios` table.
//
// Fields:
//  ID           – primary key identifier.
//  Usuario      – unique login name.
//  PasswordHash – bcrypt hashed password.
//  Rol          – staff role (gerente or secretaria).
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // usuarios.id
	Usuario      string    // usuarios.usuario
	PasswordHash string    // usuarios.password_hash
	Rol          string    // usuarios.rol
	CreatedAt    time.Time // usuarios.creado_en
}
