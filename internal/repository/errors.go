// Package repository defines sentinel errors shared across repositories so
// handlers can map storage outcomes onto the HTTP error taxonomy without
// inspecting driver error strings themselves.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist. Handlers
// translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrUsuarioExists is returned when creating a staff account whose login
// name is already taken.
var ErrUsuarioExists = errors.New("usuario already exists")

// ErrCedulaExists is returned when creating a student whose national ID is
// already registered. The original student row is left untouched.
var ErrCedulaExists = errors.New("cedula already exists")

// ErrLastGerente is returned when a delete would remove the last remaining
// manager account. The system must always keep at least one gerente.
var ErrLastGerente = errors.New("last gerente cannot be deleted")

// ErrCursoInvalido is returned when an operation references a course that is
// missing or inactive, or a payment references a (student, course) pair with
// no enrollment.
var ErrCursoInvalido = errors.New("curso invalido")

// ErrSobregiro is returned when a payment would exceed the enrollment's
// outstanding balance. Balances never go negative.
var ErrSobregiro = errors.New("abono excede el saldo")

// ErrDiaCerrado is returned when a cash closing already exists for the date
// being closed. Closings are a one-way ratchet.
var ErrDiaCerrado = errors.New("dia ya cerrado")
