package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ceforseg/panel-backend/internal/model"
	"github.com/ceforseg/panel-backend/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes the password and inserts a staff account, returning its ID.
func (r *UserRepo) Create(ctx context.Context, usuario, password, rol string, cost int) (uint64, error) {
	usuario = strings.ToLower(strings.TrimSpace(usuario))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO usuarios (usuario, password_hash, rol) VALUES (?,?,?)",
		usuario, hash, rol)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUsuarioExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsuario fetches a user by normalized login name.
func (r *UserRepo) GetByUsuario(ctx context.Context, usuario string) (model.User, error) {
	usuario = strings.ToLower(strings.TrimSpace(usuario))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,usuario,password_hash,rol,creado_en FROM usuarios WHERE usuario=? LIMIT 1",
		usuario).Scan(&u.ID, &u.Usuario, &u.PasswordHash, &u.Rol, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// List returns all staff accounts. The repo returns full rows; stripping
// password hashes from responses is the handler's job.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,usuario,password_hash,rol,creado_en FROM usuarios ORDER BY usuario")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Usuario, &u.PasswordHash, &u.Rol, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns the number of staff accounts. Used at startup to decide
// whether to seed the bootstrap gerente.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM usuarios").Scan(&n)
	return n, err
}

// Delete removes a staff account. The whole check-and-delete runs in one
// transaction so two concurrent deletes cannot race past the last-gerente
// guard: the target row is locked first, then the gerente count is taken
// under the same transaction.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var rol string
	err = tx.QueryRowContext(ctx,
		"SELECT rol FROM usuarios WHERE id=? FOR UPDATE", id).Scan(&rol)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if rol == model.RolGerente {
		var n int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM usuarios WHERE rol=? FOR UPDATE", model.RolGerente).Scan(&n); err != nil {
			return err
		}
		if n <= 1 {
			return ErrLastGerente
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM usuarios WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}
