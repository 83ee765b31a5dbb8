package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=Local so calendar-day
	// grouping (cash closing) follows the register's local clock
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema holds every table the panel uses. Statements are idempotent so the
// server can run them on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS usuarios (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		usuario VARCHAR(64) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		rol VARCHAR(20) NOT NULL,
		creado_en DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_usuarios_usuario (usuario)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS cursos (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		nombre VARCHAR(120) NOT NULL,
		descripcion TEXT,
		precio BIGINT NOT NULL DEFAULT 0,
		activo TINYINT(1) NOT NULL DEFAULT 1,
		creado_en DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS estudiantes (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		nombre VARCHAR(120) NOT NULL,
		cedula VARCHAR(32) NOT NULL,
		telefono VARCHAR(32) NOT NULL DEFAULT '',
		ciudad VARCHAR(64) NOT NULL DEFAULT '',
		direccion VARCHAR(160) NOT NULL DEFAULT '',
		foto VARCHAR(255) NOT NULL DEFAULT '',
		creado_en DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_estudiantes_cedula (cedula)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS matriculas (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		estudiante_id BIGINT UNSIGNED NOT NULL,
		curso_id BIGINT UNSIGNED NOT NULL,
		precio_curso BIGINT NOT NULL,
		saldo BIGINT NOT NULL,
		creado_en DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_matriculas_estudiante (estudiante_id),
		CONSTRAINT fk_matriculas_estudiante FOREIGN KEY (estudiante_id) REFERENCES estudiantes(id),
		CONSTRAINT fk_matriculas_curso FOREIGN KEY (curso_id) REFERENCES cursos(id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS abonos (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		estudiante_id BIGINT UNSIGNED NOT NULL,
		curso_id BIGINT UNSIGNED NOT NULL,
		valor BIGINT NOT NULL,
		metodo VARCHAR(20) NOT NULL,
		nota VARCHAR(255) NOT NULL DEFAULT '',
		usuario_id BIGINT UNSIGNED NOT NULL,
		rol_usuario VARCHAR(20) NOT NULL,
		creado_en DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_abonos_estudiante (estudiante_id),
		KEY idx_abonos_creado (creado_en),
		CONSTRAINT fk_abonos_estudiante FOREIGN KEY (estudiante_id) REFERENCES estudiantes(id),
		CONSTRAINT fk_abonos_curso FOREIGN KEY (curso_id) REFERENCES cursos(id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS cierres_caja (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		fecha DATE NOT NULL,
		totales_sistema JSON NOT NULL,
		totales_reportados JSON NOT NULL,
		diferencia BIGINT NOT NULL,
		usuario_id BIGINT UNSIGNED NOT NULL,
		creado_en DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_cierres_fecha (fecha)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS certificados (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		cedula VARCHAR(32) NOT NULL,
		nombre VARCHAR(120) NOT NULL,
		curso VARCHAR(120) NOT NULL,
		fecha_emision DATE NOT NULL,
		archivo VARCHAR(255) NOT NULL,
		creado_en DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_certificados_cedula (cedula)
	) ENGINE=InnoDB`,
}

// EnsureSchema creates all tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
