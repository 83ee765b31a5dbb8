package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds every runtime value the panel needs. All of it comes from the
// environment (a .env file in development); in particular the JWT signing
// secret is never hardcoded anywhere in the codebase.
type Config struct {
	Env         string // application environment (e.g. "dev", "prod")
	Port        string // HTTP port to listen on
	DBUser      string // database username
	DBPass      string // database password (optional)
	DBHost      string // database host address
	DBPort      string // database port number
	DBName      string // database name
	JWTSecret   string // secret used to sign session tokens
	TokenTTLMin int    // session token time-to-live in minutes (default one 8h shift)
	BcryptCost  int    // bcrypt cost for password hashing
	UploadDir   string // directory for student photos and certificate PDFs
	AdminUser   string // login of the bootstrap gerente seeded on first start
	AdminPass   string // password of the bootstrap gerente
}

// Load reads configuration from the environment. Required variables are
// enforced by must(); missing values abort startup with a fatal log message.
func Load() Config {
	return Config{
		Env:         must("APP_ENV"),
		Port:        must("APP_PORT"),
		DBUser:      must("DB_USER"),
		DBPass:      os.Getenv("DB_PASS"), // empty allowed
		DBHost:      must("DB_HOST"),
		DBPort:      must("DB_PORT"),
		DBName:      must("DB_NAME"),
		JWTSecret:   must("JWT_SECRET"),
		TokenTTLMin: intOr("TOKEN_TTL_MIN", 480), // 8 hours
		BcryptCost:  intOr("BCRYPT_COST", 10),
		UploadDir:   strOr("UPLOAD_DIR", "uploads"),
		AdminUser:   os.Getenv("ADMIN_USER"),
		AdminPass:   os.Getenv("ADMIN_PASSWORD"),
	}
}

// must retrieves a required environment variable or exits the process.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func strOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
