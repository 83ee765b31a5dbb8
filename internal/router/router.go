// Package router wires every HTTP route of the panel API to its handler and
// middleware chain.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ceforseg/panel-backend/internal/config"
	"github.com/ceforseg/panel-backend/internal/handler"
	"github.com/ceforseg/panel-backend/internal/middleware"
	"github.com/ceforseg/panel-backend/internal/model"
)

// Handlers groups everything the router needs to register the API.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Courses      *handler.CourseHandler
	Students     *handler.StudentHandler
	Payments     *handler.PaymentHandler
	Closings     *handler.ClosingHandler
	Certificates *handler.CertificateHandler
	Dashboard    *handler.DashboardHandler
}

// Register sets up the full route table. rdb may be nil, in which case the
// Redis-backed rate limiting and caching degrade to no-ops.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/", handler.Home)
	e.GET("/healthz", handler.Health)

	// Uploaded artifacts (student photos, certificate PDFs) are served
	// read-only; references stored in the DB are relative to this prefix.
	e.Static("/uploads", cfg.UploadDir)

	// Login is the only credentialed entry point and the one endpoint worth
	// brute-forcing, so it alone gets the per-IP token bucket.
	e.POST("/login", h.Auth.Login, middleware.NewLoginRateLimit(config.LoadRateLimitConfig(), rdb))

	// Public certificate validation: no token, cacheable.
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	e.GET("/api/validar/:cedula", h.Certificates.Validate, cache)

	// Everything else under /api requires a valid session token.
	api := e.Group("/api", middleware.JWTAuth(cfg.JWTSecret))
	anyStaff := middleware.RequireRol(model.RolGerente, model.RolSecretaria)
	soloGerente := middleware.RequireRol(model.RolGerente)

	// Staff accounts: gerente only.
	usuarios := api.Group("/usuarios", soloGerente)
	usuarios.GET("", h.Users.List)
	usuarios.POST("", h.Users.Create)
	usuarios.DELETE("/:id", h.Users.Delete)

	// Courses: both roles read, gerente writes.
	api.GET("/cursos", h.Courses.List, anyStaff)
	api.POST("/cursos", h.Courses.Create, soloGerente)
	api.DELETE("/cursos/:id", h.Courses.Delete, soloGerente)

	// Students and enrollments.
	api.GET("/estudiantes", h.Students.List, anyStaff)
	api.POST("/estudiantes", h.Students.Create, anyStaff)
	api.GET("/estudiantes/:id", h.Students.Get, anyStaff)
	api.PUT("/estudiantes/:id", h.Students.Update, anyStaff)
	api.DELETE("/estudiantes/:id", h.Students.Delete, soloGerente)
	api.POST("/estudiantes/:id/curso", h.Students.AddCourse, anyStaff)

	// Payments.
	api.GET("/abonos", h.Payments.ListRecent, anyStaff)
	api.POST("/abonos", h.Payments.Create, anyStaff)
	api.GET("/abonos/:id", h.Payments.ListByStudent, anyStaff)

	// Cash closing; the history is management-only.
	api.GET("/cierre-caja/hoy", h.Closings.Today, anyStaff)
	api.POST("/cierre-caja", h.Closings.Close, anyStaff)
	api.GET("/cierres-caja", h.Closings.History, soloGerente)

	// Certificates are issued by staff; validation above is public.
	api.POST("/certificados", h.Certificates.Issue, anyStaff)

	// Dashboard aggregates, cached briefly.
	api.GET("/dashboard", h.Dashboard.Get, anyStaff, cache)
}
