package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ceforseg/panel-backend/internal/config"
	"github.com/ceforseg/panel-backend/internal/database"
	"github.com/ceforseg/panel-backend/internal/handler"
	"github.com/ceforseg/panel-backend/internal/model"
	"github.com/ceforseg/panel-backend/internal/queue"
	"github.com/ceforseg/panel-backend/internal/repository"
	"github.com/ceforseg/panel-backend/internal/router"
	queue_publisher "github.com/ceforseg/panel-backend/internal/service"
	"github.com/ceforseg/panel-backend/internal/storage"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("ensure schema: %v", err)
	}

	users := repository.NewUserRepo(db)
	courses := repository.NewCourseRepo(db)
	students := repository.NewStudentRepo(db)
	payments := repository.NewPaymentRepo(db)
	closings := repository.NewClosingRepo(db)
	certs := repository.NewCertificateRepo(db)

	seedAdmin(ctx, cfg, users)
	cancel()

	files := storage.NewFileStore(cfg.UploadDir)

	paymentHandler := handler.NewPaymentHandler(payments, students, courses)
	paymentHandler.Publish = queue_publisher.PublishAbonoRegistrado

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users),
		Users:        handler.NewUserHandler(users, cfg.BcryptCost),
		Courses:      handler.NewCourseHandler(courses),
		Students:     handler.NewStudentHandler(students, files),
		Payments:     paymentHandler,
		Closings:     handler.NewClosingHandler(closings, payments),
		Certificates: handler.NewCertificateHandler(certs, files),
		Dashboard:    handler.NewDashboardHandler(students, courses, payments),
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	// Audit consumer runs for the lifetime of the process and reconnects on
	// its own; it never brings the API down.
	go func() {
		if err := queue.StartAbonoConsumer(); err != nil {
			log.Printf("abono consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, h, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// seedAdmin creates the bootstrap gerente on a fresh install so the panel is
// reachable before any account exists. Skipped when users are present or the
// seed credentials are not configured.
func seedAdmin(ctx context.Context, cfg config.Config, users *repository.UserRepo) {
	if cfg.AdminUser == "" || cfg.AdminPass == "" {
		return
	}
	n, err := users.Count(ctx)
	if err != nil {
		log.Fatalf("count usuarios: %v", err)
	}
	if n > 0 {
		return
	}
	id, err := users.Create(ctx, cfg.AdminUser, cfg.AdminPass, model.RolGerente, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("seed gerente: %v", err)
	}
	log.Printf("seeded initial gerente %q (id=%d)", cfg.AdminUser, id)
}
