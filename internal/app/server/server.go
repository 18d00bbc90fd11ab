package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"timeclock/internal/db"
	"timeclock/internal/domain/audit"
	domauth "timeclock/internal/domain/auth"
	"timeclock/internal/domain/holiday"
	"timeclock/internal/domain/payrate"
	"timeclock/internal/domain/payroll"
	"timeclock/internal/domain/timesheet"
	"timeclock/internal/domain/venue"
	"timeclock/internal/platform/config"
	"timeclock/internal/platform/email"
	"timeclock/internal/platform/jobs"
	"timeclock/internal/platform/metrics"
	"timeclock/internal/transport/http/api"
	audithandler "timeclock/internal/transport/http/handlers/audit"
	authhandler "timeclock/internal/transport/http/handlers/auth"
	holidayshandler "timeclock/internal/transport/http/handlers/holidays"
	payrateshandler "timeclock/internal/transport/http/handlers/payrates"
	payrollhandler "timeclock/internal/transport/http/handlers/payroll"
	timesheethandler "timeclock/internal/transport/http/handlers/timesheet"
	"timeclock/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
	Jobs   *jobs.Service
}

// New connects, migrates, seeds and wires the full router. Callers own the
// returned app's lifecycle.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, migrationsDir()); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	authStore := domauth.NewStore(pool)
	auditSvc := audit.New(pool)
	venueStore := venue.NewStore(pool)
	rateStore := payrate.NewStore(pool)
	rateSvc := payrate.NewService(rateStore)
	holidayStore := holiday.NewStore(pool)
	holidaySvc := holiday.NewService(holidayStore)
	shiftStore := timesheet.NewStore(pool)
	shiftSvc := timesheet.NewService(shiftStore, rateSvc, venueStore)
	payrollStore := payroll.NewStore(pool)
	payrollSvc := payroll.NewService(payrollStore, rateSvc, holidaySvc)

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	mailer := email.New(cfg)
	jobRunner := jobs.New(pool, cfg, shiftStore, holidayStore, mailer, collector)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	if collector != nil {
		router.Use(middleware.Metrics(collector))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if collector != nil {
		router.Get("/metricsz", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret, cfg.AccessTokenTTL)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Post("/auth/refresh", authHandler.HandleRefresh)

		shiftHandler := timesheethandler.NewHandler(shiftSvc, auditSvc)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(domauth.PermTimesheetSelf, authStore))
			r.Post("/timesheet/clock-in", shiftHandler.HandleClockIn)
			r.Post("/timesheet/shifts/{id}/break/start", shiftHandler.HandleStartBreak)
			r.Post("/timesheet/shifts/{id}/break/end", shiftHandler.HandleEndBreak)
			r.Post("/timesheet/shifts/{id}/clock-out", shiftHandler.HandleClockOut)
			r.Get("/timesheet/active", shiftHandler.HandleActive)
			r.Get("/timesheet/shifts", shiftHandler.HandleList)
			r.Get("/timesheet/shifts/{id}", shiftHandler.HandleGet)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(domauth.PermTimesheetManage, authStore))
			r.Post("/timesheet/shifts", shiftHandler.HandleCreateManual)
			r.Put("/timesheet/shifts/{id}", shiftHandler.HandleUpdate)
			r.Delete("/timesheet/shifts/{id}", shiftHandler.HandleDelete)
			r.Post("/timesheet/shifts/{id}/admin-clock-out", shiftHandler.HandleAdminClockOut)
			r.Get("/timesheet/long-running", shiftHandler.HandleLongRunning)
		})

		ratesHandler := payrateshandler.NewHandler(rateSvc, auditSvc)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(domauth.PermPayRatesRead, authStore))
			r.Get("/payrates/default", ratesHandler.HandleGetDefault)
			r.Get("/payrates/employees/{employeeId}", ratesHandler.HandleGetEmployee)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(domauth.PermPayRatesWrite, authStore))
			r.Put("/payrates/default", ratesHandler.HandlePutDefault)
			r.Put("/payrates/employees/{employeeId}", ratesHandler.HandlePutEmployee)
			r.Delete("/payrates/employees/{employeeId}", ratesHandler.HandleDeleteEmployee)
		})

		holidayHandler := holidayshandler.NewHandler(holidaySvc, auditSvc)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(domauth.PermHolidaysRead, authStore))
			r.Get("/holidays", holidayHandler.HandleList)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(domauth.PermHolidaysWrite, authStore))
			r.Post("/holidays", holidayHandler.HandleCreate)
			r.Delete("/holidays/{id}", holidayHandler.HandleDelete)
		})

		reportHandler := payrollhandler.NewHandler(payrollSvc)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(domauth.PermPayrollReport, authStore))
			r.Get("/payroll/report", reportHandler.HandleReport)
			r.Get("/payroll/report/export.csv", reportHandler.HandleExportCSV)
			r.Get("/payroll/report/export.pdf", reportHandler.HandleExportPDF)
		})

		auditHandler := audithandler.NewHandler(auditSvc)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(domauth.PermAuditRead, authStore))
			r.Get("/audit/events", auditHandler.HandleList)
		})
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return &App{Config: cfg, DB: pool, Router: router, Jobs: jobRunner}, nil
}

func (a *App) Close() {
	a.DB.Close()
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	app.Jobs.Start(ctx)

	log.Printf("timeclock server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// migrationsDir walks upward so tests running from package directories find
// the repo-level migrations folder.
func migrationsDir() string {
	dir := "migrations"
	for i := 0; i < 5; i++ {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
		dir = filepath.Join("..", dir)
	}
	return "migrations"
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
