package server

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"

	authdomain "paysheet/internal/domain/auth"
	"paysheet/internal/domain/employee"
	"paysheet/internal/domain/payroll"
	"paysheet/internal/domain/timesheet"
	"paysheet/internal/platform/cache"
	"paysheet/internal/platform/config"
	"paysheet/internal/platform/crypto"
	"paysheet/internal/platform/db"
	"paysheet/internal/platform/jobs"
	"paysheet/internal/platform/metrics"
	"paysheet/internal/transport/http/api"
	authhandler "paysheet/internal/transport/http/handlers/auth"
	employeehandler "paysheet/internal/transport/http/handlers/employees"
	payrollhandler "paysheet/internal/transport/http/handlers/payroll"
	timesheethandler "paysheet/internal/transport/http/handlers/timesheets"
	"paysheet/internal/transport/http/middleware"
)

const shutdownTimeout = 15 * time.Second

// Authenticator signs users in and verifies their bearer tokens.
type Authenticator interface {
	authhandler.Authenticator
	middleware.TokenParser
}

// Deps is everything the HTTP surface needs. Ready reports whether the
// backing services can take traffic.
type Deps struct {
	Config      config.Config
	Logger      *slog.Logger
	Ready       func(ctx context.Context) error
	Auth        Authenticator
	Employees   employeehandler.Store
	Timesheets  timesheethandler.Service
	Payroll     payrollhandler.Service
	Invalidator employeehandler.CompensationListener
	Idempotency timesheethandler.IdempotencyStore
	Metrics     *metrics.Collector
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	users := authdomain.NewStore(pool)
	authSvc := authdomain.NewService(users, cfg.JWTSecret, cfg.TokenTTL)
	if err := db.Seed(ctx, authSvc, cfg); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	var calcCache cache.Cache = cache.Noop{}
	var redisCache *cache.Redis
	if cfg.RedisURL != "" {
		redisCache, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, payroll results will not be cached", "err", err)
		} else {
			defer redisCache.Close()
			calcCache = redisCache
		}
	}

	cipher, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		log.Fatalf("encryption key: %v", err)
	}
	if !cipher.Enabled() {
		slog.Warn("DATA_ENCRYPTION_KEY not set, employee tax and bank fields are stored in plain text")
	}

	employees := employee.NewStore(pool, cipher)
	entries := timesheet.NewStore(pool)
	payrollSvc := payroll.NewService(employees, entries, rulesFromConfig(cfg.Payroll),
		payroll.WithCache(calcCache, cfg.CacheTTL),
		payroll.WithPayslipArchive(cfg.PayslipDir),
	)
	timesheetSvc := timesheet.NewService(entries, employees,
		timesheet.WithListener(payrollSvc),
		timesheet.WithLocation(cfg.Location()),
	)

	idempotency := middleware.NewIdempotencyStore(pool)

	stop, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	jobs.New(pool).Start(stop, jobs.Schedule{
		Type:     jobs.JobIdempotencyPurge,
		Interval: cfg.HousekeepingEvery,
		Run: func(ctx context.Context) (any, error) {
			cutoff := time.Now().Add(-cfg.IdempotencyTTL)
			deleted, err := idempotency.Purge(ctx, cutoff)
			return map[string]any{"cutoff": cutoff, "deleted": deleted}, err
		},
	})

	router := NewRouter(Deps{
		Config: cfg,
		Logger: logger,
		Ready: func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return err
			}
			if redisCache != nil {
				return redisCache.Ping(ctx)
			}
			return nil
		},
		Auth:        authSvc,
		Employees:   employees,
		Timesheets:  timesheetSvc,
		Payroll:     payrollSvc,
		Invalidator: payrollSvc,
		Idempotency: idempotency,
		Metrics:     metrics.New(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-stop.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "err", err)
		}
	}()

	log.Printf("paysheet server listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}

// NewRouter assembles middleware and routes. It performs no I/O.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	perms := authdomain.StaticPermissions{}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(httplog.RequestLogger(d.Logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	router.Use(chimw.Recoverer)
	router.Use(chimw.CleanPath)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", middleware.IdempotencyHeader},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID", "Retry-After"},
		MaxAge:           300,
	}))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.Metrics(d.Metrics))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes, cfg.MaxUploadBytes))
	router.Use(middleware.Auth(d.Auth))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if d.Ready != nil {
			if err := d.Ready(ctx); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequirePermission(authdomain.PermSystemAdmin, perms)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, d.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(d.Auth).RegisterRoutes(r)
		employeehandler.NewHandler(d.Employees, perms, d.Invalidator).RegisterRoutes(r)
		timesheethandler.NewHandler(d.Timesheets, perms, d.Idempotency, d.Metrics, cfg.MaxUploadBytes).RegisterRoutes(r)
		payrollhandler.NewHandler(d.Payroll, perms, d.Metrics).RegisterRoutes(r)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusNotFound, "not_found", "route not found", middleware.GetRequestID(r.Context()))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", middleware.GetRequestID(r.Context()))
	})

	return router
}

func newLogger(cfg config.Config) *slog.Logger {
	format := httplog.SchemaECS.Concise(cfg.Environment != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: format.ReplaceAttr,
	})).With(
		slog.String("app", "paysheet"),
		slog.String("env", cfg.Environment),
	)
}

func rulesFromConfig(p config.PayrollRules) payroll.Rules {
	return payroll.Rules{
		MaxRegularHours:    p.MaxRegularHours,
		MaxOvertimeHours:   p.MaxOvertimeHours,
		OvertimeMultiplier: p.OvertimeMultiplier,
		WeekendMultiplier:  p.WeekendMultiplier,
		BreakDeduction:     p.BreakDeduction,
		MinimumBreakHours:  p.MinimumBreakHours,
	}
}
