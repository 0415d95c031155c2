package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"hisab/internal/cache"
	applog "hisab/internal/log"
	"hisab/internal/middleware/ratelimit"
	"hisab/internal/middleware/security"
	"hisab/internal/middleware/trace"
	"hisab/internal/services"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Sizer is implemented by caches that can report their entry count.
type Sizer interface {
	Size() int
}

// Config carries the server settings that do not come from the ledger.
type Config struct {
	Addr               string
	AllowedOrigins     []string
	RateLimitPerMinute int
	TrustedProxies     []string
	ReportCurrency     string
	ReportBrand        string

	Logger     *applog.Logger
	Ready      Pinger
	Caches     *cache.Manager
	ChartCache Sizer
	Now        func() time.Time
}

type Server struct {
	http.Server
	ledger *services.Ledger
	logger *applog.Logger

	ready      Pinger
	caches     *cache.Manager
	chartCache Sizer

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	reportCurrency string
	reportBrand    string
	now            func() time.Time
	started        time.Time

	shutdownOnce sync.Once
}

// NewServer configures middleware and routes, returning a ready-to-run http.Server.
func NewServer(cfg Config, ledger *services.Ledger) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	limitCfg := ratelimit.DefaultConfig()
	if cfg.RateLimitPerMinute > 0 {
		limitCfg.RequestsPerMinute = cfg.RateLimitPerMinute
	}

	detector := security.NewDetector()
	for _, cidr := range cfg.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring invalid trusted proxy", applog.FieldError, err.Error())
		}
	}
	r := chi.NewRouter()

	s := &Server{
		Server: http.Server{
			Addr:              cfg.Addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		ledger:         ledger,
		logger:         logger,
		ready:          cfg.Ready,
		caches:         cfg.Caches,
		chartCache:     cfg.ChartCache,
		limiter:        ratelimit.NewLimiter(limitCfg),
		detector:       detector,
		tracer:         trace.NewMiddleware(logger, detector.ExtractClientIP),
		reportCurrency: cfg.ReportCurrency,
		reportBrand:    cfg.ReportBrand,
		now:            now,
		started:        now(),
	}

	r.Use(middleware.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(detector.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", HeaderUserID},
		ExposedHeaders:   []string{trace.HeaderRequestID, "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(s.limiter.Middleware(detector.ExtractClientIP, s.handleRateLimited))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError(msgNotFound).Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, msgMethodNotAllowed).Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireUser)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Post("/", createHandler(s, "account", ledger.CreateAccount))
			r.Get("/{id}", getHandler(s, "account", ledger.GetAccount))
			r.Put("/{id}", updateHandler(s, "account", ledger.UpdateAccount))
			r.Delete("/{id}", deleteHandler(s, "account", ledger.DeleteAccount))
		})
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", listHandler(s, "expense", "expenses", ParseListQuery, ledger.ListExpenses))
			r.Post("/", createHandler(s, "expense", ledger.CreateExpense))
			r.Get("/{id}", getHandler(s, "expense", ledger.GetExpense))
			r.Put("/{id}", updateHandler(s, "expense", ledger.UpdateExpense))
			r.Delete("/{id}", deleteHandler(s, "expense", ledger.DeleteExpense))
		})
		r.Route("/income", func(r chi.Router) {
			r.Get("/", listHandler(s, "income", "incomes", ParseListQuery, ledger.ListIncomes))
			r.Post("/", createHandler(s, "income", ledger.CreateIncome))
			r.Get("/{id}", getHandler(s, "income", ledger.GetIncome))
			r.Put("/{id}", updateHandler(s, "income", ledger.UpdateIncome))
			r.Delete("/{id}", deleteHandler(s, "income", ledger.DeleteIncome))
		})
		r.Route("/tenants", func(r chi.Router) {
			r.Get("/", listHandler(s, "tenant", "tenants", ParseListQuery, ledger.ListTenants))
			r.Post("/", createHandler(s, "tenant", ledger.CreateTenant))
			r.Get("/{id}", getHandler(s, "tenant", ledger.GetTenant))
			r.Put("/{id}", updateHandler(s, "tenant", ledger.UpdateTenant))
			r.Delete("/{id}", deleteHandler(s, "tenant", ledger.DeleteTenant))
		})
		r.Route("/rent-payments", func(r chi.Router) {
			r.Get("/", listHandler(s, "rent payment", "payments", ParseOptionalListQuery, ledger.ListRentPayments))
			r.Post("/", createHandler(s, "rent payment", ledger.CreateRentPayment))
			r.Get("/{id}", getHandler(s, "rent payment", ledger.GetRentPayment))
			r.Put("/{id}", updateHandler(s, "rent payment", ledger.UpdateRentPayment))
			r.Delete("/{id}", deleteHandler(s, "rent payment", ledger.DeleteRentPayment))
		})

		r.Get("/dashboard/stats", s.handleDashboardStats)
		r.Get("/dashboard/chart-data", s.handleChartData)

		r.Get("/user/profile", s.handleGetProfile)
		r.Put("/user/profile", s.handleUpdateProfile)
		r.Get("/user/settings", s.handleGetSettings)
		r.Put("/user/settings", s.handleUpdateSettings)

		r.Post("/reports/generate", s.handleGenerateReport)
	})

	return s
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, msgTooManyRequests).Write(w)
}

// Shutdown stops background cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		if s.caches != nil {
			s.caches.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
		s.logger.InfoContext(ctx, "HTTP server stopped", applog.FieldOperation, applog.OpShutdown)
	})
	return shutdownErr
}
