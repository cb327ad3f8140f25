package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"budgetly/internal/cache"
	"budgetly/internal/core"
	"budgetly/internal/insights"
	"budgetly/internal/log"
	"budgetly/internal/middleware/ratelimit"
	"budgetly/internal/middleware/security"
	appweb "budgetly/web"
)

type (
	ExpenseService interface {
		AddExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		GetExpense(ctx context.Context, id int64) (core.Expense, error)
		UpdateExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, id int64) error
	}

	BudgetService interface {
		UpsertBudget(ctx context.Context, b core.Budget) error
		ListBudgets(ctx context.Context) ([]core.Budget, error)
	}

	IncomeService interface {
		AddIncome(ctx context.Context, in core.Income) (core.Income, error)
		ListIncome(ctx context.Context) ([]core.Income, error)
	}

	// InsightsReader is satisfied by *insights.Engine.
	InsightsReader interface {
		CurrentMonth() (int, int)
		Dashboard(ctx context.Context) (insights.Dashboard, error)
		DashboardFor(ctx context.Context, year, month int) (insights.Dashboard, error)
	}

	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// Deps are the collaborators the handlers call. CacheStats may be nil.
type Deps struct {
	Expenses   ExpenseService
	Budgets    BudgetService
	Income     IncomeService
	Insights   InsightsReader
	Store      Pinger
	Logger     *log.Logger
	CacheStats func() cache.Stats
}

type Options struct {
	Addr               string
	RequestTimeout     time.Duration
	RateLimitPerMinute int
	// Now overrides the clock used for form defaults. Tests only.
	Now func() time.Time
}

type Server struct {
	http.Server
	deps      Deps
	templates *template.Template
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	now       func() time.Time
	started   time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware and returns a server ready for
// ListenAndServe.
func NewServer(opts Options, deps Deps) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	s := &Server{
		deps:     deps,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(),
		now:      opts.Now,
		started:  time.Now(),
	}

	t, err := parseTemplates()
	if err != nil {
		deps.Logger.Error("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(opts.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(log.Middleware(s.deps.Logger))
	r.Use(log.RequestIDMiddleware(func(r *http.Request) string { return chimw.GetReqID(r.Context()) }))
	r.Use(log.AccessLog(s.detector.ClientIP))
	r.Use(chimw.Recoverer)
	r.Use(s.detector.Middleware)
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		r.With(security.StaticAssets(3600)).
			Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))
	}

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Mutating(s.detector.ClientIP))
		r.Use(chimw.Timeout(timeout))

		r.Get("/", s.handleDashboard)
		r.Get("/expenses/new", s.handleNewExpense)
		r.Post("/expenses", s.handleCreateExpense)
		r.Post("/expenses/{id}", s.handleUpdateExpense)
		r.Post("/expenses/{id}/delete", s.handleDeleteExpense)
		r.Delete("/expenses/{id}", s.handleDeleteExpense)
		r.Get("/transactions", s.handleTransactions)
		r.Get("/budgets", s.handleBudgets)
		r.Post("/budgets", s.handleUpsertBudget)
		r.Post("/income", s.handleAddIncome)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/expenses", s.apiListExpenses)
			r.Post("/expenses", s.apiCreateExpense)
			r.Get("/expenses/{id}", s.apiGetExpense)
			r.Put("/expenses/{id}", s.apiUpdateExpense)
			r.Delete("/expenses/{id}", s.apiDeleteExpense)
			r.Get("/budgets", s.apiListBudgets)
			r.Put("/budgets", s.apiUpsertBudget)
			r.Get("/budgets/status", s.apiBudgetStatus)
			r.Get("/insights", s.apiInsights)
			r.Get("/dashboard", s.apiDashboard)
			r.Get("/income", s.apiListIncome)
			r.Post("/income", s.apiAddIncome)
		})
	})
	return r
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}
