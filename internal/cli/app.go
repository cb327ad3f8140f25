package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"budgetly/internal/config"
	"budgetly/internal/insights"
	"budgetly/internal/log"
	"budgetly/internal/services"
	"budgetly/internal/storage"
)

// App is what budgetctl commands operate on.
type App struct {
	Expenses *services.ExpenseService
	Budgets  *services.BudgetService
	Income   *services.IncomeService
	Insights *insights.Engine

	close func() error
}

// NewApp wires services over store. publisher may be nil. The engine runs
// uncached since every command is a single read.
func NewApp(store storage.Store, publisher services.EventPublisher) *App {
	engine := insights.New(store)
	return &App{
		Expenses: services.NewExpenseService(store, publisher, engine),
		Budgets:  services.NewBudgetService(store, publisher, engine),
		Income:   services.NewIncomeService(store, publisher, engine),
		Insights: engine,
	}
}

func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// Opener builds the App a command runs against.
type Opener func(ctx context.Context, verbose bool) (*App, error)

// OpenFromEnv loads .env and the environment, opens the configured store
// and connects the event publisher when AMQP_URL is set. Logs go to stderr
// so they never mix with command output.
func OpenFromEnv(ctx context.Context, verbose bool) (*App, error) {
	LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lc := cfg.LoggerConfig(log.ComponentCLI)
	lc.Output = os.Stderr
	if !verbose {
		lc.Level = slog.LevelWarn
	}
	logger := log.New(lc)
	log.SetDefault(logger)

	res, err := OpenStore(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}

	var publisher services.EventPublisher
	if client := ConnectAMQP(logger, cfg); client != nil {
		publisher = client
		res.AddCleanup(client.Close)
	}

	app := NewApp(res.Store, publisher)
	app.close = res.Close
	return app, nil
}

// withApp opens the app, runs fn and closes the app, keeping the first
// error.
func withApp(ctx context.Context, opts *RootOptions, fn func(*App) error) (err error) {
	app, err := opts.Open(ctx, opts.Verbose)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(app)
}
