package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"budgetly/internal/cache"
	"budgetly/internal/cli"
	apphttp "budgetly/internal/http"
	"budgetly/internal/insights"
	"budgetly/internal/log"
	"budgetly/internal/services"
)

const dashboardCacheEntries = 256

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(log.New(log.DefaultConfig()))
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	res, err := cli.OpenStore(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to open store", log.FieldBackend, cfg.DataBackend, log.FieldError, err)
		os.Exit(1)
	}

	engineOpts := []insights.Option{insights.WithLogger(logger.WithComponent(log.ComponentInsights).Logger)}
	var cacheStats func() cache.Stats
	if cfg.InsightsCacheTTL > 0 {
		dashboards, err := cache.NewRistretto[insights.Dashboard](dashboardCacheEntries, cfg.InsightsCacheTTL)
		if err != nil {
			logger.Error("Failed to create insights cache", log.FieldError, err)
			os.Exit(1)
		}
		res.AddCleanup(func() error { dashboards.Close(); return nil })
		engineOpts = append(engineOpts, insights.WithCache(dashboards))
		cacheStats = dashboards.Stats
	}
	engine := insights.New(res.Store, engineOpts...)

	var publisher services.EventPublisher
	if client := cli.ConnectAMQP(logger, cfg); client != nil {
		publisher = client
		res.AddCleanup(client.Close)
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RequestTimeout:     cfg.RequestTimeout,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, apphttp.Deps{
		Expenses:   services.NewExpenseService(res.Store, publisher, engine),
		Budgets:    services.NewBudgetService(res.Store, publisher, engine),
		Income:     services.NewIncomeService(res.Store, publisher, engine),
		Insights:   engine,
		Store:      res.Store,
		Logger:     logger.WithComponent(log.ComponentHTTP),
		CacheStats: cacheStats,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.RequestTimeout + 5*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) error {
		return errors.Join(srv.Shutdown(ctx), res.Close())
	})

	logger.Info("Starting budgetly server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		"amqp_enabled", publisher != nil,
		"insights_cache_ttl", cfg.InsightsCacheTTL.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		_ = res.Close()
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
