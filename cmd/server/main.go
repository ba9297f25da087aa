package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/angelcm/cpa-tracker/internal/config"
	"github.com/angelcm/cpa-tracker/internal/cpa"
	"github.com/angelcm/cpa-tracker/internal/httpx"
	"github.com/angelcm/cpa-tracker/internal/ingest"
	"github.com/angelcm/cpa-tracker/internal/metrics"
	"github.com/angelcm/cpa-tracker/internal/store"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	cl := ingest.NewRateLimitedClient(ingest.NewHTTPClient(cfg.HTTPTimeout), cfg.AdsRatePerSec, cfg.AdsBurst)
	st := store.NewMemoryStore()
	etl := ingest.NewETL(cl, st, logger, cfg)
	mSvc := metrics.NewService(st, cpa.Thresholds{
		CriticalPct:    cfg.AlertCriticalPct,
		WarningPct:     cfg.AlertWarningPct,
		ImprovementPct: cfg.AlertImprovementPct,
	})

	r := httpx.NewRouter(logger, etl, mSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
