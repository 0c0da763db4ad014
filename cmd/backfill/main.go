// Command backfill fetches daily OHLCV history into the local SQLite
// store, either once or on a cron schedule.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"finpanel/config"
	"finpanel/internal/logger"
	"finpanel/internal/metrics"
	"finpanel/internal/model"
	"finpanel/internal/store/redis"
	"finpanel/internal/store/sqlite"
	"finpanel/internal/twse"
)

func main() {
	var (
		startFlag = flag.String("start", "", "start date (YYYY-MM-DD), default 90 days ago")
		endFlag   = flag.String("end", "", "end date (YYYY-MM-DD), default today")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.Init("backfill", slog.LevelInfo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	m := metrics.New()
	go m.Serve(ctx, cfg.MetricsAddr)

	var cache *redis.Cache
	if cfg.RedisAddr != "" {
		var err error
		cache, err = redis.New(redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			log.Warn("redis unavailable, fetching uncached", "err", err)
		} else {
			defer cache.Close()
		}
	}

	client := twse.New(twse.Config{
		TWSEBaseURL:  cfg.TWSEBaseURL,
		MOPSBaseURL:  cfg.MOPSBaseURL,
		ESGBaseURL:   cfg.ESGBaseURL,
		VerifyTLS:    cfg.VerifyTLS,
		Retries:      cfg.FetchRetries,
		Backoff:      cfg.FetchBackoff,
		Timeout:      cfg.FetchTimeout,
		Workers:      cfg.FetchWorkers,
		RequestDelay: cfg.RequestDelay,
		UserAgent:    cfg.UserAgent,
	}, cache, m)

	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		log.Error("sqlite open failed", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	run := func() {
		runCtx := logger.WithRunID(ctx, logger.GenerateRunID("backfill", time.Now()))
		start, end := resolveRange(*startFlag, *endFlag)
		pf := model.NewPortfolio(cfg.ParseStocks()...)

		panel, err := client.FetchPanel(runCtx, pf, start, end)
		if err != nil {
			log.Error("fetch failed", "err", err)
			return
		}
		if err := store.WriteRows(panel.Rows()); err != nil {
			log.Error("persist failed", "err", err)
			return
		}
		attrs := append(logger.LogWithRun(runCtx), "stocks", len(panel.Groups()), "rows", panel.Len())
		log.Info("backfill complete", attrs...)
	}

	if cfg.BackfillSchedule == "" {
		run()
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.BackfillSchedule, run); err != nil {
		log.Error("bad cron schedule", "schedule", cfg.BackfillSchedule, "err", err)
		os.Exit(1)
	}
	log.Info("scheduled backfill", "schedule", cfg.BackfillSchedule)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
}

func resolveRange(startStr, endStr string) (time.Time, time.Time) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	if endStr != "" {
		if t, err := time.Parse("2006-01-02", endStr); err == nil {
			end = t
		}
	}
	start := end.AddDate(0, 0, -90)
	if startStr != "" {
		if t, err := time.Parse("2006-01-02", startStr); err == nil {
			start = t
		}
	}
	return start, end
}
