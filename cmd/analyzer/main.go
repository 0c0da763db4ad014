// Command analyzer runs one analysis pass: load (or fetch) a panel of
// price history, compute the technical, return, risk and fundamental
// outputs, and write the workbook.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finpanel/config"
	"finpanel/internal/export"
	"finpanel/internal/fundamental"
	"finpanel/internal/indicator"
	"finpanel/internal/logger"
	"finpanel/internal/metrics"
	"finpanel/internal/model"
	"finpanel/internal/returns"
	"finpanel/internal/risk"
	"finpanel/internal/store/redis"
	"finpanel/internal/store/sqlite"
	"finpanel/internal/twse"
)

func main() {
	var (
		startFlag   = flag.String("start", "", "start date (YYYY-MM-DD), default one year ago")
		endFlag     = flag.String("end", "", "end date (YYYY-MM-DD), default today")
		fromDB      = flag.Bool("from-db", false, "read the panel from SQLite instead of fetching")
		skipRatios  = flag.Bool("skip-ratios", false, "skip the fundamentals sheet")
		serveMetric = flag.Bool("serve-metrics", false, "expose Prometheus metrics while running")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.Init("analyzer", slog.LevelInfo)

	start, end, err := dateRange(*startFlag, *endFlag)
	if err != nil {
		log.Error("bad date range", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	ctx = logger.WithRunID(ctx, logger.GenerateRunID("analyze", time.Now()))
	log.Info("analysis run starting", logger.LogWithRun(ctx)...)

	m := metrics.New()
	if *serveMetric {
		go m.Serve(ctx, cfg.MetricsAddr)
	}

	var cache *redis.Cache
	if cfg.RedisAddr != "" {
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

	portfolio := model.NewPortfolio(cfg.ParseStocks()...)
	panel, err := loadPanel(ctx, cfg, client, portfolio, start, end, *fromDB)
	if err != nil {
		log.Error("panel load failed", "err", err)
		os.Exit(1)
	}
	if panel.Len() == 0 {
		log.Error("panel is empty, nothing to analyze")
		os.Exit(1)
	}
	m.PanelRows.Set(float64(panel.Len()))
	log.Info("panel ready", "stocks", len(panel.Groups()), "rows", panel.Len())

	// Technical indicators.
	computeStart := time.Now()
	specs := []indicator.Spec{
		{Type: "SMA", Windows: config.ParseWindows(cfg.SMAWindows)},
		{Type: "EMA", Windows: config.ParseWindows(cfg.EMASpans)},
		{Type: "RSI", Windows: config.ParseWindows(cfg.RSIWindows)},
		{Type: "BBANDS", Windows: []int{cfg.BollingerWindow}},
		{Type: "MACD"},
	}
	cols, err := indicator.Compute(panel, specs)
	if err != nil {
		log.Error("indicator computation failed", "err", err)
		os.Exit(1)
	}
	m.TimeCompute("technical", computeStart)

	// Risk metrics and market regression.
	computeStart = time.Now()
	riskTable, err := risk.VolatilityAndDrawdown(panel, []risk.Metric{
		risk.AnnualVolatility, risk.CumulativeReturn, risk.MaxDrawdown,
	})
	if err != nil {
		log.Error("risk computation failed", "err", err)
		os.Exit(1)
	}
	marketBars := client.FetchMarketIndex(ctx, start, end)
	if len(marketBars) == 0 {
		log.Warn("market index series empty, beta/alpha will be undefined", "index", cfg.MarketIndex)
	} else {
		log.Info("market index fetched", "index", cfg.MarketIndex, "bars", len(marketBars))
	}
	betaRows := risk.BetaAlphaAll(panel, marketBars, cfg.RiskFreeRate, cfg.TradingDays)
	annual := returns.Annualized(panel, cfg.TradingDays)
	m.TimeCompute("risk", computeStart)
	for id, r := range annual {
		log.Info("annualized return", "stock", id, "return", r)
	}

	wb := export.NewWorkbook(m)
	defer wb.Close()
	if err := wb.AddPriceSheet("Price Data", panel); err != nil {
		log.Error("export failed", "err", err)
		os.Exit(1)
	}
	if err := wb.AddIndicatorSheet("Technical Indicators", panel, cols); err != nil {
		log.Error("export failed", "err", err)
		os.Exit(1)
	}
	if !*skipRatios {
		dates := fundamental.MonthStarts(start, end)
		ratioRows, err := fundamental.Assemble(ctx, client, portfolio.IDs(), dates)
		if err != nil {
			log.Error("fundamentals failed", "err", err)
			os.Exit(1)
		}
		if err := wb.AddFundamentalSheet("Fundamental Analysis", ratioRows); err != nil {
			log.Error("export failed", "err", err)
			os.Exit(1)
		}
	}
	if err := wb.AddRiskSheet("Volatility & Risk", riskTable); err != nil {
		log.Error("export failed", "err", err)
		os.Exit(1)
	}
	if err := wb.AddBetaSheet("Beta & Alpha", betaRows); err != nil {
		log.Error("export failed", "err", err)
		os.Exit(1)
	}
	if err := wb.Save(cfg.ExportPath); err != nil {
		log.Error("export failed", "err", err)
		os.Exit(1)
	}
}

func loadPanel(ctx context.Context, cfg *config.Config, client *twse.Client, pf *model.Portfolio, start, end time.Time, fromDB bool) (*model.Panel, error) {
	if fromDB {
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.ReadPanel(pf.IDs(), start, end)
	}
	return client.FetchPanel(ctx, pf, start, end)
}

func dateRange(startStr, endStr string) (time.Time, time.Time, error) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(-1, 0, 0)
	var err error
	if endStr != "" {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if startStr != "" {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}
