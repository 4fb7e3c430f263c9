package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"StockScope/internal/analyzer"
	"StockScope/internal/collector"
	"StockScope/internal/config"
	"StockScope/internal/logging"
	"StockScope/internal/recorder"
	"StockScope/internal/session"
)

var (
	configPath string
	useMock    bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "stockscope",
	Short: "Stock analysis from public market data",
	Long: `StockScope fetches price history and company data for a ticker, computes
technical indicators and summary statistics, and serves the results over
HTTP or prints them to the terminal.

Examples:
  stockscope analyze AAPL --period 6mo
  stockscope analyze BRK.B --csv brk.csv
  stockscope market
  stockscope serve --config configs/config.yaml`,
	SilenceUsage: true,
}

func init() {
	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfig, "config file path")
	rootCmd.PersistentFlags().BoolVar(&useMock, "mock", false, "use generated offline data instead of Yahoo Finance")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level override (debug, info, warn, error)")
}

// app bundles the wired components shared by every command.
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	recorder  recorder.Recorder
	collector *collector.Collector
	analyzer  *analyzer.Analyzer
	sessions  *session.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	log, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var fetcher collector.Fetcher
	if useMock {
		fetcher = &collector.MockFetcher{Price: 100}
	} else {
		fetcher = collector.NewYahooFetcher(collector.YahooOptions{
			BaseURL:       cfg.DataSource.BaseURL,
			NewsURL:       cfg.DataSource.NewsURL,
			Proxy:         cfg.DataSource.Proxy,
			UserAgent:     cfg.DataSource.UserAgent,
			RatePerSecond: cfg.DataSource.RatePerSecond,
		})
	}
	log.WithField("source", fetcher.Name()).Debug("data source selected")

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logging.WithComponent(log, "recorder"))
		if err != nil {
			log.WithError(err).Warn("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}

	col := collector.NewCollector(fetcher, rec, cfg.DataSource.Timeout, logging.WithComponent(log, "collector"))
	an := analyzer.New(col, analyzer.Options{
		RiskFreeRate:      cfg.Analysis.RiskFreeRate,
		IncludeFinancials: cfg.Analysis.IncludeFinancials,
	}, logging.WithComponent(log, "analyzer"))

	return &app{
		cfg:       cfg,
		log:       log,
		recorder:  rec,
		collector: col,
		analyzer:  an,
		sessions:  session.NewStore(logging.WithComponent(log, "session")),
	}, nil
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		a.log.WithError(err).Warn("close recorder")
	}
}
