package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/flipbot/config"
	"github.com/alejandrodnm/flipbot/internal/adapters/notify"
	"github.com/alejandrodnm/flipbot/internal/adapters/opensea"
	"github.com/alejandrodnm/flipbot/internal/adapters/storage"
	"github.com/alejandrodnm/flipbot/internal/adapters/wallet"
	"github.com/alejandrodnm/flipbot/internal/trader"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one cycle and exit")
	dryRun := flag.Bool("dry-run", false, "evaluate candidates but never buy or relist")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full candidate table (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("flipbot starting",
		"config", *configPath,
		"interval", cfg.CycleInterval(),
		"pagination", cfg.API.Pagination,
		"dry_run", *dryRun,
		"once", *once,
	)

	market := opensea.NewClient(opensea.Config{
		BaseURL:    cfg.API.BaseURL,
		APIKey:     cfg.API.Key,
		Pagination: opensea.PaginationMode(cfg.API.Pagination),
		PageSize:   cfg.API.PageSize,
		PageDelay:  cfg.PageDelay(),
	})

	gateway, err := wallet.New(cfg.Chain.RPCURL, cfg.Wallet.PrivateKey, wallet.Config{
		ChainID:            cfg.Chain.ChainID,
		GasLimit:           cfg.Chain.GasLimit,
		GasPriceGwei:       cfg.Chain.GasPriceGwei,
		EstimateGas:        cfg.Chain.EstimateGas,
		SpendLimitFraction: cfg.Trader.SpendingLimitFraction,
	})
	if err != nil {
		slog.Error("failed to open wallet gateway", "err", err)
		os.Exit(1)
	}

	var store *storage.SQLiteStorage
	if !*dryRun {
		store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
	}

	notifier := notify.NewConsole(*table)

	tradeCfg := trader.DefaultConfig()
	tradeCfg.CycleInterval = cfg.CycleInterval()
	tradeCfg.ProfitThreshold = cfg.Trader.ProfitThreshold
	tradeCfg.SpendingLimitFraction = cfg.Trader.SpendingLimitFraction
	tradeCfg.CacheTTL = cfg.CacheTTL()
	tradeCfg.DesiredTraits = cfg.Trader.DesiredTraits
	tradeCfg.DryRun = *dryRun

	var t *trader.Trader
	if store != nil {
		t = trader.New(tradeCfg, market, market, gateway, store, notifier)
	} else {
		t = trader.New(tradeCfg, market, market, gateway, nil, notifier)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *once {
		report := t.RunOnce(ctx)
		if err := notifier.Notify(ctx, report); err != nil {
			slog.Warn("notifier error", "err", err)
		}
		return
	}

	if err := t.Run(ctx); err != nil {
		slog.Error("trader exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("flipbot stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
