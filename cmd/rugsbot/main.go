package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avelis/rugsbot/internal/config"
	"github.com/avelis/rugsbot/internal/connection"
	"github.com/avelis/rugsbot/internal/database"
	"github.com/avelis/rugsbot/internal/journal"
	"github.com/avelis/rugsbot/internal/router"
	"github.com/avelis/rugsbot/internal/strategy"
	"github.com/avelis/rugsbot/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/rugsbot.yaml", "path to config file")
	flag.Parse()

	// Load configuration first: a config problem must abort before any
	// network attempt.
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("starting rugsbot",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)
	logger.Info("configuration loaded",
		"uri", cfg.Game.URI,
		"dry_run", cfg.Trading.DryRun,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Session journal: CSV always, Postgres trade log when configured.
	csvRec, err := journal.NewCSVRecorder(cfg.Journal.CSVPath)
	if err != nil {
		logger.Error("failed to open session log", "error", err)
		os.Exit(1)
	}
	recorders := journal.MultiRecorder{csvRec}

	if cfg.Journal.Database.Enabled() {
		logger.Info("connecting to database",
			"host", cfg.Journal.Database.Host,
			"port", cfg.Journal.Database.Port,
			"database", cfg.Journal.Database.Name,
		)
		pool, err := database.Connect(ctx, cfg.Journal.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		writer := journal.NewTradeLogWriter(journal.WriterConfig{
			BatchSize:     cfg.Journal.BatchSize,
			FlushInterval: cfg.Journal.FlushInterval,
			BufferSize:    cfg.Journal.BufferSize,
		}, pool, logger)
		if err := writer.Start(ctx); err != nil {
			logger.Error("failed to start trade log writer", "error", err)
			os.Exit(1)
		}
		recorders = append(recorders, writer)
	}
	defer func() {
		if err := recorders.Close(); err != nil {
			logger.Warn("journal close failed", "error", err)
		}
	}()

	// Event routing and strategy
	rtr := router.New(logger)
	ledger := strategy.NewLedger(cfg.Trading.InitialBalance, logger)

	supervisor := connection.NewSupervisor(supervisorConfig(cfg), rtr, logger)

	evaluator := strategy.NewEvaluator(
		cfg.Trading,
		cfg.Game.Events,
		supervisor,
		recorders,
		ledger,
		logger,
		func(reason string) {
			logger.Info("ending session", "reason", reason)
			cancel()
		},
	)
	evaluator.Bind(rtr)

	// Health endpoint
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(cfg.Health.Path, supervisor, rtr, ledger, evaluator),
	}
	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port, "path", cfg.Health.Path)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	// Run the connection supervisor until shutdown.
	logger.Info("rugsbot running",
		"health_url", fmt.Sprintf("http://localhost:%d%s", cfg.Health.Port, cfg.Health.Path),
	)
	if err := supervisor.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("supervisor stopped unexpectedly", "error", err)
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	logger.Info("rugsbot stopped",
		"session_profit", evaluator.SessionProfit(),
		"balance", ledger.Balance(),
	)
}

// supervisorConfig maps the loaded config onto the connection layer.
func supervisorConfig(cfg *config.BotConfig) connection.SupervisorConfig {
	sc := connection.DefaultSupervisorConfig()
	sc.URL = cfg.Game.URI
	sc.Origin = cfg.Game.Origin
	sc.UserAgent = cfg.Game.UserAgent
	sc.Headers = cfg.Game.Headers
	sc.PingInterval = cfg.Connection.PingInterval
	sc.PongTimeout = cfg.Connection.PongTimeout
	sc.HandshakeTimeout = cfg.Connection.HandshakeTimeout
	sc.WriteTimeout = cfg.Connection.WriteTimeout
	sc.BufferSize = cfg.Connection.BufferSize
	sc.ReconnectBaseDelay = cfg.Connection.ReconnectBaseDelay
	sc.ReconnectMaxDelay = cfg.Connection.ReconnectMaxDelay
	sc.ReconnectResetAfter = cfg.Connection.ReconnectResetAfter
	return sc
}

// createHealthHandler serves connection, dispatch, and ledger state as JSON.
func createHealthHandler(
	path string,
	supervisor *connection.Supervisor,
	rtr *router.Router,
	ledger *strategy.Ledger,
	evaluator *strategy.Evaluator,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		health := struct {
			Status        string               `json:"status"`
			Connection    connection.Status    `json:"connection"`
			Dispatch      router.Stats         `json:"dispatch"`
			Ledger        strategy.LedgerStats `json:"ledger"`
			SessionProfit float64              `json:"session_profit"`
		}{
			Status:        "healthy",
			Connection:    supervisor.Status(),
			Dispatch:      rtr.Stats(),
			Ledger:        ledger.Stats(),
			SessionProfit: evaluator.SessionProfit(),
		}
		if health.Connection.State != connection.StateConnected {
			health.Status = "degraded"
		}
		if health.Ledger.EmergencyStop {
			health.Status = "stopped"
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	})

	return mux
}

// parseLogLevel maps a config string to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
