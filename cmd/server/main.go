package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/summerquest/idiom-duel-go/internal/cards"
	"github.com/summerquest/idiom-duel-go/internal/config"
	"github.com/summerquest/idiom-duel-go/internal/judge"
	"github.com/summerquest/idiom-duel-go/internal/room"
	"github.com/summerquest/idiom-duel-go/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting idiom duel server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	library, err := cards.Load(cfg.Game.CardsPath)
	if err != nil {
		logger.Fatal("failed to load cards", zap.String("path", cfg.Game.CardsPath), zap.Error(err))
	}
	logger.Info("card library loaded", zap.Int("cards", library.Len()))

	// Fail fast on a bad judge setting instead of at the first Start.
	if _, err := judge.ParseMode(cfg.Judge.Mode); err != nil {
		logger.Fatal("invalid judge configuration", zap.Error(err))
	}

	rooms := room.NewManager(room.Settings{
		MaxScore:    cfg.Game.MaxScore,
		InitialHand: cfg.Game.InitialHand,
		Shuffle:     cfg.Game.Shuffle,
		Judge: judge.Config{
			Mode:      cfg.Judge.Mode,
			Threshold: cfg.Judge.Threshold,
		},
	}, library, nil, logger)
	defer rooms.Close()

	srv := server.New(rooms, server.Options{AllowedOrigins: cfg.Server.AllowedOrigins}, logger)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}

	// Graceful shutdown
	logger.Info("shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}

	logger.Info("idiom duel server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
