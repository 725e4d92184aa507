package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	_ "github.com/lib/pq"

	"diabetes-assistant/internal/agent"
	"diabetes-assistant/internal/assessment"
	"diabetes-assistant/internal/cache"
	"diabetes-assistant/internal/config"
	"diabetes-assistant/internal/platform/telegram"
	"diabetes-assistant/internal/report"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// app holds the assembled service and whatever must be released on exit.
type app struct {
	svc     assessment.Service
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}

	repo, err := openRepository(ctx, cfg, logger, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	doctorCache := openDoctorCache(ctx, cfg, logger, a)
	doctors := agent.NewCachedDoctorFinder(
		agent.NewDoctorClient(cfg.DoctorAPIURL, cfg.DoctorSearchRadius, cfg.HTTPTimeout),
		doctorCache, cfg.DoctorCacheTTL, logger,
	)
	predictor := agent.NewPredictionClient(cfg.PredictionAPIURL, cfg.HTTPTimeout)
	if cfg.Gemini.APIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set; narrative replies will fall back to an apology")
	}
	narrator := agent.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL, cfg.Gemini.Model, cfg.HTTPTimeout, logger)

	var tg report.TelegramClient
	if cfg.TelegramBotToken != "" {
		tg = telegram.NewClient(cfg.TelegramBotToken)
		logger.Info("Reports will be delivered to telegram", "chat_id", cfg.ReportChatID)
	}
	reports := report.NewService(report.NewRenderer(cfg.ReportFontPath), tg, cfg.ReportChatID, logger)

	a.svc = assessment.NewService(repo, predictor, narrator, doctors, reports, assessment.Options{
		GenerateWelcome: cfg.GenerateWelcome,
		Logger:          logger,
	})
	return a, nil
}

func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger, a *app) (assessment.Repository, error) {
	switch {
	case cfg.DatabaseURL != "":
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("database health check failed: %w", err)
		}
		if err := assessment.Migrate(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		logger.Info("Using PostgreSQL session store")
		return assessment.NewPostgresRepository(db), nil
	case cfg.SQLitePath != "":
		repo, err := assessment.NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		a.closers = append(a.closers, repo.Close)
		logger.Info("Using SQLite session store", "path", cfg.SQLitePath)
		return repo, nil
	default:
		logger.Info("Using in-memory session store")
		return assessment.NewMemoryRepository(), nil
	}
}

// openDoctorCache prefers Redis and falls back to process memory when no
// address is configured or the server cannot be reached.
func openDoctorCache(ctx context.Context, cfg *config.Config, logger *slog.Logger, a *app) cache.DoctorCache {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryDoctorCache()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, using in-memory doctor cache", "addr", cfg.RedisAddr, "error", err)
		rdb.Close()
		return cache.NewMemoryDoctorCache()
	}
	a.closers = append(a.closers, rdb.Close)
	logger.Info("Connected to Redis", "addr", cfg.RedisAddr)
	return cache.NewRedisDoctorCache(rdb)
}
