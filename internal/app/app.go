// Package app wires config, storage, feed and services for both entry points
package app

import (
	"fmt"

	"SavantGrader/internal/adapter"
	"SavantGrader/internal/adapter/nhlapi"
	"SavantGrader/internal/adapter/oddstrader"
	"SavantGrader/internal/config"
	"SavantGrader/internal/database"
	"SavantGrader/internal/lock"
	"SavantGrader/internal/repository"
	"SavantGrader/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App fully wired services
type App struct {
	Cfg          *config.Config
	Logger       *logrus.Logger
	DB           *gorm.DB
	BetRepo      repository.BetRepository
	BookmarkRepo repository.BookmarkRepository
	Grading      *service.GradingService
	BookmarkSync *service.BookmarkSyncService
	Tracking     *service.BetTrackingService
	Bookmarks    *service.BookmarkService
	Stats        *service.StatsService

	closers []func() error
}

// NewLogger logrus text logger at the configured level
func NewLogger(cfg *config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(cfg.LogrusLevel())
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}

// New connects to postgres (and redis when configured) and builds every service
func New(cfg *config.Config, logger *logrus.Logger) (*App, error) {
	db, err := database.Open(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	a := &App{Cfg: cfg, Logger: logger, DB: db}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	var locker lock.Locker = lock.Noop{}
	if cfg.Redis.Addr != "" {
		rl := lock.NewRedisLocker(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, "savant:")
		locker = rl
		a.closers = append(a.closers, rl.Close)
		logger.WithField("addr", cfg.Redis.Addr).Info("redis run lock enabled")
	}

	// the oddstrader and nhlapi imports register their extractor factories
	extractor, err := adapter.NewExtractor(&cfg.Feed, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build extractor: %w", err)
	}
	source := oddstrader.NewSource(&cfg.Feed, logger)

	a.BetRepo = repository.NewBetRepository(db)
	a.BookmarkRepo = repository.NewBookmarkRepository(db)
	a.Grading = service.NewGradingService(source, extractor, a.BetRepo, locker, &cfg.Grading, cfg.Redis.LockTTL, logger)
	if cfg.Scores.Enabled() {
		scoresExt, err := adapter.NewExtractor(&cfg.Scores, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("build score extractor: %w", err)
		}
		a.Grading.WithScores(nhlapi.NewSource(&cfg.Scores, cfg.Grading.Location(), logger), scoresExt)
		logger.WithField("provider", cfg.Scores.Provider).Info("score feed enabled")
	}
	a.BookmarkSync = service.NewBookmarkSyncService(a.BookmarkRepo, a.BetRepo, &cfg.Bookmarks, cfg.Grading.Location(), logger)
	a.Tracking = service.NewBetTrackingService(a.BetRepo, &cfg.Tracking, logger)
	a.Bookmarks = service.NewBookmarkService(a.BookmarkRepo, a.BetRepo, logger)
	a.Stats = service.NewStatsService(a.BetRepo)
	return a, nil
}

// Close releases db and redis connections
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.WithError(err).Warn("close resource")
		}
	}
	a.closers = nil
}
