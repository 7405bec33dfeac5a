package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"SavantGrader/internal/api"
	"SavantGrader/internal/app"
	"SavantGrader/internal/config"
	"SavantGrader/internal/scheduler"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(&cfg.Log)
	logger.Info("config loaded")

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatalf("startup failed: %v", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// scheduled jobs
	cron := scheduler.New(ctx, logger)
	if cfg.Grading.Cron != "" {
		if _, err := cron.Add("grading", cfg.Grading.Cron, func(ctx context.Context) error {
			_, err := a.Grading.Run(ctx)
			return err
		}); err != nil {
			logger.Fatalf("schedule grading: %v", err)
		}
	}
	if cfg.Bookmarks.Cron != "" {
		if _, err := cron.Add("bookmark-sync", cfg.Bookmarks.Cron, func(ctx context.Context) error {
			_, err := a.BookmarkSync.Run(ctx)
			return err
		}); err != nil {
			logger.Fatalf("schedule bookmark sync: %v", err)
		}
	}
	cron.Start()
	defer cron.Stop()

	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	pprof.Register(r)
	logger.Infof("gin mode: %s", cfg.Server.Mode)

	api.RegisterRoutes(r, &api.Handlers{
		Bets:      api.NewBetHandler(a.BetRepo, a.Tracking, a.Stats, logger),
		Bookmarks: api.NewBookmarkHandler(a.Bookmarks, logger),
		Grading:   api.NewGradingHandler(a.Grading, a.BookmarkSync, logger),
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: r}
	go func() {
		logger.Infof("listening on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("http shutdown")
	}
}
