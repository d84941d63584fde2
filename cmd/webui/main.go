package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samvad-hq/tweet-likes-predictor/internal/app"
	"github.com/samvad-hq/tweet-likes-predictor/internal/config"
	"github.com/samvad-hq/tweet-likes-predictor/internal/logger"
	"github.com/samvad-hq/tweet-likes-predictor/internal/scoring"
	"github.com/samvad-hq/tweet-likes-predictor/internal/ui"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "webui start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("webui starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	predictor, err := app.NewPredictor(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize predictor", "error", err)
		return err
	}
	defer func() {
		if err := predictor.Close(); err != nil {
			logger.WarnObj("predictor close failed", "error", err)
		}
	}()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           ui.NewRouter(predictor, log),
		ReadHeaderTimeout: 10 * time.Second,
		// leave room for the scoring call behind POST /predict
		WriteTimeout: scoring.RequestTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.InfoObj("webui listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.InfoObj("webui shutting down", "reason", ctx.Err())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
