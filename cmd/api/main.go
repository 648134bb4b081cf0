package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jadegarden/storefront/internal/config"
	"github.com/jadegarden/storefront/internal/httpapi"
	"github.com/jadegarden/storefront/internal/pricing"
	"github.com/jadegarden/storefront/internal/repository"
	"github.com/jadegarden/storefront/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	menuRepo, err := repository.NewMenu(pool)
	if err != nil {
		return err
	}
	cartRepo, err := repository.NewCart(pool)
	if err != nil {
		return err
	}
	orderRepo, err := repository.NewOrder(pool)
	if err != nil {
		return err
	}

	calc := pricing.New()
	calc.DeliveryFee = cfg.DeliveryFee

	checkout, err := service.NewCheckout(orderRepo, calc, logger)
	if err != nil {
		return err
	}

	handler := httpapi.New(menuRepo, cartRepo, checkout, calc, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logger.Info("shut down cleanly")
	return nil
}
