package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/app"
	"github.com/thekbbohara/culturelense-ideax-sub000/internal/clock"
	"github.com/thekbbohara/culturelense-ideax-sub000/internal/config"
	"github.com/thekbbohara/culturelense-ideax-sub000/internal/gateway"
	"github.com/thekbbohara/culturelense-ideax-sub000/internal/storage/postgres"
	transporthttp "github.com/thekbbohara/culturelense-ideax-sub000/internal/transport/http"
	"github.com/thekbbohara/culturelense-ideax-sub000/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Parse()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	} else {
		logger.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, keeping info")
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to db")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatal().Err(err).Msg("db ping")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	var gatewayOpts []gateway.SimulatedOption
	if cfg.GatewayDeclineAll {
		logger.Warn().Msg("payment gateway configured to decline every capture")
		gatewayOpts = append(gatewayOpts, gateway.DeclineAll())
	}
	gw := gateway.NewSimulated(gatewayOpts...)

	repo := postgres.NewRepository(pool)
	clk := clock.NewSystem()

	checkoutSvc := app.NewCheckoutService(repo, clk)
	refundSvc := app.NewRefundService(repo, clk, cfg.Currency)
	escrowSvc := app.NewEscrowService(repo, gw, refundSvc, clk, cfg.Currency, logger)
	fulfillmentSvc := app.NewFulfillmentService(repo, clk, cfg.Currency)
	earningsSvc := app.NewEarningsService(repo, cfg.Currency)
	historySvc := app.NewHistoryService(repo)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/checkout", transporthttp.HandleCheckout(checkoutSvc))
	mux.Handle("/orders", transporthttp.HandleBuyerOrders(historySvc))
	mux.Handle("/orders/", transporthttp.HandleOrderActions(escrowSvc, fulfillmentSvc))
	mux.Handle("/vendor/orders", transporthttp.HandleVendorOrders(historySvc))
	mux.Handle("/vendor/earnings", transporthttp.HandleVendorEarnings(earningsSvc))
	mux.Handle("/admin/orders/", transporthttp.HandleAdminOrders(refundSvc, escrowSvc))
	mux.Handle("/admin/escrows", transporthttp.HandleAdminEscrows(historySvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info().Str("port", cfg.Port).Msg("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
		}
	case <-stopCtx.Done():
		logger.Info().Msg("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	logger.Info().Msg("server stopped")
}
