package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/config"
	"github.com/KilOS-pos/pos-carniceria/internal/infra"
	"github.com/KilOS-pos/pos-carniceria/internal/metrics"
	"github.com/KilOS-pos/pos-carniceria/internal/router"
	"github.com/KilOS-pos/pos-carniceria/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger. dev: pretty, prod: JSON
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	metrics.Init(cfg.MetricsNamespace, prometheus.DefaultRegisterer)

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	printCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	printer := infra.NewPrintBridgeClient(cfg.PrintBridgeURL, cfg.PrintTimeout(), printCB)
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb, cfg.ArqueoEmailTo)

	// Async jobs: receipts that did not print and close reports by mail.
	// Handlers are wired here (composition root) so the pool sees the same
	// printer and breaker as the request path.
	pool := worker.NewPool(rdb, worker.PoolConfig{
		Workers:     cfg.WorkerPoolSize,
		MaxAttempts: cfg.PrintMaxAttempts,
	})
	pool.Handle(worker.QueueImpresion, worker.JobImpresion, worker.NewPrintWorker(printer))

	emailArqueo := mailer.Configurado() && cfg.ArqueoEmailTo != ""
	if emailArqueo {
		pool.Handle(worker.QueueEmail, worker.JobArqueoEmail, worker.NewEmailWorker(mailer, cfg.PDFStoragePath))
	} else {
		log.Info().Msg("SMTP or ARQUEO_EMAIL_TO not set, close reports will not be mailed")
	}
	pool.Start(ctx)

	if cfg.PrintRetryEnabled {
		worker.StartReplayCron(ctx, worker.ReplayCronConfig{RDB: rdb, CB: printCB})
	}

	r := router.New(cfg, router.Deps{
		DB:          db,
		Redis:       rdb,
		Printer:     printer,
		Dispatcher:  dispatcher,
		EmailArqueo: emailArqueo,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("POS carniceria listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	_ = rdb.Close()
	log.Info().Msg("server exited")
}
