package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/backoffice/internal/api/handlers"
	"github.com/dvloznov/backoffice/internal/api/middleware"
	"github.com/dvloznov/backoffice/internal/config"
	"github.com/dvloznov/backoffice/internal/jobs/inmemory"
	"github.com/dvloznov/backoffice/internal/logger"
	"github.com/dvloznov/backoffice/internal/service"
)

// localBucket names uploads kept in memory when no GCS bucket is set.
const localBucket = "local"

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}

	port := flag.String("port", cfg.Port, "HTTP server port")
	flag.Parse()

	log := logger.NewWithLevel(cfg.LogLevel)
	ctx := logger.WithContext(context.Background(), log)

	svc, err := service.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close service")
		}
	}()

	bucket := cfg.GCSBucket
	if bucket == "" {
		log.Warn().Msg("No GCS bucket configured - uploads are kept in memory and reports are not archived")
		bucket = localBucket
	}

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore,
		inmemory.WithWorkers(cfg.WorkerCount),
		inmemory.WithLogger(log),
	)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, svc.HandleJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job worker")
	}

	router := &handlers.Router{
		Files:      handlers.NewFilesHandler(svc.Storage, jobQueue, svc, bucket, log),
		Jobs:       handlers.NewJobsHandler(jobStore, jobQueue, log),
		Rates:      handlers.NewRatesHandler(svc, log),
		Rules:      handlers.NewRulesHandler(svc),
		Categorize: handlers.NewCategorizeHandler(svc, log),
	}
	if svc.Repo != nil {
		router.Runs = handlers.NewRunsHandler(svc.Repo, log)
	}

	handler := middleware.Chain(router.Mux(),
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.RequestID,
		middleware.CORS,
		middleware.Auth(cfg.APIToken),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
