package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/backoffice/internal/config"
	"github.com/dvloznov/backoffice/internal/gcsuploader"
	"github.com/dvloznov/backoffice/internal/jobs"
	"github.com/dvloznov/backoffice/internal/jobs/inmemory"
	"github.com/dvloznov/backoffice/internal/logger"
	"github.com/dvloznov/backoffice/internal/mail"
	"github.com/dvloznov/backoffice/internal/service"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// mailKinds are the exports the POS system emails on a schedule.
var mailKinds = []jobs.JobType{jobs.JobTypePayroll, jobs.JobTypeSales, jobs.JobTypeMenu}

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}

	jobType := flag.String("type", "", "job type for the gs:// URIs given as arguments")
	poll := flag.Duration("poll", 0, "poll the inbox for new reports at this interval (0 disables)")
	flag.Parse()

	log := logger.NewWithLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	svc, err := service.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}
	defer svc.Close()

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore,
		inmemory.WithWorkers(cfg.WorkerCount),
		inmemory.WithLogger(log),
	)

	log.Info().Msg("Starting worker service")

	if err := jobQueue.Start(ctx, svc.HandleJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	if flag.NArg() > 0 {
		t, err := jobs.ParseJobType(*jobType)
		if err != nil {
			log.Fatal().Err(err).Msg("Error: -type is required with gs:// arguments")
		}
		for _, uri := range flag.Args() {
			job := &jobs.ProcessFileJob{Type: t, GCSURI: uri, Filename: gcsuploader.ExtractFilenameFromGCSURI(uri)}
			if err := jobQueue.PublishProcessFile(ctx, job); err != nil {
				log.Fatal().Err(err).Str("gcs_uri", uri).Msg("Failed to enqueue job")
			}
			log.Info().Str("job_id", job.JobID).Str("gcs_uri", uri).Msg("Job enqueued")
		}
	}

	if *poll > 0 {
		if svc.Fetcher == nil {
			log.Fatal().Msg("Error: -poll needs IMAP_USER and IMAP_PASSWORD")
		}
		go pollInbox(ctx, svc, jobQueue, cfg.GCSBucket, *poll, log)
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}
	cancel()

	log.Info().Msg("Worker service exited")
}

// pollInbox stores each new emailed report and enqueues it. Attachments
// already seen within the last day are skipped.
func pollInbox(ctx context.Context, svc *service.Service, q jobs.Publisher, bucket string, every time.Duration, log zerolog.Logger) {
	if bucket == "" {
		bucket = "local"
	}
	seen := cache.New(24*time.Hour, time.Hour)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		for _, kind := range mailKinds {
			filter, _ := service.FilterFor(string(kind))
			att, err := svc.Fetcher.FetchAttachment(ctx, filter)
			if errors.Is(err, mail.ErrNotFound) {
				continue
			}
			if err != nil {
				log.Warn().Err(err).Str("type", string(kind)).Msg("Inbox poll failed")
				continue
			}

			key := string(kind) + "|" + att.Filename + "|" + att.Date.UTC().Format(time.RFC3339)
			if _, ok := seen.Get(key); ok {
				continue
			}

			object := gcsuploader.UploadObjectName(string(kind), att.Filename, time.Now())
			if err := svc.Storage.UploadBytes(ctx, bucket, object, att.Data, ""); err != nil {
				log.Error().Err(err).Str("filename", att.Filename).Msg("Failed to store attachment")
				continue
			}
			job := &jobs.ProcessFileJob{Type: kind, GCSURI: gcsuploader.URI(bucket, object), Filename: att.Filename}
			if err := q.PublishProcessFile(ctx, job); err != nil {
				log.Error().Err(err).Msg("Failed to enqueue job")
				continue
			}
			seen.SetDefault(key, struct{}{})
			log.Info().Str("job_id", job.JobID).Str("filename", att.Filename).Msg("Emailed report enqueued")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
