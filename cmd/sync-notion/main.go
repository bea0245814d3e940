package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dvloznov/backoffice/internal/config"
	"github.com/dvloznov/backoffice/internal/logger"
	"github.com/dvloznov/backoffice/internal/notionsync"
	"github.com/dvloznov/backoffice/internal/pipeline"
	"github.com/dvloznov/backoffice/internal/pnl"
	"github.com/dvloznov/backoffice/internal/service"
	"github.com/dvloznov/backoffice/internal/statement"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Parse CLI flags
	file := flag.String("file", "", "bank statement export, xlsx or csv (required)")
	period := flag.String("period", "", "period label, such as 2024-03 (defaults to the statement's date range)")
	notionToken := flag.String("notion-token", cfg.NotionToken, "Notion API token (or set NOTION_TOKEN)")
	notionDBID := flag.String("notion-db-id", cfg.NotionPNLDatabaseID, "Notion database ID (or set NOTION_PNL_DATABASE_ID)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read statement")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc, err := service.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}
	defer svc.Close()

	txs, err := statement.Parse(filepath.Base(*file), data, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse statement")
	}
	svc.Categorizer.CategorizeAll(ctx, txs)

	label := *period
	if label == "" {
		label = pipeline.StatementPeriod(txs)
	}
	stmt, err := pnl.Aggregate(txs, pnl.DefaultTemplate(), pnl.Options{Title: service.StatementTitle, Period: label})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build statement")
	}
	stmt.LogUnmapped(log)

	log.Info().
		Str("period", label).
		Int("transactions", stmt.Transactions).
		Bool("dry_run", *dryRun).
		Msg("Starting Notion sync")

	notionClient := notionsync.NewNotionClient(*notionToken)
	res, err := notionsync.PublishStatement(ctx, notionClient, *notionDBID, stmt, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Printf("Sync completed: %d created, %d updated, %d archived, %d failed.\n",
		res.Created, res.Updated, res.Deleted, res.Failed)
}
