// Package notionsync publishes aggregated P&L statements to a Notion
// database, one page per statement line.
package notionsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/backoffice/internal/logger"
	"github.com/dvloznov/backoffice/internal/pnl"
)

// PublishResult counts what a publish changed.
type PublishResult struct {
	Created int
	Updated int
	Deleted int
	Failed  int
}

// PublishStatement upserts every non-header line of stmt into the
// database, keyed by period and line key. Pages of the same period whose
// line no longer exists are archived. Per-page failures are logged and
// counted, not returned.
func PublishStatement(ctx context.Context, notionClient NotionService, databaseID string, stmt *pnl.Statement, dryRun bool) (PublishResult, error) {
	log := logger.FromContext(ctx)
	var res PublishResult

	period := stmt.Period
	if period == "" {
		return res, fmt.Errorf("PublishStatement: statement has no period")
	}

	log.Info().
		Str("period", period).
		Int("lines", len(stmt.Entries)).
		Bool("dry_run", dryRun).
		Msg("Publishing P&L statement to Notion")

	pages, err := notionClient.PeriodPages(ctx, databaseID, period)
	if err != nil {
		return res, fmt.Errorf("PublishStatement: %w", err)
	}

	existing := make(map[string]string, len(pages))
	for _, page := range pages {
		if key := extractLineKey(page); key != "" {
			existing[key] = string(page.ID)
		}
	}

	current := make(map[string]bool)
	for _, e := range stmt.Entries {
		if e.Kind == pnl.Header || e.Key == "" {
			continue
		}
		key := LineKey(period, e.Key)
		current[key] = true
		props := EntryToNotionProperties(period, e)

		pageID, found := existing[key]
		switch {
		case dryRun && found:
			log.Info().Str("key", key).Msg("[DRY RUN] Would update Notion page")
			res.Updated++
		case dryRun:
			log.Info().Str("key", key).Msg("[DRY RUN] Would create Notion page")
			res.Created++
		case found:
			if err := notionClient.UpdateLine(ctx, pageID, props); err != nil {
				log.Warn().Err(err).Str("key", key).Str("page_id", pageID).Msg("Failed to update Notion page")
				res.Failed++
				continue
			}
			res.Updated++
		default:
			if err := notionClient.CreateLine(ctx, databaseID, props); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Failed to create Notion page")
				res.Failed++
				continue
			}
			res.Created++
		}
	}

	prefix := period + "/"
	for key, pageID := range existing {
		if !strings.HasPrefix(key, prefix) || current[key] {
			continue
		}
		if dryRun {
			log.Info().Str("key", key).Msg("[DRY RUN] Would delete stale Notion page")
			res.Deleted++
			continue
		}
		if err := notionClient.ArchiveLine(ctx, pageID); err != nil {
			log.Warn().Err(err).Str("key", key).Str("page_id", pageID).Msg("Failed to delete stale Notion page")
			res.Failed++
			continue
		}
		res.Deleted++
	}

	log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("deleted", res.Deleted).
		Int("failed", res.Failed).
		Msg("P&L publish completed")
	return res, nil
}
