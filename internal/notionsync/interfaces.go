package notionsync

import (
	"context"

	"github.com/jomei/notionapi"
)

// NotionService is what the publisher needs from a P&L database: read the
// line pages of one period, then create, update or archive single lines.
type NotionService interface {
	PeriodPages(ctx context.Context, databaseID, period string) ([]notionapi.Page, error)
	CreateLine(ctx context.Context, databaseID string, properties notionapi.Properties) error
	UpdateLine(ctx context.Context, pageID string, properties notionapi.Properties) error

	// ArchiveLine archives a page. Notion has no hard delete.
	ArchiveLine(ctx context.Context, pageID string) error
}
