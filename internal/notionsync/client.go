package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
)

// pageSize is the largest page the Notion query API returns.
const pageSize = 100

// NotionClient implements NotionService over the jomei/notionapi SDK.
type NotionClient struct {
	client *notionapi.Client
}

// NewNotionClient creates a client authenticated with token.
func NewNotionClient(token string) *NotionClient {
	return &NotionClient{client: notionapi.NewClient(notionapi.Token(token))}
}

// periodFilter selects the pages whose Period select equals period.
func periodFilter(period string) notionapi.Filter {
	return notionapi.PropertyFilter{
		Property: PropPeriod,
		Select:   &notionapi.SelectFilterCondition{Equals: period},
	}
}

// PeriodPages follows the query cursor until every line page of period
// has been read.
func (n *NotionClient) PeriodPages(ctx context.Context, databaseID, period string) ([]notionapi.Page, error) {
	var (
		pages  []notionapi.Page
		cursor notionapi.Cursor
	)
	for {
		req := &notionapi.DatabaseQueryRequest{
			Filter:      periodFilter(period),
			PageSize:    pageSize,
			StartCursor: cursor,
		}
		resp, err := n.client.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
		if err != nil {
			return nil, fmt.Errorf("PeriodPages %s: %w", period, err)
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}

func (n *NotionClient) CreateLine(ctx context.Context, databaseID string, properties notionapi.Properties) error {
	_, err := n.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: properties,
	})
	if err != nil {
		return fmt.Errorf("CreateLine: %w", err)
	}
	return nil
}

func (n *NotionClient) UpdateLine(ctx context.Context, pageID string, properties notionapi.Properties) error {
	if _, err := n.client.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Properties: properties}); err != nil {
		return fmt.Errorf("UpdateLine %s: %w", pageID, err)
	}
	return nil
}

func (n *NotionClient) ArchiveLine(ctx context.Context, pageID string) error {
	if _, err := n.client.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Archived: true}); err != nil {
		return fmt.Errorf("ArchiveLine %s: %w", pageID, err)
	}
	return nil
}

var _ NotionService = (*NotionClient)(nil)
