package pipeline

import (
	"context"

	infra "github.com/dvloznov/backoffice/internal/infra/bigquery"
	"github.com/dvloznov/backoffice/internal/notionsync"
)

// StorageService is the storage subset the steps use.
type StorageService interface {
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
	UploadBytes(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error
	ExtractFilenameFromGCSURI(uri string) string
}

// RunRepository records processing runs and exports their rows. It is a
// subset of infra.Repository so tests can supply a small mock.
type RunRepository interface {
	StartRun(ctx context.Context, kind, sourceURI string) (string, error)
	MarkRunSucceeded(ctx context.Context, runID, summary string) error
	MarkRunFailed(ctx context.Context, runID string, runErr error)
	InsertTransactions(ctx context.Context, rows []*infra.TransactionRow) error
	InsertPayRecords(ctx context.Context, rows []*infra.PayRecordRow) error
}

// NotionService is re-exported so callers wiring a pipeline need not
// import notionsync.
type NotionService = notionsync.NotionService
