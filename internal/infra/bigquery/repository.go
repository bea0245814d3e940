package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/backoffice/internal/logger"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

const (
	runsTable         = "processing_runs"
	transactionsTable = "transactions"
	payRecordsTable   = "pay_records"

	maxErrorLen = 2000
)

// Repository records processing runs and their outputs.
type Repository interface {
	// StartRun inserts a RUNNING processing run and returns its run_id.
	StartRun(ctx context.Context, kind, sourceURI string) (string, error)

	// MarkRunSucceeded sets status=SUCCESS, finished_ts and the summary.
	MarkRunSucceeded(ctx context.Context, runID, summary string) error

	// MarkRunFailed sets status=FAILED, finished_ts and error_message.
	// Failures to record the failure are logged, not returned.
	MarkRunFailed(ctx context.Context, runID string, runErr error)

	InsertTransactions(ctx context.Context, rows []*TransactionRow) error
	InsertPayRecords(ctx context.Context, rows []*PayRecordRow) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*RunRow, error)

	Close() error
}

// BigQueryRepository is the concrete Repository backed by BigQuery. It
// holds a shared client to avoid creating a new connection for each
// operation.
type BigQueryRepository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewBigQueryRepository creates a repository for the given project and
// dataset.
func NewBigQueryRepository(ctx context.Context, projectID, datasetID string) (*BigQueryRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryRepository: creating client: %w", err)
	}
	return &BigQueryRepository{client: client, projectID: projectID, datasetID: datasetID}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func (r *BigQueryRepository) table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", r.projectID, r.datasetID, name)
}

// exec runs a DML statement and waits for it.
func (r *BigQueryRepository) exec(ctx context.Context, sql string, params []bigquery.QueryParameter) error {
	q := r.client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}

func (r *BigQueryRepository) StartRun(ctx context.Context, kind, sourceURI string) (string, error) {
	runID := uuid.NewString()

	err := r.exec(ctx, fmt.Sprintf(`
		INSERT %s (run_id, kind, source_uri, started_ts, status)
		VALUES (@run_id, @kind, @source_uri, @started_ts, @status)
	`, r.table(runsTable)), []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "kind", Value: kind},
		{Name: "source_uri", Value: sourceURI},
		{Name: "started_ts", Value: time.Now()},
		{Name: "status", Value: RunStatusRunning},
	})
	if err != nil {
		return "", fmt.Errorf("StartRun: %w", err)
	}
	return runID, nil
}

func (r *BigQueryRepository) MarkRunSucceeded(ctx context.Context, runID, summary string) error {
	err := r.exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    summary = @summary,
		    error_message = ""
		WHERE run_id = @run_id
	`, r.table(runsTable)), []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusSuccess},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "summary", Value: summary},
		{Name: "run_id", Value: runID},
	})
	if err != nil {
		return fmt.Errorf("MarkRunSucceeded: %w", err)
	}
	return nil
}

func (r *BigQueryRepository) MarkRunFailed(ctx context.Context, runID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		if len(errMsg) > maxErrorLen {
			errMsg = errMsg[:maxErrorLen]
		}
	}

	err := r.exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, r.table(runsTable)), []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusFailed},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "run_id", Value: runID},
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkRunFailed: could not record failure")
	}
}

func (r *BigQueryRepository) InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}
	inserter := r.client.DatasetInProject(r.projectID, r.datasetID).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

func (r *BigQueryRepository) InsertPayRecords(ctx context.Context, rows []*PayRecordRow) error {
	if len(rows) == 0 {
		return nil
	}
	inserter := r.client.DatasetInProject(r.projectID, r.datasetID).Table(payRecordsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertPayRecords: inserting rows: %w", err)
	}
	return nil
}

func (r *BigQueryRepository) ListRuns(ctx context.Context, limit int) ([]*RunRow, error) {
	if limit <= 0 {
		limit = 50
	}
	q := r.client.Query(fmt.Sprintf(`
		SELECT run_id, kind, source_uri, started_ts, finished_ts, status, summary, error_message
		FROM %s
		ORDER BY started_ts DESC
		LIMIT @limit
	`, r.table(runsTable)))
	q.Parameters = []bigquery.QueryParameter{{Name: "limit", Value: limit}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRuns: query read: %w", err)
	}

	var rows []*RunRow
	for {
		var row RunRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRuns: iter next: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

var _ Repository = (*BigQueryRepository)(nil)
