package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dvloznov/backoffice/internal/domain"
	"github.com/dvloznov/backoffice/internal/gcsuploader"
	infra "github.com/dvloznov/backoffice/internal/infra/bigquery"
	"github.com/dvloznov/backoffice/internal/insight"
	"github.com/dvloznov/backoffice/internal/llm"
	"github.com/dvloznov/backoffice/internal/mail"
	"github.com/dvloznov/backoffice/internal/menu"
	"github.com/dvloznov/backoffice/internal/notionsync"
	"github.com/dvloznov/backoffice/internal/payroll"
	"github.com/dvloznov/backoffice/internal/pnl"
	"github.com/dvloznov/backoffice/internal/sales"
	"github.com/dvloznov/backoffice/internal/statement"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// XLSXContentType is the MIME type of generated workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PayrollReportName is the archived name of a reconciled payroll workbook.
const PayrollReportName = "Final_Payroll_Report.xlsx"

// PayrollProcessor reconciles a payroll export. *payroll.Processor
// satisfies it.
type PayrollProcessor interface {
	ProcessFile(ctx context.Context, filename string, data []byte) (*payroll.Result, error)
}

// Categorizer assigns categories in place. *categorize.Categorizer
// satisfies it.
type Categorizer interface {
	CategorizeAll(ctx context.Context, txs []domain.Transaction) map[domain.CategorySource]int
}

// Flusher persists pending changes. *rules.RuleSet satisfies it.
type Flusher interface {
	Flush() error
}

// StartRunStep opens a processing run (status=RUNNING). Without a
// repository the run ID is generated locally.
type StartRunStep struct {
	Repo RunRepository
}

func (s *StartRunStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Repo == nil {
		state.RunID = uuid.NewString()
		return nil
	}
	runID, err := s.Repo.StartRun(ctx, state.Kind, state.GCSURI)
	if err != nil {
		return err
	}
	state.RunID = runID
	return nil
}

// FetchFileStep downloads the upload from storage. It is a no-op when the
// caller already supplied the bytes.
type FetchFileStep struct {
	Storage StorageService
}

func (s *FetchFileStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Filename == "" && state.GCSURI != "" {
		state.Filename = s.Storage.ExtractFilenameFromGCSURI(state.GCSURI)
	}
	if state.Data != nil {
		return nil
	}
	if state.GCSURI == "" {
		return errors.New("FetchFileStep: no file data and no GCS URI")
	}
	data, err := s.Storage.FetchFromGCS(ctx, state.GCSURI)
	if err != nil {
		return err
	}
	state.Data = data
	return nil
}

// ProcessPayrollStep reconciles the payroll export and renders the final
// report workbook. Row-level failures are logged and left out of the report.
type ProcessPayrollStep struct {
	Processor PayrollProcessor
	Generator llm.Generator
	Logger    zerolog.Logger
}

func (s *ProcessPayrollStep) Execute(ctx context.Context, state *PipelineState) error {
	res, err := s.Processor.ProcessFile(ctx, state.Filename, state.Data)
	if err != nil {
		return err
	}
	for _, rowErr := range res.RowErrors {
		s.Logger.Warn().Err(rowErr).Int("row", rowErr.Row).Msg("payroll row skipped")
	}

	report, err := payroll.WriteReport(res.Records)
	if err != nil {
		return err
	}

	state.Payroll = res
	state.Report = report
	state.ReportFilename = PayrollReportName
	state.Summary = fmt.Sprintf("%d employees, total pay $%s, %d rows skipped",
		res.Totals.Employees, res.Totals.TotalPay.StringFixed(2), len(res.RowErrors))
	if s.Generator != nil {
		state.Narrative = insight.PayrollSummary(ctx, s.Generator, res)
	}
	return nil
}

// ParseStatementStep parses a bank statement export into transactions.
type ParseStatementStep struct {
	Logger zerolog.Logger
}

func (s *ParseStatementStep) Execute(ctx context.Context, state *PipelineState) error {
	txs, err := statement.Parse(state.Filename, state.Data, s.Logger)
	if err != nil {
		return err
	}
	state.Transactions = txs
	return nil
}

// CategorizeStep runs every transaction through the categorizer and
// persists any rules it learned.
type CategorizeStep struct {
	Categorizer Categorizer
	Learned     Flusher
}

func (s *CategorizeStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Sources = s.Categorizer.CategorizeAll(ctx, state.Transactions)
	if s.Learned != nil {
		if err := s.Learned.Flush(); err != nil {
			return fmt.Errorf("CategorizeStep: saving learned rules: %w", err)
		}
	}
	return nil
}

// AggregateStep builds the P&L statement and its workbook.
type AggregateStep struct {
	Template  pnl.Template
	Title     string
	RowOffset int
	Generator llm.Generator
	Logger    zerolog.Logger
}

func (s *AggregateStep) Execute(ctx context.Context, state *PipelineState) error {
	tmpl := s.Template
	if tmpl == nil {
		tmpl = pnl.DefaultTemplate()
	}
	period := StatementPeriod(state.Transactions)
	stmt, err := pnl.Aggregate(state.Transactions, tmpl, pnl.Options{
		RowOffset: s.RowOffset,
		Title:     s.Title,
		Period:    period,
	})
	if err != nil {
		return err
	}
	stmt.LogUnmapped(s.Logger)

	report, err := pnl.WriteWorkbook(stmt)
	if err != nil {
		return err
	}

	state.Statement = stmt
	state.Report = report
	state.ReportFilename = "PnL_Statement_" + period + ".xlsx"
	if period == "" {
		state.ReportFilename = "PnL_Statement.xlsx"
	}
	net, _ := stmt.Value("net_income_after_tax")
	state.Summary = fmt.Sprintf("%d transactions, %d duplicates dropped, net income $%s",
		len(state.Transactions), stmt.Duplicates, net.StringFixed(2))
	if s.Generator != nil {
		state.Narrative = insight.FinancialInsight(ctx, s.Generator, state.Transactions, "")
	}
	return nil
}

// StatementPeriod names the period covered by txs: "2024-03" when every
// transaction falls in one month, otherwise "2024-03-01_2024-04-15".
func StatementPeriod(txs []domain.Transaction) string {
	if len(txs) == 0 {
		return ""
	}
	first, last := txs[0].Date, txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.Before(first) {
			first = tx.Date
		}
		if tx.Date.After(last) {
			last = tx.Date
		}
	}
	if first.Year() == last.Year() && first.Month() == last.Month() {
		return first.Format("2006-01")
	}
	return first.Format("2006-01-02") + "_" + last.Format("2006-01-02")
}

// ProcessSalesStep computes sales metrics and their analysis.
type ProcessSalesStep struct {
	Generator llm.Generator
}

func (s *ProcessSalesStep) Execute(ctx context.Context, state *PipelineState) error {
	report, err := sales.Parse(state.Filename, state.Data)
	if err != nil {
		return err
	}
	m := sales.Compute(report)
	state.Sales = report
	state.SalesMetrics = m
	state.Summary = fmt.Sprintf("%d days, total sales $%s, average ticket $%s",
		m.Days, m.TotalSales.StringFixed(2), m.AverageTicket.StringFixed(2))
	state.Narrative = insight.SalesAnalysis(ctx, s.Generator, m)
	return nil
}

// ProcessMenuStep computes menu metrics and their analysis.
type ProcessMenuStep struct {
	Generator llm.Generator
}

func (s *ProcessMenuStep) Execute(ctx context.Context, state *PipelineState) error {
	report, err := menu.Parse(state.Filename, state.Data)
	if err != nil {
		return err
	}
	m := menu.Compute(report.Items)
	state.Menu = report
	state.MenuMetrics = m
	state.Summary = fmt.Sprintf("%d items, %s sold, total sales $%s",
		len(report.Items), m.TotalItems.String(), m.TotalSales.StringFixed(2))
	state.Narrative = insight.MenuAnalysis(ctx, s.Generator, report, m)
	return nil
}

// ArchiveReportStep uploads the generated workbook next to the uploads.
type ArchiveReportStep struct {
	Storage StorageService
	Bucket  string
	Now     func() time.Time
}

func (s *ArchiveReportStep) Execute(ctx context.Context, state *PipelineState) error {
	if len(state.Report) == 0 || s.Bucket == "" {
		return nil
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	object := gcsuploader.ReportObjectName(state.Kind, state.ReportFilename, now())
	if err := s.Storage.UploadBytes(ctx, s.Bucket, object, state.Report, XLSXContentType); err != nil {
		return err
	}
	state.Outputs = append(state.Outputs, gcsuploader.URI(s.Bucket, object))
	return nil
}

// ExportStep writes the run's rows to the warehouse.
type ExportStep struct {
	Repo RunRepository
	Now  func() time.Time
}

func (s *ExportStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Repo == nil {
		return nil
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ts := now().UTC()

	if len(state.Transactions) > 0 {
		rows := make([]*infra.TransactionRow, 0, len(state.Transactions))
		for _, tx := range state.Transactions {
			rows = append(rows, infra.NewTransactionRow(state.RunID, tx, ts))
		}
		if err := s.Repo.InsertTransactions(ctx, rows); err != nil {
			return err
		}
	}
	if state.Payroll != nil && len(state.Payroll.Records) > 0 {
		rows := make([]*infra.PayRecordRow, 0, len(state.Payroll.Records))
		for _, r := range state.Payroll.Records {
			rows = append(rows, infra.NewPayRecordRow(state.RunID, r, ts))
		}
		if err := s.Repo.InsertPayRecords(ctx, rows); err != nil {
			return err
		}
	}
	return nil
}

// PublishStep mirrors the P&L statement into Notion.
type PublishStep struct {
	Client     NotionService
	DatabaseID string
	DryRun     bool
	Logger     zerolog.Logger
}

func (s *PublishStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Client == nil || state.Statement == nil || state.Statement.Period == "" {
		return nil
	}
	res, err := notionsync.PublishStatement(ctx, s.Client, s.DatabaseID, state.Statement, s.DryRun)
	if err != nil {
		return err
	}
	s.Logger.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("deleted", res.Deleted).
		Int("failed", res.Failed).
		Msg("published statement to Notion")
	return nil
}

// NotifyStep emails the summary and report to the configured recipients.
// Delivery failures are logged and never fail the run.
type NotifyStep struct {
	Sender     mail.Sender
	Recipients []string
	Logger     zerolog.Logger
}

func (s *NotifyStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Sender == nil || len(s.Recipients) == 0 {
		return nil
	}
	mail.TrySend(ctx, s.Sender, NotificationFor(state, s.Recipients), s.Logger)
	return nil
}

// NotificationFor builds the notification email for a finished run.
func NotificationFor(state *PipelineState, to []string) mail.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Processed %s (%s).\n\n", state.Filename, state.Kind)
	if state.Summary != "" {
		b.WriteString(state.Summary + "\n")
	}
	if state.Narrative != "" {
		b.WriteString("\n" + state.Narrative + "\n")
	}
	for _, out := range state.Outputs {
		b.WriteString("\nArchived: " + out)
	}

	msg := mail.Message{
		To:      to,
		Subject: fmt.Sprintf("%s report: %s", titleCase(state.Kind), filepath.Base(state.Filename)),
		Body:    b.String(),
	}
	if len(state.Report) > 0 {
		msg.AttachmentName = state.ReportFilename
		msg.AttachmentData = state.Report
	}
	return msg
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// MarkSuccessStep marks the run as SUCCESS.
type MarkSuccessStep struct {
	Repo RunRepository
}

func (s *MarkSuccessStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Repo == nil {
		return nil
	}
	return s.Repo.MarkRunSucceeded(ctx, state.RunID, state.Summary)
}
