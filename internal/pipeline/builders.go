package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/backoffice/internal/llm"
	"github.com/dvloznov/backoffice/internal/mail"
	"github.com/dvloznov/backoffice/internal/pnl"
	"github.com/rs/zerolog"
)

// Deps are the collaborators shared by every pipeline. Repo, Notion, Sender
// and Generator are optional; the steps that need them become no-ops.
type Deps struct {
	Storage     StorageService
	Repo        RunRepository
	Payroll     PayrollProcessor
	Categorizer Categorizer
	Learned     Flusher
	Generator   llm.Generator
	Notion      NotionService
	Sender      mail.Sender
	Logger      zerolog.Logger

	ReportBucket     string
	Recipients       []string
	NotionDatabaseID string
	Template         pnl.Template
	StatementTitle   string
}

func (d Deps) head() []PipelineStep {
	return []PipelineStep{
		&StartRunStep{Repo: d.Repo},
		&FetchFileStep{Storage: d.Storage},
	}
}

func (d Deps) tail() []PipelineStep {
	return []PipelineStep{
		&ArchiveReportStep{Storage: d.Storage, Bucket: d.ReportBucket},
		&ExportStep{Repo: d.Repo},
		&NotifyStep{Sender: d.Sender, Recipients: d.Recipients, Logger: d.Logger},
		&MarkSuccessStep{Repo: d.Repo},
	}
}

func (d Deps) build(middle ...PipelineStep) *Pipeline {
	steps := append(d.head(), middle...)
	steps = append(steps, d.tail()...)
	p := NewPipeline(steps...)
	if d.Repo != nil {
		p.OnFailure(func(ctx context.Context, state *PipelineState, err error) {
			if state.RunID != "" {
				d.Repo.MarkRunFailed(ctx, state.RunID, err)
			}
		})
	}
	return p
}

// NewPayrollPipeline reconciles a payroll export into the final report.
func NewPayrollPipeline(d Deps) *Pipeline {
	return d.build(&ProcessPayrollStep{Processor: d.Payroll, Generator: d.Generator, Logger: d.Logger})
}

// NewStatementPipeline categorizes a bank statement and builds its P&L.
func NewStatementPipeline(d Deps) *Pipeline {
	steps := []PipelineStep{
		&ParseStatementStep{Logger: d.Logger},
		&CategorizeStep{Categorizer: d.Categorizer, Learned: d.Learned},
		&AggregateStep{Template: d.Template, Title: d.StatementTitle, Generator: d.Generator, Logger: d.Logger},
	}
	if d.Notion != nil && d.NotionDatabaseID != "" {
		steps = append(steps, &PublishStep{Client: d.Notion, DatabaseID: d.NotionDatabaseID, Logger: d.Logger})
	}
	return d.build(steps...)
}

// NewSalesPipeline analyses a daily sales export.
func NewSalesPipeline(d Deps) *Pipeline {
	return d.build(&ProcessSalesStep{Generator: d.Generator})
}

// NewMenuPipeline analyses a menu item sales export.
func NewMenuPipeline(d Deps) *Pipeline {
	return d.build(&ProcessMenuStep{Generator: d.Generator})
}

// ForKind returns the pipeline for an export kind.
func ForKind(kind string, d Deps) (*Pipeline, error) {
	switch kind {
	case KindPayroll:
		return NewPayrollPipeline(d), nil
	case KindStatement:
		return NewStatementPipeline(d), nil
	case KindSales:
		return NewSalesPipeline(d), nil
	case KindMenu:
		return NewMenuPipeline(d), nil
	default:
		return nil, fmt.Errorf("ForKind: unknown kind %q", kind)
	}
}
