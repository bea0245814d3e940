// Package pipeline runs one uploaded export through parsing, reporting and
// export as a sequence of steps sharing a PipelineState.
package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/backoffice/internal/domain"
	"github.com/dvloznov/backoffice/internal/menu"
	"github.com/dvloznov/backoffice/internal/payroll"
	"github.com/dvloznov/backoffice/internal/pnl"
	"github.com/dvloznov/backoffice/internal/sales"
)

// Kinds of export a pipeline can process.
const (
	KindPayroll   = "payroll"
	KindStatement = "statement"
	KindSales     = "sales"
	KindMenu      = "menu"
)

// PipelineStep represents a single step in a processing pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// StepFunc adapts a function to PipelineStep.
type StepFunc func(ctx context.Context, state *PipelineState) error

func (f StepFunc) Execute(ctx context.Context, state *PipelineState) error {
	return f(ctx, state)
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	Kind     string
	GCSURI   string
	Filename string
	RunID    string
	Data     []byte

	Payroll *payroll.Result

	Transactions []domain.Transaction
	Sources      map[domain.CategorySource]int
	Statement    *pnl.Statement

	Sales        *sales.Report
	SalesMetrics sales.Metrics
	Menu         *menu.Report
	MenuMetrics  menu.Metrics

	// Narrative is generated analysis text for the notification email.
	Narrative string

	Report         []byte
	ReportFilename string

	// Outputs are the gs:// URIs of archived reports.
	Outputs []string
	Summary string
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps     []PipelineStep
	onFailure func(ctx context.Context, state *PipelineState, err error)
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// OnFailure registers a hook that runs once when a step fails.
func (p *Pipeline) OnFailure(f func(ctx context.Context, state *PipelineState, err error)) *Pipeline {
	p.onFailure = f
	return p
}

// Len returns the number of steps.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// Execute runs all steps in the pipeline sequentially and stops at the
// first failure.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.Execute(ctx, state); err != nil {
			err = fmt.Errorf("pipeline step %d failed: %w", i+1, err)
			if p.onFailure != nil {
				p.onFailure(ctx, state, err)
			}
			return err
		}
	}
	return nil
}
