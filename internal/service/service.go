// Package service wires configuration into the stores, the categorizer and
// the optional cloud collaborators, and runs files through the pipelines.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dvloznov/backoffice/internal/categorize"
	"github.com/dvloznov/backoffice/internal/config"
	"github.com/dvloznov/backoffice/internal/gcsuploader"
	infra "github.com/dvloznov/backoffice/internal/infra/bigquery"
	"github.com/dvloznov/backoffice/internal/jobs"
	"github.com/dvloznov/backoffice/internal/llm"
	"github.com/dvloznov/backoffice/internal/mail"
	"github.com/dvloznov/backoffice/internal/notionsync"
	"github.com/dvloznov/backoffice/internal/payroll"
	"github.com/dvloznov/backoffice/internal/pipeline"
	"github.com/dvloznov/backoffice/internal/ratestore"
	"github.com/dvloznov/backoffice/internal/rules"
	"github.com/dvloznov/backoffice/internal/schedule"
	"github.com/dvloznov/backoffice/internal/sheet"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// StatementTitle heads generated P&L workbooks.
const StatementTitle = "Profit and Loss Statement"

// Service holds the long-lived state shared by the CLI, the API and the
// worker. Optional collaborators are nil when not configured.
type Service struct {
	cfg *config.Config
	log zerolog.Logger

	Rates       *ratestore.Store
	Learned     *rules.RuleSet
	Journal     *rules.RuleSet
	Categorizer *categorize.Categorizer
	Payroll     *payroll.Processor

	Storage   gcsuploader.StorageService
	Generator llm.Generator
	Repo      infra.Repository
	Notion    notionsync.NotionService
	Sender    mail.Sender
	Fetcher   mail.Fetcher
}

// Deps are the optional collaborators for NewWithDeps. Nil fields disable
// the matching feature; a nil Storage falls back to memory.
type Deps struct {
	Storage   gcsuploader.StorageService
	Generator llm.Generator
	Repo      infra.Repository
	Notion    notionsync.NotionService
	Sender    mail.Sender
	Fetcher   mail.Fetcher
}

// New builds a Service from cfg, creating a cloud client for every
// collaborator that has credentials.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Service, error) {
	var d Deps

	if cfg.GeminiAPIKey != "" {
		gen, err := llm.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("service.New: %w", err)
		}
		d.Generator = gen
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, generated categories and analysis disabled")
	}

	if cfg.GCSBucket != "" {
		d.Storage = gcsuploader.NewGCSStorageService()
	}

	if cfg.BigQueryConfigured() {
		repo, err := infra.NewBigQueryRepository(ctx, cfg.GCPProject, cfg.BQDataset)
		if err != nil {
			return nil, fmt.Errorf("service.New: %w", err)
		}
		d.Repo = repo
	}

	if cfg.NotionConfigured() {
		d.Notion = notionsync.NewNotionClient(cfg.NotionToken)
	}

	d.Sender = mail.NewSender(cfg, log)

	if cfg.IMAPConfigured() {
		d.Fetcher = mail.NewIMAPFetcher(mail.IMAPConfig{
			Addr:     cfg.IMAPAddr,
			User:     cfg.IMAPUser,
			Password: cfg.IMAPPassword,
			Mailbox:  cfg.IMAPMailbox,
		}, log)
	}

	return NewWithDeps(cfg, log, d)
}

// NewWithDeps opens the local stores and wires them to the given
// collaborators.
func NewWithDeps(cfg *config.Config, log zerolog.Logger, d Deps) (*Service, error) {
	rates, err := ratestore.Open(cfg.RatesFile, ratestore.DefaultSeed(), ratestore.Options{})
	if err != nil {
		return nil, fmt.Errorf("service.NewWithDeps: %w", err)
	}
	learned, err := rules.Load(cfg.LearnedRulesFile)
	if err != nil {
		return nil, fmt.Errorf("service.NewWithDeps: %w", err)
	}
	journal, err := rules.Load(cfg.JournalRulesFile)
	if err != nil {
		return nil, fmt.Errorf("service.NewWithDeps: %w", err)
	}

	storage := d.Storage
	if storage == nil {
		storage = gcsuploader.NewMemoryStorageService()
	}

	s := &Service{
		cfg:       cfg,
		log:       log,
		Rates:     rates,
		Learned:   learned,
		Journal:   journal,
		Payroll:   payroll.NewProcessor(rates, log),
		Storage:   storage,
		Generator: d.Generator,
		Repo:      d.Repo,
		Notion:    d.Notion,
		Sender:    d.Sender,
		Fetcher:   d.Fetcher,
	}
	s.Categorizer = categorize.New(categorize.Options{
		Learned:   learned,
		Journal:   journal,
		Generator: d.Generator,
		CacheTTL:  cfg.CategoryCacheTTL,
		Logger:    log,
	})
	return s, nil
}

// PipelineDeps returns the collaborators a pipeline run needs. Interface
// fields are only set when present so the steps see a true nil.
func (s *Service) PipelineDeps() pipeline.Deps {
	d := pipeline.Deps{
		Storage:        s.Storage,
		Payroll:        s.Payroll,
		Categorizer:    s.Categorizer,
		Learned:        s.Learned,
		Logger:         s.log,
		ReportBucket:   s.cfg.GCSBucket,
		Recipients:     s.cfg.ReportRecipients,
		StatementTitle: StatementTitle,
	}
	if s.Generator != nil {
		d.Generator = s.Generator
	}
	if s.Repo != nil {
		d.Repo = s.Repo
	}
	if s.Notion != nil && s.cfg.NotionPNLDatabaseID != "" {
		d.Notion = s.Notion
		d.NotionDatabaseID = s.cfg.NotionPNLDatabaseID
	}
	if s.Sender != nil {
		d.Sender = s.Sender
	}
	return d
}

// Process runs one file through the pipeline for kind. Either data or
// gcsURI must be set.
func (s *Service) Process(ctx context.Context, kind, filename, gcsURI string, data []byte) (*pipeline.PipelineState, error) {
	p, err := pipeline.ForKind(kind, s.PipelineDeps())
	if err != nil {
		return nil, err
	}
	state := &pipeline.PipelineState{
		Kind:     kind,
		GCSURI:   gcsURI,
		Filename: filename,
		Data:     data,
	}
	if err := p.Execute(ctx, state); err != nil {
		return state, err
	}
	return state, nil
}

// HandleJob implements jobs.JobHandler. Files that can never parse are
// reported as permanent failures so the queue does not retry them.
func (s *Service) HandleJob(ctx context.Context, job jobs.Job) error {
	fileJob, ok := job.(*jobs.ProcessFileJob)
	if !ok {
		return jobs.Permanent(fmt.Errorf("HandleJob: unexpected job type %T", job))
	}

	log := s.log.With().Str("job_id", fileJob.JobID).Str("type", string(fileJob.Type)).Logger()
	log.Info().Str("gcs_uri", fileJob.GCSURI).Msg("processing file")

	state, err := s.Process(ctx, string(fileJob.Type), fileJob.Filename, fileJob.GCSURI, nil)
	if state != nil {
		fileJob.RunID = state.RunID
	}
	if err != nil {
		if IsStructural(err) {
			return jobs.Permanent(err)
		}
		return err
	}

	fileJob.Result = state.Summary
	fileJob.Outputs = state.Outputs
	log.Info().Str("run_id", state.RunID).Str("result", state.Summary).Msg("file processed")
	return nil
}

// IsStructural reports whether err means the file itself is unusable:
// no header row, a missing required column or an unreadable format.
func IsStructural(err error) bool {
	return errors.Is(err, sheet.ErrHeaderNotFound) ||
		errors.Is(err, sheet.ErrColumnMissing) ||
		errors.Is(err, sheet.ErrUnsupportedFormat)
}

// Categorize categorizes one transaction and persists anything learned.
func (s *Service) Categorize(ctx context.Context, description string, amount decimal.Decimal) (categorize.Result, error) {
	res := s.Categorizer.Categorize(ctx, categorize.Input{
		Description: description,
		Amount:      amount,
		CheckNumber: categorize.CheckNumber(description),
	})
	if err := s.Learned.Flush(); err != nil {
		return res, fmt.Errorf("Categorize: saving learned rules: %w", err)
	}
	return res, nil
}

// SetRate records a rate under an employee ID when key is numeric, or
// under a name otherwise, and writes the store.
func (s *Service) SetRate(key string, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return fmt.Errorf("SetRate: rate must be positive, got %s", rate)
	}
	if id, ok := parseEmployeeID(key); ok {
		if err := s.Rates.SetID(id, rate); err != nil {
			return err
		}
	} else if err := s.Rates.SetName(key, rate); err != nil {
		return err
	}
	return s.Rates.Flush()
}

func parseEmployeeID(key string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// FetchAndProcess pulls the newest matching attachment for kind from the
// inbox and processes it.
func (s *Service) FetchAndProcess(ctx context.Context, kind string) (*pipeline.PipelineState, error) {
	if s.Fetcher == nil {
		return nil, errors.New("FetchAndProcess: IMAP is not configured")
	}
	filter, ok := FilterFor(kind)
	if !ok {
		return nil, fmt.Errorf("FetchAndProcess: no mail filter for %q", kind)
	}
	att, err := s.Fetcher.FetchAttachment(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("FetchAndProcess: %w", err)
	}
	s.log.Info().Str("filename", att.Filename).Str("subject", att.Subject).Msg("fetched attachment")
	return s.Process(ctx, kind, att.Filename, "", att.Data)
}

// FetchSchedule pulls and parses the newest employee schedule from the
// inbox.
func (s *Service) FetchSchedule(ctx context.Context) (*schedule.Schedule, error) {
	if s.Fetcher == nil {
		return nil, errors.New("FetchSchedule: IMAP is not configured")
	}
	att, err := s.Fetcher.FetchAttachment(ctx, mail.ScheduleFilter)
	if err != nil {
		return nil, fmt.Errorf("FetchSchedule: %w", err)
	}
	return schedule.Parse(att.Filename, att.Data)
}

// FilterFor returns the inbox filter for the export kind.
func FilterFor(kind string) (mail.Filter, bool) {
	switch kind {
	case pipeline.KindPayroll:
		return mail.PayrollFilter, true
	case pipeline.KindSales:
		return mail.SalesFilter, true
	case pipeline.KindMenu:
		return mail.MenuFilter, true
	case "schedule":
		return mail.ScheduleFilter, true
	}
	return mail.Filter{}, false
}

// Close flushes the stores and releases the warehouse client.
func (s *Service) Close() error {
	var errs []error
	if err := s.Rates.Flush(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Learned.Flush(); err != nil {
		errs = append(errs, err)
	}
	if s.Repo != nil {
		if err := s.Repo.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RateEntries returns the rate store keyed as it is written to disk.
func (s *Service) RateEntries() map[string]decimal.Decimal {
	return s.Rates.Entries()
}

// LearnedRules returns the learned keyword rules in match order.
func (s *Service) LearnedRules() []rules.Rule {
	return s.Learned.Rules()
}
