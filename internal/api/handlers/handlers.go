package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/backoffice/internal/api/middleware"
	"github.com/dvloznov/backoffice/internal/categorize"
	"github.com/dvloznov/backoffice/internal/gcsuploader"
	infra "github.com/dvloznov/backoffice/internal/infra/bigquery"
	"github.com/dvloznov/backoffice/internal/jobs"
	"github.com/dvloznov/backoffice/internal/pipeline"
	"github.com/dvloznov/backoffice/internal/rules"
	"github.com/dvloznov/backoffice/internal/sheet"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MaxUploadBytes caps the size of an uploaded export.
const MaxUploadBytes = 32 << 20

// Uploader stores raw uploads.
type Uploader interface {
	UploadBytes(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error
}

// Processor runs a file through its pipeline synchronously.
type Processor interface {
	Process(ctx context.Context, kind, filename, gcsURI string, data []byte) (*pipeline.PipelineState, error)
}

// RateService reads and updates employee rates.
type RateService interface {
	RateEntries() map[string]decimal.Decimal
	SetRate(key string, rate decimal.Decimal) error
}

// RuleService exposes the learned categorization rules.
type RuleService interface {
	LearnedRules() []rules.Rule
}

// CategorizeService categorizes a single transaction.
type CategorizeService interface {
	Categorize(ctx context.Context, description string, amount decimal.Decimal) (categorize.Result, error)
}

// RunLister lists processing runs from the warehouse.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]*infra.RunRow, error)
}

// isStructural reports whether a processing error means the file itself
// cannot be read, which the client has to fix.
func isStructural(err error) bool {
	return errors.Is(err, sheet.ErrHeaderNotFound) ||
		errors.Is(err, sheet.ErrColumnMissing) ||
		errors.Is(err, sheet.ErrUnsupportedFormat)
}

func cleanFilename(name string) string {
	if idx := strings.Index(name, "?"); idx > 0 {
		name = name[:idx]
	}
	return filepath.Base(filepath.Clean("/" + name))
}

func contentTypeFor(filename string) string {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return "text/csv"
	}
	return pipeline.XLSXContentType
}

// FilesHandler accepts uploads and processes files.
type FilesHandler struct {
	uploader  Uploader
	publisher jobs.Publisher
	processor Processor
	bucket    string
	log       zerolog.Logger
	now       func() time.Time
}

// NewFilesHandler creates a new files handler.
func NewFilesHandler(uploader Uploader, publisher jobs.Publisher, processor Processor, bucket string, log zerolog.Logger) *FilesHandler {
	return &FilesHandler{
		uploader:  uploader,
		publisher: publisher,
		processor: processor,
		bucket:    bucket,
		log:       log,
		now:       time.Now,
	}
}

func (h *FilesHandler) readUpload(w http.ResponseWriter, r *http.Request) (jobs.JobType, string, []byte, bool) {
	query := r.URL.Query()
	jobType, err := jobs.ParseJobType(query.Get("type"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "type must be one of payroll, statement, sales, menu")
		return "", "", nil, false
	}
	filename := cleanFilename(query.Get("filename"))
	if filename == "" || filename == "/" || filename == "." {
		middleware.WriteError(w, http.StatusBadRequest, "filename is required")
		return "", "", nil, false
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Upload too large")
		return "", "", nil, false
	}
	if len(data) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Request body is empty")
		return "", "", nil, false
	}
	return jobType, filename, data, true
}

// Upload handles POST /api/files/upload?type=&filename=. The body is stored
// and a processing job is enqueued.
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobType, filename, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	objectName := gcsuploader.UploadObjectName(string(jobType), filename, h.now())
	if err := h.uploader.UploadBytes(ctx, h.bucket, objectName, data, contentTypeFor(filename)); err != nil {
		h.log.Error().Err(err).Str("object", objectName).Msg("Failed to store upload")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}
	gcsURI := gcsuploader.URI(h.bucket, objectName)

	job := &jobs.ProcessFileJob{
		Type:     jobType,
		GCSURI:   gcsURI,
		Filename: filename,
	}
	if err := h.publisher.PublishProcessFile(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue processing job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue processing job")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("gcs_uri", gcsURI).
		Int("bytes", len(data)).
		Msg("File uploaded")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"gcs_uri": gcsURI,
		"status":  string(job.Status),
	})
}

// Process handles POST /api/files/process?type=&filename=. The body is
// processed immediately and the outcome returned.
func (h *FilesHandler) Process(w http.ResponseWriter, r *http.Request) {
	jobType, filename, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	state, err := h.processor.Process(r.Context(), string(jobType), filename, "", data)
	if err != nil {
		if isStructural(err) {
			middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.log.Error().Err(err).Str("filename", filename).Msg("Failed to process file")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to process file")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":    state.RunID,
		"summary":   state.Summary,
		"narrative": state.Narrative,
		"outputs":   state.Outputs,
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store     jobs.JobStore
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, publisher jobs.Publisher, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// CreateJob handles POST /api/jobs for a file already in the bucket.
func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type     string `json:"type"`
		GCSURI   string `json:"gcs_uri"`
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	jobType, err := jobs.ParseJobType(req.Type)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, _, err := gcsuploader.ParseGCSURI(req.GCSURI); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "gcs_uri must be gs://bucket/object")
		return
	}

	job := &jobs.ProcessFileJob{
		Type:     jobType,
		GCSURI:   req.GCSURI,
		Filename: cleanFilename(req.Filename),
	}
	if req.Filename == "" {
		job.Filename = gcsuploader.ExtractFilenameFromGCSURI(req.GCSURI)
	}
	if err := h.publisher.PublishProcessFile(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue processing job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue processing job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("gcs_uri", job.GCSURI).Msg("Processing job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if errors.Is(err, jobs.ErrJobNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Type:   jobs.JobType(query.Get("type")),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	if jobsList == nil {
		jobsList = []*jobs.ProcessFileJob{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// RatesHandler serves the employee rate store.
type RatesHandler struct {
	rates RateService
	log   zerolog.Logger
}

// NewRatesHandler creates a new rates handler.
func NewRatesHandler(rates RateService, log zerolog.Logger) *RatesHandler {
	return &RatesHandler{rates: rates, log: log}
}

// ListRates handles GET /api/rates
func (h *RatesHandler) ListRates(w http.ResponseWriter, r *http.Request) {
	entries := h.rates.RateEntries()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rates": entries,
		"count": len(entries),
	})
}

// SetRate handles PUT /api/rates/{key}. Numeric keys are employee IDs,
// anything else is a name.
func (h *RatesHandler) SetRate(w http.ResponseWriter, r *http.Request, key string) {
	var req struct {
		Rate decimal.Decimal `json:"rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Rate.IsPositive() {
		middleware.WriteError(w, http.StatusBadRequest, "rate must be positive")
		return
	}

	if err := h.rates.SetRate(key, req.Rate); err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to set rate")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to set rate")
		return
	}

	h.log.Info().Str("key", key).Str("rate", req.Rate.String()).Msg("Rate updated")
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"key":  key,
		"rate": req.Rate.String(),
	})
}

// RulesHandler serves the learned categorization rules.
type RulesHandler struct {
	rules RuleService
}

// NewRulesHandler creates a new rules handler.
func NewRulesHandler(rules RuleService) *RulesHandler {
	return &RulesHandler{rules: rules}
}

// ListLearned handles GET /api/rules/learned
func (h *RulesHandler) ListLearned(w http.ResponseWriter, r *http.Request) {
	learned := h.rules.LearnedRules()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rules": learned,
		"count": len(learned),
	})
}

// CategorizeHandler categorizes ad-hoc transactions.
type CategorizeHandler struct {
	svc CategorizeService
	log zerolog.Logger
}

// NewCategorizeHandler creates a new categorize handler.
func NewCategorizeHandler(svc CategorizeService, log zerolog.Logger) *CategorizeHandler {
	return &CategorizeHandler{svc: svc, log: log}
}

// Categorize handles POST /api/categorize
func (h *CategorizeHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "description is required")
		return
	}

	res, err := h.svc.Categorize(r.Context(), req.Description, req.Amount)
	if err != nil {
		// The category is still valid; only persisting learned rules failed.
		h.log.Error().Err(err).Msg("Failed to save learned rules")
	}
	middleware.WriteJSON(w, http.StatusOK, res)
}

// RunsHandler lists processing runs.
type RunsHandler struct {
	runs RunLister
	log  zerolog.Logger
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(runs RunLister, log zerolog.Logger) *RunsHandler {
	return &RunsHandler{runs: runs, log: log}
}

// ListRuns handles GET /api/runs
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list runs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	if runs == nil {
		runs = []*infra.RunRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}
