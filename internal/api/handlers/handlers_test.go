package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dvloznov/backoffice/internal/categorize"
	"github.com/dvloznov/backoffice/internal/domain"
	"github.com/dvloznov/backoffice/internal/gcsuploader"
	"github.com/dvloznov/backoffice/internal/jobs"
	"github.com/dvloznov/backoffice/internal/jobs/inmemory"
	"github.com/dvloznov/backoffice/internal/pipeline"
	"github.com/dvloznov/backoffice/internal/rules"
	"github.com/dvloznov/backoffice/internal/sheet"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type mockProcessor struct {
	ProcessFunc func(ctx context.Context, kind, filename, gcsURI string, data []byte) (*pipeline.PipelineState, error)
}

func (m *mockProcessor) Process(ctx context.Context, kind, filename, gcsURI string, data []byte) (*pipeline.PipelineState, error) {
	return m.ProcessFunc(ctx, kind, filename, gcsURI, data)
}

type mockService struct {
	rates   map[string]decimal.Decimal
	learned []rules.Rule
}

func (m *mockService) RateEntries() map[string]decimal.Decimal { return m.rates }

func (m *mockService) SetRate(key string, rate decimal.Decimal) error {
	m.rates[key] = rate
	return nil
}

func (m *mockService) LearnedRules() []rules.Rule { return m.learned }

func (m *mockService) Categorize(ctx context.Context, description string, amount decimal.Decimal) (categorize.Result, error) {
	if amount.IsNegative() {
		return categorize.Result{Category: categorize.GenericOutflow, Source: domain.SourceDebitDefault}, nil
	}
	return categorize.Result{Category: "Revenue - General - In-Store", Source: domain.SourceGenerated}, nil
}

type testServer struct {
	handler http.Handler
	store   *inmemory.Store
	storage *gcsuploader.MemoryStorageService
	svc     *mockService
}

func newTestServer(t *testing.T, proc *mockProcessor) *testServer {
	t.Helper()
	store := inmemory.NewStore()
	queue := inmemory.NewQueue(10, store)
	t.Cleanup(func() { queue.Close() })
	storage := gcsuploader.NewMemoryStorageService()
	svc := &mockService{rates: map[string]decimal.Decimal{"4242": decimal.NewFromInt(18)}}
	if proc == nil {
		proc = &mockProcessor{}
	}
	log := zerolog.Nop()

	rt := &Router{
		Files:      NewFilesHandler(storage, queue, proc, "bucket", log),
		Jobs:       NewJobsHandler(store, queue, log),
		Rates:      NewRatesHandler(svc, log),
		Rules:      NewRulesHandler(svc),
		Categorize: NewCategorizeHandler(svc, log),
	}
	return &testServer{handler: rt.Mux(), store: store, storage: storage, svc: svc}
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func TestUpload(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(http.MethodPost, "/api/files/upload?type=payroll&filename=payroll.csv", "Employee,Hours\n")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusAccepted, rec.Body)
	}
	var resp map[string]string
	decode(t, rec, &resp)

	job, err := srv.store.GetJob(context.Background(), resp["job_id"])
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if job.Type != jobs.JobTypePayroll || job.Filename != "payroll.csv" || job.GCSURI != resp["gcs_uri"] {
		t.Errorf("job = %+v, want payroll job for payroll.csv at %s", job, resp["gcs_uri"])
	}
	data, err := srv.storage.FetchFromGCS(context.Background(), resp["gcs_uri"])
	if err != nil || string(data) != "Employee,Hours\n" {
		t.Errorf("stored object = %q, %v", data, err)
	}
}

func TestUpload_BadRequests(t *testing.T) {
	srv := newTestServer(t, nil)
	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"unknown type", http.MethodPost, "/api/files/upload?type=pdf&filename=a.csv", "x", http.StatusBadRequest},
		{"no filename", http.MethodPost, "/api/files/upload?type=menu", "x", http.StatusBadRequest},
		{"empty body", http.MethodPost, "/api/files/upload?type=menu&filename=a.csv", "", http.StatusBadRequest},
		{"wrong method", http.MethodGet, "/api/files/upload?type=menu&filename=a.csv", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := srv.do(tt.method, tt.target, tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestProcess(t *testing.T) {
	proc := &mockProcessor{ProcessFunc: func(ctx context.Context, kind, filename, gcsURI string, data []byte) (*pipeline.PipelineState, error) {
		if filename == "bad.csv" {
			return nil, fmt.Errorf("pipeline step 3 failed: %w", sheet.ErrHeaderNotFound)
		}
		return &pipeline.PipelineState{RunID: "run-1", Summary: kind + " done"}, nil
	}}
	srv := newTestServer(t, proc)

	rec := srv.do(http.MethodPost, "/api/files/process?type=sales&filename=sales.csv", "data")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp map[string]interface{}
	decode(t, rec, &resp)
	if resp["summary"] != "sales done" || resp["run_id"] != "run-1" {
		t.Errorf("response = %v", resp)
	}

	rec = srv.do(http.MethodPost, "/api/files/process?type=sales&filename=bad.csv", "data")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestJobs(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(http.MethodPost, "/api/jobs", `{"type":"statement","gcs_uri":"gs://bucket/uploads/march.csv"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("create status = %d, want %d: %s", rec.Code, http.StatusAccepted, rec.Body)
	}
	var created map[string]string
	decode(t, rec, &created)

	rec = srv.do(http.MethodGet, "/api/jobs/"+created["job_id"], "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want %d", rec.Code, http.StatusOK)
	}
	var job jobs.ProcessFileJob
	decode(t, rec, &job)
	if job.Filename != "march.csv" || job.Status != jobs.JobStatusPending {
		t.Errorf("job = %+v, want pending march.csv", job)
	}

	rec = srv.do(http.MethodGet, "/api/jobs?type=statement", "")
	var list struct {
		Count int `json:"count"`
	}
	decode(t, rec, &list)
	if list.Count != 1 {
		t.Errorf("count = %d, want 1", list.Count)
	}

	if rec := srv.do(http.MethodGet, "/api/jobs/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing job status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec := srv.do(http.MethodPost, "/api/jobs", `{"type":"statement","gcs_uri":"/tmp/x.csv"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad uri status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRates(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(http.MethodPut, "/api/rates/Patel%2C%20Kush", `{"rate":"16.50"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	if got := srv.svc.rates["Patel, Kush"]; !got.Equal(decimal.RequireFromString("16.5")) {
		t.Errorf("rate = %s, want 16.5", got)
	}

	if rec := srv.do(http.MethodPut, "/api/rates/4242", `{"rate":-1}`); rec.Code != http.StatusBadRequest {
		t.Errorf("negative rate status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = srv.do(http.MethodGet, "/api/rates", "")
	var resp struct {
		Count int `json:"count"`
	}
	decode(t, rec, &resp)
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
}

func TestCategorize(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(http.MethodPost, "/api/categorize", `{"description":"MYSTERYCO","amount":"-20"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got categorize.Result
	decode(t, rec, &got)
	want := categorize.Result{Category: categorize.GenericOutflow, Source: domain.SourceDebitDefault}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Categorize mismatch (-want +got):\n%s", diff)
	}

	if rec := srv.do(http.MethodPost, "/api/categorize", `{"amount":"5"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing description status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLearnedRules(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.svc.learned = []rules.Rule{{Keyword: "acmevendor", Category: "Utilities - Gas Service"}}

	rec := srv.do(http.MethodGet, "/api/rules/learned", "")
	var resp struct {
		Rules []rules.Rule `json:"rules"`
	}
	decode(t, rec, &resp)
	if diff := cmp.Diff(srv.svc.learned, resp.Rules); diff != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", diff)
	}
}
