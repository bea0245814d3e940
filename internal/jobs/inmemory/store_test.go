package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/backoffice/internal/jobs"
)

func TestStore_ListJobs(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	for i, tt := range []struct {
		id  string
		typ jobs.JobType
	}{
		{"a", jobs.JobTypePayroll},
		{"b", jobs.JobTypeStatement},
		{"c", jobs.JobTypePayroll},
	} {
		s.SaveJob(ctx, &jobs.ProcessFileJob{
			JobID:     tt.id,
			Type:      tt.typ,
			Status:    jobs.JobStatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	all, _ := s.ListJobs(ctx, jobs.JobFilter{})
	if len(all) != 3 || all[0].JobID != "c" || all[2].JobID != "a" {
		t.Errorf("ListJobs() order = %v, want newest first", ids(all))
	}

	payroll, _ := s.ListJobs(ctx, jobs.JobFilter{Type: jobs.JobTypePayroll})
	if len(payroll) != 2 {
		t.Errorf("ListJobs(payroll) = %v, want 2 jobs", ids(payroll))
	}

	page, _ := s.ListJobs(ctx, jobs.JobFilter{Offset: 1, Limit: 1})
	if len(page) != 1 || page[0].JobID != "b" {
		t.Errorf("ListJobs(offset 1, limit 1) = %v, want [b]", ids(page))
	}
}

func TestStore_NotFound(t *testing.T) {
	s := NewStore()
	if _, err := s.GetJob(context.Background(), "missing"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("GetJob() error = %v, want ErrJobNotFound", err)
	}
	if err := s.UpdateJobStatus(context.Background(), "missing", jobs.JobStatusFailed, ""); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("UpdateJobStatus() error = %v, want ErrJobNotFound", err)
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	job := &jobs.ProcessFileJob{JobID: "x", Outputs: []string{"gs://b/r.xlsx"}}
	s.SaveJob(ctx, job)

	got, _ := s.GetJob(ctx, "x")
	got.Outputs[0] = "changed"
	got.Status = jobs.JobStatusFailed

	again, _ := s.GetJob(ctx, "x")
	if again.Outputs[0] != "gs://b/r.xlsx" || again.Status != "" {
		t.Errorf("stored job was modified through a returned copy: %+v", again)
	}
}

func ids(js []*jobs.ProcessFileJob) []string {
	out := make([]string, len(js))
	for i, j := range js {
		out[i] = j.JobID
	}
	return out
}
