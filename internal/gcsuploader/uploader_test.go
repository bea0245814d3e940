package gcsuploader

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{uri: "gs://bucket/uploads/payroll.xlsx", wantBucket: "bucket", wantObject: "uploads/payroll.xlsx"},
		{uri: "gs://bucket", wantErr: true},
		{uri: "gs://bucket/", wantErr: true},
		{uri: "s3://bucket/file", wantErr: true},
	}
	for _, tt := range tests {
		bucket, object, err := ParseGCSURI(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseGCSURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			continue
		}
		if bucket != tt.wantBucket || object != tt.wantObject {
			t.Errorf("ParseGCSURI(%q) = %q, %q, want %q, %q", tt.uri, bucket, object, tt.wantBucket, tt.wantObject)
		}
	}
}

func TestExtractFilenameFromGCSURI(t *testing.T) {
	if got := ExtractFilenameFromGCSURI("gs://bucket/folder/file.xlsx"); got != "file.xlsx" {
		t.Errorf("ExtractFilenameFromGCSURI() = %q, want file.xlsx", got)
	}
	if got := ExtractFilenameFromGCSURI("gs://bucket"); got != "bucket" {
		t.Errorf("ExtractFilenameFromGCSURI() = %q, want bucket", got)
	}
}

func TestObjectNames(t *testing.T) {
	now := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	up := UploadObjectName("payroll", "../Payroll Export.xlsx", now)
	if !strings.HasPrefix(up, "uploads/payroll/2024-03-04/") || !strings.HasSuffix(up, "_Payroll Export.xlsx") {
		t.Errorf("UploadObjectName() = %q", up)
	}
	if other := UploadObjectName("payroll", "Payroll Export.xlsx", now); other == up {
		t.Error("UploadObjectName() returned the same name twice")
	}

	if got := ReportObjectName("pnl", "pnl.xlsx", now); got != "reports/pnl/2024-03-04/pnl.xlsx" {
		t.Errorf("ReportObjectName() = %q", got)
	}
}

func TestMemoryStorageService(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorageService()

	if err := m.UploadBytes(ctx, "b", "reports/a.xlsx", []byte("data"), ""); err != nil {
		t.Fatalf("UploadBytes() error = %v", err)
	}
	got, err := m.FetchFromGCS(ctx, "gs://b/reports/a.xlsx")
	if err != nil {
		t.Fatalf("FetchFromGCS() error = %v", err)
	}
	if string(got) != "data" {
		t.Errorf("FetchFromGCS() = %q, want data", got)
	}
	if _, err := m.FetchFromGCS(ctx, "gs://b/missing"); err == nil {
		t.Error("FetchFromGCS(missing) error = nil")
	}
}
