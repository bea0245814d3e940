package gcsuploader

import (
	"context"
	"fmt"
	"sync"
)

// StorageService provides cloud storage operations for uploaded exports and
// generated reports.
type StorageService interface {
	// UploadFile uploads a local file to a storage bucket under the given object name.
	UploadFile(ctx context.Context, bucketName, objectName, filePath string) error

	// UploadBytes writes data to a storage bucket under the given object name.
	UploadBytes(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error

	// FetchFromGCS downloads file bytes from the given storage URI.
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)

	// ExtractFilenameFromGCSURI extracts the filename from a storage URI.
	ExtractFilenameFromGCSURI(uri string) string
}

// GCSStorageService is the concrete implementation of StorageService
// that interacts with Google Cloud Storage.
type GCSStorageService struct{}

// NewGCSStorageService creates a new instance of GCSStorageService.
func NewGCSStorageService() *GCSStorageService {
	return &GCSStorageService{}
}

func (s *GCSStorageService) UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	return UploadFile(ctx, bucketName, objectName, filePath)
}

func (s *GCSStorageService) UploadBytes(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
	return UploadBytes(ctx, bucketName, objectName, data, contentType)
}

func (s *GCSStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	return FetchFromGCS(ctx, gcsURI)
}

func (s *GCSStorageService) ExtractFilenameFromGCSURI(uri string) string {
	return ExtractFilenameFromGCSURI(uri)
}

// MemoryStorageService keeps objects in memory. It backs tests and local
// runs without a bucket.
type MemoryStorageService struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryStorageService creates an empty in-memory store.
func NewMemoryStorageService() *MemoryStorageService {
	return &MemoryStorageService{objects: make(map[string][]byte)}
}

func (m *MemoryStorageService) UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	return fmt.Errorf("MemoryStorageService.UploadFile: local files are not supported")
}

func (m *MemoryStorageService) UploadBytes(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[URI(bucketName, objectName)] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[gcsURI]
	if !ok {
		return nil, fmt.Errorf("MemoryStorageService.FetchFromGCS: %s: object not found", gcsURI)
	}
	return data, nil
}

func (m *MemoryStorageService) ExtractFilenameFromGCSURI(uri string) string {
	return ExtractFilenameFromGCSURI(uri)
}

// Objects returns the stored URIs.
func (m *MemoryStorageService) Objects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	return out
}
