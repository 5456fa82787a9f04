package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
)

// MemoryUploader keeps objects in process memory. It backs local runs
// without R2 credentials and tests.
type MemoryUploader struct {
	mu      sync.RWMutex
	objects map[string][]byte
	base    *url.URL
}

func NewMemoryUploader(publicBaseURL string) (*MemoryUploader, error) {
	base, err := url.Parse(publicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid public base URL %q: %w", publicBaseURL, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return &MemoryUploader{objects: make(map[string][]byte), base: base}, nil
}

func (m *MemoryUploader) Upload(_ context.Context, key string, _ string, reader io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload body (key: %s): %w", key, err)
	}

	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()

	return &UploadResult{Key: key, Location: m.GetPublicURL(key)}, nil
}

func (m *MemoryUploader) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryUploader) GetPublicURL(key string) string {
	return publicURL(m.base, key)
}

func (m *MemoryUploader) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}
