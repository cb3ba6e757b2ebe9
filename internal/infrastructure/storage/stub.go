package storage

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/comufarm/backend/internal/application/catalog"
)

const defaultStubBaseURL = "http://localhost:8080/files"

var _ catalog.ObjectStorage = (*StubObjectStorage)(nil)

// StubObjectStorage keeps objects in memory for development and tests.
// Its download URLs are not served by anything.
type StubObjectStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]StoredObject
}

// StoredObject is an object held by StubObjectStorage
type StoredObject struct {
	Data        []byte
	ContentType string
}

// NewStubObjectStorage creates an empty stub. An empty baseURL uses a local default.
func NewStubObjectStorage(baseURL string) *StubObjectStorage {
	if baseURL == "" {
		baseURL = defaultStubBaseURL
	}
	return &StubObjectStorage{
		BaseURL: baseURL,
		objects: make(map[string]StoredObject),
	}
}

// Upload stores a copy of data under key
func (s *StubObjectStorage) Upload(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = StoredObject{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

// GenerateDownloadURL builds a URL for key. The key must have been uploaded.
func (s *StubObjectStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if _, ok := s.Object(key); !ok {
		return "", time.Time{}, errors.New("object not found: " + key)
	}

	expiresAt := time.Now().Add(expiresIn)
	u, err := url.JoinPath(s.BaseURL, key)
	if err != nil {
		return "", time.Time{}, err
	}
	return u + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339)), expiresAt, nil
}

// Object returns the stored object for key
func (s *StubObjectStorage) Object(key string) (StoredObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}
