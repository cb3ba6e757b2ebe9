package catalog

import (
	"context"
	"time"
)

// ObjectStorage stores exported files and hands out temporary download links
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}
