package storage

import (
	"context"
	"fmt"

	"github.com/comufarm/backend/internal/application/catalog"
	"github.com/comufarm/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewObjectStorage builds the storage selected by cfg.Type
func NewObjectStorage(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (catalog.ObjectStorage, error) {
	switch cfg.Type {
	case "", "stub":
		logger.Warn("Using in-memory stub object storage; exported files are not persisted")
		return NewStubObjectStorage(cfg.PublicURL), nil
	case "s3":
		s, err := NewS3ObjectStorage(ctx, cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		logger.Info("Using S3 object storage", zap.String("bucket", s.Bucket()))
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
