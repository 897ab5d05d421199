// Package storage implements object storage for project files and
// deliverables.
package storage

import (
	"context"
	"fmt"

	"github.com/shadowiq/shadowiq/internal/application/files/objectstorage"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/config"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

const (
	DriverS3    = "s3"
	DriverLocal = "local"
)

// New builds the configured object storage. baseURL is only used by the
// local driver to build signed URLs.
func New(ctx context.Context, cfg config.StorageConfig, sec config.SecurityConfig, baseURL string, log logger.Interface) (objectstorage.ObjectStorage, error) {
	switch cfg.Driver {
	case DriverS3:
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("storage.bucket is required for the s3 driver")
		}
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Infow("object storage initialized", "driver", DriverS3, "bucket", cfg.Bucket, "region", cfg.Region)
		return NewS3Store(client, cfg.Bucket, log.Named("s3")), nil
	case DriverLocal, "":
		key, err := sec.DeriveKey("storage-url-signing")
		if err != nil {
			return nil, err
		}
		store, err := NewLocalStore(cfg.LocalRoot, baseURL, key, biztime.SystemClock(), log.Named("localstore"))
		if err != nil {
			return nil, err
		}
		log.Infow("object storage initialized", "driver", DriverLocal, "root", cfg.LocalRoot)
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
