package content

import (
	"context"
	"io"
	"log/slog"

	"github.com/vango-dev/waypoint/internal/config"
	"github.com/vango-dev/waypoint/internal/errors"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the store described by cfg. The returned Closer releases the
// backend and must be called when the store is no longer needed.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, io.Closer, error) {
	var (
		store  Store
		closer io.Closer = nopCloser{}
	)
	switch cfg.Content.Driver {
	case "memory":
		store = NewMemoryStore(cfg.Loader.Delay.Std())
	case "sqlite":
		db, err := OpenSQLite(ctx, cfg.Content.SQLiteDSN)
		if err != nil {
			return nil, nil, errors.New("E400").WithDetail("sqlite").Wrap(err)
		}
		store, closer = db, db
	default:
		return nil, nil, errors.New("E401").WithDetailf("content.driver %q", cfg.Content.Driver)
	}

	if cfg.S3.Bucket != "" {
		client, err := NewS3Client(ctx, S3ClientOptions{Region: cfg.S3.Region, Endpoint: cfg.S3.Endpoint})
		if err != nil {
			closer.Close()
			return nil, nil, errors.New("E400").WithDetail("s3").Wrap(err)
		}
		store = WithS3Bodies(store, client, cfg.S3.Bucket, cfg.S3.Prefix)
	}

	logger.Info("content store ready",
		"component", "content",
		"driver", cfg.Content.Driver,
		"s3_bucket", cfg.S3.Bucket,
	)
	return store, closer, nil
}
