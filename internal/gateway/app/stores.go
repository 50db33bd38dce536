package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	archivecache "logospace/internal/cache/archive"
	"logospace/internal/gateway/config"
	archiverepo "logospace/internal/gateway/repository/archive"
)

// initArchive picks the report archive origin in priority order
// S3, Postgres, local disk, memory, and fronts it with a read cache.
// The returned closer releases the origin's resources.
func initArchive(ctx context.Context, cfg config.ArchiveConfig) (archiverepo.Store, io.Closer, error) {
	origin, closer, label, err := chooseArchiveOrigin(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if origin == nil {
		return nil, nil, fmt.Errorf("archive origin store is nil")
	}
	log.Printf("archive store: %s", label)

	cacheCfg := archivecache.DefaultCacheConfig()
	if cfg.CacheEntries > 0 {
		cacheCfg.ReportMaxEntries = cfg.CacheEntries
	}
	return archivecache.NewCachedStore(origin, cacheCfg), closer, nil
}

func chooseArchiveOrigin(ctx context.Context, cfg config.ArchiveConfig) (archiverepo.Store, io.Closer, string, error) {
	if cfg.S3.CanUseS3() {
		s3Store, err := archiverepo.NewS3Store(archiverepo.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, nil, "", fmt.Errorf("failed to initialize archive s3 store: %w", err)
		}
		return s3Store, nopCloser{}, fmt.Sprintf("s3 bucket=%s endpoint=%s", cfg.S3.Bucket, cfg.S3.Endpoint), nil
	}

	if dsn := strings.TrimSpace(cfg.PostgresDSN); dsn != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pg, err := archiverepo.OpenPostgres(pingCtx, dsn)
		if err != nil {
			return nil, nil, "", fmt.Errorf("failed to initialize archive postgres store: %w", err)
		}
		return pg, pg, "postgres", nil
	}

	if dir := strings.TrimSpace(cfg.Dir); dir != "" {
		disk, err := archiverepo.NewDiskStore(archiverepo.DiskConfig{
			Root:       dir,
			MaxEntries: cfg.MaxEntries,
			Retention:  cfg.Retention,
		})
		if err != nil {
			return nil, nil, "", fmt.Errorf("failed to initialize archive disk store: %w", err)
		}
		return disk, nopCloser{}, "disk root=" + dir, nil
	}

	return archiverepo.NewMemoryStore(), nopCloser{}, "in-memory", nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
