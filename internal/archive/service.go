// Package archive exports aged readings as parquet files to an S3-compatible
// object store and prunes them from the primary database afterwards.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fleetmon/fleetmon/internal/config"
	"github.com/fleetmon/fleetmon/internal/observability"
	"github.com/fleetmon/fleetmon/internal/storage"
	"github.com/fleetmon/fleetmon/internal/store"
)

// ReadingSource is the slice of the fleet store the archiver needs.
type ReadingSource interface {
	ListReadingsBefore(ctx context.Context, cutoff time.Time, limit int) ([]store.Reading, error)
	DeleteReadingsThrough(ctx context.Context, cutoff time.Time, maxID int64) (int64, error)
}

type Summary struct {
	Batches          int
	ArchivedReadings int64
	DeletedReadings  int64
}

type Service struct {
	source ReadingSource
	store  storage.ObjectStore
	cfg    config.ArchiveConfig
	logger *slog.Logger
	now    func() time.Time
}

func NewService(source ReadingSource, objectStore storage.ObjectStore, cfg config.ArchiveConfig, logger *slog.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5000
	}
	return &Service{
		source: source,
		store:  objectStore,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// RunOnce archives every reading older than the retention age, batch by
// batch. A batch is deleted from the database only after its parquet file is
// durably stored; a crash between the two leaves the batch re-archivable.
func (s *Service) RunOnce(ctx context.Context) (Summary, error) {
	cutoff := s.now().UTC().Add(-s.cfg.RetentionAge)
	summary := Summary{}

	for {
		readings, err := s.source.ListReadingsBefore(ctx, cutoff, s.cfg.BatchSize)
		if err != nil {
			return summary, fmt.Errorf("list archivable readings: %w", err)
		}
		if len(readings) == 0 {
			return summary, nil
		}

		encoded, err := EncodeReadingsToParquet(readings)
		if err != nil {
			return summary, fmt.Errorf("encode archive batch: %w", err)
		}
		key, err := storage.BuildReadingsFilePath(encoded.OldestTimestamp, encoded.MinID, encoded.MaxID)
		if err != nil {
			return summary, fmt.Errorf("build archive key: %w", err)
		}

		if _, err := s.store.Put(ctx, key, bytes.NewReader(encoded.Data), int64(len(encoded.Data)), storage.PutOptions{ContentType: "application/vnd.apache.parquet"}); err != nil {
			return summary, fmt.Errorf("upload archive batch: %w", err)
		}

		deleted, err := s.source.DeleteReadingsThrough(ctx, cutoff, encoded.MaxID)
		if err != nil {
			return summary, fmt.Errorf("prune archived readings: %w", err)
		}

		summary.Batches++
		summary.ArchivedReadings += encoded.RecordCount
		summary.DeletedReadings += deleted
		observability.AddArchivedReadings(encoded.RecordCount)

		if s.logger != nil {
			s.logger.InfoContext(ctx, "archived reading batch",
				slog.String("key", key),
				slog.Int64("readings", encoded.RecordCount),
				slog.Int64("deleted", deleted),
			)
		}

		if len(readings) < s.cfg.BatchSize {
			return summary, nil
		}
	}
}

// Run archives on the configured interval until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil {
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "archive run failed", slog.Any("error", err))
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
