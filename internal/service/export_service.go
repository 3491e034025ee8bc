package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"healteex/api/internal/models"
	"healteex/api/internal/repository"
	"healteex/api/internal/storage"
)

type snapshotSource interface {
	Latest(ctx context.Context) ([]models.StockSnapshot, error)
}

type reportSink interface {
	PutReport(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	PresignReport(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type ExportService struct {
	snapshots snapshotSource
	store     reportSink
	log       zerolog.Logger
	now       func() time.Time
}

func NewExportService(snapshots *repository.SnapshotRepository, store *storage.ObjectStore, log zerolog.Logger) *ExportService {
	return &ExportService{
		snapshots: snapshots,
		store:     store,
		log:       log,
		now:       time.Now,
	}
}

type ExportResult struct {
	ObjectKey string `json:"objectKey"`
	URL       string `json:"url"`
	Rows      int    `json:"rows"`
}

// ExportSnapshots writes the latest snapshot per (facility, medicine) pair as
// a CSV report into the object store and returns a presigned download link.
func (s *ExportService) ExportSnapshots(ctx context.Context) (ExportResult, error) {
	snapshots, err := s.snapshots.Latest(ctx)
	if err != nil {
		return ExportResult{}, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"facility_id", "medicine_id", "stock_on_hand", "days_of_stock", "data_source", "recorded_at"}); err != nil {
		return ExportResult{}, err
	}
	for _, snap := range snapshots {
		record := []string{
			snap.FacilityID,
			snap.MedicineID,
			strconv.FormatFloat(snap.StockOnHand, 'f', 2, 64),
			strconv.Itoa(snap.DaysOfStock),
			snap.DataSource,
			snap.RecordedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return ExportResult{}, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return ExportResult{}, err
	}

	key := fmt.Sprintf("stock-snapshots/%s.csv", s.now().UTC().Format("20060102T150405Z"))
	if err := s.store.PutReport(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "text/csv"); err != nil {
		return ExportResult{}, err
	}

	url, err := s.store.PresignReport(ctx, key, 24*time.Hour)
	if err != nil {
		return ExportResult{}, err
	}

	s.log.Info().Str("key", key).Int("rows", len(snapshots)).Msg("stock snapshot export written")

	return ExportResult{
		ObjectKey: key,
		URL:       url,
		Rows:      len(snapshots),
	}, nil
}
