package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healteex/api/internal/models"
)

type fakeSnapshotSource struct {
	snapshots []models.StockSnapshot
	err       error
}

func (f *fakeSnapshotSource) Latest(ctx context.Context) ([]models.StockSnapshot, error) {
	return f.snapshots, f.err
}

type fakeReportSink struct {
	key         string
	body        []byte
	contentType string
}

func (f *fakeReportSink) PutReport(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.key = key
	f.body = body
	f.contentType = contentType
	return nil
}

func (f *fakeReportSink) PresignReport(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://reports.example/" + key, nil
}

func TestExportSnapshots(t *testing.T) {
	recorded := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	source := &fakeSnapshotSource{snapshots: []models.StockSnapshot{
		{FacilityID: "f1", MedicineID: "m1", StockOnHand: 120, DaysOfStock: 14, DataSource: "manual", RecordedAt: recorded},
		{FacilityID: "f2", MedicineID: "m2", StockOnHand: 0, DaysOfStock: 0, DataSource: "dhis2", RecordedAt: recorded},
	}}
	sink := &fakeReportSink{}
	svc := &ExportService{
		snapshots: source,
		store:     sink,
		log:       zerolog.Nop(),
		now:       func() time.Time { return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) },
	}

	result, err := svc.ExportSnapshots(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "stock-snapshots/20260302T000000Z.csv", result.ObjectKey)
	assert.Equal(t, "https://reports.example/"+result.ObjectKey, result.URL)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, "text/csv", sink.contentType)

	rows, err := csv.NewReader(bytes.NewReader(sink.body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"facility_id", "medicine_id", "stock_on_hand", "days_of_stock", "data_source", "recorded_at"}, rows[0])
	assert.Equal(t, []string{"f1", "m1", "120.00", "14", "manual", "2026-03-01T08:00:00Z"}, rows[1])
	assert.Equal(t, []string{"f2", "m2", "0.00", "0", "dhis2", "2026-03-01T08:00:00Z"}, rows[2])
}

func TestExportSnapshotsEmpty(t *testing.T) {
	sink := &fakeReportSink{}
	svc := &ExportService{
		snapshots: &fakeSnapshotSource{},
		store:     sink,
		log:       zerolog.Nop(),
		now:       time.Now,
	}

	result, err := svc.ExportSnapshots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Rows)
	assert.NotEmpty(t, sink.body) // header row is always written
}
