package archive

import (
	"bytes"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/parquet-go/parquet-go"

	"github.com/fleetmon/fleetmon/internal/store"
)

func sampleReadings() []store.Reading {
	base := time.Date(2026, time.July, 3, 10, 0, 0, 0, time.UTC)
	return []store.Reading{
		{ID: 12, DeviceID: 1, Temperature: 21.5, Humidity: 55.0, BatteryLevel: 90.0, Timestamp: base.Add(time.Hour)},
		{ID: 13, DeviceID: 2, Temperature: 84.2, Humidity: 40.0, BatteryLevel: 18.0, Timestamp: base},
		{ID: 14, DeviceID: 1, Temperature: 22.0, Humidity: 54.5, BatteryLevel: 89.5, Timestamp: base.Add(2 * time.Hour)},
	}
}

func TestEncodeReadingsToParquet(t *testing.T) {
	result, err := EncodeReadingsToParquet(sampleReadings())
	if err != nil {
		t.Fatalf("EncodeReadingsToParquet() error = %v", err)
	}
	if result.RecordCount != 3 {
		t.Fatalf("RecordCount = %d", result.RecordCount)
	}
	if result.MinID != 12 || result.MaxID != 14 {
		t.Fatalf("id range = %d..%d", result.MinID, result.MaxID)
	}
	if !result.OldestTimestamp.Equal(time.Date(2026, time.July, 3, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("OldestTimestamp = %v", result.OldestTimestamp)
	}
	if len(result.Data) == 0 {
		t.Fatal("expected non-empty parquet payload")
	}

	reader := parquet.NewGenericReader[parquetReading](bytes.NewReader(result.Data))
	defer func() { _ = reader.Close() }()
	rows := make([]parquetReading, 3)
	count, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		t.Fatalf("reader.Read() error = %v", err)
	}
	if count != 3 {
		t.Fatalf("read rows = %d", count)
	}
	if rows[0].ID != 12 || rows[1].Temperature != 84.2 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestEncodeReadingsToParquetRequiresRows(t *testing.T) {
	if _, err := EncodeReadingsToParquet(nil); err == nil {
		t.Fatal("expected error for empty batch")
	}
}

func TestArchivedParquetIsReadableByDuckDB(t *testing.T) {
	result, err := EncodeReadingsToParquet(sampleReadings())
	if err != nil {
		t.Fatalf("EncodeReadingsToParquet() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "readings.parquet")
	if err := os.WriteFile(path, result.Data, 0o644); err != nil {
		t.Fatalf("write parquet file: %v", err)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	var count, minID, maxID int64
	row := db.QueryRow(`SELECT COUNT(*), MIN(id), MAX(id) FROM read_parquet(?)`, path)
	if err := row.Scan(&count, &minID, &maxID); err != nil {
		t.Fatalf("read_parquet scan error = %v", err)
	}
	if count != 3 || minID != 12 || maxID != 14 {
		t.Fatalf("count/min/max = %d/%d/%d", count, minID, maxID)
	}

	var temperature float64
	if err := db.QueryRow(`SELECT temperature FROM read_parquet(?) WHERE device_id = 2`, path).Scan(&temperature); err != nil {
		t.Fatalf("device query error = %v", err)
	}
	if temperature != 84.2 {
		t.Fatalf("temperature = %v", temperature)
	}
}
