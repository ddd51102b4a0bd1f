package archive

import (
	"bytes"
	"fmt"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/fleetmon/fleetmon/internal/store"
)

type ParquetEncodeResult struct {
	Data            []byte
	RecordCount     int64
	MinID           int64
	MaxID           int64
	OldestTimestamp time.Time
}

type parquetReading struct {
	ID              int64   `parquet:"id"`
	DeviceID        int64   `parquet:"device_id"`
	Temperature     float64 `parquet:"temperature"`
	Humidity        float64 `parquet:"humidity"`
	BatteryLevel    float64 `parquet:"battery_level"`
	TimestampUnixMs int64   `parquet:"timestamp_unix_ms"`
}

func EncodeReadingsToParquet(readings []store.Reading) (ParquetEncodeResult, error) {
	if len(readings) == 0 {
		return ParquetEncodeResult{}, fmt.Errorf("readings are required")
	}

	rows := make([]parquetReading, 0, len(readings))
	result := ParquetEncodeResult{
		MinID:           readings[0].ID,
		MaxID:           readings[0].ID,
		OldestTimestamp: readings[0].Timestamp.UTC(),
	}

	for _, reading := range readings {
		rows = append(rows, parquetReading{
			ID:              reading.ID,
			DeviceID:        reading.DeviceID,
			Temperature:     reading.Temperature,
			Humidity:        reading.Humidity,
			BatteryLevel:    reading.BatteryLevel,
			TimestampUnixMs: reading.Timestamp.UTC().UnixMilli(),
		})
		if reading.ID < result.MinID {
			result.MinID = reading.ID
		}
		if reading.ID > result.MaxID {
			result.MaxID = reading.ID
		}
		if reading.Timestamp.UTC().Before(result.OldestTimestamp) {
			result.OldestTimestamp = reading.Timestamp.UTC()
		}
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[parquetReading](buf)
	if _, err := writer.Write(rows); err != nil {
		return ParquetEncodeResult{}, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return ParquetEncodeResult{}, fmt.Errorf("close parquet writer: %w", err)
	}

	result.Data = buf.Bytes()
	result.RecordCount = int64(len(rows))
	return result, nil
}
