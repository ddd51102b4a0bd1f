package storage

import (
	"fmt"
	"path"
	"time"
)

// BuildReadingsFilePath names one archived batch of readings. Files are
// partitioned by the UTC day of the oldest reading in the batch and carry the
// id range, so batches never collide and stay listable in id order.
func BuildReadingsFilePath(oldest time.Time, minID, maxID int64) (string, error) {
	if minID <= 0 || maxID < minID {
		return "", fmt.Errorf("invalid reading id range %d..%d", minID, maxID)
	}
	ts := oldest.UTC()
	return path.Join(
		fmt.Sprintf("date=%04d-%02d-%02d", ts.Year(), ts.Month(), ts.Day()),
		fmt.Sprintf("readings-%010d-%010d.parquet", minID, maxID),
	), nil
}
