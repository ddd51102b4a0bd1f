package storage

import (
	"testing"
	"time"
)

func TestBuildReadingsFilePath(t *testing.T) {
	oldest := time.Date(2026, time.July, 3, 23, 59, 0, 0, time.UTC)
	key, err := BuildReadingsFilePath(oldest, 12, 511)
	if err != nil {
		t.Fatalf("BuildReadingsFilePath() error = %v", err)
	}
	want := "date=2026-07-03/readings-0000000012-0000000511.parquet"
	if key != want {
		t.Fatalf("key = %q, want %q", key, want)
	}
}

func TestBuildReadingsFilePathRejectsBadRange(t *testing.T) {
	if _, err := BuildReadingsFilePath(time.Now(), 0, 10); err == nil {
		t.Fatal("expected error for non-positive min id")
	}
	if _, err := BuildReadingsFilePath(time.Now(), 10, 9); err == nil {
		t.Fatal("expected error for inverted range")
	}
}
