package objectstore

import (
	"testing"
	"time"
)

func TestSnapshotName(t *testing.T) {
	got := SnapshotName(time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC))
	if got != "backups/2025/03/mdr-backup-20250304-050607.json" {
		t.Fatalf("unexpected name %s", got)
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(Config{Endpoint: "localhost:9000"}); err == nil {
		t.Fatalf("expected error without credentials")
	}
	s, err := New(Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "mdr"})
	if err != nil || s == nil {
		t.Fatalf("expected snapshotter, got %v", err)
	}
}
