package retention

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func writeFileAged(t *testing.T, dir, name string, age time.Duration, now time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("log line\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	mtime := now.Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSweepRemovesOnlyAgedFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	old := writeFileAged(t, dir, "detector_20250101_000000.log", 200*24*time.Hour, now)
	fresh := writeFileAged(t, dir, "detector_20260801_000000.log", 24*time.Hour, now)

	removed, err := Sweep(dir, 180*24*time.Hour, now, zap.NewNop())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 file removed, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expected aged file to be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh file should survive: %v", err)
	}
}

func TestSweepRecursesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "archive")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	old := writeFileAged(t, sub, "ancient.err", 365*24*time.Hour, now)

	removed, err := Sweep(dir, 180*24*time.Hour, now, zap.NewNop())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 file removed, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expected nested aged file to be removed")
	}
	if _, err := os.Stat(sub); err != nil {
		t.Errorf("directories themselves must survive: %v", err)
	}
}

func TestSweepMissingDirectory(t *testing.T) {
	_, err := Sweep(filepath.Join(t.TempDir(), "nope"), time.Hour, time.Now(), zap.NewNop())
	if err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestSweepEmptyDirectory(t *testing.T) {
	removed, err := Sweep(t.TempDir(), time.Hour, time.Now(), zap.NewNop())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 0 {
		t.Errorf("expected 0 removed, got %d", removed)
	}
}
