// Package retention deletes aged-out log files at startup.
package retention

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Sweep removes regular files under dir whose modification time is older
// than the retention window. Per-file failures are logged and skipped so
// one stubborn file never blocks startup. Returns the number of files
// removed.
func Sweep(dir string, olderThan time.Duration, now time.Time, log *zap.Logger) (int, error) {
	cutoff := now.Add(-olderThan)
	removed := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			log.Warn("stat during sweep", zap.String("file", path), zap.Error(err))
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			log.Warn("expunge failed", zap.String("file", path), zap.Error(err))
			return nil
		}
		log.Info("expunged aged-out file", zap.String("file", path))
		removed++
		return nil
	})
	if err != nil {
		return removed, err
	}
	return removed, nil
}
