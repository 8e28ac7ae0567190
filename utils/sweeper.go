package utils

import (
	"os"
	"path"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/pixfeed/pixfeed/models"
)

// StartOrphanSweeper launches a background goroutine that periodically
// removes files under the upload root that have no matching media record.
// Such orphans appear when a post creation stores files to disk and then
// fails before its transaction commits. Files younger than grace are left
// alone so the sweep never races an in-flight upload. Best-effort; failures
// are logged and retried on the next round.
func StartOrphanSweeper(db *gorm.DB, uploadRoot string, interval, grace time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	if grace <= 0 {
		grace = time.Hour
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			n, err := SweepOrphanedMedia(db, uploadRoot, grace)
			if Sugar == nil {
				continue
			}
			if err != nil {
				Sugar.Warnf("orphan sweep failed: %v", err)
			} else if n > 0 {
				Sugar.Infof("orphan sweep removed %d files", n)
			}
		}
	}()
}

// SweepOrphanedMedia performs one reconciliation pass and returns the number
// of removed files.
func SweepOrphanedMedia(db *gorm.DB, uploadRoot string, grace time.Duration) (int, error) {
	cutoff := time.Now().Add(-grace)
	var candidates []string

	for _, sub := range []string{"photos", "videos"} {
		entries, err := os.ReadDir(filepath.Join(uploadRoot, sub))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			candidates = append(candidates, path.Join(sub, e.Name()))
		}
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	var known []string
	if err := db.Model(&models.MediaFile{}).
		Where("file_path IN ?", candidates).
		Pluck("file_path", &known).Error; err != nil {
		return 0, err
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, p := range known {
		knownSet[p] = struct{}{}
	}

	removed := 0
	for _, rel := range candidates {
		if _, ok := knownSet[rel]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(uploadRoot, filepath.FromSlash(rel))); err == nil {
			removed++
		}
	}
	return removed, nil
}
