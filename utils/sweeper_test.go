package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pixfeed/pixfeed/models"
)

func setupSweepFixture(t *testing.T) (*gorm.DB, string) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.MediaFile{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "photos"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "videos"), 0o755))
	return db, root
}

func writeUpload(t *testing.T, root, rel string, age time.Duration) string {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.WriteFile(abs, []byte("data"), 0o644))
	if age > 0 {
		old := time.Now().Add(-age)
		require.NoError(t, os.Chtimes(abs, old, old))
	}
	return abs
}

func TestSweepRemovesOnlyOldOrphans(t *testing.T) {
	db, root := setupSweepFixture(t)

	user := models.User{Username: "sweeper", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	post := models.Post{UserID: user.ID, Title: "kept"}
	require.NoError(t, db.Create(&post).Error)
	require.NoError(t, db.Create(&models.MediaFile{
		PostID:    post.ID,
		FilePath:  "photos/referenced.jpg",
		MediaType: models.MediaPhoto,
		Position:  0,
	}).Error)

	referenced := writeUpload(t, root, "photos/referenced.jpg", 3*time.Hour)
	orphanPhoto := writeUpload(t, root, "photos/orphan.jpg", 3*time.Hour)
	orphanVideo := writeUpload(t, root, "videos/orphan.mp4", 3*time.Hour)
	fresh := writeUpload(t, root, "photos/inflight.jpg", 0)

	removed, err := SweepOrphanedMedia(db, root, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	assert.FileExists(t, referenced, "referenced file survives")
	assert.FileExists(t, fresh, "file inside the grace window survives")
	assert.NoFileExists(t, orphanPhoto)
	assert.NoFileExists(t, orphanVideo)
}

func TestSweepMissingDirectoriesIsNoop(t *testing.T) {
	db, _ := setupSweepFixture(t)

	removed, err := SweepOrphanedMedia(db, t.TempDir(), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSweepRepeatedRunsStayStable(t *testing.T) {
	db, root := setupSweepFixture(t)
	writeUpload(t, root, "photos/orphan.jpg", 3*time.Hour)

	removed, err := SweepOrphanedMedia(db, root, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = SweepOrphanedMedia(db, root, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
