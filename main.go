package main

import (
	"time"

	"github.com/pixfeed/pixfeed/config"
	"github.com/pixfeed/pixfeed/models"
	"github.com/pixfeed/pixfeed/routes"
	"github.com/pixfeed/pixfeed/services"
	"github.com/pixfeed/pixfeed/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Post{}, &models.MediaFile{}, &models.Comment{})

	// Response caching is best-effort; skipped entirely without a redis host
	utils.InitRedis(cfg)

	store := services.NewMediaStore(cfg.UploadDir, utils.Sugar)
	r := routes.SetupRouter(cfg, db, store)

	// Reconcile media files orphaned by rolled-back post creations
	utils.StartOrphanSweeper(db, cfg.UploadDir,
		time.Duration(cfg.SweepIntervalMinutes)*time.Minute,
		time.Duration(cfg.SweepGraceMinutes)*time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
