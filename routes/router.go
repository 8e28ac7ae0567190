package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pixfeed/pixfeed/config"
	"github.com/pixfeed/pixfeed/controllers"
	"github.com/pixfeed/pixfeed/middleware"
	"github.com/pixfeed/pixfeed/services"
	"github.com/pixfeed/pixfeed/utils"
)

// SetupRouter wires routes, middlewares, services and controllers.
func SetupRouter(cfg config.AppConfig, db *gorm.DB, store *services.MediaStore) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = int64(cfg.MaxUploadSizeMB) << 20

	// Access log goes to its own rolling file, separate from the app log.
	accessLog, err := utils.NewRollingFileLogger(cfg.GinLogPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err != nil {
		accessLog = appLogger()
	}
	r.Use(middleware.RequestLogger(accessLog))
	r.Use(middleware.Recovery(appLogger()))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	log := sugar()
	userService := services.NewUserService(db, log)
	postService := services.NewPostService(db, store, log)
	commentService := services.NewCommentService(db, log)
	mapper := controllers.NewDTOMapper(cfg.FileRoutePrefix)

	authController := controllers.NewAuthController(userService)
	postController := controllers.NewPostController(postService, userService, mapper, cfg.MaxUploadSizeMB)
	commentController := controllers.NewCommentController(commentService, postService, userService, mapper)
	fileController := controllers.NewFileController(store)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimit(cfg.RateLimitPerMinute))
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)

	api.POST("/posts", postController.CreatePost)
	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/:id", postController.GetPost)
	api.GET("/posts/user/:userId", postController.ListUserPosts)
	api.DELETE("/posts/:id", postController.DeletePost)

	api.POST("/comments", commentController.CreateComment)
	api.GET("/comments/post/:postId", commentController.ListByPost)
	api.GET("/comments/post/:postId/count", commentController.CountByPost)
	api.GET("/comments/user/:userId", commentController.ListByUser)
	api.DELETE("/comments/:id", commentController.DeleteComment)

	api.GET("/files/*filepath", fileController.Serve)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, "route not found")
	})

	return r
}

func appLogger() *zap.Logger {
	if utils.Logger != nil {
		return utils.Logger
	}
	return zap.NewNop()
}

func sugar() *zap.SugaredLogger {
	if utils.Sugar != nil {
		return utils.Sugar
	}
	return zap.NewNop().Sugar()
}
