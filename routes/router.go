package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"weblog/config"
	"weblog/controllers"
	"weblog/middleware"
	"weblog/utils"
)

// SetupRouter wires routes, middlewares, templates, and controllers.
func SetupRouter(db *gorm.DB, mailer utils.Mailer, resolver middleware.IdentityResolver) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap access logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}
	r.Use(utils.RequestID())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
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

	// Record reader page views after each request
	r.Use(middleware.PageViewRecorder(db))

	r.LoadHTMLGlob("templates/*.html")

	RegisterRoutes(r, db, cfg, utils.TemplateRenderer{}, mailer, resolver)
	return r
}

// RegisterRoutes attaches every route to the engine. Split out from
// SetupRouter so tests can mount the handlers with their own collaborators.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.AppConfig, renderer utils.Renderer, mailer utils.Mailer, resolver middleware.IdentityResolver) {
	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	blog := controllers.NewBlogController(db, cfg, renderer, mailer)
	r.GET("/", blog.ListPosts)
	r.GET("/:year/:month/:day/:slug", blog.PostDetail)
	r.POST("/:year/:month/:day/:slug", middleware.RateLimitMiddleware(), blog.PostDetail)
	r.GET("/share/:id", blog.SharePost)
	r.POST("/share/:id", middleware.RateLimitMiddleware(), blog.SharePost)

	author := controllers.NewAuthorController(db)
	api := r.Group("/api/v1")
	api.Use(middleware.AuthorRequired(resolver), middleware.RateLimitMiddleware())
	api.POST("/posts", author.CreatePost)
	api.PUT("/posts/:id", author.UpdatePost)
	api.DELETE("/posts/:id", author.DeletePost)
	api.GET("/posts/mine", author.ListMyPosts)
}
