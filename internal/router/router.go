package router

import (
	"github.com/gin-gonic/gin"

	"templora/internal/config"
	"templora/internal/handler"
	"templora/internal/middleware"
	"templora/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	uploadH *handler.UploadHandler,
	assetH *handler.AssetHandler,
	categoryH *handler.CategoryHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Public catalog routes
	v1.GET("/categories", categoryH.List)
	v1.GET("/categories/:id", categoryH.GetByID)
	v1.GET("/categories/:id/children", categoryH.ListChildren)
	v1.GET("/assets", assetH.List)
	v1.GET("/assets/:id", assetH.GetByID)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Upload coordinator routes
	uploads := protected.Group("/uploads")
	uploads.POST("/simple", uploadH.SimpleUpload)
	uploads.POST("/multipart/init", uploadH.InitMultipart)
	uploads.POST("/multipart/complete", uploadH.CompleteMultipart)
	uploads.DELETE("/multipart/abort", uploadH.AbortMultipart)

	// Seller asset routes
	assets := protected.Group("/assets")
	assets.POST("", assetH.Create)
	assets.GET("/mine", assetH.ListMine)
	assets.PUT("/:id/files", assetH.AttachFiles)
	assets.POST("/:id/publish", assetH.Publish)
	assets.GET("/:id/download", assetH.Download)
	assets.DELETE("/:id", assetH.Delete)

	return r
}
