package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"shipdraft/internal/handler"
	"shipdraft/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	batchH *handler.BatchHandler,
	draftH *handler.DraftHandler,
	fileH *handler.DraftFileHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Batch routes
	batches := v1.Group("/batches")
	batches.POST("", batchH.Submit)
	batches.GET("/active", batchH.Active)
	batches.GET("/:id/events", batchH.Observe)

	// Draft routes
	drafts := v1.Group("/drafts")
	drafts.GET("", draftH.List)
	drafts.GET("/export/csv", draftH.ExportCSV)
	drafts.POST("/bulk/status", draftH.BulkUpdateStatus)
	drafts.GET("/:id", draftH.Get)
	drafts.DELETE("/:id", draftH.Delete)
	drafts.PATCH("/:id/status", draftH.UpdateStatus)
	drafts.GET("/:id/validation", draftH.Validate)
	drafts.POST("/:id/forward", draftH.Forward)
	drafts.GET("/:id/export/xlsx", draftH.ExportWorkbook)

	// Attached document routes
	drafts.POST("/:id/files", fileH.Attach)
	drafts.DELETE("/:id/files/:file_id", fileH.Detach)
	drafts.GET("/:id/files/:file_id/url", fileH.DownloadURL)
	drafts.GET("/:id/files/:file_id/content", fileH.Download)

	// Correction session routes
	drafts.POST("/:id/session", draftH.OpenSession)
	drafts.GET("/:id/session", draftH.GetSession)
	drafts.DELETE("/:id/session", draftH.CloseSession)
	drafts.POST("/:id/session/fields", draftH.StageField)
	drafts.POST("/:id/session/box-address", draftH.EditBoxAddress)
	drafts.POST("/:id/session/products", draftH.EditProduct)
	drafts.POST("/:id/session/flush", draftH.Flush)
	drafts.POST("/:id/session/discard", draftH.Discard)

	return r
}
