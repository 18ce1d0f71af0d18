package router

import (
	"github.com/gin-gonic/gin"

	"fraudit/internal/handler"
	"fraudit/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(auditH *handler.AuditHandler, healthH *handler.HealthHandler, corsOrigins []string) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)

	v1 := r.Group("/api/v1")

	audits := v1.Group("/audits")
	audits.POST("", auditH.Audit)
	audits.POST("/text-preview", auditH.TextPreview)

	return r
}
