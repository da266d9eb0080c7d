package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine, callback *CallbackHandler) {
	// Payment provider callback (no authentication header; trust is
	// decided per request by the origin authenticator)
	r.POST("/violet-callback", callback.HandlePaymentCallback)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "vmp-callback",
		})
	})
}
