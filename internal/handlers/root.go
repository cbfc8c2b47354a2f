package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const greeting = "Hi, It works!"

type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterHealthRoutes registers the greeting, liveness and readiness endpoints.
func RegisterHealthRoutes(r gin.IRoutes, st Pinger) {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, greeting)
	})

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the store is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}
