package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterMetricRoutes exposes Prometheus metrics at GET /metrics.
func RegisterMetricRoutes(r gin.IRoutes, h http.Handler) {
	r.GET("/metrics", gin.WrapH(h))
}
