package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"

	"github.com/PratikDhanave/device-info-service/internal/config"
	"github.com/PratikDhanave/device-info-service/internal/handlers"
	"github.com/PratikDhanave/device-info-service/internal/logging"
	"github.com/PratikDhanave/device-info-service/internal/reporting"
)

// NewRouter wires every endpoint. The router is wrapped by the Sentry hub
// middleware and then by the CORS handler.
// Public: /, /health, /ready, /metrics, /api/device-info
func NewRouter(
	cfg config.Config,
	st handlers.Pinger,
	svc handlers.DeviceInfoService,
	metricsHandler http.Handler,
	logger *slog.Logger,
) http.Handler {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(logging.NewRequestLoggerMiddleware(logger))
	r.Use(reporting.Recovery())

	handlers.RegisterHealthRoutes(r, st)
	handlers.RegisterMetricRoutes(r, metricsHandler)
	handlers.RegisterDeviceInfoRoutes(r, svc)

	return corsHandler(cfg)(reporting.NewHTTPMiddleware()(r))
}

// corsHandler never combines a wildcard origin with credentials.
func corsHandler(cfg config.Config) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", logging.RequestIDHeader},
		ExposedHeaders:   []string{logging.RequestIDHeader},
		AllowCredentials: cfg.CORSAllowCredentials(),
		MaxAge:           300,
	})
}
