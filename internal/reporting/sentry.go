package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/device-info-service/internal/logging"
)

var uuidRx = regexp.MustCompile(`[0-9a-f]{8}-?([0-9a-f]{4}-?){3}[0-9a-f]{12}`)
var ipv4Rx = regexp.MustCompile(`\b\d{1,3}(\.\d{1,3}){3}(:\d+)?\b`)

// sanitizeError strips per-request values so similar errors group together.
func sanitizeError(err string) string {
	err = uuidRx.ReplaceAllString(err, "<uuid>")
	err = ipv4Rx.ReplaceAllString(err, "<host>")
	return err
}

// Init configures the global Sentry client. An empty DSN disables reporting.
// The returned flush func must be called before the process exits.
func Init(dsn string, environment string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}

	flush := func() {
		sentry.Flush(5 * time.Second)
	}
	return flush, nil
}

// NewHTTPMiddleware gives every request its own hub and request scope.
// It must wrap the whole router so Recovery and Report can find the hub.
func NewHTTPMiddleware() func(http.Handler) http.Handler {
	return sentryhttp.New(sentryhttp.Options{}).Handle
}

// Recovery replaces gin.Recovery: a panicking handler is reported to the
// request hub and the client gets the usual opaque 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		ctx := c.Request.Context()
		logging.FromContext(ctx).Error("Recovered from panic", slog.Any("panic", recovered))

		hub := sentry.GetHubFromContext(ctx)
		if hub == nil {
			hub = sentry.CurrentHub()
		}
		hub.RecoverWithContext(ctx, recovered)

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	})
}

// Report logs err and sends it to Sentry when a client is configured.
func Report(ctx context.Context, err error, extras ...map[string]string) {
	logger := logging.FromContext(ctx)

	if err == nil {
		err = errors.New("No error provided")
	}

	logger.Error(
		"Reporting error",
		slog.String("error", err.Error()),
		slog.Any("extras", extras),
	)

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		for _, extra := range extras {
			for key, value := range extra {
				scope.SetExtra(key, value)
			}
		}
		scope.SetFingerprint([]string{"{{ default }}", sanitizeError(err.Error())})
		hub.CaptureException(err)
	})
}
