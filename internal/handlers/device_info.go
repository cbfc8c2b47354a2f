package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/device-info-service/internal/logging"
	"github.com/PratikDhanave/device-info-service/internal/models"
	"github.com/PratikDhanave/device-info-service/internal/reporting"
)

const (
	msgSaved        = "Device info saved"
	msgNoNewData    = "No new data to save"
	msgRetrieved    = "Device information retrieved successfully"
	msgServerError  = "Server error"
	msgInvalidInput = "Invalid request body"
)

// DeviceInfoService is implemented by devices.Service.
type DeviceInfoService interface {
	Ingest(ctx context.Context, in models.DeviceInfoInput) (created bool, err error)
	List(ctx context.Context) ([]models.DeviceInfo, error)
}

// RegisterDeviceInfoRoutes registers the submit and list endpoints.
//
// POST /api/device-info
// - 201 when the tuple is new, 200 when an identical record already exists
// - fields are optional; absent ones are stored as null
//
// GET /api/device-info
// - every record, with Unknown emails re-resolved for the response only
func RegisterDeviceInfoRoutes(r gin.IRoutes, svc DeviceInfoService) {
	r.POST("/api/device-info", func(c *gin.Context) {
		ctx := c.Request.Context()
		logger := logging.FromContext(ctx)

		var req models.DeviceInfoInput
		// An empty body is an empty submission, not a malformed one.
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			logger.Info("Rejected device info payload", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, models.MessageResponse{Message: msgInvalidInput})
			return
		}
		ctx = logging.WithAttrs(ctx, submissionAttrs(req)...)
		logging.FromContext(ctx).Debug("Received device info", slog.Any("payload", req))

		created, err := svc.Ingest(ctx, req)
		if err != nil {
			reporting.Report(ctx, err)
			c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: msgServerError})
			return
		}

		if !created {
			c.JSON(http.StatusOK, models.MessageResponse{Message: msgNoNewData})
			return
		}
		c.JSON(http.StatusCreated, models.MessageResponse{Message: msgSaved})
	})

	r.GET("/api/device-info", func(c *gin.Context) {
		ctx := c.Request.Context()

		infos, err := svc.List(ctx)
		if err != nil {
			reporting.Report(ctx, err)
			c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: msgServerError})
			return
		}

		c.JSON(http.StatusOK, models.DeviceInfoListResponse{
			Message: msgRetrieved,
			Data:    infos,
		})
	})
}

// submissionAttrs tags the rest of the request's log lines with the
// submitter's network identity. Absent fields are left out.
func submissionAttrs(req models.DeviceInfoInput) []slog.Attr {
	attrs := make([]slog.Attr, 0, 2)
	if req.IPAddress != nil {
		attrs = append(attrs, slog.String("ipAddress", *req.IPAddress))
	}
	if req.DeviceType != nil {
		attrs = append(attrs, slog.String("deviceType", *req.DeviceType))
	}
	return attrs
}
