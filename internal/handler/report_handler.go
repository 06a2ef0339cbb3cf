package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/enrollment_report/internal/domain"
	"github.com/locvowork/enrollment_report/internal/logger"
	"github.com/locvowork/enrollment_report/internal/report"
)

const (
	msgAuthRequired = "Please login and authenticate on the portal to access the report."
	msgNoData       = "The data for this report is not available at this time.  Please try again later."
	msgUnavailable  = "There has been a problem accessing the data for this Report."
	msgExportFailed = "Failed to export the report."
)

// ReportProvider is implemented by service.ReportService.
type ReportProvider interface {
	BuildReport(ctx context.Context, cookies []*http.Cookie) (*domain.Report, error)
	ExportReport(ctx context.Context, cookies []*http.Cookie) (string, []byte, error)
}

type ReportHandler struct {
	svc ReportProvider
}

func NewReportHandler(svc ReportProvider) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// ReportHandler handles GET {prefix}report
func (h *ReportHandler) ReportHandler(c echo.Context) error {
	ctx := requestContext(c)
	logger.InfoLog(ctx, "Building weekly report")

	rep, err := h.svc.BuildReport(ctx, c.Request().Cookies())
	if err != nil {
		return h.responseFailure(ctx, c, err)
	}
	return ResponseSuccess(c, http.StatusOK, "Report generated successfully", rep)
}

// ExportHandler handles GET {prefix}report/export
func (h *ReportHandler) ExportHandler(c echo.Context) error {
	ctx := requestContext(c)
	logger.InfoLog(ctx, "Exporting weekly report")

	filename, data, err := h.svc.ExportReport(ctx, c.Request().Cookies())
	if err != nil {
		return h.responseFailure(ctx, c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, report.ContentType, data)
}

func (h *ReportHandler) HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ReportHandler) responseFailure(ctx context.Context, c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		logger.WarnLog(ctx, err, "Report request is not authenticated")
		return ResponseError(c, http.StatusUnauthorized, msgAuthRequired, err)
	case errors.Is(err, domain.ErrNoData):
		logger.WarnLog(ctx, err, "Report data is not available")
		return c.JSON(http.StatusOK, APIResponse{Success: false, NoData: true, Message: msgNoData})
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		logger.ErrorLog(ctx, err, "Datastore is unavailable")
		return ResponseError(c, http.StatusServiceUnavailable, msgUnavailable, err)
	case errors.Is(err, domain.ErrExport):
		logger.ErrorLog(ctx, err, "Failed to export report")
		return ResponseError(c, http.StatusInternalServerError, msgExportFailed, err)
	}
	logger.ErrorLog(ctx, err, "Failed to build report")
	return ResponseError(c, http.StatusInternalServerError, msgUnavailable, err)
}

// requestContext attaches the request id to the request context logger.
func requestContext(c echo.Context) context.Context {
	ctx := c.Request().Context()
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		ctx = logger.WithLogger(ctx, map[string]interface{}{"request_id": id})
	}
	return ctx
}
