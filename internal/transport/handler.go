package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/mindtrack-report/internal/config"
	apperrors "github.com/anime-shed/mindtrack-report/internal/errors"
	"github.com/anime-shed/mindtrack-report/internal/export"
	"github.com/anime-shed/mindtrack-report/internal/logger"
	"github.com/anime-shed/mindtrack-report/internal/service"
	"github.com/anime-shed/mindtrack-report/internal/storage"
	"github.com/anime-shed/mindtrack-report/pkg/models"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// MetricsSource exposes aggregated export metrics
type MetricsSource interface {
	GetMetrics() map[string]interface{}
}

func NewHandler(svc service.ReportService, metrics MetricsSource, cfg *config.Config) http.Handler {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.GET("/metrics", metricsHandler(svc, metrics))
	r.GET("/reports/archive/*key", archivedReport(svc, cfg))
	r.HEAD("/reports/archive/*key", archivedReportExists(svc, cfg))

	reports := r.Group("/reports/:mode")
	reports.POST("", exportReport(svc, cfg))
	reports.POST("/analyze", analyzeAndExport(svc, cfg))
	reports.POST("/verify", verifyReport(svc, cfg))

	return r
}

func exportReport(svc service.ReportService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		mode, ok := parseMode(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.ReportRequest
		if !bindJSON(c, &req) {
			return
		}

		exp, err := svc.Export(ctx, mode, service.ExportRequest{
			Result:  req.Result,
			Source:  req.SourcePreview,
			Archive: req.Archive,
		})
		if err != nil {
			respondError(c, statusCode(err), "failed to export report", err)
			return
		}
		writeExport(c, exp)
	}
}

func analyzeAndExport(svc service.ReportService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		mode, ok := parseMode(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.AnalyzeRequest
		if !bindJSON(c, &req) {
			return
		}

		exp, err := svc.AnalyzeAndExport(ctx, mode, req)
		if err != nil {
			respondError(c, statusCode(err), "failed to analyze and export report", err)
			return
		}
		writeExport(c, exp)
	}
}

func verifyReport(svc service.ReportService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		mode, ok := parseMode(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.ReportRequest
		if !bindJSON(c, &req) {
			return
		}

		res, err := svc.Verify(ctx, mode, service.ExportRequest{Result: req.Result, Source: req.SourcePreview})
		if err != nil {
			respondError(c, statusCode(err), "failed to verify report", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"mode":    mode,
			"wer":     res.WER,
			"cer":     res.CER,
			"legible": res.Legible,
		}).Info("Report legibility checked")

		c.JSON(http.StatusOK, gin.H{
			"wer":              res.WER,
			"cer":              res.CER,
			"expected_words":   res.ExpectedWords,
			"recognized_words": res.RecognizedWords,
			"legible":          res.Legible,
			"sharpness":        res.Sharpness,
		})
	}
}

func writeExport(c *gin.Context, exp *service.Export) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
	c.Header("X-Export-ID", exp.ID)
	c.Header("X-Report-Height", strconv.Itoa(exp.Height))
	c.Header("X-Report-Dropped", strconv.Itoa(exp.Dropped))
	if exp.ArchiveKey != "" {
		c.Header("X-Archive-Key", exp.ArchiveKey)
	}
	if exp.ArchiveError != "" {
		c.Header("X-Archive-Error", exp.ArchiveError)
	}
	if len(exp.Warnings) > 0 {
		c.Header("X-Report-Warnings", strings.Join(exp.Warnings, "; "))
	}
	c.Data(http.StatusOK, exp.ContentType, exp.Data)
}

func archivedReport(svc service.ReportService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		key := strings.TrimPrefix(c.Param("key"), "/")
		rc, err := svc.OpenArchived(ctx, key)
		if err != nil {
			respondError(c, archiveStatusCode(err), "failed to load archived report", err)
			return
		}
		defer rc.Close()

		c.DataFromReader(http.StatusOK, -1, export.ContentType, rc, map[string]string{
			"Content-Disposition": fmt.Sprintf("attachment; filename=%q", path.Base(key)),
		})
	}
}

func archivedReportExists(svc service.ReportService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		ok, err := svc.ArchivedExists(ctx, strings.TrimPrefix(c.Param("key"), "/"))
		if err != nil {
			c.AbortWithStatus(archiveStatusCode(err))
			return
		}
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		c.Header("Content-Type", export.ContentType)
		c.Status(http.StatusOK)
	}
}

// bindJSON decodes the request body into obj, answering 413 when the body
// exceeds the size limit and 400 for any other decode failure
func bindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, http.StatusRequestEntityTooLarge, "request body too large", err)
		return false
	}
	respondError(c, http.StatusBadRequest, "invalid request format", err)
	return false
}

func parseMode(c *gin.Context) (models.ReportMode, bool) {
	mode := models.ReportMode(c.Param("mode"))
	if !mode.Valid() {
		err := apperrors.NewValidationError(fmt.Sprintf("unknown report mode %q", mode), nil)
		respondError(c, http.StatusBadRequest, "invalid report mode", err)
		return "", false
	}
	return mode, true
}

func metricsHandler(svc service.ReportService, metrics MetricsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"pool": svc.PoolStats()}
		if metrics != nil {
			body["exports"] = metrics.GetMetrics()
		}
		c.JSON(http.StatusOK, body)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			"status":             c.Writer.Status(),
			"ip":                 c.ClientIP(),
			"processing_time_ms": time.Since(start).Milliseconds(),
		}
		if mode := c.Param("mode"); mode != "" {
			fields["mode"] = mode
		}
		logger.WithFields(fields).Info("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, statusCode(err.Err), "request processing failed", err)
		}
	}
}

func statusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// archiveStatusCode maps service errors and raw archive errors
func archiveStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return storage.MapHTTPStatus(err)
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	detail := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		detail = appErr.Message
		if appErr.Type == apperrors.ErrorTypeValidation && appErr.Cause != nil {
			detail = fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
		}
	}

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %s", message, detail),
	})
}
