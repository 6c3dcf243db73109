package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"isthisai-detection/internal/detector"
	"isthisai-detection/internal/imaging"
	"isthisai-detection/internal/report"
)

const (
	// multipartOverhead is the slack allowed on top of the image limit for form framing
	multipartOverhead = 1 << 20

	// a rune outside the BMP escapes to a \uXXXX\uXXXX surrogate pair
	maxEscapedRuneBytes = 12
	jsonOverhead        = 4 << 10
	maxURLBody          = 64 << 10
)

// DetectionHandler handles HTTP requests for AI content detection
type DetectionHandler struct {
	pipeline *detector.Pipeline
	logger   *logrus.Logger
	timeout  time.Duration
}

// NewDetectionHandler creates a new detection handler. A zero timeout means
// requests only end with the client.
func NewDetectionHandler(pipeline *detector.Pipeline, logger *logrus.Logger, timeout time.Duration) *DetectionHandler {
	return &DetectionHandler{
		pipeline: pipeline,
		logger:   logger,
		timeout:  timeout,
	}
}

func (h *DetectionHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// DetectText handles POST /v1/detect/text requests
func (h *DetectionHandler) DetectText(c *gin.Context) {
	var req detector.TextRequest
	if !h.bindJSON(c, &req, h.textBodyLimit(1)) {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	// never log the text itself
	h.logger.WithFields(logrus.Fields{
		"request_id":  detector.RequestIDFromContext(ctx),
		"text_length": len(req.Text),
		"client_ip":   c.ClientIP(),
	}).Info("Processing text detection request")

	response, err := h.pipeline.AnalyzeText(ctx, &req)
	if err != nil {
		h.fail(c, "Text detection failed", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DetectImage handles POST /v1/detect/image multipart uploads
func (h *DetectionHandler) DetectImage(c *gin.Context) {
	limit := h.pipeline.Config().MaxImageBytes
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.fail(c, "Image upload too large", fmt.Errorf("%w: %v", detector.ErrImageTooLarge, err))
			return
		}
		h.badRequest(c, "Missing image file", err)
		return
	}

	src := imaging.Source{FileName: fileHeader.Filename}
	if lm := c.PostForm("last_modified"); lm != "" {
		src.LastModified, err = time.Parse(time.RFC3339, lm)
		if err != nil {
			h.badRequest(c, "Invalid last_modified, want RFC3339", err)
			return
		}
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.fail(c, "Could not open upload", err)
		return
	}
	defer f.Close()

	reader := io.Reader(f)
	if limit > 0 {
		// one byte past the limit is enough for the pipeline to reject it
		reader = io.LimitReader(f, limit+1)
	}
	src.Data, err = io.ReadAll(reader)
	if err != nil {
		h.fail(c, "Could not read upload", err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	h.logger.WithFields(logrus.Fields{
		"request_id": detector.RequestIDFromContext(ctx),
		"file_name":  src.FileName,
		"size":       len(src.Data),
		"client_ip":  c.ClientIP(),
	}).Info("Processing image detection request")

	response, err := h.pipeline.AnalyzeImage(ctx, src)
	if err != nil {
		h.fail(c, "Image detection failed", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DetectImageURL handles POST /v1/detect/image-url requests
func (h *DetectionHandler) DetectImageURL(c *gin.Context) {
	var req detector.ImageURLRequest
	if !h.bindJSON(c, &req, maxURLBody) {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	response, err := h.pipeline.AnalyzeImageURL(ctx, &req)
	if err != nil {
		h.fail(c, "Image URL detection failed", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DetectBatch handles bulk text detection requests
func (h *DetectionHandler) DetectBatch(c *gin.Context) {
	var req detector.BatchRequest
	if !h.bindJSON(c, &req, h.textBodyLimit(h.pipeline.Config().BatchLimit)) {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	h.logger.WithFields(logrus.Fields{
		"request_id": detector.RequestIDFromContext(ctx),
		"batch_size": len(req.Texts),
	}).Info("Processing batch detection request")

	responses, err := h.pipeline.AnalyzeBatch(ctx, &req)
	if err != nil {
		h.fail(c, "Batch detection failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": responses,
	})
}

// Report handles POST /v1/report, returning a plain-text export of a text verdict
func (h *DetectionHandler) Report(c *gin.Context) {
	var req detector.TextRequest
	if !h.bindJSON(c, &req, h.textBodyLimit(1)) {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	response, err := h.pipeline.AnalyzeText(ctx, &req)
	if err != nil {
		h.fail(c, "Report generation failed", err)
		return
	}

	c.String(http.StatusOK, report.Text(response.DetectionResult, req.Text))
}

// HealthCheck handles GET /health requests
func (h *DetectionHandler) HealthCheck(c *gin.Context) {
	health := h.pipeline.GetHealth()

	statusCode := http.StatusOK
	if health.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, health)
}

// GetMetrics handles GET /v1/metrics requests
func (h *DetectionHandler) GetMetrics(c *gin.Context) {
	snapshot := h.pipeline.GetMetrics().Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"requests_total":         snapshot.RequestsTotal,
		"requests_successful":    snapshot.RequestsSuccessful,
		"requests_failed":        snapshot.RequestsFailed,
		"success_rate":           snapshot.SuccessRate,
		"average_latency_ms":     snapshot.AverageLatencyMs,
		"detection_method":       "heuristic",
		"detections_by_category": snapshot.DetectionsByCategory,
		"ai_verdicts":            snapshot.AIVerdicts,
	})
}

// textBodyLimit bounds a JSON body carrying up to n texts of the configured
// maximum length. Zero means unbounded.
func (h *DetectionHandler) textBodyLimit(n int) int64 {
	maxLen := h.pipeline.Config().MaxTextLength
	if maxLen <= 0 || n <= 0 {
		return 0
	}
	return int64(n)*int64(maxLen)*maxEscapedRuneBytes + jsonOverhead
}

// bindJSON decodes the body into obj, reading at most limit bytes when limit
// is positive
func (h *DetectionHandler) bindJSON(c *gin.Context, obj any, limit int64) bool {
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.fail(c, "Request body too large", err)
			return false
		}
		h.badRequest(c, "Invalid request payload", err)
		return false
	}
	return true
}

func (h *DetectionHandler) badRequest(c *gin.Context, msg string, err error) {
	h.logger.WithError(err).Warn(msg)
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   msg,
		"details": err.Error(),
	})
}

// fail maps pipeline errors to status codes and writes the error body
func (h *DetectionHandler) fail(c *gin.Context, msg string, err error) {
	statusCode := statusFor(err)

	entry := h.logger.WithError(err).WithField("status", statusCode)
	if statusCode >= http.StatusInternalServerError {
		entry.Error(msg)
	} else {
		entry.Warn(msg)
	}

	c.JSON(statusCode, gin.H{
		"error":   msg,
		"details": err.Error(),
	})
}

func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, detector.ErrTextTooLong), errors.Is(err, detector.ErrImageTooLarge), errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, detector.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, detector.ErrEmptyBatch), errors.Is(err, detector.ErrBatchTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
