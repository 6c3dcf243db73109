package detector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"isthisai-detection/internal/imaging"
	"isthisai-detection/internal/metrics"
)

const version = "1.0.0-heuristic"

// Validation errors returned by the pipeline. The engines never fail; these
// reject requests before scoring.
var (
	ErrTextTooLong      = errors.New("text exceeds maximum length")
	ErrImageTooLarge    = errors.New("image exceeds maximum size")
	ErrUnsupportedMedia = errors.New("file is not an image")
	ErrEmptyBatch       = errors.New("at least one text is required")
	ErrBatchTooLarge    = errors.New("batch exceeds maximum size")
)

// PipelineConfig holds request limits for the pipeline
type PipelineConfig struct {
	MaxTextLength  int
	MaxImageBytes  int64
	WorkerPoolSize int
	BatchLimit     int
	DisabledChecks []string
}

// Pipeline validates requests, runs the engines and records metrics
type Pipeline struct {
	text             *TextDetector
	image            *ImageDetector
	logger           *logrus.Logger
	metrics          *Metrics
	metricsCollector *metrics.MetricsCollector

	config    PipelineConfig
	startTime time.Time
}

// Metrics tracks detection counts and latency
type Metrics struct {
	RequestsTotal        int64
	RequestsSuccessful   int64
	RequestsFailed       int64
	AverageLatency       time.Duration
	TotalLatency         time.Duration
	DetectionsByCategory map[Category]int64
	AIVerdicts           map[Category]int64
	mutex                sync.RWMutex
}

// NewPipeline creates a pipeline around fresh text and image detectors.
// Checks named in cfg.DisabledChecks are switched off in whichever engine owns them.
func NewPipeline(cfg PipelineConfig, decoder ImageDecoder, collector *metrics.MetricsCollector, logger *logrus.Logger) (*Pipeline, error) {
	p := &Pipeline{
		text:             NewTextDetector(),
		image:            NewImageDetector(decoder),
		logger:           logger,
		metrics:          NewMetrics(),
		metricsCollector: collector,
		config:           cfg,
		startTime:        time.Now(),
	}

	for _, name := range cfg.DisabledChecks {
		textErr := p.text.Checks().Disable(name)
		imageErr := p.image.Checks().Disable(name)
		if textErr != nil && imageErr != nil {
			return nil, fmt.Errorf("disable check: unknown check %q", name)
		}
		logger.WithField("check", name).Info("Heuristic check disabled")
	}

	logger.WithFields(logrus.Fields{
		"text_checks":  p.text.Checks().Names(),
		"image_checks": p.image.Checks().Names(),
	}).Info("Detection pipeline initialized")

	return p, nil
}

// AnalyzeText scores a text request
func (p *Pipeline) AnalyzeText(ctx context.Context, req *TextRequest) (*DetectionResponse, error) {
	startTime := time.Now()

	if p.config.MaxTextLength > 0 && utf8.RuneCountInString(req.Text) > p.config.MaxTextLength {
		p.recordRejected(CategoryText, "too_long", startTime)
		return nil, fmt.Errorf("%w: %d characters, limit %d", ErrTextTooLong, utf8.RuneCountInString(req.Text), p.config.MaxTextLength)
	}

	result := p.text.Detect(req.Text)
	return p.buildResponse(ctx, result, time.Since(startTime)), nil
}

// AnalyzeImage scores an uploaded image file
func (p *Pipeline) AnalyzeImage(ctx context.Context, src imaging.Source) (*DetectionResponse, error) {
	startTime := time.Now()

	if p.config.MaxImageBytes > 0 && int64(len(src.Data)) > p.config.MaxImageBytes {
		p.recordRejected(CategoryImage, "too_large", startTime)
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, len(src.Data), p.config.MaxImageBytes)
	}

	if mt := imaging.SniffMIME(src.Data); !imaging.IsImageMIME(mt) {
		p.recordRejected(CategoryImage, "unsupported_media", startTime)
		return nil, fmt.Errorf("%w: detected %s", ErrUnsupportedMedia, mt)
	}

	result := p.image.DetectFromFile(ctx, src)
	if result.Image == nil {
		p.metricsCollector.RecordFailure(string(CategoryImage), "decode_failed")
		p.logger.WithFields(logrus.Fields{
			"file_name": src.FileName,
			"size":      len(src.Data),
			"reason":    result.Reasons[0],
		}).Warn("Image decode failed")
	}
	return p.buildResponse(ctx, result, time.Since(startTime)), nil
}

// AnalyzeImageURL scores an image by URL alone
func (p *Pipeline) AnalyzeImageURL(ctx context.Context, req *ImageURLRequest) (*DetectionResponse, error) {
	startTime := time.Now()
	result := p.image.DetectFromURL(req.URL)
	return p.buildResponse(ctx, result, time.Since(startTime)), nil
}

// AnalyzeBatch scores texts concurrently, bounded by the worker pool size.
// Results keep input order; a text over the length limit fails the batch.
func (p *Pipeline) AnalyzeBatch(ctx context.Context, req *BatchRequest) ([]*DetectionResponse, error) {
	if len(req.Texts) == 0 {
		return nil, ErrEmptyBatch
	}
	if p.config.BatchLimit > 0 && len(req.Texts) > p.config.BatchLimit {
		return nil, fmt.Errorf("%w: %d texts, limit %d", ErrBatchTooLarge, len(req.Texts), p.config.BatchLimit)
	}

	responses := make([]*DetectionResponse, len(req.Texts))
	g, gctx := errgroup.WithContext(ctx)
	if p.config.WorkerPoolSize > 0 {
		g.SetLimit(p.config.WorkerPoolSize)
	}

	for i, text := range req.Texts {
		i, text := i, text
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			resp, err := p.AnalyzeText(gctx, &TextRequest{Text: text})
			if err != nil {
				return fmt.Errorf("text %d: %w", i, err)
			}
			responses[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return responses, nil
}

// buildResponse wraps a result with timing, records metrics and logs it
func (p *Pipeline) buildResponse(ctx context.Context, result DetectionResult, duration time.Duration) *DetectionResponse {
	response := &DetectionResponse{
		DetectionResult:  result,
		Verdict:          result.Verdict(),
		ProcessingTimeMs: duration.Milliseconds(),
		RequestID:        RequestIDFromContext(ctx),
	}

	p.metrics.RecordSuccess(duration, result)
	p.metricsCollector.RecordDetection(string(result.Category), result.IsAI, result.Confidence, duration)

	p.logger.WithFields(logrus.Fields{
		"request_id":  response.RequestID,
		"category":    result.Category,
		"confidence":  result.Confidence,
		"is_ai":       result.IsAI,
		"reasons":     len(result.Reasons),
		"duration_ms": duration.Milliseconds(),
	}).Debug("Detection completed")

	return response
}

func (p *Pipeline) recordRejected(category Category, reason string, startTime time.Time) {
	p.metrics.RecordFailure(time.Since(startTime))
	p.metricsCollector.RecordFailure(string(category), reason)
}

// Config returns the limits the pipeline enforces
func (p *Pipeline) Config() PipelineConfig {
	return p.config
}

// TextDetector returns the pipeline's text engine
func (p *Pipeline) TextDetector() *TextDetector {
	return p.text
}

// ImageDetector returns the pipeline's image engine
func (p *Pipeline) ImageDetector() *ImageDetector {
	return p.image
}

// GetMetrics returns current pipeline metrics
func (p *Pipeline) GetMetrics() *Metrics {
	return p.metrics
}

// GetHealth returns pipeline health status
func (p *Pipeline) GetHealth() *HealthStatus {
	return &HealthStatus{
		Status:           "healthy",
		Version:          version,
		UptimeSeconds:    time.Since(p.startTime).Seconds(),
		RequestsServed:   p.metrics.GetRequestsTotal(),
		AverageLatencyMs: durationMs(p.metrics.GetAverageLatency()),
		TextChecks:       p.text.Checks().Names(),
		ImageChecks:      p.image.Checks().Names(),
	}
}

type requestIDKey struct{}

// WithRequestID attaches a request id to ctx
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id attached to ctx, if any
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		DetectionsByCategory: make(map[Category]int64),
		AIVerdicts:           make(map[Category]int64),
	}
}

// RecordSuccess records a completed detection
func (m *Metrics) RecordSuccess(duration time.Duration, result DetectionResult) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.RequestsTotal++
	m.RequestsSuccessful++
	m.TotalLatency += duration
	m.AverageLatency = m.TotalLatency / time.Duration(m.RequestsTotal)

	m.DetectionsByCategory[result.Category]++
	if result.IsAI {
		m.AIVerdicts[result.Category]++
	}
}

// RecordFailure records a rejected request
func (m *Metrics) RecordFailure(duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.RequestsTotal++
	m.RequestsFailed++
	m.TotalLatency += duration
	m.AverageLatency = m.TotalLatency / time.Duration(m.RequestsTotal)
}

// Snapshot is a point-in-time copy of Metrics
type Snapshot struct {
	RequestsTotal        int64              `json:"requests_total"`
	RequestsSuccessful   int64              `json:"requests_successful"`
	RequestsFailed       int64              `json:"requests_failed"`
	SuccessRate          float64            `json:"success_rate"`
	AverageLatencyMs     float64            `json:"average_latency_ms"`
	DetectionsByCategory map[Category]int64 `json:"detections_by_category"`
	AIVerdicts           map[Category]int64 `json:"ai_verdicts"`
}

// Snapshot copies the counters under the read lock
func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	s := Snapshot{
		RequestsTotal:        m.RequestsTotal,
		RequestsSuccessful:   m.RequestsSuccessful,
		RequestsFailed:       m.RequestsFailed,
		AverageLatencyMs:     durationMs(m.AverageLatency),
		DetectionsByCategory: make(map[Category]int64, len(m.DetectionsByCategory)),
		AIVerdicts:           make(map[Category]int64, len(m.AIVerdicts)),
	}
	if m.RequestsTotal > 0 {
		s.SuccessRate = float64(m.RequestsSuccessful) / float64(m.RequestsTotal)
	}
	for k, v := range m.DetectionsByCategory {
		s.DetectionsByCategory[k] = v
	}
	for k, v := range m.AIVerdicts {
		s.AIVerdicts[k] = v
	}
	return s
}

// GetRequestsTotal returns total requests processed
func (m *Metrics) GetRequestsTotal() int64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.RequestsTotal
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// GetAverageLatency returns average processing latency
func (m *Metrics) GetAverageLatency() time.Duration {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.AverageLatency
}
