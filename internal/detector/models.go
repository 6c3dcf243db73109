package detector

// Category tags which engine produced a result
type Category string

const (
	CategoryText  Category = "text"
	CategoryImage Category = "image"
	CategoryAudio Category = "audio" // reserved, no engine produces it yet
)

// DetectionResult is the verdict produced by both engines
type DetectionResult struct {
	IsAI       bool           `json:"is_ai" yaml:"is_ai"`
	Confidence int            `json:"confidence" yaml:"confidence"`
	Reasons    []string       `json:"reasons" yaml:"reasons"`
	Category   Category       `json:"category" yaml:"category"`
	Image      *ImageFeatures `json:"image_analysis,omitempty" yaml:"image_analysis,omitempty"`
}

// Verdict returns the human-facing label for the result
func (r DetectionResult) Verdict() string {
	if r.IsAI {
		return "Likely AI-Generated"
	}
	return "Likely Human-Written"
}

// TextFeatures holds the word and sentence statistics of one text
type TextFeatures struct {
	TotalWords         int
	UniqueWords        int
	AvgWordLength      float64
	SentenceComplexity float64
}

// ImageFeatures holds everything the image checks look at
type ImageFeatures struct {
	Width    int            `json:"width" yaml:"width"`
	Height   int            `json:"height" yaml:"height"`
	FileSize int64          `json:"file_size" yaml:"file_size"`
	Metadata map[string]any `json:"metadata" yaml:"metadata"`
	MIMEType string         `json:"mime_type" yaml:"mime_type"`
	FileName string         `json:"-" yaml:"-"`
}

// Contribution is the signed score delta and evidence produced by one check
type Contribution struct {
	Points   int
	Evidence []string
}

// TextRequest represents an incoming text analysis request
type TextRequest struct {
	Text string `json:"text"`
}

// ImageURLRequest represents an incoming URL-only image analysis request
type ImageURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// BatchRequest represents a bulk text analysis request
type BatchRequest struct {
	Texts []string `json:"texts"`
}

// DetectionResponse represents the analysis result returned to callers
type DetectionResponse struct {
	DetectionResult
	Verdict          string `json:"verdict"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
	RequestID        string `json:"request_id,omitempty"`
}

// HealthStatus represents the health status of the detection service
type HealthStatus struct {
	Status           string   `json:"status"`
	Version          string   `json:"version"`
	UptimeSeconds    float64  `json:"uptime_seconds"`
	RequestsServed   int64    `json:"requests_served"`
	AverageLatencyMs float64  `json:"average_latency_ms"`
	TextChecks       []string `json:"text_checks"`
	ImageChecks      []string `json:"image_checks"`
}
