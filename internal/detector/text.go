package detector

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

var irregularCaps = regexp.MustCompile(`[a-z][A-Z]`)

// Check names, usable with Registry.Disable and detection.disabled_checks
const (
	CheckHumanPattern = "human-pattern"
	CheckAIPhrase     = "ai-phrase"
	CheckUniformity   = "uniformity"
	CheckTextFlow     = "text-flow"
)

// TextDetector scores text with its registered checks. Configure the
// registry before sharing the detector; Detect itself is read-only.
type TextDetector struct {
	checks *Registry[TextCheck]
}

// NewTextDetector creates a detector with the default checks in evidence order
func NewTextDetector() *TextDetector {
	return &TextDetector{
		checks: NewRegistry[TextCheck](
			humanPatternCheck{},
			aiPhraseCheck{},
			uniformityCheck{},
			textFlowCheck{},
		),
	}
}

// Checks exposes the detector's check registry
func (d *TextDetector) Checks() *Registry[TextCheck] {
	return d.checks
}

var defaultTextDetector = NewTextDetector()

// DetectText scores text with the default checks
func DetectText(text string) DetectionResult {
	return defaultTextDetector.Detect(text)
}

// Detect scores text. Inputs shorter than 50 characters are not analyzed.
func (d *TextDetector) Detect(text string) DetectionResult {
	if utf8.RuneCountInString(text) < minTextLength {
		return DetectionResult{
			IsAI:       false,
			Confidence: 0,
			Reasons:    []string{reasonTextTooShort},
			Category:   CategoryText,
		}
	}

	features := ExtractTextFeatures(text)

	score := 0
	reasons := make([]string, 0)
	for _, check := range d.checks.Enabled() {
		c := check.Evaluate(text, features)
		score += c.Points
		reasons = append(reasons, c.Evidence...)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, reasonTextInconclusive)
	}

	confidence := clampConfidence(score)
	return DetectionResult{
		IsAI:       confidence > textAIThreshold,
		Confidence: confidence,
		Reasons:    reasons,
		Category:   CategoryText,
	}
}

// ExtractTextFeatures computes word and sentence statistics. It does not
// guard against empty input: zero counts produce NaN or Inf, which every
// threshold comparison treats as false.
func ExtractTextFeatures(text string) TextFeatures {
	words := strings.Fields(text)
	sentences := splitSentences(text)

	unique := make(map[string]struct{}, len(words))
	totalLength := 0
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
		totalLength += utf8.RuneCountInString(w)
	}

	totalWords := float64(len(words))
	return TextFeatures{
		TotalWords:         len(words),
		UniqueWords:        len(unique),
		AvgWordLength:      float64(totalLength) / totalWords,
		SentenceComplexity: totalWords / float64(len(sentences)),
	}
}

// splitSentences splits on runs of . ! ? and drops blank segments
func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

func sentenceLengths(text string) []int {
	sentences := splitSentences(text)
	lengths := make([]int, len(sentences))
	for i, s := range sentences {
		lengths[i] = len(strings.Fields(s))
	}
	return lengths
}

func countContained(lowerText string, needles []string) int {
	n := 0
	for _, needle := range needles {
		if strings.Contains(lowerText, needle) {
			n++
		}
	}
	return n
}

// humanPatternCheck looks for conversational writing and subtracts its score
type humanPatternCheck struct{}

func (humanPatternCheck) Name() string { return CheckHumanPattern }

func (humanPatternCheck) Evaluate(text string, _ TextFeatures) Contribution {
	lowerText := strings.ToLower(text)
	score := 0
	var evidence []string

	if n := countContained(lowerText, HumanPatterns.Contractions); n > 2 {
		score += 15
		evidence = append(evidence, fmt.Sprintf("Uses contractions (%d found) - common in human writing", n))
	}

	if n := countContained(lowerText, HumanPatterns.InformalExpressions); n > 1 {
		score += 20
		evidence = append(evidence, fmt.Sprintf("Informal language detected (%d expression) - typical human style", n))
	}

	if strings.Count(text, "?") > 1 || strings.Count(text, "!") > 1 {
		score += 10
		evidence = append(evidence, "Emotional punctuation - suggests human writer")
	}

	lengths := sentenceLengths(text)
	short := 0
	for _, l := range lengths {
		if l < shortSentenceWords {
			short++
		}
	}
	if float64(short) > float64(len(lengths))*shortSentenceShare {
		score += 12
		evidence = append(evidence, "Many short sentences - conversational human style")
	}

	if irregularCaps.MatchString(text) {
		score += 8
		evidence = append(evidence, "Irregular formatting - human imperfection")
	}

	return Contribution{Points: -score, Evidence: evidence}
}

// aiPhraseCheck adds points for every stock phrase and formal marker present
type aiPhraseCheck struct{}

func (aiPhraseCheck) Name() string { return CheckAIPhrase }

func (aiPhraseCheck) Evaluate(text string, _ TextFeatures) Contribution {
	lowerText := strings.ToLower(text)
	var c Contribution

	for _, phrase := range AIPatterns.CommonPhrases {
		if strings.Contains(lowerText, strings.ToLower(phrase)) {
			c.Points += 10
			c.Evidence = append(c.Evidence, fmt.Sprintf("Contains phrase: \"%s\"", phrase))
		}
	}

	for _, marker := range AIPatterns.FormalMarkers {
		if strings.Contains(lowerText, strings.ToLower(marker)) {
			c.Points += 8
			c.Evidence = append(c.Evidence, fmt.Sprintf("Formal structure: \"%s\"", marker))
		}
	}

	return c
}

// uniformityCheck scores vocabulary and structure regularity. Its findings
// are reported as a single "|"-joined reason.
type uniformityCheck struct{}

func (uniformityCheck) Name() string { return CheckUniformity }

func (uniformityCheck) Evaluate(_ string, f TextFeatures) Contribution {
	score := 0
	var parts []string

	uniqueRatio := float64(f.UniqueWords) / float64(f.TotalWords)
	if uniqueRatio > highUniqueWordRatio {
		score += 15
		parts = append(parts, "Exeptionally high vocabulary diversity (AI tends to avoid repetition)")
	}

	if f.SentenceComplexity > 15 && f.SentenceComplexity < 25 {
		score += 12
		parts = append(parts, "Very consistent sentence structure")
	}

	if f.AvgWordLength > 5.5 && f.AvgWordLength < 6.5 {
		score += 8
		parts = append(parts, "Unusually consistent word length")
	}

	if len(parts) == 0 {
		return Contribution{}
	}
	return Contribution{Points: score, Evidence: []string{strings.Join(parts, "|")}}
}

// textFlowCheck compares sentence lengths against their mean
type textFlowCheck struct{}

func (textFlowCheck) Name() string { return CheckTextFlow }

func (textFlowCheck) Evaluate(text string, _ TextFeatures) Contribution {
	variance := sentenceLengthVariance(sentenceLengths(text))

	switch {
	case variance < uniformVarianceMax:
		return Contribution{Points: 15, Evidence: []string{"Very uniform sentence length - AI pattern"}}
	case variance > variedVarianceMin:
		return Contribution{Points: -10, Evidence: []string{"Varied sentence structure - human pattern"}}
	default:
		return Contribution{}
	}
}

// sentenceLengthVariance returns the population variance, NaN when empty
func sentenceLengthVariance(lengths []int) float64 {
	n := float64(len(lengths))
	total := 0
	for _, l := range lengths {
		total += l
	}
	mean := float64(total) / n

	var sum float64
	for _, l := range lengths {
		d := float64(l) - mean
		sum += d * d
	}
	return sum / n
}

func clampConfidence(score int) int {
	return int(math.Round(math.Max(0, math.Min(100, float64(score)))))
}
