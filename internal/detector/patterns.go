package detector

// Heuristic tables. Changing any entry changes scoring output.

// AIPatterns holds phrase lists that point towards machine-written text
var AIPatterns = struct {
	CommonPhrases []string
	FormalMarkers []string
}{
	CommonPhrases: []string{
		"it is important to note",
		"it's worth noting",
		"in conclusion",
		"furthermore",
		"moreover",
		"additionally",
		"delve into",
		"utilize",
		"leverage",
		"comprehensive",
		"robust",
		"facilitate",
		"implement",
		"various",
		"particular",
		"significant",
		"substantial",
		"innovative",
		"cutting-edge",
		"state-of-the-art",
	},
	FormalMarkers: []string{
		"one might argue",
		"it could be said",
		"in light of",
		"with regard to",
		"concerning the matter of",
	},
}

// HumanPatterns holds markers of conversational, human writing
var HumanPatterns = struct {
	Contractions        []string
	InformalExpressions []string
}{
	Contractions: []string{
		"don't", "won't", "can't", "it's", "i'm", "you're", "we're", "they're",
		"isn't", "aren't", "weren't", "haven't", "hasn't", "hadn't",
	},
	InformalExpressions: []string{
		"lol", "haha", "omg", "tbh", "btw", "yeah", "nah", "gonna", "wanna",
		"kinda", "sorta", "pretty much", "you know", "i mean", "like,", "well,",
		"honestly", "basically", "literally", "actually", "seriously",
	},
}

// Resolution is a known image generator output size
type Resolution struct {
	Width  int
	Height int
	Name   string
}

// AspectRatio is a width/height ratio with a match tolerance
type AspectRatio struct {
	Ratio     float64
	Tolerance float64
	Name      string
}

// ImagePatterns holds the tables used by the image checks
var ImagePatterns = struct {
	FileNameKeywords []string
	Resolutions      []Resolution
	AspectRatios     []AspectRatio
	HostingDomains   []string
}{
	FileNameKeywords: []string{
		"dalle", "midjourney", "stable-diffusion", "generated",
		"ai-", "synthetic", "gan-", "diffusion",
	},
	Resolutions: []Resolution{
		{Width: 512, Height: 512, Name: "SD 1.x standard"},
		{Width: 768, Height: 768, Name: "SD 2.x standard"},
		{Width: 1024, Height: 1024, Name: "DALL-E/SD XL"},
		{Width: 1024, Height: 768, Name: "SD landscape"},
		{Width: 768, Height: 1024, Name: "SD portrait"},
		{Width: 896, Height: 896, Name: "Midjourney square"},
		{Width: 1344, Height: 768, Name: "Midjourney wide"},
		{Width: 768, Height: 1344, Name: "Midjourney tall"},
	},
	AspectRatios: []AspectRatio{
		{Ratio: 1.0, Tolerance: 0.01, Name: "1:1 square"},
		{Ratio: 1.33, Tolerance: 0.05, Name: "4:3 ratio"},
		{Ratio: 1.77, Tolerance: 0.05, Name: "16:9 ratio"},
		{Ratio: 0.75, Tolerance: 0.05, Name: "3:4 portrait"},
	},
	HostingDomains: []string{
		"openai.com", "midjourney", "stability.ai", "dalle.com", "replicate.com",
	},
}

const (
	minTextLength       = 50
	textAIThreshold     = 55
	imageAIThreshold    = 50
	minimalMetadataKeys = 4
	lowBytesPerPixel    = 0.3
	highBytesPerPixel   = 4
	unusualSizeCeiling  = 5000000
	shortSentenceWords  = 8
	shortSentenceShare  = 0.3
	uniformVarianceMax  = 20
	variedVarianceMin   = 80
	highUniqueWordRatio = 0.75
)

const (
	reasonTextTooShort      = "text too shorts to analyze (minimum 50 characters)"
	reasonTextInconclusive  = "Analysis inconclusive - text appears neutral"
	reasonImageInconclusive = "No clear indicators of AI generation found - appears to be regular image"
	reasonURLInconclusive   = "Cannot determine AI generation from URL alone - upload file for detailed analysis"
	reasonImageFailedPrefix = "failed to analyze image: "
)
