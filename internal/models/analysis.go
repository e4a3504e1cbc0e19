package models

import "time"

// Platform is the social network a piece of content or a username comes from.
type Platform string

const (
	PlatformTelegram  Platform = "Telegram"
	PlatformWhatsApp  Platform = "WhatsApp"
	PlatformInstagram Platform = "Instagram"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{PlatformTelegram, PlatformWhatsApp, PlatformInstagram}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// RiskLevel is the qualitative risk attached to content or a user.
// Content analyses use Low/Medium/High, user investigations add Critical.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// AnalysisResult is the structured output of the content analysis flow.
// Platform and Content echo the flow input; the rest comes from the model.
type AnalysisResult struct {
	Platform        Platform  `json:"platform"`
	Content         string    `json:"content"`
	Indicators      []string  `json:"indicators" validate:"required"`
	RiskLevel       RiskLevel `json:"riskLevel" validate:"required,oneof=Low Medium High"`
	Reasoning       string    `json:"reasoning" validate:"required"`
	MatchedKeywords []string  `json:"matchedKeywords" validate:"required"`
	MatchedEmojis   []string  `json:"matchedEmojis" validate:"required"`
}

// RiskAssessment is the output of the risk assessment flow.
type RiskAssessment struct {
	RiskScore  float64  `json:"riskScore" validate:"gte=0,lte=100"`
	RiskLevel  string   `json:"riskLevel" validate:"required"`
	Indicators []string `json:"indicators" validate:"required"`
}

// Report is the free-text summary produced by the report flow.
type Report struct {
	Report string `json:"report" validate:"required"`
}

// FlaggedPost is a persisted content analysis whose risk is above Low.
type FlaggedPost struct {
	ID               string       `json:"id"`
	Platform         string       `json:"platform"`
	Channel          *string      `json:"channel"`
	Text             string       `json:"text"`
	DetectedKeywords []string     `json:"detected_keywords"`
	MatchedEmojis    []string     `json:"matched_emojis"`
	RiskScore        float64      `json:"riskScore"`
	RiskLevel        string       `json:"riskLevel"`
	Status           string       `json:"status"`
	Timestamp        time.Time    `json:"timestamp"`
	FullAnalysis     FullAnalysis `json:"full_analysis"`
}

// FullAnalysis keeps both flow outputs alongside a flagged post.
type FullAnalysis struct {
	Analysis AnalysisResult `json:"analysis"`
	Risk     RiskAssessment `json:"risk"`
}

// StatusFlagged is the only status this service assigns to a post.
const StatusFlagged = "flagged"
