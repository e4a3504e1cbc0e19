// Package flows wraps each remote prompt call in a typed, validated function.
// Flows never compute risk themselves and never retry.
package flows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/template"
	"time"

	"github.com/Trigerxx3/cyber/internal/llm"
	"github.com/Trigerxx3/cyber/internal/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	FlowAnalyzeContent = "analyzeSocialMediaContent"
	FlowAssessRisk     = "assessDrugTraffickingRisk"
	FlowGenerateReport = "generateReportFromAnalysis"
	FlowIdentifyUser   = "identifySuspectedUser"
)

var (
	// ErrAnalysisFailed wraps every transport, decode or schema failure of a flow.
	ErrAnalysisFailed = errors.New("analysis failed")
	// ErrInvalidInput is returned before any remote call when the input is malformed.
	ErrInvalidInput = errors.New("invalid flow input")
)

// ContentInput is the input of the content analysis flow.
type ContentInput struct {
	Platform models.Platform `json:"platform" validate:"required,oneof=Telegram WhatsApp Instagram"`
	Content  string          `json:"content" validate:"required"`
	// Image is an optional data URI: data:<mimetype>;base64,<encoded_data>.
	Image string `json:"image,omitempty"`
}

// UserInput is the input of the user identification flow.
type UserInput struct {
	Username string          `json:"username" validate:"required"`
	Platform models.Platform `json:"platform" validate:"required,oneof=Telegram WhatsApp Instagram"`
}

// riskWire catches a missing riskScore, which a plain float64 would read as 0.
type riskWire struct {
	RiskScore  *float64 `json:"riskScore" validate:"required,gte=0,lte=100"`
	RiskLevel  string   `json:"riskLevel" validate:"required"`
	Indicators []string `json:"indicators" validate:"required"`
}

// Runner executes flows against a structured text generator.
type Runner struct {
	gen      llm.Generator
	validate *validator.Validate
	logger   *zap.Logger
}

// NewRunner creates a flow runner.
func NewRunner(gen llm.Generator, logger *zap.Logger) *Runner {
	return &Runner{
		gen:      gen,
		validate: validator.New(),
		logger:   logger,
	}
}

// ModelInfo describes the generator behind the flows.
func (r *Runner) ModelInfo() map[string]interface{} {
	return r.gen.GetModelInfo()
}

// AnalyzeContent looks for drug trafficking indicators in a post.
func (r *Runner) AnalyzeContent(ctx context.Context, in ContentInput) (*models.AnalysisResult, error) {
	if err := r.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var image *llm.Image
	if in.Image != "" {
		img, err := llm.ParseDataURI(in.Image)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		image = img
	}

	var out models.AnalysisResult
	err := r.call(ctx, FlowAnalyzeContent, analyzeContentTemplate, map[string]interface{}{
		"Platform": in.Platform,
		"Content":  in.Content,
		"HasImage": image != nil,
	}, image, analysisSchema, &out)
	if err != nil {
		return nil, err
	}

	out.Platform = in.Platform
	out.Content = in.Content
	return &out, nil
}

// AssessRisk scores a serialized content analysis.
func (r *Runner) AssessRisk(ctx context.Context, contentAnalysis string) (*models.RiskAssessment, error) {
	if contentAnalysis == "" {
		return nil, fmt.Errorf("%w: content analysis is required", ErrInvalidInput)
	}

	var wire riskWire
	err := r.call(ctx, FlowAssessRisk, assessRiskTemplate, map[string]interface{}{
		"ContentAnalysis": contentAnalysis,
	}, nil, riskSchema, &wire)
	if err != nil {
		return nil, err
	}

	return &models.RiskAssessment{
		RiskScore:  *wire.RiskScore,
		RiskLevel:  wire.RiskLevel,
		Indicators: wire.Indicators,
	}, nil
}

// GenerateReport writes a summary report from a serialized analysis and risk assessment.
func (r *Runner) GenerateReport(ctx context.Context, contentAnalysis, riskAssessment string) (*models.Report, error) {
	if contentAnalysis == "" || riskAssessment == "" {
		return nil, fmt.Errorf("%w: content analysis and risk assessment are required", ErrInvalidInput)
	}

	var out models.Report
	err := r.call(ctx, FlowGenerateReport, generateReportTemplate, map[string]interface{}{
		"ContentAnalysis": contentAnalysis,
		"RiskAssessment":  riskAssessment,
	}, nil, reportSchema, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// IdentifyUser runs the simulated OSINT lookup for a username.
func (r *Runner) IdentifyUser(ctx context.Context, in UserInput) (*models.UserProfile, error) {
	if err := r.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var out models.UserProfile
	err := r.call(ctx, FlowIdentifyUser, identifyUserTemplate, map[string]interface{}{
		"Username": in.Username,
		"Platform": in.Platform,
	}, nil, userSchema, &out)
	if err != nil {
		return nil, err
	}

	if out.Email != nil && *out.Email == "" {
		out.Email = nil
	}
	out.Username = in.Username
	out.Platform = in.Platform
	return &out, nil
}

// call renders the prompt, sends it and decodes and validates the JSON reply into out.
func (r *Runner) call(ctx context.Context, name string, tmpl *template.Template, data interface{}, image *llm.Image, schema *llm.Schema, out interface{}) error {
	start := time.Now()
	status := "error"
	defer func() {
		flowRequestsTotal.WithLabelValues(name, status).Inc()
		flowLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	prompt, err := render(tmpl, data)
	if err != nil {
		return fmt.Errorf("%w: %s: render prompt: %w", ErrAnalysisFailed, name, err)
	}

	text, err := r.gen.Generate(ctx, llm.Request{
		Name:              name,
		SystemInstruction: systemInstruction,
		Prompt:            prompt,
		Image:             image,
		Schema:            schema,
	})
	if err != nil {
		r.logger.Error("Flow call failed", zap.String("flow", name), zap.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrAnalysisFailed, name, err)
	}

	if err := json.Unmarshal([]byte(llm.CleanJSON(text)), out); err != nil {
		r.logger.Error("Failed to parse flow response",
			zap.String("flow", name),
			zap.String("response", text),
			zap.Error(err))
		return fmt.Errorf("%w: %s: parse response: %w", ErrAnalysisFailed, name, err)
	}

	if err := r.validate.Struct(out); err != nil {
		r.logger.Error("Flow response failed schema validation",
			zap.String("flow", name),
			zap.String("response", text),
			zap.Error(err))
		return fmt.Errorf("%w: %s: invalid response: %w", ErrAnalysisFailed, name, err)
	}

	status = "ok"
	r.logger.Debug("Flow completed",
		zap.String("flow", name),
		zap.Duration("latency", time.Since(start)))
	return nil
}
