package service

import (
	"context"
	"errors"

	"github.com/Trigerxx3/cyber/internal/flows"
	"github.com/Trigerxx3/cyber/internal/models"

	"go.uber.org/zap"
)

// ContentRequest is a content submission from the dashboard.
type ContentRequest struct {
	Platform models.Platform
	Channel  string
	Content  string
	Image    string
}

// ContentOutcome carries whatever the pipeline produced before it stopped.
// Save is the separate result of the persistence step.
type ContentOutcome struct {
	Success  bool                   `json:"success"`
	Message  string                 `json:"message"`
	Invalid  bool                   `json:"-"`
	Analysis *models.AnalysisResult `json:"analysis,omitempty"`
	Risk     *models.RiskAssessment `json:"risk,omitempty"`
	Report   *models.Report         `json:"report,omitempty"`
	Save     *models.ActionResult   `json:"save,omitempty"`
}

// UserRequest is a username submission from the dashboard.
type UserRequest struct {
	Username string
	Platform models.Platform
}

// UserOutcome is the result of an investigation and of saving it.
type UserOutcome struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Invalid bool                 `json:"-"`
	Profile *models.UserProfile  `json:"profile,omitempty"`
	Save    *models.ActionResult `json:"save,omitempty"`
}

// AnalyzeContent runs analysis, risk assessment and report generation in
// sequence, then saves the result. A flow failure stops the chain; a save
// failure does not hide the analysis.
func (a *Actions) AnalyzeContent(ctx context.Context, req ContentRequest) *ContentOutcome {
	out := &ContentOutcome{}

	analysis, err := a.flows.AnalyzeContent(ctx, flows.ContentInput{
		Platform: req.Platform,
		Content:  req.Content,
		Image:    req.Image,
	})
	if err != nil {
		return a.contentFailure(out, "analyze_content", err)
	}
	out.Analysis = analysis

	analysisJSON, err := marshalForPrompt(analysis)
	if err != nil {
		return a.contentFailure(out, "analyze_content", err)
	}

	risk, err := a.flows.AssessRisk(ctx, analysisJSON)
	if err != nil {
		return a.contentFailure(out, "assess_risk", err)
	}
	out.Risk = risk

	riskJSON, err := marshalForPrompt(risk)
	if err != nil {
		return a.contentFailure(out, "assess_risk", err)
	}

	report, err := a.flows.GenerateReport(ctx, analysisJSON, riskJSON)
	if err != nil {
		return a.contentFailure(out, "generate_report", err)
	}
	out.Report = report

	save := a.SaveAnalysis(ctx, AnalysisRecord{
		Platform: req.Platform,
		Channel:  req.Channel,
		Content:  req.Content,
		Analysis: analysis,
		Risk:     risk,
	})
	out.Save = &save

	out.Success = true
	out.Message = "Analysis complete."
	return out
}

// AssessRisk exposes the risk flow on its own.
func (a *Actions) AssessRisk(ctx context.Context, contentAnalysis string) *ContentOutcome {
	out := &ContentOutcome{}
	risk, err := a.flows.AssessRisk(ctx, contentAnalysis)
	if err != nil {
		return a.contentFailure(out, "assess_risk", err)
	}
	out.Risk = risk
	out.Success = true
	out.Message = "Risk assessed."
	return out
}

// GenerateReport exposes the report flow on its own.
func (a *Actions) GenerateReport(ctx context.Context, contentAnalysis, riskAssessment string) *ContentOutcome {
	out := &ContentOutcome{}
	report, err := a.flows.GenerateReport(ctx, contentAnalysis, riskAssessment)
	if err != nil {
		return a.contentFailure(out, "generate_report", err)
	}
	out.Report = report
	out.Success = true
	out.Message = "Report generated."
	return out
}

// InvestigateUser runs the OSINT flow and always saves its result, whatever the risk level.
func (a *Actions) InvestigateUser(ctx context.Context, req UserRequest) *UserOutcome {
	out := &UserOutcome{}

	profile, err := a.flows.IdentifyUser(ctx, flows.UserInput{
		Username: req.Username,
		Platform: req.Platform,
	})
	if err != nil {
		out.Message, out.Invalid = a.failureMessage("identify_user", err)
		return out
	}
	out.Profile = profile

	save := a.SaveSuspectedUser(ctx, UserRecord{
		Username: req.Username,
		Platform: req.Platform,
		Profile:  profile,
	})
	out.Save = &save

	out.Success = true
	out.Message = "Investigation complete."
	return out
}

func (a *Actions) contentFailure(out *ContentOutcome, action string, err error) *ContentOutcome {
	out.Message, out.Invalid = a.failureMessage(action, err)
	return out
}

// failureMessage logs err and picks what the user sees. Remote failures get a
// generic message; malformed input is echoed back.
func (a *Actions) failureMessage(action string, err error) (string, bool) {
	actionFailures.WithLabelValues(action).Inc()

	if errors.Is(err, flows.ErrInvalidInput) {
		a.logger.Warn("Rejected invalid input", zap.String("action", action), zap.Error(err))
		return err.Error(), true
	}

	a.logger.Error("Action failed", zap.String("action", action), zap.Error(err))
	return MsgUnexpected, false
}
