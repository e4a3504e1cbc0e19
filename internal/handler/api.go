package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/Trigerxx3/cyber/internal/models"
	"github.com/Trigerxx3/cyber/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func init() {
	// report JSON field names in validation errors
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// ModelInfoer describes the generator behind the flows.
type ModelInfoer interface {
	ModelInfo() map[string]interface{}
}

// Handler handles HTTP requests
type Handler struct {
	actions *service.Actions
	models  ModelInfoer
	logger  *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(actions *service.Actions, models ModelInfoer, logger *zap.Logger) *Handler {
	return &Handler{
		actions: actions,
		models:  models,
		logger:  logger,
	}
}

// RegisterRoutes registers all routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(pageTemplates)
	r.GET("/", h.Index)

	api := r.Group("/api/v1")
	{
		// Analysis pipelines
		api.POST("/content/analyze", h.AnalyzeContent)
		api.POST("/users/investigate", h.InvestigateUser)

		// Direct flow access
		api.POST("/flows/risk", h.AssessRisk)
		api.POST("/flows/report", h.GenerateReport)

		// Aggregated view
		api.GET("/dashboard", h.GetDashboard)
		api.POST("/seed", h.SeedDatabase)
	}

	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

type analyzeContentRequest struct {
	Platform string `json:"platform" binding:"required,oneof=Telegram WhatsApp Instagram"`
	Channel  string `json:"channel" binding:"required,min=3"`
	Content  string `json:"content" binding:"required,min=20"`
	// Image is an optional data URI
	Image string `json:"image"`
}

type investigateUserRequest struct {
	Platform string `json:"platform" binding:"required,oneof=Telegram WhatsApp Instagram"`
	Username string `json:"username" binding:"required,min=3"`
}

type assessRiskRequest struct {
	ContentAnalysis string `json:"contentAnalysis" binding:"required"`
}

type generateReportRequest struct {
	ContentAnalysis string `json:"contentAnalysis" binding:"required"`
	RiskAssessment  string `json:"riskAssessment" binding:"required"`
}

// AnalyzeContent runs the analysis, risk and report chain and saves the result
func (h *Handler) AnalyzeContent(c *gin.Context) {
	var req analyzeContentRequest
	if !h.bind(c, &req) {
		return
	}

	out := h.actions.AnalyzeContent(c.Request.Context(), service.ContentRequest{
		Platform: models.Platform(req.Platform),
		Channel:  req.Channel,
		Content:  req.Content,
		Image:    req.Image,
	})
	c.JSON(outcomeStatus(out.Success, out.Invalid), out)
}

// InvestigateUser runs the OSINT flow and saves the profile
func (h *Handler) InvestigateUser(c *gin.Context) {
	var req investigateUserRequest
	if !h.bind(c, &req) {
		return
	}

	out := h.actions.InvestigateUser(c.Request.Context(), service.UserRequest{
		Username: req.Username,
		Platform: models.Platform(req.Platform),
	})
	c.JSON(outcomeStatus(out.Success, out.Invalid), out)
}

// AssessRisk scores a serialized content analysis
func (h *Handler) AssessRisk(c *gin.Context) {
	var req assessRiskRequest
	if !h.bind(c, &req) {
		return
	}

	out := h.actions.AssessRisk(c.Request.Context(), req.ContentAnalysis)
	c.JSON(outcomeStatus(out.Success, out.Invalid), out)
}

// GenerateReport regenerates a report from a serialized analysis and risk assessment
func (h *Handler) GenerateReport(c *gin.Context) {
	var req generateReportRequest
	if !h.bind(c, &req) {
		return
	}

	out := h.actions.GenerateReport(c.Request.Context(), req.ContentAnalysis, req.RiskAssessment)
	c.JSON(outcomeStatus(out.Success, out.Invalid), out)
}

// GetDashboard returns recent posts, recent users and stats
func (h *Handler) GetDashboard(c *gin.Context) {
	data, res := h.actions.GetDashboardData(c.Request.Context())
	if !res.Success {
		c.JSON(http.StatusBadGateway, res)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": res.Message,
		"data":    data,
	})
}

// SeedDatabase writes the sample data set
func (h *Handler) SeedDatabase(c *gin.Context) {
	if !h.actions.PersistenceEnabled() {
		c.JSON(http.StatusServiceUnavailable, models.ActionResult{Message: service.MsgSeedDisabled})
		return
	}

	res := h.actions.SeedDatabase(c.Request.Context())
	c.JSON(outcomeStatus(res.Success, false), res)
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	persistence := "disabled"
	if h.actions.PersistenceEnabled() {
		persistence = "enabled"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"service":     "cyber",
		"version":     "1.0.0",
		"persistence": persistence,
		"store":       h.actions.StoreName(),
		"model":       h.models.ModelInfo(),
	})
}

// bind decodes and validates the JSON body, answering 400 on failure.
func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Debug("Rejected request",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid input.",
			"errors":  fieldErrors(err),
		})
		return false
	}
	return true
}

func outcomeStatus(success, invalid bool) int {
	switch {
	case success:
		return http.StatusOK
	case invalid:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// fieldErrors turns binding errors into form messages keyed by JSON field.
func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": "Request body must be valid JSON."}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		out[field] = fieldMessage(field, fe)
	}
	return out
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch {
	case field == "platform":
		return "Please select a platform."
	case field == "channel" && fe.Tag() == "min":
		return "Channel must be at least 3 characters."
	case field == "content" && fe.Tag() == "min":
		return "Content must be at least 20 characters."
	case field == "username" && fe.Tag() == "min":
		return "Username must be at least 3 characters."
	case fe.Tag() == "required":
		return "This field is required."
	default:
		return "Invalid value."
	}
}
