package handler

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/Trigerxx3/cyber/internal/models"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))

type indexPage struct {
	Platforms   []models.Platform
	Persistence bool
	Store       string
	Model       string
}

// Index serves the single-page dashboard
func (h *Handler) Index(c *gin.Context) {
	model := "unknown"
	if m, ok := h.models.ModelInfo()["model"].(string); ok {
		model = m
	}

	c.HTML(http.StatusOK, "index.html", indexPage{
		Platforms:   models.Platforms,
		Persistence: h.actions.PersistenceEnabled(),
		Store:       h.actions.StoreName(),
		Model:       model,
	})
}
