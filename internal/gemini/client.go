package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/Trigerxx3/cyber/internal/llm"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.0-flash"

// Client wraps the Gemini API client
type Client struct {
	client     *genai.Client
	logger     *zap.Logger
	modelName  string
	maxRetries int
	retryDelay time.Duration
}

// Config for Gemini client
type Config struct {
	APIKey     string
	ModelName  string
	MaxRetries int // attempts per request, 1 means no retry
	RetryDelay time.Duration
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	if cfg.ModelName == "" {
		cfg.ModelName = DefaultModel
	}

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}

	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.Info("Gemini client initialized",
		zap.String("model", cfg.ModelName),
		zap.Int("max_retries", cfg.MaxRetries))

	return &Client{
		client:     client,
		logger:     logger,
		modelName:  cfg.ModelName,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	return c.client.Close()
}

// model builds a per-request model so each flow can carry its own schema.
func (c *Client) model(req llm.Request) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.modelName)

	if req.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemInstruction)},
		}
	}

	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.3),
		TopP:        genai.Ptr[float32](0.9),
		TopK:        genai.Ptr[int32](40),
	}

	if req.Schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = toGenaiSchema(req.Schema)
	}

	return model
}

// Generate runs one prompt and returns the model text.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	model := c.model(req)

	parts := []genai.Part{genai.Text(req.Prompt)}
	if req.Image != nil {
		parts = append(parts, genai.Blob{MIMEType: req.Image.MIMEType, Data: req.Image.Data})
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying Gemini request",
				zap.String("prompt", req.Name),
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries))

			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		resp, err := model.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = fmt.Errorf("gemini API error: %w", err)
			c.logger.Error("Gemini API error",
				zap.String("prompt", req.Name),
				zap.Error(err),
				zap.Int("attempt", attempt+1))
			continue
		}

		text := responseText(resp)
		if text == "" {
			lastErr = llm.ErrEmptyResponse
			c.logger.Error("Empty response from Gemini",
				zap.String("prompt", req.Name),
				zap.Int("attempt", attempt+1))
			continue
		}

		if req.Schema != nil {
			text = llm.CleanJSON(text)
		}

		c.logger.Debug("Gemini request succeeded",
			zap.String("prompt", req.Name),
			zap.Int("attempt", attempt+1))

		return text, nil
	}

	if c.maxRetries == 1 {
		return "", lastErr
	}
	return "", fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	return out
}

// GetModelInfo returns model information
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":    "gemini",
		"model":       c.modelName,
		"max_retries": c.maxRetries,
		"retry_delay": c.retryDelay.String(),
	}
}
