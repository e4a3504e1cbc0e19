// Package openaicompat talks to any chat-completions API that speaks the
// OpenAI wire format: OpenAI itself, Groq and OpenRouter.
package openaicompat

import (
	"context"
	"fmt"
	"time"

	"github.com/Trigerxx3/cyber/internal/llm"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Known base URLs and default models per flavour.
const (
	GroqBaseURL       = "https://api.groq.com/openai/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"

	defaultOpenAIModel     = openai.GPT4oMini
	defaultGroqModel       = "llama-3.3-70b-versatile"
	defaultOpenRouterModel = "meta-llama/llama-3.2-3b-instruct:free"
)

// Client wraps a go-openai client bound to one model.
type Client struct {
	client     *openai.Client
	provider   string
	baseURL    string
	modelName  string
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

// Config for an OpenAI-compatible client.
type Config struct {
	Provider   llm.ProviderType // openai, groq or openrouter
	APIKey     string
	BaseURL    string
	ModelName  string
	MaxRetries int
	RetryDelay time.Duration
}

// NewClient creates a new OpenAI-compatible client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", cfg.Provider)
	}

	if cfg.Provider == "" {
		cfg.Provider = llm.ProviderOpenAI
	}

	switch cfg.Provider {
	case llm.ProviderGroq:
		if cfg.BaseURL == "" {
			cfg.BaseURL = GroqBaseURL
		}
		if cfg.ModelName == "" {
			cfg.ModelName = defaultGroqModel
		}
	case llm.ProviderOpenRouter:
		if cfg.BaseURL == "" {
			cfg.BaseURL = OpenRouterBaseURL
		}
		if cfg.ModelName == "" {
			cfg.ModelName = defaultOpenRouterModel
		}
	default:
		if cfg.ModelName == "" {
			cfg.ModelName = defaultOpenAIModel
		}
	}

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}

	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger.Info("OpenAI-compatible client initialized",
		zap.String("provider", string(cfg.Provider)),
		zap.String("model", cfg.ModelName),
		zap.String("base_url", clientCfg.BaseURL),
		zap.Int("max_retries", cfg.MaxRetries))

	return &Client{
		client:     openai.NewClientWithConfig(clientCfg),
		provider:   string(cfg.Provider),
		baseURL:    clientCfg.BaseURL,
		modelName:  cfg.ModelName,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Close is a no-op; the underlying HTTP client needs no teardown.
func (c *Client) Close() error {
	return nil
}

// buildRequest turns a prompt into a chat completion request.
func (c *Client) buildRequest(req llm.Request) openai.ChatCompletionRequest {
	var messages []openai.ChatCompletionMessage

	if req.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if req.Image == nil {
		user.Content = req.Prompt
	} else {
		user.MultiContent = []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: req.Prompt,
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    req.Image.DataURI(),
					Detail: openai.ImageURLDetailAuto,
				},
			},
		}
	}
	messages = append(messages, user)

	chatReq := openai.ChatCompletionRequest{
		Model:       c.modelName,
		Messages:    messages,
		Temperature: 0.3,
	}

	if req.Schema != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	return chatReq
}

// Generate runs one prompt and returns the model text.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	chatReq := c.buildRequest(req)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying chat completion",
				zap.String("provider", c.provider),
				zap.String("prompt", req.Name),
				zap.Int("attempt", attempt+1))

			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		resp, err := c.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			lastErr = fmt.Errorf("%s API error: %w", c.provider, err)
			c.logger.Error("Chat completion failed",
				zap.String("provider", c.provider),
				zap.String("prompt", req.Name),
				zap.Error(err),
				zap.Int("attempt", attempt+1))
			continue
		}

		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			lastErr = llm.ErrEmptyResponse
			c.logger.Error("Empty chat completion",
				zap.String("provider", c.provider),
				zap.String("prompt", req.Name),
				zap.Int("attempt", attempt+1))
			continue
		}

		text := resp.Choices[0].Message.Content
		if req.Schema != nil {
			text = llm.CleanJSON(text)
		}

		c.logger.Debug("Chat completion succeeded",
			zap.String("provider", c.provider),
			zap.String("prompt", req.Name),
			zap.Int("total_tokens", resp.Usage.TotalTokens))

		return text, nil
	}

	if c.maxRetries == 1 {
		return "", lastErr
	}
	return "", fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

// GetModelInfo returns model information
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":    c.provider,
		"model":       c.modelName,
		"base_url":    c.baseURL,
		"max_retries": c.maxRetries,
		"retry_delay": c.retryDelay.String(),
	}
}
