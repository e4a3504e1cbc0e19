package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Trigerxx3/cyber/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturedRequest struct {
	Model          string `json:"model"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []json.RawMessage `json:"messages"`
}

func newTestServer(t *testing.T, status int, content string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limit reached","type":"rate_limit"}}`))
			return
		}
		resp := map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]interface{}{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		Provider:  llm.ProviderGroq,
		APIKey:    "test-key",
		BaseURL:   baseURL,
		ModelName: "test-model",
	}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(Config{Provider: llm.ProviderOpenRouter}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(Config{Provider: llm.ProviderGroq, APIKey: "k"}, zap.NewNop())
	require.NoError(t, err)

	info := c.GetModelInfo()
	assert.Equal(t, "groq", info["provider"])
	assert.Equal(t, defaultGroqModel, info["model"])
	assert.Equal(t, GroqBaseURL, info["base_url"])
	assert.Equal(t, 1, info["max_retries"])
}

func TestGenerate_JSONWithImage(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK, "```json\n{\"report\":\"ok\"}\n```", &captured)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	out, err := c.Generate(context.Background(), llm.Request{
		Name:              "test",
		SystemInstruction: "be brief",
		Prompt:            "describe",
		Image:             &llm.Image{MIMEType: "image/png", Data: []byte("png")},
		Schema:            &llm.Schema{Type: llm.TypeObject},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"report":"ok"}`, out)

	assert.Equal(t, "test-model", captured.Model)
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
	require.Len(t, captured.Messages, 2)
	assert.Contains(t, string(captured.Messages[1]), "data:image/png;base64,")
}

func TestGenerate_PlainText(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK, "hello", &captured)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	out, err := c.Generate(context.Background(), llm.Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Nil(t, captured.ResponseFormat)
	assert.Len(t, captured.Messages, 1)
}

func TestGenerate_EmptyResponse(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, "", nil)
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Generate(context.Background(), llm.Request{Prompt: "hi"})
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestGenerate_APIError(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests, "", nil)
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Generate(context.Background(), llm.Request{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "groq API error")
}
