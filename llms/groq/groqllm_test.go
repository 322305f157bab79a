package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/medgraph/rag"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, status int, body string, got *capturedRequest, auth *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const okBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "model": "llama3-8b-8192",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "Aspirin reduces fever."}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 10, "completion_tokens": 4, "total_tokens": 14}
}`

func TestNew(t *testing.T) {
	t.Run("Missing key", func(t *testing.T) {
		t.Setenv("GROQ_API_KEY", "")
		_, err := New()
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("Key from environment", func(t *testing.T) {
		t.Setenv("GROQ_API_KEY", "env-key")
		llm, err := New()
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, llm.model)
		assert.Zero(t, llm.temperature)
	})

	t.Run("Options", func(t *testing.T) {
		llm, err := New(WithAPIKey("k"), WithModel("mixtral-8x7b-32768"), WithTemperature(0.5))
		require.NoError(t, err)
		assert.Equal(t, "mixtral-8x7b-32768", llm.model)
		assert.Equal(t, float32(0.5), llm.temperature)
	})
}

func TestGenerateContent(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		var got capturedRequest
		var auth string
		srv := newServer(t, http.StatusOK, okBody, &got, &auth)

		llm, err := New(WithAPIKey("secret"), WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()))
		require.NoError(t, err)

		resp, err := llm.GenerateContent(ctx, []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, "You are a medical assistant."),
			llms.TextParts(llms.ChatMessageTypeHuman, "What reduces fever?"),
		})
		require.NoError(t, err)
		require.Len(t, resp.Choices, 1)
		assert.Equal(t, "Aspirin reduces fever.", resp.Choices[0].Content)
		assert.Equal(t, "stop", resp.Choices[0].StopReason)
		assert.Equal(t, 14, resp.Choices[0].GenerationInfo["total_tokens"])

		assert.Equal(t, "Bearer secret", auth)
		assert.Equal(t, DefaultModel, got.Model)
		assert.Less(t, got.Temperature, 1e-6)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "system", got.Messages[0].Role)
		assert.Equal(t, "user", got.Messages[1].Role)
		assert.Equal(t, "What reduces fever?", got.Messages[1].Content)
	})

	t.Run("Call option overrides", func(t *testing.T) {
		var got capturedRequest
		srv := newServer(t, http.StatusOK, okBody, &got, nil)
		llm, err := New(WithAPIKey("k"), WithBaseURL(srv.URL))
		require.NoError(t, err)

		out, err := llm.Call(ctx, "hi", llms.WithModel("other"), llms.WithTemperature(0.7))
		require.NoError(t, err)
		assert.Equal(t, "Aspirin reduces fever.", out)
		assert.Equal(t, "other", got.Model)
		assert.InDelta(t, 0.7, got.Temperature, 1e-6)
	})

	t.Run("Transport error wraps ErrModel", func(t *testing.T) {
		srv := newServer(t, http.StatusTooManyRequests,
			`{"error": {"message": "rate limit reached", "type": "tokens"}}`, nil, nil)
		llm, err := New(WithAPIKey("k"), WithBaseURL(srv.URL), WithRetry(nil))
		require.NoError(t, err)

		_, err = llm.Call(ctx, "hi")
		assert.ErrorIs(t, err, rag.ErrModel)
		assert.ErrorContains(t, err, "rate limit reached")
	})

	t.Run("Retries rate limits", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error": {"message": "slow down"}}`))
				return
			}
			_, _ = w.Write([]byte(okBody))
		}))
		t.Cleanup(srv.Close)

		llm, err := New(WithAPIKey("k"), WithBaseURL(srv.URL), WithRetry(&RetryConfig{
			MaxAttempts:   3,
			InitialDelay:  time.Millisecond,
			MaxDelay:      time.Millisecond,
			BackoffFactor: 2,
			Retryable:     IsRetryable,
		}))
		require.NoError(t, err)

		out, err := llm.Call(ctx, "hi")
		require.NoError(t, err)
		assert.Equal(t, "Aspirin reduces fever.", out)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("Client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
		}))
		t.Cleanup(srv.Close)

		llm, err := New(WithAPIKey("k"), WithBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = llm.Call(ctx, "hi")
		assert.ErrorIs(t, err, rag.ErrModel)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("No choices", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"id": "x", "choices": []}`, nil, nil)
		llm, err := New(WithAPIKey("k"), WithBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = llm.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "hi")})
		assert.ErrorIs(t, err, ErrEmptyResponse)
		assert.ErrorIs(t, err, rag.ErrModel)
	})

	t.Run("Through the generator adapter", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, okBody, nil, nil)
		llm, err := New(WithAPIKey("k"), WithBaseURL(srv.URL))
		require.NoError(t, err)

		answer, err := rag.NewLLMGenerator(llm).Generate(ctx, "What reduces fever?")
		require.NoError(t, err)
		assert.Equal(t, "Aspirin reduces fever.", answer)
	})
}
