// Package groq is a langchaingo llms.Model backed by Groq's
// OpenAI-compatible chat completions API.
package groq

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/medgraph/rag"
)

var (
	ErrEmptyResponse = errors.New("groq: no response")
	ErrMissingAPIKey = errors.New("groq: missing API key")
)

// LLM is a client for Groq chat completions.
type LLM struct {
	client           *openai.Client
	model            string
	temperature      float32
	retry            *RetryConfig
	CallbacksHandler callbacks.Handler
}

var _ llms.Model = (*LLM)(nil)

// New returns a Groq LLM.
//
// Example:
//
//	llm, err := groq.New(groq.WithAPIKey("gsk_..."))
//	gen := rag.NewLLMGenerator(llm)
func New(opts ...Option) (*LLM, error) {
	o := &options{
		apiKey:  getEnvOrDefault("GROQ_API_KEY", ""),
		model:   DefaultModel,
		baseURL: DefaultBaseURL,
		retry:   DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.apiKey == "" {
		return nil, fmt.Errorf(`%w
You can pass auth info by using groq.New(groq.WithAPIKey("{API Key}"))
or
export GROQ_API_KEY={API Key}`, ErrMissingAPIKey)
	}

	cfg := openai.DefaultConfig(o.apiKey)
	cfg.BaseURL = strings.TrimRight(o.baseURL, "/")
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}

	return &LLM{
		client:           openai.NewClientWithConfig(cfg),
		model:            o.model,
		temperature:      o.temperature,
		retry:            o.retry,
		CallbacksHandler: o.callbacksHandler,
	}, nil
}

// Call generates a response from the LLM for the given prompt.
func (g *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, g, prompt, options...)
}

// GenerateContent implements the Model interface.
func (g *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if g.CallbacksHandler != nil {
		g.CallbacksHandler.HandleLLMGenerateContentStart(ctx, messages)
	}

	opts := &llms.CallOptions{}
	for _, opt := range options {
		opt(opts)
	}

	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    toChatMessages(messages),
		Temperature: g.temperature,
		MaxTokens:   opts.MaxTokens,
		TopP:        float32(opts.TopP),
		Stop:        opts.StopWords,
	}
	if opts.Model != "" {
		req.Model = opts.Model
	}
	if opts.Temperature != 0 {
		req.Temperature = float32(opts.Temperature)
	}
	// A zero temperature is dropped by omitempty and the server default applies.
	if req.Temperature == 0 {
		req.Temperature = math.SmallestNonzeroFloat32
	}

	var result openai.ChatCompletionResponse
	err := g.retry.do(ctx, func() error {
		var err error
		result, err = g.client.CreateChatCompletion(ctx, req)
		return err
	})
	if err != nil {
		err = fmt.Errorf("%w: groq: %w", rag.ErrModel, err)
		g.handleError(ctx, err)
		return nil, err
	}
	if len(result.Choices) == 0 {
		err = fmt.Errorf("%w: %w", rag.ErrModel, ErrEmptyResponse)
		g.handleError(ctx, err)
		return nil, err
	}

	resp := &llms.ContentResponse{}
	for _, c := range result.Choices {
		resp.Choices = append(resp.Choices, &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
			GenerationInfo: map[string]any{
				"prompt_tokens":     result.Usage.PromptTokens,
				"completion_tokens": result.Usage.CompletionTokens,
				"total_tokens":      result.Usage.TotalTokens,
			},
		})
	}

	if g.CallbacksHandler != nil {
		g.CallbacksHandler.HandleLLMGenerateContentEnd(ctx, resp)
	}
	return resp, nil
}

func (g *LLM) handleError(ctx context.Context, err error) {
	if g.CallbacksHandler != nil {
		g.CallbacksHandler.HandleLLMError(ctx, err)
	}
}

func toChatMessages(messages []llms.MessageContent) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		var role string
		switch msg.Role {
		case llms.ChatMessageTypeSystem:
			role = openai.ChatMessageRoleSystem
		case llms.ChatMessageTypeAI:
			role = openai.ChatMessageRoleAssistant
		default:
			role = openai.ChatMessageRoleUser
		}

		var content strings.Builder
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				content.WriteString(text.Text)
			}
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: content.String()})
	}
	return out
}
