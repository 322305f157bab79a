package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/smallnest/medgraph/rag"
	"github.com/tmc/langchaingo/llms"
)

// RecognitionPrompt asks a language model for medical named entities.
const RecognitionPrompt = `Extract the medical named entities from the text below.
Label each entity with one of: disease, symptom, drug, anatomy.

Return ONLY a JSON object of the form:
{"entities": [{"text": "...", "label": "..."}]}

Text:
%s`

var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// LLMRecognizer implements rag.Recognizer with a langchaingo model.
type LLMRecognizer struct {
	model  llms.Model
	prompt string
}

var _ rag.Recognizer = (*LLMRecognizer)(nil)

// NewLLMRecognizer creates a recognizer using RecognitionPrompt.
func NewLLMRecognizer(model llms.Model) *LLMRecognizer {
	return &LLMRecognizer{model: model, prompt: RecognitionPrompt}
}

// Recognize asks the model for entities and parses its JSON answer.
func (r *LLMRecognizer) Recognize(ctx context.Context, text string) ([]rag.Recognition, error) {
	if r.model == nil {
		return nil, rag.ErrRecognizerUnavailable
	}
	raw, err := llms.GenerateFromSinglePrompt(ctx, r.model, fmt.Sprintf(r.prompt, text), llms.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", rag.ErrModel, err)
	}

	body, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Entities []rag.Recognition `json:"entities"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, fmt.Errorf("parse recognizer output: %w", err)
	}
	return parsed.Entities, nil
}

// extractJSON pulls the JSON object out of a model reply that may wrap it
// in a code fence or prose.
func extractJSON(raw string) (string, error) {
	if m := codeBlockRe.FindStringSubmatch(raw); len(m) > 1 {
		raw = m[1]
	}
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") {
		return raw, nil
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1], nil
	}
	return "", fmt.Errorf("no JSON object found in recognizer output")
}
