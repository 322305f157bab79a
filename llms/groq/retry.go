package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/smallnest/medgraph/log"
)

// RetryConfig configures retries of failed completion requests.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// Retryable selects the errors worth another attempt. Nil retries all.
	Retryable func(error) bool
}

// DefaultRetryConfig retries rate limits and server errors three times.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		Retryable:     IsRetryable,
	}
}

// IsRetryable reports whether err is a 429 or a 5xx response.
func IsRetryable(err error) bool {
	code := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		code = reqErr.HTTPStatusCode
	}
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (c *RetryConfig) do(ctx context.Context, fn func() error) error {
	if c == nil {
		return fn()
	}
	attempts := max(c.MaxAttempts, 1)
	delay := c.InitialDelay

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt >= attempts {
			return fmt.Errorf("max retries (%d) exceeded: %w", attempts, err)
		}
		if c.Retryable != nil && !c.Retryable(err) {
			return err
		}

		log.Debug("groq request failed (attempt %d/%d), retrying in %v: %v", attempt, attempts, delay, err)
		select {
		case <-time.After(delay):
			delay = min(time.Duration(float64(delay)*c.BackoffFactor), c.MaxDelay)
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled during backoff: %w", ctx.Err())
		}
	}
}
