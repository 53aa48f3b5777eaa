package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vlasenko/incident-analyst/internal/core/domain"
	"github.com/vlasenko/incident-analyst/internal/infrastructure/resilience"
)

// Client talks to an OpenAI-style chat-completions endpoint. Every
// pipeline call is a single attempt; the shared breaker only protects
// against hammering a provider that is already down.
type Client struct {
	cfg        Config
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) *Client {
	cfg = cfg.withDefaults()
	if executor == nil {
		executor = resilience.NewExecutor(resilience.SingleAttempt())
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		executor:   executor,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete performs one chat-completions call and returns the trimmed
// content of the first choice. Empty content is the caller's concern.
func (c *Client) complete(ctx context.Context, operation string, messages []chatMessage, temperature float32, maxTokens int) (string, error) {
	request := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	var response chatResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/chat/completions", request, &response, operation)
	}
	start := time.Now()
	err := c.executor.Execute(ctx, "openai."+operation, call, nil)
	if c.cfg.ObserveDuration != nil {
		c.cfg.ObserveDuration(operation, time.Since(start))
	}
	if err != nil {
		return "", wrapProviderError(operation, err)
	}

	if len(response.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func wrapProviderError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrProvider) {
		return err
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrProvider, operation, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("openai %s: %w", operation, err)
	}
	return domain.WrapError(domain.ErrProvider, operation, err)
}
