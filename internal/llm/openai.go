package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	dcerrors "github.com/valpere/DressCodex/internal/errors"
	"github.com/valpere/DressCodex/internal/utils"
)

// Compile-time interface satisfaction check
var _ Provider = (*OpenAIProvider)(nil)

// OpenAIConfig configures an OpenAI-compatible chat completions backend.
type OpenAIConfig struct {
	BaseURL           string
	APIKey            string
	Model             string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxTokens         int
	Breaker           dcerrors.CircuitBreakerConfig
	// Retry applies to 429 and 5xx replies. The zero value sends each
	// request once.
	Retry dcerrors.RetryConfig
}

// OpenAIProvider talks to /v1/chat/completions. Calls are rate limited,
// retried on transient replies and guarded by a circuit breaker.
type OpenAIProvider struct {
	config  OpenAIConfig
	client  *http.Client
	limiter *rate.Limiter
	breaker *dcerrors.CircuitBreaker
	retrier *dcerrors.Service
	logger  utils.Logger
}

// NewOpenAIProvider creates a provider. Zero values get defaults.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &OpenAIProvider{
		config:  cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		breaker: dcerrors.NewCircuitBreaker("llm:openai", cfg.Breaker),
		retrier: dcerrors.NewService().WithRetryConfig(cfg.Retry),
		logger:  utils.NewComponentLogger("llm"),
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Available() bool { return p.config.APIKey != "" }

// Breaker exposes the provider's circuit breaker for diagnostics.
func (p *OpenAIProvider) Breaker() *dcerrors.CircuitBreaker { return p.breaker }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if !p.Available() {
		return Response{}, utils.NewError(utils.ErrCodeCapabilityUnavailable, "openai provider not configured").
			WithoutStackTrace().Build()
	}

	var out Response
	err := p.retrier.ExecuteWithRetry(ctx, func() error {
		// an open breaker fails with a non-retryable error and ends the loop
		return p.breaker.Execute(ctx, func(ctx context.Context) error {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
			var err error
			out, err = p.do(ctx, req)
			return err
		})
	}, "chat completion")
	return out, err
}

func (p *OpenAIProvider) do(ctx context.Context, req Request) (Response, error) {
	body := chatRequest{
		Model:       p.config.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = p.config.MaxTokens
	}
	if req.SystemPrompt != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.UserPrompt})
	if req.JSON {
		body.ResponseFormat = map[string]string{"type": "json_object"}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimSuffix(p.config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	p.logger.WithField("model", p.config.Model).Debug("chat completion request")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Response{}, utils.WrapError(err, utils.ErrCodeCapabilityFailed, "chat completion request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Response{}, utils.WrapError(err, utils.ErrCodeCapabilityFailed, "read chat completion response")
	}

	if resp.StatusCode != http.StatusOK {
		code := utils.ErrCodeCapabilityFailed
		if resp.StatusCode == http.StatusTooManyRequests {
			code = utils.ErrCodeRateLimited
		}
		return Response{}, utils.NewError(code, fmt.Sprintf("chat completion returned status %d", resp.StatusCode)).
			WithContext("status", resp.StatusCode).
			WithContext("body", utils.TruncateString(string(respBody), 200)).
			WithRetryable(resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests).
			Build()
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Response{}, utils.WrapError(err, utils.ErrCodeMalformedResponse, "decode chat completion response")
	}
	if len(parsed.Choices) == 0 {
		return Response{}, utils.NewError(utils.ErrCodeMalformedResponse, "chat completion returned no choices").Build()
	}

	return Response{Content: parsed.Choices[0].Message.Content, Model: parsed.Model}, nil
}
