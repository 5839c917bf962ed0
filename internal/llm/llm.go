// Package llm wraps the external language-model collaborator: given a prompt
// template and a JSON payload it returns a JSON object or fails with a
// classified error. A "stub" provider serves offline and test environments.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Provider names understood by the client.
const (
	ProviderStub             = "stub"
	ProviderGrok             = "grok"
	ProviderOpenAICompatible = "openai_compatible"
)

// Classified errors per the failure taxonomy: configuration mistakes are
// fatal and never retried, parse failures surface the offending content,
// exhaustion marks a transient upstream that outlived the retry budget.
var (
	ErrUnknownProvider    = errors.New("unknown llm provider")
	ErrMissingCredentials = errors.New("missing llm credentials")
	ErrBadJSON            = errors.New("model returned invalid json")
	ErrExhausted          = errors.New("llm retries exhausted")
)

var providerBaseURLs = map[string]string{
	ProviderGrok:             "https://api.x.ai/v1",
	ProviderOpenAICompatible: "https://api.openai.com/v1",
}

// DefaultModel returns the default chat model for a provider.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderGrok:
		return "grok-3-mini-fast"
	case ProviderOpenAICompatible:
		return "gpt-4o-mini"
	default:
		return "stub"
	}
}

var retryStatusCodes = map[int]bool{429: true, 500: true, 502: true, 503: true, 504: true}

// Config selects and parameterises a provider.
type Config struct {
	Provider       string        `json:"provider"`
	BaseURL        string        `json:"base_url,omitempty"`
	APIKey         string        `json:"api_key,omitempty"`
	Model          string        `json:"model"`
	EmbeddingModel string        `json:"embedding_model,omitempty"`
	Temperature    float64       `json:"temperature"`
	MaxRetries     int           `json:"max_retries"`
	Timeout        time.Duration `json:"-"`
}

// Client talks to one configured provider.
type Client struct {
	cfg         Config
	logger      *log.Logger
	api         *openai.Client // nil in stub mode
	backoffBase time.Duration

	embedderOnce sync.Once
	embedder     *Embedder
}

// New validates the configuration and builds a client. Unknown providers and
// absent credentials fail immediately: both are caller mistakes.
func New(cfg Config, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[LLM] ", log.LstdFlags)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.2
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}

	c := &Client{cfg: cfg, logger: logger, backoffBase: time.Second}
	switch cfg.Provider {
	case ProviderStub:
		return c, nil
	case ProviderGrok, ProviderOpenAICompatible:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: provider %q needs an api key", ErrMissingCredentials, cfg.Provider)
		}
		apiCfg := openai.DefaultConfig(cfg.APIKey)
		apiCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
		if apiCfg.BaseURL == "" {
			apiCfg.BaseURL = providerBaseURLs[cfg.Provider]
		}
		apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
		c.api = openai.NewClientWithConfig(apiCfg)
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// Model reports the configured chat model name.
func (c *Client) Model() string { return c.cfg.Model }

// Provider reports the configured provider name.
func (c *Client) Provider() string { return c.cfg.Provider }

// CallJSON sends the prompt and payload to the model and returns the parsed
// JSON object, with a _usage field describing tokens, latency and retries.
func (c *Client) CallJSON(ctx context.Context, prompt string, payload any) (map[string]any, error) {
	if c.cfg.Provider == ProviderStub {
		return c.stubResponse(prompt, payload)
	}

	input, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You output JSON only. No markdown fences."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: "INPUT_JSON:\n" + string(input)},
		},
		Temperature:    float32(c.cfg.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	var (
		lastErr error
		retries int
	)
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		start := time.Now()
		resp, err := c.api.CreateChatCompletion(ctx, req)
		latency := time.Since(start)

		if err != nil {
			if !retryable(err) {
				return nil, fmt.Errorf("llm call: %w", err)
			}
			lastErr = err
			if attempt < c.cfg.MaxRetries {
				retries++
				c.logger.Printf("llm transient error (%v), retry %d", err, attempt)
				if err := c.sleep(ctx, attempt); err != nil {
					return nil, err
				}
				continue
			}
			break
		}

		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("llm call: empty choices")
		}
		content := resp.Choices[0].Message.Content
		result, err := parseJSONObject(content)
		if err != nil {
			return nil, fmt.Errorf("%w: %v (content: %s)", ErrBadJSON, err, truncate(content, 500))
		}

		c.logger.Printf("llm ok model=%s tokens=%d latency=%dms retries=%d",
			c.cfg.Model, resp.Usage.TotalTokens, latency.Milliseconds(), retries)
		result["_usage"] = map[string]any{
			"tokens":     resp.Usage.TotalTokens,
			"latency_ms": latency.Milliseconds(),
			"retries":    retries,
		}
		return result, nil
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrExhausted, c.cfg.MaxRetries, lastErr)
}

// stubResponse deterministically echoes the input payload without network
// access. Test harnesses rely on this shape.
func (c *Client) stubResponse(prompt string, payload any) (map[string]any, error) {
	var echoed any
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	if err := json.Unmarshal(raw, &echoed); err != nil {
		return nil, fmt.Errorf("echo payload: %w", err)
	}
	return map[string]any{
		"_stub":       true,
		"prompt_used": truncate(prompt, 500),
		"input":       echoed,
		"note":        "Configure a real llm provider and api key for live outputs.",
	}, nil
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	select {
	case <-time.After(c.backoffBase * time.Duration(1<<attempt)):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryStatusCodes[apiErr.HTTPStatusCode]
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryStatusCodes[reqErr.HTTPStatusCode]
	}
	// Transport-level failures (timeouts, resets) are worth retrying.
	return true
}

// parseJSONObject strips an optional markdown code fence and unmarshals the
// remainder into a JSON object.
func parseJSONObject(content string) (map[string]any, error) {
	text := strings.TrimSpace(content)
	if strings.HasPrefix(text, "```") {
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			text = text[idx+1:]
		} else {
			text = text[3:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
