// Package gemini is a client for the Google Generative Language API. It
// backs both the tourist-facing assistant conversations and the icon
// suggestion helper.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripsentry/tripsentry/internal/api/middleware"
	"github.com/tripsentry/tripsentry/internal/chat"
	"github.com/tripsentry/tripsentry/internal/provider/resilience"
)

const (
	// BackendName identifies this backend in the resilience registry.
	BackendName = "gemini"

	// DefaultBaseURL is the Generative Language API base URL.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.5-flash"
)

// ClientConfig holds configuration for the Gemini client.
type ClientConfig struct {
	// APIKey is the Generative Language API key (required).
	APIKey string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// Model is the model name (optional, defaults to DefaultModel).
	Model string

	// SystemInstruction is prepended to every conversation as a system
	// prompt (optional).
	SystemInstruction string

	// HTTPClient is the HTTP client to use (optional). If nil, a resilient
	// client is built with retries disabled: completion requests are not
	// idempotent, so only the circuit breaker applies.
	HTTPClient *resilience.Client

	// Registry optionally tracks backend health for the ops endpoint.
	Registry *resilience.Registry

	// Metrics optionally records call duration and count per operation.
	Metrics *middleware.ProviderMetrics

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client calls the Generative Language generateContent endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	system     string
	httpClient *resilience.Client
	registry   *resilience.Registry
	metrics    *middleware.ProviderMetrics
	logger     zerolog.Logger
}

// NewClient creates a new Gemini client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(BackendName)
		clientCfg.MaxRetries = 0
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		system:     cfg.SystemInstruction,
		httpClient: httpClient,
		registry:   cfg.Registry,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Name returns the backend name.
func (c *Client) Name() string {
	return BackendName
}

// Generate sends the conversation history to the model and returns the
// assistant reply. History must end with the newest user message. Failures
// are returned as *chat.GenerationError.
func (c *Client) Generate(ctx context.Context, history []chat.Message) (string, error) {
	contents := make([]geminiContent, 0, len(history))
	for _, msg := range history {
		contents = append(contents, geminiContent{
			Role:  toGeminiRole(msg.Role),
			Parts: []geminiPart{{Text: msg.Text}},
		})
	}
	return c.generateContent(ctx, "generate", contents)
}

// Complete sends a single standalone prompt and returns the model's reply.
// Used by single-shot helpers such as icon suggestion.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []geminiContent{
		{Role: "user", Parts: []geminiPart{{Text: prompt}}},
	}
	return c.generateContent(ctx, "complete", contents)
}

func (c *Client) generateContent(ctx context.Context, operation string, contents []geminiContent) (string, error) {
	start := time.Now()
	text, err := c.doGenerateContent(ctx, contents)
	if c.metrics != nil {
		c.metrics.RecordRequest(BackendName, operation, time.Since(start), err)
	}
	return text, err
}

func (c *Client) doGenerateContent(ctx context.Context, contents []geminiContent) (string, error) {
	reqBody := generateContentRequest{Contents: contents}
	if c.system != "" {
		reqBody.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: c.system}},
		}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &chat.GenerationError{
			Kind:   chat.KindBackendFailure,
			Detail: "encoding request",
			Err:    err,
		}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &chat.GenerationError{
			Kind:   chat.KindBackendFailure,
			Detail: "creating request",
			Err:    err,
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		genErr := c.classifyTransportError(ctx, err)
		c.recordFailure(genErr)
		return "", genErr
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		genErr := classifyStatus(resp.StatusCode, decodeAPIError(resp))
		c.recordFailure(genErr)
		return "", genErr
	}

	var gcResp generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&gcResp); err != nil {
		genErr := &chat.GenerationError{
			Kind:   chat.KindBackendFailure,
			Detail: "decoding response",
			Err:    err,
		}
		c.recordFailure(genErr)
		return "", genErr
	}

	text := gcResp.firstText()
	if text == "" {
		genErr := &chat.GenerationError{
			Kind:   chat.KindBackendFailure,
			Detail: "model returned no candidates",
		}
		c.recordFailure(genErr)
		return "", genErr
	}

	if c.registry != nil {
		c.registry.RecordSuccess(BackendName)
	}

	return text, nil
}

func (c *Client) classifyTransportError(ctx context.Context, err error) *chat.GenerationError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &chat.GenerationError{Kind: chat.KindTimeout, Detail: "generation request timed out", Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &chat.GenerationError{Kind: chat.KindTimeout, Detail: "generation request timed out", Err: err}
	}

	if errors.Is(err, resilience.ErrCircuitOpen) {
		return &chat.GenerationError{Kind: chat.KindBackendFailure, Detail: "generation backend unavailable", Err: err}
	}

	return &chat.GenerationError{Kind: chat.KindBackendFailure, Detail: "executing request", Err: err}
}

func classifyStatus(status int, detail string) *chat.GenerationError {
	if detail == "" {
		detail = fmt.Sprintf("unexpected status code: %d", status)
	}
	if status == http.StatusTooManyRequests {
		return &chat.GenerationError{Kind: chat.KindRateLimited, Detail: detail}
	}
	return &chat.GenerationError{Kind: chat.KindBackendFailure, Detail: detail}
}

func (c *Client) recordFailure(err *chat.GenerationError) {
	c.logger.Warn().
		Err(err).
		Str("backend", BackendName).
		Str("model", c.model).
		Msg("generation request failed")
	if c.registry != nil {
		c.registry.RecordFailure(BackendName, err)
	}
}

// toGeminiRole maps conversation roles onto the API's role names. The API
// calls the assistant side "model".
func toGeminiRole(role chat.Role) string {
	if role == chat.RoleAssistant {
		return "model"
	}
	return "user"
}

type generateContentRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (r *generateContentResponse) firstText() string {
	for _, cand := range r.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func decodeAPIError(resp *http.Response) string {
	var apiErr apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		return ""
	}
	return apiErr.Error.Message
}
