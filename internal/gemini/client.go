package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pulsefit/coach/internal/engine"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.0-flash"

	// maxErrorBody bounds how much of a failed response body is kept for
	// the transport error.
	maxErrorBody = 2048
)

// Config holds client configuration. APIKey is required; everything else
// defaults.
type Config struct {
	// APIKey authenticates against the generative-language API.
	APIKey string

	// Model is the model ID, e.g. "gemini-2.0-flash".
	Model string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// MaxRetries bounds retry attempts for retryable statuses before the
	// first byte. Default: 3.
	MaxRetries int

	// RetryDelay is the base backoff delay. Default: 1s.
	RetryDelay time.Duration

	// HTTPClient overrides the transport. Default: client without a
	// wall-clock timeout; streaming calls are bounded by ctx.
	HTTPClient *http.Client

	// Logger receives request-level logs.
	Logger *slog.Logger
}

// Client calls the streaming generate endpoint and decodes the line
// protocol into engine fragments. Safe for concurrent use; every Stream
// call owns an independent connection.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
	retryDelay time.Duration
	http       *http.Client
	log        *slog.Logger
}

var _ engine.ModelClient = (*Client)(nil)

// NewClient creates a client, applying defaults for optional fields.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		http:       cfg.HTTPClient,
		log:        cfg.Logger.With(slog.String("component", "gemini")),
	}, nil
}

// Model returns the configured model ID.
func (c *Client) Model() string {
	return c.model
}

// Stream issues one streaming generate call. Non-success statuses and
// connection failures surface as *engine.TransportError. Retryable
// statuses are retried with exponential backoff before any byte has been
// decoded; once a stream is returned it is never restarted.
func (c *Client) Stream(ctx context.Context, req *engine.ModelRequest) (engine.FragmentStream, error) {
	body, err := json.Marshal(c.encodeRequest(req))
	if err != nil {
		return nil, fmt.Errorf("gemini: encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, &engine.TransportError{Cause: ctx.Err()}
			case <-time.After(delay):
			}
		}

		stream, retryable, err := c.open(ctx, body)
		if err == nil {
			return stream, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		c.log.Warn("retryable model call failure",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))
	}
	return nil, lastErr
}

// open performs a single request attempt.
func (c *Client) open(ctx context.Context, body []byte) (engine.FragmentStream, bool, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("gemini: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, true, &engine.TransportError{Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		terr := &engine.TransportError{
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(detail)),
		}
		return nil, isRetryableStatus(resp.StatusCode), terr
	}

	return &stream{dec: newDecoder(resp.Body), body: resp.Body}, false, nil
}

// encodeRequest converts an engine request into the wire format.
func (c *Client) encodeRequest(req *engine.ModelRequest) *generateRequest {
	out := &generateRequest{}

	for _, turn := range req.Turns {
		ct := content{Role: string(turn.Role)}
		for _, frag := range turn.Fragments {
			switch f := frag.(type) {
			case engine.TextFragment:
				ct.Parts = append(ct.Parts, part{Text: f.Text})
			case engine.ToolCallRequest:
				ct.Parts = append(ct.Parts, part{FunctionCall: &functionCall{
					Name: f.Name,
					Args: f.Args,
				}})
			case engine.ToolCallResult:
				ct.Parts = append(ct.Parts, part{FunctionResponse: &functionResponse{
					Name:     f.Name,
					Response: f.Response,
				}})
			}
		}
		if len(ct.Parts) > 0 {
			out.Contents = append(out.Contents, ct)
		}
	}

	if len(req.Tools) > 0 {
		decls := make([]functionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, functionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			})
		}
		out.Tools = []wireTool{{FunctionDeclarations: decls}}
	}

	if req.LowEffort {
		out.GenerationConfig = &generationConfig{
			ThinkingConfig: &thinkingConfig{ThinkingBudget: 0},
		}
	}

	return out
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// stream adapts the decoder to engine.FragmentStream, owning the response
// body so Close releases the connection on every exit path.
type stream struct {
	dec    *decoder
	body   io.ReadCloser
	closed bool
}

func (s *stream) Next() (engine.Fragment, error) {
	if s.closed {
		return nil, io.EOF
	}
	return s.dec.next()
}

func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
