package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/psantana5/vidgen/pkg/models"
	"github.com/psantana5/vidgen/pkg/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	generatePath = "/api/video/generate"
	statusPath   = "/api/video/status/"
	filePath     = "/api/video/file/"
)

// APIError is returned when the backend answers with an unexpected status
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Client talks to the video generation backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout; zero leaves it to the transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithTransport replaces the HTTP transport, e.g. with an instrumented one
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// WithTracer overrides the tracer used for backend spans
func WithTracer(tr trace.Tracer) Option {
	return func(c *Client) { c.tracer = tr }
}

// New creates a backend client. baseURL may be empty, in which case every
// locator the client builds stays relative.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tracer:     otel.Tracer("github.com/psantana5/vidgen/pkg/client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base address without trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Generate submits a creation request and returns the new job identifier
func (c *Client) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	ctx, span := c.tracer.Start(ctx, "backend.generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			tracing.DurationKey.Int(req.DurationSeconds),
			tracing.RefineKey.Bool(req.RefineWithAI),
		),
	)
	defer span.End()

	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var result models.GenerateResponse
	if err := c.do(ctx, httpReq, &result); err != nil {
		tracing.SetError(ctx, err)
		return "", err
	}
	if result.JobID == "" {
		err := errors.New("backend returned an empty job_id")
		tracing.SetError(ctx, err)
		return "", err
	}

	span.SetAttributes(tracing.JobID(result.JobID))
	return result.JobID, nil
}

// Status fetches the current status record for a job
func (c *Client) Status(ctx context.Context, jobID string) (*models.StatusRecord, error) {
	ctx, span := c.tracer.Start(ctx, "backend.status",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(tracing.JobID(jobID)),
	)
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+statusPath+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var rec models.StatusRecord
	if err := c.do(ctx, httpReq, &rec); err != nil {
		tracing.SetError(ctx, err)
		return nil, err
	}
	if rec.JobID == "" {
		rec.JobID = jobID
	}

	span.SetAttributes(tracing.StatusKey.String(string(rec.Status)))
	return &rec, nil
}

// FileURL is the per-job download locator, also the playback fallback
func (c *Client) FileURL(jobID string) string {
	return c.baseURL + filePath + url.PathEscape(jobID)
}

// ResolveURL resolves a backend-relative locator against the base address.
// Absolute locators are returned unchanged.
func (c *Client) ResolveURL(locator string) string {
	u, err := url.Parse(locator)
	if err == nil && u.IsAbs() {
		return locator
	}
	if c.baseURL == "" {
		return locator
	}
	// Protocol-relative locators keep their host and take the base scheme.
	if err == nil && u.Host != "" {
		if base, perr := url.Parse(c.baseURL); perr == nil {
			u.Scheme = base.Scheme
			return u.String()
		}
	}
	if !strings.HasPrefix(locator, "/") {
		locator = "/" + locator
	}
	return c.baseURL + locator
}

func (c *Client) do(ctx context.Context, req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	tracing.InjectHTTPHeaders(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
