package radiogarden

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/radiodial/internal/core/ports"
)

const (
	// DefaultBaseURL is the public directory API root.
	DefaultBaseURL   = "https://radio.garden/api"
	DefaultUserAgent = "radiodial/1.0"
	DefaultTimeout   = 30 * time.Second
)

// ErrTimeout is returned by Transport.Get when the request ran out of time.
var ErrTimeout = errors.New("directory request timed out")

// Transport performs GET requests against the directory API over fasthttp.
// It never follows redirects so the stream resolver can read Location itself.
type Transport struct {
	client    *fasthttp.Client
	baseURL   string
	userAgent string
	timeout   time.Duration
}

// TransportOption customises a Transport.
type TransportOption func(*Transport)

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) TransportOption {
	return func(t *Transport) {
		if ua != "" {
			t.userAgent = ua
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) TransportOption {
	return func(t *Transport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// NewTransport creates a Transport rooted at baseURL.
func NewTransport(baseURL string, opts ...TransportOption) *Transport {
	t := &Transport{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.client = &fasthttp.Client{
		Name:                t.userAgent,
		ReadTimeout:         t.timeout,
		WriteTimeout:        t.timeout,
		MaxIdleConnDuration: 90 * time.Second,
		// paths are sent exactly as built by the client
		DisablePathNormalizing: true,
	}
	return t
}

// BaseURL returns the API root the transport sends requests to.
func (t *Transport) BaseURL() string { return t.baseURL }

// Get issues GET baseURL+path and returns the raw response.
// A context that is already done fails fast; an earlier context deadline
// shortens the fixed timeout.
func (t *Transport) Get(ctx context.Context, path string) (*ports.HTTPResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(t.baseURL + path)
	req.URI().DisablePathNormalizing = true
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	req.Header.SetUserAgent(t.userAgent)

	deadline := time.Now().Add(t.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := t.client.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, fasthttp.ErrDialTimeout) {
			return nil, fmt.Errorf("GET %s: %w", path, ErrTimeout)
		}
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}

	// resp is returned to the pool on exit; copy what we keep.
	out := &ports.HTTPResponse{
		StatusCode: resp.StatusCode(),
		Body:       append([]byte(nil), resp.Body()...),
		Location:   string(resp.Header.Peek(fasthttp.HeaderLocation)),
	}
	return out, nil
}
