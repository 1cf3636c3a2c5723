package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/authclient/internal/infra/buildinfo"
	"github.com/yndnr/authclient/internal/telemetry/logger"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTLSConfig sets the TLS configuration for HTTPS servers.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *HTTPClient) {
		if cfg == nil {
			return
		}
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = cfg
		c.client.Transport = tr
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logger.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// HTTPClient provides HTTP communication with the server.
//
// The client sets no timeout of its own; requests end when the server
// answers, the transport gives up, or ctx is cancelled.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	userAgent string
	logger    logger.Logger
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	RequestID  string
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into target.
func (r *Response) Decode(target any) error {
	if err := json.Unmarshal(r.Body, target); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// NewHTTPClient creates a new HTTP client.
func NewHTTPClient(server string, opts ...Option) *HTTPClient {
	// Ensure baseURL has http:// prefix
	baseURL := strings.TrimRight(strings.TrimSpace(server), "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := &HTTPClient{
		baseURL:   baseURL,
		client:    &http.Client{},
		userAgent: buildinfo.UserAgent(),
		logger:    logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path, bearer string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, bearer)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any, bearer string) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, bearer)
}

// Delete performs a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path, bearer string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, bearer)
}

// Do sends one request and reads the whole response. A non-nil error means
// no response was received; any HTTP status is returned as a Response. If
// the body is cut short after the status line arrived, Body holds what was
// read and the error is only logged.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body any, bearer string) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	requestID := ulid.Make().String()
	ctx = logger.WithRequestID(logger.WithLogger(ctx, c.logger), requestID)
	log := logger.L(ctx)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.addHeaders(req, requestID, bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		log.Debug("request failed", "method", method, "path", path, "error", err, "elapsed", time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		log.Debug("response body truncated",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"read", len(data),
			"error", err)
	}

	log.Debug("request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start))

	return &Response{StatusCode: resp.StatusCode, Body: data, RequestID: requestID}, nil
}

// addHeaders adds authentication and common headers.
func (c *HTTPClient) addHeaders(req *http.Request, requestID, bearer string) {
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}
