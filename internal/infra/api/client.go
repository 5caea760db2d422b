// Package api implements the HTTP client for the remote news API: news pages,
// bookmarks and account endpoints. It owns the cookie jar (session and CSRF
// cookies), maps failures onto the domain error taxonomy and logs every failed
// exchange once, here at the boundary. It never retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"newsclient/internal/domain/entity"
	"newsclient/internal/observability/logging"
	"newsclient/internal/observability/metrics"
	"newsclient/internal/observability/requestid"
	"newsclient/internal/observability/tracing"
	"newsclient/internal/resilience/circuitbreaker"
)

const (
	// CSRFCookieName is the cookie the server stores its CSRF token in.
	CSRFCookieName = "csrftoken"
	// CSRFHeader carries the token back on every request.
	CSRFHeader = "X-CSRFToken"

	// maxResponseSize bounds the JSON bodies the client will read (4MB).
	maxResponseSize = 4 * 1024 * 1024
)

// Config holds the client settings.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:8000/api
	BaseURL string
	// Timeout bounds one HTTP exchange. Default: 15s
	Timeout time.Duration
	// RateLimit and RateBurst configure the outbound token bucket. Zero disables limiting.
	RateLimit float64
	RateBurst int
	// Breaker protects the API transport. Nil means a breaker built from NewsAPIConfig.
	Breaker *circuitbreaker.CircuitBreaker
	// Transport is the innermost round tripper. Nil means http.DefaultTransport.
	Transport http.RoundTripper
	// Logger receives boundary error logs. Nil means slog.Default().
	Logger *slog.Logger
}

// Client talks to the news API. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	jar        http.CookieJar
	limiter    *RateLimiter
	logger     *slog.Logger
}

// NewClient builds a credentialed client. The transport chain is
// tracing -> request ID -> circuit breaker -> cfg.Transport.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https, got %q", cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	breaker := cfg.Breaker
	if breaker == nil {
		breaker = circuitbreaker.New(circuitbreaker.NewsAPIConfig())
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *RateLimiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = NewRateLimiter(cfg.RateLimit, burst)
	}

	transport := &tracing.Transport{
		Next: &requestid.Transport{
			Next: circuitbreaker.NewTransport(breaker, cfg.Transport),
		},
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   timeout,
			Jar:       jar,
			Transport: transport,
		},
		jar:     jar,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// CSRFToken returns the token currently held in the cookie jar, if any.
func (c *Client) CSRFToken() string {
	for _, ck := range c.jar.Cookies(c.baseURL) {
		if ck.Name == CSRFCookieName {
			return ck.Value
		}
	}
	return ""
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// endpointURL joins the base URL and an endpoint path such as "/news/".
func (c *Client) endpointURL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do performs one exchange and decodes a 2xx JSON body into out (if non-nil).
//
// Errors:
//   - *entity.NetworkError when no response arrived (including an open circuit)
//   - *entity.HTTPError for non-2xx responses, with the server message when present
//   - *entity.DecodeError when a 2xx body cannot be decoded into out
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, reqID := requestid.Ensure(ctx)
	logger := logging.WithRequestID(ctx, c.logger)
	fullURL := c.endpointURL(path, query)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &entity.NetworkError{Method: method, URL: fullURL, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.CSRFToken(); token != "" {
		req.Header.Set(CSRFHeader, token)
	}
	if method != http.MethodGet && c.baseURL.Scheme == "https" {
		// Django's CSRF check requires a same-origin Referer over HTTPS
		req.Header.Set("Referer", c.baseURL.Scheme+"://"+c.baseURL.Host+"/")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(method, path, 0, time.Since(start))
		logger.Error("API connection error: unable to reach the API server",
			slog.String("method", method),
			slog.String("url", fullURL),
			slog.Any("error", err))
		if circuitbreaker.IsRejection(err) {
			err = fmt.Errorf("news API temporarily unavailable: %w", err)
		}
		return &entity.NetworkError{Method: method, URL: fullURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordAPIRequest(method, path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		logger.Error("API response read failed",
			slog.String("method", method),
			slog.String("url", fullURL),
			slog.Int("status", resp.StatusCode),
			slog.Any("error", err))
		return &entity.NetworkError{Method: method, URL: fullURL, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &entity.HTTPError{
			Method:     method,
			URL:        fullURL,
			StatusCode: resp.StatusCode,
			Message:    extractMessage(data),
		}
		attrs := []any{
			slog.String("method", method),
			slog.String("url", fullURL),
			slog.Int("status", resp.StatusCode),
			slog.String("request_id", reqID),
		}
		if resp.StatusCode == http.StatusNotFound {
			logger.Warn("API endpoint not found", attrs...)
		} else {
			logger.Error("API error", append(attrs, slog.String("message", httpErr.Message))...)
		}
		return httpErr
	}

	// an empty body leaves out untouched; callers validate required fields
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Error("API response decode failed",
			slog.String("method", method),
			slog.String("url", fullURL),
			slog.Int("status", resp.StatusCode),
			slog.Any("error", err))
		return &entity.DecodeError{URL: fullURL, Err: err}
	}
	return nil
}

// extractMessage pulls the server message out of an error body; non-JSON bodies yield "".
func extractMessage(data []byte) string {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil {
		return ""
	}
	return eb.text()
}

// decodeFailure builds a DecodeError for a body that parsed as JSON but
// violated the response contract.
func (c *Client) decodeFailure(ctx context.Context, path string, query url.Values, err error) error {
	fullURL := c.endpointURL(path, query)
	logging.WithRequestID(ctx, c.logger).Error("API response invalid",
		slog.String("url", fullURL),
		slog.Any("error", err))
	return &entity.DecodeError{URL: fullURL, Err: err}
}

// IsUnauthorized reports whether err is a 401 or 403 from the API.
func IsUnauthorized(err error) bool {
	var httpErr *entity.HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden
}
