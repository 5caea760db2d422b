// Package reader fetches an article's web page and extracts its readable text
// for the shell's "read" command.
package reader

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"newsclient/internal/observability/metrics"
	"newsclient/internal/observability/tracing"
	"newsclient/internal/resilience/circuitbreaker"
)

// Article is the readable form of a web page.
type Article struct {
	Title   string
	Byline  string
	Excerpt string
	Text    string
	URL     string
}

// ReadabilityReader extracts article text with go-readability.
// It is safe for concurrent use.
type ReadabilityReader struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         Config
}

// New creates a reader. transport may be nil.
func New(cfg Config, transport http.RoundTripper) *ReadabilityReader {
	r := &ReadabilityReader{
		circuitBreaker: circuitbreaker.New(circuitbreaker.ArticleReaderConfig()),
		config:         cfg,
	}

	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		}
	}

	r.client = &http.Client{
		Transport: &tracing.Transport{Next: transport},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > r.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.URL.String(), r.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}
	return r
}

// Read fetches urlStr and returns its readable content.
func (r *ReadabilityReader) Read(ctx context.Context, urlStr string) (*Article, error) {
	if err := validateURL(urlStr, r.config.DenyPrivateIPs); err != nil {
		return nil, err
	}

	start := time.Now()
	article, err := circuitbreaker.Call(r.circuitBreaker, func() (*Article, error) {
		return r.doRead(ctx, urlStr)
	})
	if err != nil {
		metrics.RecordArticleReadFailed(time.Since(start))
		if circuitbreaker.IsRejection(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		slog.Warn("article read failed",
			slog.String("url", urlStr),
			slog.Any("error", err))
		return nil, err
	}

	metrics.RecordArticleReadSuccess(time.Since(start), len(article.Text))
	return article, nil
}

func (r *ReadabilityReader) doRead(ctx context.Context, urlStr string) (*Article, error) {
	reqCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", r.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: request exceeded %v", ErrTimeout, r.config.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && (errors.Is(urlErr.Err, ErrTooManyRedirects) ||
			errors.Is(urlErr.Err, ErrPrivateIP) || errors.Is(urlErr.Err, ErrInvalidURL)) {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	htmlBytes, err := io.ReadAll(io.LimitReader(resp.Body, r.config.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(htmlBytes)) > r.config.MaxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, r.config.MaxBodySize)
	}

	// the final URL may differ after redirects
	pageURL := resp.Request.URL
	parsed, err := readability.FromReader(bytes.NewReader(htmlBytes), pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoContent, err)
	}

	text := strings.TrimSpace(parsed.TextContent)
	if text == "" {
		return nil, ErrNoContent
	}

	return &Article{
		Title:   strings.TrimSpace(parsed.Title),
		Byline:  strings.TrimSpace(parsed.Byline),
		Excerpt: strings.TrimSpace(parsed.Excerpt),
		Text:    text,
		URL:     pageURL.String(),
	}, nil
}
