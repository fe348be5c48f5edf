// Package upstream is the HTTP client for the MindTrack analysis API that
// classifies text and extracts posts from social media URLs.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/anime-shed/mindtrack-report/internal/errors"
	"github.com/anime-shed/mindtrack-report/internal/logger"
	"github.com/anime-shed/mindtrack-report/pkg/models"
)

const (
	defaultAttempts = 3
	defaultBackoff  = time.Second
	maxResponseSize = 4 << 20
)

// Options configures a Client
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Attempts is the number of tries for retryable failures
	Attempts int
	// Backoff is multiplied by the attempt number between retries
	Backoff time.Duration
}

// Client talks to the analysis API
type Client struct {
	baseURL  string
	client   *http.Client
	attempts int
	backoff  time.Duration
}

// Extraction is the content pulled from a social media post
type Extraction struct {
	Platform string `json:"platform"`
	Data     struct {
		Content          string `json:"content"`
		Author           string `json:"author"`
		Date             string `json:"date"`
		URL              string `json:"url"`
		ExtractionMethod string `json:"extraction_method,omitempty"`
	} `json:"data"`
}

// apiError is the failure body the API returns
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusError is a non-2xx response
type statusError struct {
	code int
	body apiError
}

func (e *statusError) Error() string {
	if e.code >= 500 {
		return fmt.Sprintf("server error: status code %d", e.code)
	}
	return fmt.Sprintf("client error: status code %d", e.code)
}

// NewClient creates an API client
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("upstream base URL is required")
	}
	if u, err := url.Parse(base); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid upstream base URL: %s", opts.BaseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Attempts <= 0 {
		opts.Attempts = defaultAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}

	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: opts.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: base,
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		attempts: opts.Attempts,
		backoff:  opts.Backoff,
	}, nil
}

// BaseURL returns the API root the client calls
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AnalyzeText classifies text
func (c *Client) AnalyzeText(ctx context.Context, text string) (*models.ClassificationResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("Text is required", nil)
	}
	var result models.ClassificationResult
	if err := c.do(ctx, http.MethodPost, "/analyze/text", map[string]string{"text": text}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExtractURL pulls the post content behind a social media URL
func (c *Client) ExtractURL(ctx context.Context, postURL string) (*Extraction, error) {
	if strings.TrimSpace(postURL) == "" {
		return nil, apperrors.NewValidationError("URL is required", nil)
	}
	var ext Extraction
	if err := c.do(ctx, http.MethodPost, "/analyze/url", map[string]string{"url": postURL}, &ext); err != nil {
		return nil, err
	}
	return &ext, nil
}

// AnalyzeURL extracts a post and classifies its content. The returned
// preview names the platform and author shown on summary images.
func (c *Client) AnalyzeURL(ctx context.Context, postURL string) (*models.ClassificationResult, *models.SourcePreview, error) {
	ext, err := c.ExtractURL(ctx, postURL)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(ext.Data.Content) == "" {
		return nil, nil, apperrors.NewProcessingError("No content could be extracted from the URL", nil)
	}
	result, err := c.AnalyzeText(ctx, ext.Data.Content)
	if err != nil {
		return nil, nil, err
	}
	preview := &models.SourcePreview{Platform: ext.Platform, Author: ext.Data.Author}
	if preview.Platform == "" {
		preview.Platform = "Unknown"
	}
	if preview.Author == "" {
		preview.Author = "Unknown"
	}
	return result, preview, nil
}

// Timeline returns the most recent analyses as raw JSON
func (c *Client) Timeline(ctx context.Context, limit int) (json.RawMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, "/timeline?limit="+strconv.Itoa(limit), nil, &raw)
	return raw, err
}

// Stats returns aggregate analysis statistics as raw JSON
func (c *Client) Stats(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, "/stats", nil, &raw)
	return raw, err
}

// ClearHistory deletes the stored timeline
func (c *Client) ClearHistory(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodDelete, "/timeline", nil, &raw)
	return raw, err
}

// do sends a request with retries and decodes a 2xx body into out.
// 4xx responses are not retried; 5xx and transport errors are.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return apperrors.NewInternalError("Failed to encode upstream request", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		body, err := c.send(ctx, method, path, payload)
		if err == nil {
			if err := json.Unmarshal(body, out); err != nil {
				return apperrors.NewNetworkError("Invalid response from analysis API", err)
			}
			return nil
		}
		lastErr = err

		var se *statusError
		if errors.As(err, &se) && se.code < 500 {
			break
		}
		if ctx.Err() != nil {
			break
		}

		if attempt < c.attempts-1 {
			logger.WithFields(map[string]interface{}{
				"method":  method,
				"path":    path,
				"attempt": attempt + 1,
			}).WithError(err).Warn("Upstream request failed, retrying")

			select {
			case <-ctx.Done():
			case <-time.After(time.Duration(attempt+1) * c.backoff):
			}
		}
	}

	return c.mapError(ctx, lastErr)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "MindTrack-Report/1.0")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &statusError{code: resp.StatusCode}
		_ = json.Unmarshal(body, &se.body)
		return nil, se
	}
	return body, nil
}

func (c *Client) mapError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return apperrors.NewTimeoutError("Analysis API request timed out", ctx.Err())
	}
	var se *statusError
	if errors.As(err, &se) && se.code < 500 {
		msg := se.body.Error
		if msg == "" {
			msg = "Analysis API rejected the request"
		}
		if se.code == http.StatusNotFound {
			return apperrors.NewNotFoundError(msg, err)
		}
		appErr := apperrors.NewValidationError(msg, err)
		appErr.Details = se.body.Message
		return appErr
	}
	return apperrors.NewNetworkError(fmt.Sprintf("Analysis API unavailable after %d attempts", c.attempts), err)
}
