// Package supabase talks to a hosted Supabase project: Storage over REST
// and Realtime over its Phoenix WebSocket protocol.
package supabase

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

	"go.uber.org/zap"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
	defaultBackoff    = 200 * time.Millisecond
)

type Config struct {
	ProjectURL string
	ServiceKey string

	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	HTTPClient *http.Client
}

// Client is the shared transport for the Storage and Realtime clients.
type Client struct {
	baseURL     string
	storageURL  string
	realtimeURL string
	serviceKey  string

	http       *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.ProjectURL == "" {
		return nil, fmt.Errorf("project URL is required")
	}
	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("service key is required")
	}

	baseURL := strings.TrimRight(cfg.ProjectURL, "/")
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid project URL %q", cfg.ProjectURL)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	wsBase := baseURL
	switch parsed.Scheme {
	case "https":
		wsBase = "wss" + strings.TrimPrefix(baseURL, "https")
	case "http":
		wsBase = "ws" + strings.TrimPrefix(baseURL, "http")
	}

	return &Client{
		baseURL:     baseURL,
		storageURL:  baseURL + "/storage/v1",
		realtimeURL: wsBase + "/realtime/v1/websocket",
		serviceKey:  cfg.ServiceKey,
		http:        httpClient,
		maxRetries:  cfg.MaxRetries,
		backoff:     cfg.Backoff,
		logger:      logger.With(zap.String("component", "supabase")),
	}, nil
}

// Error is a non-2xx answer from Supabase.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a Supabase 404.
func IsNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// do sends one request with the service key, retrying transport failures
// and 5xx answers with linear backoff.
func (c *Client) do(ctx context.Context, method, rawURL string, body []byte, headers map[string]string) ([]byte, int, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		respBody, status, err := c.once(ctx, method, rawURL, body, headers)
		if err == nil && status < http.StatusInternalServerError {
			return respBody, status, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = parseError(respBody, status)
		}
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		c.logger.Debug("supabase request failed",
			zap.String("method", method),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
	}
	return nil, 0, lastErr
}

func (c *Client) once(ctx context.Context, method, rawURL string, body []byte, headers map[string]string) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

func parseError(body []byte, statusCode int) error {
	var errResp struct {
		Code       any    `json:"code"`
		StatusCode string `json:"statusCode"`
		Message    string `json:"message"`
		Error      string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		return &Error{StatusCode: statusCode, Message: strings.TrimSpace(string(body))}
	}

	msg := errResp.Message
	if msg == "" {
		msg = errResp.Error
	}
	code := ""
	if errResp.Code != nil {
		code = fmt.Sprint(errResp.Code)
	}
	return &Error{StatusCode: statusCode, Code: code, Message: msg}
}
