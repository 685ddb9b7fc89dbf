// Package client is the Go SDK of the TrailBack API.
//
// A Client wraps the REST endpoints and the client-side rules that sit in front of
// them: merging own and shared memories, validating the memory form before any
// request is made, the two-phase photo upload and the share toggle.
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

	"github.com/rs/zerolog"
)

// Config holds the settings a Client is built from.
type Config struct {
	BaseURL      string
	PhotosBucket string
	Timeout      time.Duration
	Settings     Settings
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAuthProvider sets the provider used for sessions and bearer tokens.
func WithAuthProvider(p AuthProvider) Option {
	return func(c *Client) { c.auth = p }
}

// WithUploader sets the object uploader used by AttachPhoto.
func WithUploader(u ObjectUploader) Option {
	return func(c *Client) { c.uploader = u }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Client talks to one TrailBack API. It is safe for concurrent use.
type Client struct {
	baseURL      *url.URL
	photosBucket string
	settings     Settings
	http         *http.Client
	auth         AuthProvider
	uploader     ObjectUploader
	logger       zerolog.Logger
	now          func() time.Time
}

// New builds a Client. BaseURL is required.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("client: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parsing base URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	bucket := cfg.PhotosBucket
	if bucket == "" {
		bucket = "photos"
	}

	c := &Client{
		baseURL:      base,
		photosBucket: bucket,
		settings:     cfg.Settings,
		http:         &http.Client{Timeout: timeout},
		logger:       zerolog.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Settings returns the presentation settings the client was created with.
func (c *Client) Settings() Settings {
	return c.settings
}

// APIError is returned for every non-2xx response.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("trailback: HTTP %d", e.Status)
	}
	return fmt.Sprintf("trailback: HTTP %d: %s", e.Status, e.Detail)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// MessageResponse is the body of endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// doJSON sends body as JSON (when non-nil) and decodes the response into out
// (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, query, reader, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Detail = payload.Detail
		}
		c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Str("detail", apiErr.Detail).Msg("request failed")
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// authorize attaches a bearer token when the auth provider can mint one.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	tp, ok := c.auth.(TokenProvider)
	if !ok {
		return nil
	}
	token, err := tp.IDToken(ctx)
	if err != nil {
		return &AuthError{Op: "token", Err: err}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

func userQuery(key, value string) url.Values {
	return url.Values{key: []string{value}}
}

// ServiceStatus is the body of GET /.
type ServiceStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status reports the API banner and version.
func (c *Client) Status(ctx context.Context) (*ServiceStatus, error) {
	var status ServiceStatus
	if err := c.doJSON(ctx, http.MethodGet, "/", nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
