// ABOUTME: HTTP client for the document-chat backend (query, math, upload, documents).
// ABOUTME: Collapses transport, status and decode failures into ErrRequestFailed.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	endpointQuery     = "/query"
	endpointMath      = "/math"
	endpointUpload    = "/upload"
	endpointDocuments = "/documents"

	// uploadField is the multipart field every uploaded file is sent under.
	uploadField = "files"

	// maxErrorBody caps how much of a failed response body is kept for logs.
	maxErrorBody = 4096
)

// ErrRequestFailed is wrapped by every error the Client returns.
var ErrRequestFailed = errors.New("request failed")

// StatusError records a non-2xx response. It unwraps to ErrRequestFailed.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrRequestFailed
}

// UploadFile is one file in an upload request.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// Client talks to one backend base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets a per-request timeout. Zero means no timeout.
// It applies to a copy of the http.Client, never the one passed in.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	normalized, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:    normalized,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	c.logger = c.logger.With("component", "api")

	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NormalizeBaseURL adds a missing http:// scheme and strips trailing slashes.
// Only http and https URLs with a host are accepted.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("base URL is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: missing host", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid base URL %q: scheme must be http or https", raw)
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Query asks a natural-language question against the uploaded documents.
func (c *Client) Query(ctx context.Context, query string) (*QueryResponse, error) {
	var resp QueryResponse
	if err := c.doJSON(ctx, http.MethodPost, endpointQuery, QueryRequest{Query: query}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Math submits an expression for evaluation.
func (c *Client) Math(ctx context.Context, expression string) (*MathResponse, error) {
	var resp MathResponse
	if err := c.doJSON(ctx, http.MethodPost, endpointMath, MathRequest{Expression: expression}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Upload sends files as one multipart request.
func (c *Client) Upload(ctx context.Context, files []UploadFile) (*UploadResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for _, f := range files {
		part, err := mw.CreateFormFile(uploadField, f.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: creating form part for %s: %v", ErrRequestFailed, f.Name, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrRequestFailed, f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: closing multipart body: %v", ErrRequestFailed, err)
	}

	var resp UploadResponse
	if err := c.do(ctx, http.MethodPost, endpointUpload, &body, mw.FormDataContentType(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListDocuments returns the filenames the backend currently holds.
func (c *Client) ListDocuments(ctx context.Context) (*DocumentsResponse, error) {
	var resp DocumentsResponse
	if err := c.do(ctx, http.MethodGet, endpointDocuments, nil, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteDocument removes one document by filename.
func (c *Client) DeleteDocument(ctx context.Context, filename string) (*AckResponse, error) {
	var resp AckResponse
	path := endpointDocuments + "/" + url.PathEscape(filename)
	if err := c.do(ctx, http.MethodDelete, path, nil, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteAllDocuments removes every document.
func (c *Client) DeleteAllDocuments(ctx context.Context) (*AckResponse, error) {
	var resp AckResponse
	if err := c.do(ctx, http.MethodDelete, endpointDocuments, nil, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// doJSON marshals reqBody and performs the request.
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, out any) error {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("%w: marshaling request: %v", ErrRequestFailed, err)
	}
	return c.do(ctx, method, path, bytes.NewReader(data), "application/json", out)
}

// do performs one request and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	requestID := uuid.New().String()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", ErrRequestFailed, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			"request_id", requestID,
			"method", method,
			"path", path,
			"error", err,
		)
		return fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Detail:     readDetail(resp.Body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: decoding response: %v", ErrRequestFailed, method, path, err)
	}
	return nil
}

// readDetail extracts the "detail" field of an error body, falling back to
// the raw text.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var er errorResponse
	if err := json.Unmarshal(data, &er); err == nil && er.Detail != "" {
		return er.Detail
	}
	return strings.TrimSpace(string(data))
}
