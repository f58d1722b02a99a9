package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is where the backend listens when run locally
	DefaultBaseURL = "http://localhost:5000"

	// DefaultTimeout caps a single HTTP round trip (story + narration can be slow)
	DefaultTimeout = 5 * time.Minute

	// maxLoggedBody limits how much of a response body is written to the debug log
	maxLoggedBody = 2000
)

// Client is the sketch2story backend API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new backend client for baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL %q: scheme must be http or https", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q: missing host", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the backend base URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ProcessImage uploads an image and returns the backend's caption for it
func (c *Client) ProcessImage(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// CreateFormFile always sends application/octet-stream; the backend checks for image/*
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(path)))
	header.Set("Content-Type", contentTypeFor(path))
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to copy image to form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	var result ProcessImageResponse
	if err := c.do(ctx, http.MethodPost, "/process-image", writer.FormDataContentType(), body, &result); err != nil {
		return "", err
	}
	return result.Caption, nil
}

// GenerateStory asks the backend to write (and optionally narrate) a story
func (c *Client) GenerateStory(ctx context.Context, req *StoryRequest) (*StoryResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("story request is required")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var result StoryResponse
	if err := c.do(ctx, http.MethodPost, "/generate-story", "application/json", bytes.NewReader(payload), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Voices lists the narration voices the backend supports
func (c *Client) Voices(ctx context.Context) (*VoicesResponse, error) {
	var result VoicesResponse
	if err := c.do(ctx, http.MethodGet, "/voices", "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VocabularyLevels lists the vocabulary difficulty levels the backend supports
func (c *Client) VocabularyLevels(ctx context.Context) (*LevelsResponse, error) {
	var result LevelsResponse
	if err := c.do(ctx, http.MethodGet, "/vocabulary-levels", "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health reports whether the backend is up and which features it offers
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var result HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do executes a request and decodes a 200 response into out.
// Non-200 responses carrying {"error": ...} become *APIError.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	endpoint := c.baseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug("backend request", "method", method, "url", endpoint)
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("backend response",
		"method", method,
		"url", endpoint,
		"status", resp.StatusCode,
		"latency", time.Since(start),
		"body", truncate(respBody, maxLoggedBody),
	)

	if resp.StatusCode != http.StatusOK {
		var apiErr APIError
		if err := json.Unmarshal(respBody, &apiErr); err != nil {
			return fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, truncate(respBody, 200))
		}
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// contentTypeFor picks a part content type from the file extension
func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	default:
		return "application/octet-stream"
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
