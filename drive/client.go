package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Production endpoints. Tests point both at an httptest server.
const (
	DefaultBaseURL = "https://www.googleapis.com/drive/v3"

	// DefaultUploadBaseURL is the separate host path for media uploads.
	DefaultUploadBaseURL = "https://www.googleapis.com/upload/drive/v3"
)

// defaultChunkSize is the ranged-request size for chunked media
// downloads (1 MiB).
const defaultChunkSize = 1 << 20

const userAgent = "gdrive-go/0.1"

// TokenSource provides OAuth2 bearer tokens. Defined at the consumer per
// Go convention "accept interfaces, return structs"; the auth flow in
// this package provides the real implementation.
type TokenSource interface {
	Token() (string, error)
}

// Client is an HTTP client for the Drive v3 API. Every call is a single
// request-response: the client classifies errors but never retries, so a
// policy layer above it decides what is worth repeating.
type Client struct {
	baseURL       string
	uploadBaseURL string
	httpClient    *http.Client
	token         TokenSource
	logger        *slog.Logger
	chunkSize     int64
}

// NewClient creates a Drive API client. baseURL and uploadBaseURL are
// typically DefaultBaseURL and DefaultUploadBaseURL.
func NewClient(baseURL, uploadBaseURL string, httpClient *http.Client, token TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:       baseURL,
		uploadBaseURL: uploadBaseURL,
		httpClient:    httpClient,
		token:         token,
		logger:        logger,
		chunkSize:     defaultChunkSize,
	}
}

// do executes a single request against url. Non-2xx responses are turned
// into an *APIError with a classified sentinel; transport errors pass
// through wrapped so the caller's policy layer can classify them.
// On success the caller owns the response body.
func (c *Client) do(ctx context.Context, method, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("drive: creating request: %w", err)
	}

	tok, err := c.token.Token()
	if err != nil {
		return nil, fmt.Errorf("drive: obtaining token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("User-Agent", userAgent)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Wrapped, not replaced: the chain keeps syscall/TLS details the
		// retry classifier needs.
		return nil, fmt.Errorf("drive: %s %s: %w", method, req.URL.Path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		errBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if readErr != nil {
			errBody = []byte("(failed to read response body)")
		}

		c.logger.Debug("request failed",
			slog.String("method", method),
			slog.String("path", req.URL.Path),
			slog.Int("status", resp.StatusCode),
		)

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(errBody),
			Err:        classifyStatus(resp.StatusCode),
		}
	}

	c.logger.Debug("request succeeded",
		slog.String("method", method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
	)

	return resp, nil
}
