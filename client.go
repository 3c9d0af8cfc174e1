package gdrive

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mtoivanen/gdrive-go/drive"
	"github.com/mtoivanen/gdrive-go/internal/bandwidth"
	"github.com/mtoivanen/gdrive-go/internal/gate"
	"github.com/mtoivanen/gdrive-go/internal/lockfile"
	"github.com/mtoivanen/gdrive-go/internal/retry"
)

// DefaultRetryCount is the upload attempt ceiling when UploadSpec leaves
// RetryCount unset.
const DefaultRetryCount = retry.DefaultAttempts

// Client exposes upload, download, folder creation, and commenting
// against a remote storage service, with optional call serialization,
// download throttling, and transient-failure retry on upload.
//
// A Client is safe for concurrent use. Without a configured lock, calls
// run in parallel and the remote service's own concurrency semantics
// govern outcomes; with one, every operation on this instance is
// strictly serialized.
type Client struct {
	svc    Service
	gate   *gate.Gate
	bw     *bandwidth.Limiter
	logger *slog.Logger

	retryBackoff time.Duration

	// sleepFunc waits between download chunks and retry attempts.
	// Tests override this to avoid real delays.
	sleepFunc func(time.Duration)
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	logger       *slog.Logger
	httpClient   *http.Client
	locker       gate.Locker
	bandwidth    int64
	retryBackoff time.Duration
	baseURL      string
	uploadURL    string
}

// WithLogger sets the logger for the client and its collaborators.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}

// WithHTTPClient sets the HTTP client used by the live drive service.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithSerializedCalls makes every operation on this client instance
// mutually exclusive within the process.
func WithSerializedCalls() Option {
	return func(c *clientConfig) { c.locker = &gate.MutexLocker{} }
}

// WithLockFile serializes operations across every process using the same
// lock file path, via a blocking flock on that file. Implies
// WithSerializedCalls semantics within the process.
func WithLockFile(path string) Option {
	return func(c *clientConfig) { c.locker = lockfile.New(path) }
}

// WithBandwidthLimit caps the client's aggregate download throughput at
// bytesPerSec, on top of any per-call ceiling. Zero or negative means
// unlimited.
func WithBandwidthLimit(bytesPerSec int64) Option {
	return func(c *clientConfig) { c.bandwidth = bytesPerSec }
}

// WithRetryBackoff sets the fixed delay between upload retry attempts.
// Defaults to one second.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *clientConfig) { c.retryBackoff = d }
}

// WithEndpoints overrides the drive API base URLs. Intended for tests
// and private API frontends.
func WithEndpoints(baseURL, uploadBaseURL string) Option {
	return func(c *clientConfig) {
		c.baseURL = baseURL
		c.uploadURL = uploadBaseURL
	}
}

// New creates a client backed by the live drive service, using a token
// previously saved by drive.Login. ctx is bound to token refresh and
// must outlive the client.
func New(ctx context.Context, scopes []string, credsPath, tokenPath string, opts ...Option) (*Client, error) {
	cfg := applyOptions(opts)

	token, err := drive.TokenSourceFromFile(ctx, scopes, credsPath, tokenPath, cfg.logger)
	if err != nil {
		return nil, err
	}

	svc := drive.NewClient(cfg.baseURL, cfg.uploadURL, cfg.httpClient, token, cfg.logger)

	return newClient(driveService{svc}, cfg), nil
}

// NewWithService creates a client around an injected Service
// implementation. Used by tests and alternative backends.
func NewWithService(svc Service, opts ...Option) *Client {
	return newClient(svc, applyOptions(opts))
}

func applyOptions(opts []Option) *clientConfig {
	cfg := &clientConfig{
		retryBackoff: retry.DefaultBackoff,
		baseURL:      drive.DefaultBaseURL,
		uploadURL:    drive.DefaultUploadBaseURL,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	return cfg
}

func newClient(svc Service, cfg *clientConfig) *Client {
	c := &Client{
		svc:          svc,
		bw:           bandwidth.New(cfg.bandwidth, cfg.logger),
		logger:       cfg.logger,
		retryBackoff: cfg.retryBackoff,
		sleepFunc:    time.Sleep,
	}

	if cfg.locker != nil {
		c.gate = gate.New(cfg.locker, cfg.logger)
	}

	return c
}
