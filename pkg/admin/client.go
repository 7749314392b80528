// Package admin is a client for the administrative HTTP API exposed by MSP
// platform instances. It wraps the five fixed admin operations (ping, health
// check, system info, integration deployment, database migration) behind a
// Client that folds every outcome, including transport errors, timeouts,
// non-2xx statuses and undecodable bodies, into a two-variant Result.
// Sequential bulk helpers run an operation across a fleet with per-instance
// isolation.
package admin

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

	"go.uber.org/zap"

	"github.com/msplatform/mspadm/internal/metrics"
)

// Version is reported in the User-Agent header and by the CLI. Overridden
// at build time via -ldflags.
var Version = "0.1.0"

// Config contains configuration options for creating a new Client.
type Config struct {
	// Credential is the opaque admin secret sent as
	// "Authorization: Admin <credential>" on every request.
	Credential string

	// InsecureSkipVerify disables TLS certificate verification.
	// Warning: only use this for self-signed certificates in trusted
	// environments.
	InsecureSkipVerify bool

	// Logger receives request debug logs and bulk progress notices.
	// Defaults to a no-op logger.
	Logger *zap.Logger

	// HTTPClient overrides the underlying HTTP client. It must not carry
	// its own Timeout; deadlines are applied per operation.
	HTTPClient *http.Client
}

// Client issues admin operations against platform instances. The credential
// is fixed at construction while the target instance is chosen per call, so
// a single Client can administer any number of instances.
type Client struct {
	credential string
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a new admin API client with the given configuration.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
		if cfg.InsecureSkipVerify {
			httpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- explicit user opt-in
			}
		}
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		credential: cfg.Credential,
		httpClient: httpClient,
		log:        log,
	}
}

// do runs one operation against one instance and reduces every possible
// outcome to a Result.
func (c *Client) do(ctx context.Context, op operation, instanceURL string, body any) Result {
	start := time.Now()
	res := c.roundTrip(ctx, op, instanceURL, body)
	metrics.RecordRequest(op.name, res.Status, time.Since(start).Seconds())
	metrics.RecordInstanceStatus(instanceURL, res.OK())

	if res.OK() {
		c.log.Debug("admin request succeeded",
			zap.String("operation", op.name),
			zap.String("instance", instanceURL),
			zap.Duration("elapsed", time.Since(start)))
	} else {
		c.log.Debug("admin request failed",
			zap.String("operation", op.name),
			zap.String("instance", instanceURL),
			zap.String("error", res.Err))
	}
	return res
}

func (c *Client) roundTrip(ctx context.Context, op operation, instanceURL string, body any) Result {
	ctx, cancel := context.WithTimeout(ctx, op.timeout)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Failure(fmt.Errorf("encode request body: %w", err))
		}
		bodyReader = bytes.NewReader(data)
	}

	url := strings.TrimSuffix(instanceURL, "/") + op.path
	req, err := http.NewRequestWithContext(ctx, op.method, url, bodyReader)
	if err != nil {
		return Failure(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Admin "+c.credential)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "mspadm/"+Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Failure(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return Failure(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	var parsed any
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Failure(fmt.Errorf("decode response body: %w", err))
	}
	return Success(parsed)
}
