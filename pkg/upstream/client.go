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
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	pkgerrors "github.com/nilecommerce/admin-service/pkg/errors"
	"github.com/nilecommerce/admin-service/pkg/logger"
	"github.com/nilecommerce/admin-service/pkg/metrics"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 3
	defaultBaseDelay   = 1 * time.Second
	maxErrorBodyBytes  = 2048

	userAgent = "Nile-Admin-Service/1.0"
)

var (
	errBaseURLRequired = errors.New("upstream base url is required")
	errLoggerRequired  = errors.New("upstream logger is required")
)

// Client issues JSON requests against an external service with retries on
// transient failures. Credentials and the base URL can be rotated at runtime.
type Client struct {
	service     string
	httpClient  *http.Client
	headers     map[string]string
	maxAttempts int
	baseDelay   time.Duration
	logger      *logger.Logger
	metrics     *metrics.UpstreamMetrics

	mu      sync.RWMutex
	baseURL string
	apiKey  string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport. Mostly used in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHeader adds a static header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithMaxAttempts bounds the total number of tries, including the first.
func WithMaxAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
	}
}

// WithBaseDelay sets the initial backoff delay between retries.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

// WithMetrics attaches prometheus instrumentation.
func WithMetrics(m *metrics.UpstreamMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a client for the named upstream service.
func NewClient(service, baseURL, apiKey string, logg *logger.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errBaseURLRequired
	}
	if logg == nil {
		return nil, errLoggerRequired
	}

	c := &Client{
		service:     strings.TrimSpace(service),
		httpClient:  &http.Client{Timeout: defaultTimeout},
		headers:     map[string]string{},
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      logg,
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:      strings.TrimSpace(apiKey),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetAPIKey swaps the bearer credential used for subsequent requests.
func (c *Client) SetAPIKey(apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = strings.TrimSpace(apiKey)
}

// SetBaseURL repoints the client at a different upstream host.
func (c *Client) SetBaseURL(baseURL string) error {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return errBaseURLRequired
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = trimmed
	return nil
}

// BaseURL reports the currently configured upstream host.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		payload = encoded
	}

	backoff := retry.NewExponential(c.baseDelay)
	backoff = retry.WithJitterPercent(20, backoff)
	backoff = retry.WithMaxRetries(uint64(c.maxAttempts-1), backoff)

	attempt := 0
	started := time.Now()
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		status, attemptErr := c.doOnce(ctx, method, path, query, payload, out, attempt)
		if attemptErr == nil {
			return nil
		}
		if retryableFailure(status, attemptErr) {
			if c.metrics != nil && attempt < c.maxAttempts {
				c.metrics.IncRetry(c.service, method)
			}
			return retry.RetryableError(attemptErr)
		}
		return attemptErr
	})
	if err != nil {
		return c.classify(ctx, method, path, err, time.Since(started))
	}
	return nil
}

// doOnce performs a single request. The returned status is zero when the
// request never produced a response.
func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, payload []byte, out any, attempt int) (int, error) {
	c.mu.RLock()
	baseURL := c.baseURL
	apiKey := c.apiKey
	c.mu.RUnlock()

	target := baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upstream request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	logCtx := c.logger.WithFields(ctx, map[string]any{
		"upstream": c.service,
		"method":   method,
		"path":     path,
		"attempt":  attempt,
	})

	reqStart := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn(logCtx, "upstream request failed")
		return 0, &transportError{cause: err}
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.ObserveRequest(c.service, method, resp.StatusCode, time.Since(reqStart))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.logger.Warn(c.logger.WithField(logCtx, "status", resp.StatusCode), "upstream returned error status")
		return resp.StatusCode, &statusError{status: resp.StatusCode, body: snippet}
	}

	c.logger.Debug(c.logger.WithField(logCtx, "status", resp.StatusCode), "upstream request completed")

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode upstream response")
	}
	return resp.StatusCode, nil
}

func retryableFailure(status int, err error) bool {
	var transport *transportError
	if errors.As(err, &transport) {
		return true
	}
	return status >= http.StatusInternalServerError ||
		status == http.StatusTooManyRequests ||
		status == http.StatusRequestTimeout
}

// classify maps the final attempt's failure to a domain error.
func (c *Client) classify(ctx context.Context, method, path string, err error, elapsed time.Duration) error {
	logCtx := c.logger.WithFields(ctx, map[string]any{
		"upstream":   c.service,
		"method":     method,
		"path":       path,
		"elapsed_ms": elapsed.Milliseconds(),
	})

	var transport *transportError
	if errors.As(err, &transport) {
		c.logger.Error(logCtx, "upstream unreachable", transport.cause)
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, transport.cause,
			fmt.Sprintf("%s service unreachable", c.service))
	}

	var status *statusError
	if errors.As(err, &status) {
		c.logger.Error(logCtx, "upstream request rejected", status)
		wrapped := pkgerrors.Wrap(codeForStatus(status.status), status,
			fmt.Sprintf("%s service returned %d", c.service, status.status))
		if msg := status.Message(); msg != "" {
			wrapped = wrapped.WithDetails(msg)
		}
		return wrapped.WithUpstreamStatus(status.status)
	}

	var domainErr *pkgerrors.Error
	if errors.As(err, &domainErr) {
		return domainErr
	}

	c.logger.Error(logCtx, "upstream request failed", err)
	return pkgerrors.Wrap(pkgerrors.CodeUpstream, err,
		fmt.Sprintf("%s service request failed", c.service))
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeUpstream
	}
}
