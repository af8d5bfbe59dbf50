package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/magpie/pkg/apierror"
	"github.com/dmitrymomot/magpie/pkg/logger"
)

// maxResponseSize bounds how much of a response body is read into memory.
const maxResponseSize = 10 << 20

// Client sends authenticated requests to the Magpie API, retrying transient
// failures and turning every terminal failure into an *apierror.Error.
//
// Requests issued through one Client are independent; the only shared mutable
// state is the credential, which Rotate swaps under a lock.
type Client struct {
	mu         sync.RWMutex
	credential string

	cfg             Config
	httpClient      *http.Client
	policy          RetryPolicy
	breaker         *CircuitBreaker
	limiter         *rate.Limiter
	logger          *slog.Logger
	autoIdempotency bool
}

// New creates a transport authenticated with a secret key.
// It fails with a configuration error if the key is empty or does not start with "sk_".
func New(secretKey string, opts ...Option) (*Client, error) {
	if secretKey == "" {
		return nil, apierror.Configuration("Secret key is required")
	}
	if !strings.HasPrefix(secretKey, "sk_") {
		return nil, apierror.Configuration(`Invalid secret key format. Secret key must start with "sk_"`)
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	backoff := o.backoff
	if backoff == nil {
		backoff = DefaultBackoff(o.cfg)
	}

	log := o.logger
	if log == nil {
		if o.cfg.Debug {
			log = logger.New(logger.WithLevel(slog.LevelDebug))
		} else {
			log = logger.Discard()
		}
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = newHTTPClient(o.cfg)
	}

	return &Client{
		credential:      secretKey,
		cfg:             o.cfg,
		httpClient:      httpClient,
		policy:          RetryPolicy{MaxRetries: o.cfg.MaxRetries, Backoff: backoff},
		breaker:         o.breaker,
		limiter:         newLimiter(o.cfg),
		logger:          log,
		autoIdempotency: o.autoIdempotency,
	}, nil
}

// newLimiter returns nil when no request rate is configured.
func newLimiter(cfg Config) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))
}

// newHTTPClient builds the pooled HTTP client bound to the configured timeouts.
func newHTTPClient(cfg Config) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
	t := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	if cfg.InsecureSkipVerify {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed test endpoints
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: t,
	}
}

// Config returns a copy of the client configuration.
func (c *Client) Config() Config {
	cfg := c.cfg
	cfg.DefaultHeaders = make(map[string]string, len(c.cfg.DefaultHeaders))
	for k, v := range c.cfg.DefaultHeaders {
		cfg.DefaultHeaders[k] = v
	}
	return cfg
}

// Credential returns the API key currently used for authentication.
func (c *Client) Credential() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.credential
}

// Rotate replaces the API key used by all subsequent requests.
// Both secret ("sk_") and public ("pk_") keys are accepted.
func (c *Client) Rotate(key string) error {
	if err := ValidateAPIKey(key); err != nil {
		return err
	}
	c.mu.Lock()
	c.credential = key
	c.mu.Unlock()
	return nil
}

// ValidateAPIKey checks that key is a secret or public Magpie key.
func ValidateAPIKey(key string) error {
	if key == "" {
		return apierror.Configuration("API key is required")
	}
	if !strings.HasPrefix(key, "sk_") && !strings.HasPrefix(key, "pk_") {
		return apierror.Configuration(`Invalid API key format. API key must start with "sk_" or "pk_"`)
	}
	return nil
}

// Get sends a GET request; params are encoded as query parameters.
func (c *Client) Get(ctx context.Context, path string, params any, opts ...RequestOption) (map[string]any, error) {
	return c.Request(ctx, http.MethodGet, path, params, opts...)
}

// Post sends a POST request with data as JSON body.
func (c *Client) Post(ctx context.Context, path string, data any, opts ...RequestOption) (map[string]any, error) {
	return c.Request(ctx, http.MethodPost, path, data, opts...)
}

// Put sends a PUT request with data as JSON body.
func (c *Client) Put(ctx context.Context, path string, data any, opts ...RequestOption) (map[string]any, error) {
	return c.Request(ctx, http.MethodPut, path, data, opts...)
}

// Patch sends a PATCH request with data as JSON body.
func (c *Client) Patch(ctx context.Context, path string, data any, opts ...RequestOption) (map[string]any, error) {
	return c.Request(ctx, http.MethodPatch, path, data, opts...)
}

// Delete sends a DELETE request; params are encoded as query parameters.
func (c *Client) Delete(ctx context.Context, path string, params any, opts ...RequestOption) (map[string]any, error) {
	return c.Request(ctx, http.MethodDelete, path, params, opts...)
}

// Request performs an API call and decodes the JSON object in the response.
func (c *Client) Request(ctx context.Context, method, path string, data any, opts ...RequestOption) (map[string]any, error) {
	res, err := c.do(ctx, method, path, data, opts)
	if err != nil {
		return nil, err
	}

	out := map[string]any{}
	if len(res.body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(res.body, &out); err != nil {
		return nil, apierror.InvalidJSON(res.status, res.header, err)
	}
	return out, nil
}

// Do performs an API call and returns the validated raw JSON body.
// An empty body is returned as "{}".
func (c *Client) Do(ctx context.Context, method, path string, data any, opts ...RequestOption) (json.RawMessage, error) {
	res, err := c.DoResponse(ctx, method, path, data, opts...)
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}

// Response is a successful API response.
type Response struct {
	Status int
	Header http.Header
	Body   json.RawMessage // "{}" when the server sent nothing
}

// DoResponse is Do with the status and headers kept, so that callers
// decoding the body can report them on failure.
func (c *Client) DoResponse(ctx context.Context, method, path string, data any, opts ...RequestOption) (*Response, error) {
	res, err := c.do(ctx, method, path, data, opts)
	if err != nil {
		return nil, err
	}
	out := &Response{Status: res.status, Header: res.header, Body: json.RawMessage(res.body)}
	if len(res.body) == 0 {
		out.Body = json.RawMessage("{}")
	}
	return out, nil
}

// Ping checks connectivity against the unversioned health endpoint.
func (c *Client) Ping(ctx context.Context) bool {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/ping"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	c.applyHeaders(req, &requestOptions{})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(body)) == "healthy"
}

// result is a successful response with its body already read
type result struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, method, path string, data any, opts []RequestOption) (*result, error) {
	method = strings.ToUpper(method)
	ro := newRequestOptions(opts)
	if c.autoIdempotency && method == http.MethodPost && ro.idempotencyKey == "" {
		ro.idempotencyKey = uuid.NewString()
	}

	endpoint, body, err := c.buildTarget(method, path, data, ro)
	if err != nil {
		return nil, &apierror.Error{
			Kind:    apierror.KindValidation,
			Message: err.Error(),
			Type:    apierror.TypeInvalidRequest,
			Code:    "invalid_request_data",
			Err:     err,
		}
	}

	if c.breaker != nil && !c.breaker.Allow() {
		return nil, &apierror.Error{
			Kind:    apierror.KindNetwork,
			Message: ErrCircuitOpen.Error(),
			Type:    apierror.TypeNetwork,
			Code:    "circuit_open",
			Err:     ErrCircuitOpen,
		}
	}

	var (
		resp     *http.Response
		respBody []byte
		sendErr  error
	)

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			delay := c.policy.Delay(attempt)
			c.logRetry(ctx, method, endpoint, attempt, delay, sendErr)
			if err := sleep(ctx, delay); err != nil {
				return nil, apierror.Network(err)
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, apierror.Network(err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytesReader(body))
		if err != nil {
			return nil, apierror.Configuration("invalid request: " + err.Error())
		}
		c.applyHeaders(req, ro)

		c.logRequest(ctx, req, body, attempt)
		resp, respBody, sendErr = c.send(req)
		c.logResponse(ctx, resp, respBody)
		c.recordOutcome(resp, sendErr)

		if sendErr == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if len(bytes.TrimSpace(respBody)) == 0 {
				return &result{status: resp.StatusCode, header: resp.Header}, nil
			}
			if !json.Valid(respBody) {
				return nil, apierror.InvalidJSON(resp.StatusCode, resp.Header, errors.New("response body is not valid JSON"))
			}
			return &result{status: resp.StatusCode, header: resp.Header, body: respBody}, nil
		}

		if !c.policy.ShouldRetry(attempt, req, resp, sendErr) {
			break
		}
	}

	if sendErr != nil {
		return nil, apierror.Network(sendErr)
	}
	return nil, apierror.Classify(resp.StatusCode, respBody, resp.Header)
}

// send dispatches a single attempt and reads the whole response body.
// A body that cannot be read counts as a transport failure.
func (c *Client) send(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, err
	}
	return resp, body, nil
}

func (c *Client) recordOutcome(resp *http.Response, err error) {
	if c.breaker == nil {
		return
	}
	if err != nil || (resp != nil && resp.StatusCode >= 500) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

// buildTarget resolves the request URL and encodes data as body or query.
func (c *Client) buildTarget(method, path string, data any, ro *requestOptions) (string, []byte, error) {
	base := c.cfg.APIURL()
	if ro.baseURL != "" {
		base = strings.TrimRight(ro.baseURL, "/") + "/"
	}
	endpoint := base + strings.TrimLeft(path, "/")

	var (
		body  []byte
		err   error
		query = url.Values{}
	)

	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		if data != nil {
			body, err = json.Marshal(data)
			if err != nil {
				return "", nil, err
			}
		}
	default:
		query, err = encodeQuery(data)
		if err != nil {
			return "", nil, err
		}
	}

	for _, f := range ro.expand {
		query.Add("expand[]", f)
	}

	if len(query) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + query.Encode()
	}

	return endpoint, body, nil
}

// applyHeaders sets the fixed header set, defaults, per-call headers and
// Basic authentication with the credential as username and an empty password.
func (c *Client) applyHeaders(req *http.Request, ro *requestOptions) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set(HeaderAPIVersion, c.cfg.APIVersion)

	for k, v := range c.cfg.DefaultHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range ro.headers {
		req.Header.Set(k, v)
	}
	if ro.idempotencyKey != "" {
		req.Header.Set(HeaderIdempotencyKey, ro.idempotencyKey)
	}

	credential := ro.credential
	if credential == "" {
		credential = c.Credential()
	}
	req.SetBasicAuth(credential, "")
}

func bytesReader(b []byte) io.Reader {
	if b == nil {
		return nil
	}
	return bytes.NewReader(b)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
