// Package towerapi implements the backend API ports over a single
// authenticated HTTP dispatcher.
package towerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
	"github.com/ericfisherdev/towerpanel/internal/domain/port/driven"
)

// DefaultTimeout bounds every request so a hung backend cannot block a caller forever.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response body is kept on the error.
const maxErrorBody = 4 << 10

// Envelope is the wrapper every backend response uses.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Dispatcher issues verb-based requests against the configured base URL. Every
// outgoing request passes through the auth transport, which attaches the
// current bearer token when one is held.
type Dispatcher struct {
	client  *http.Client
	baseURL *url.URL
	auth    *authTransport
	logger  *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*dispatcherOptions)

type dispatcherOptions struct {
	timeout   time.Duration
	logger    *slog.Logger
	transport http.RoundTripper
	cache     httpcache.Cache
	noCache   bool
}

// WithTimeout overrides DefaultTimeout. Zero disables the client timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *dispatcherOptions) { o.timeout = d }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *dispatcherOptions) { o.logger = l }
}

// WithTransport replaces the innermost transport (http.DefaultTransport).
func WithTransport(rt http.RoundTripper) Option {
	return func(o *dispatcherOptions) { o.transport = rt }
}

// WithCache replaces the in-memory store of the ETag cache layer.
func WithCache(c httpcache.Cache) Option {
	return func(o *dispatcherOptions) { o.cache = c }
}

// WithoutCache removes the ETag cache layer from the transport stack.
func WithoutCache() Option {
	return func(o *dispatcherOptions) { o.noCache = true }
}

// NewDispatcher creates a Dispatcher with the following transport stack:
//  1. auth transport (bearer token injection, request IDs, 401 notification)
//  2. httpcache (ETag-based conditional request caching)
//  3. http.DefaultTransport, or the one given via WithTransport
func NewDispatcher(baseURL string, tokens driven.TokenSource, opts ...Option) (*Dispatcher, error) {
	o := dispatcherOptions{timeout: DefaultTimeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing base URL %q: scheme and host are required", baseURL)
	}

	base := o.transport
	if base == nil {
		base = http.DefaultTransport
	}
	if !o.noCache {
		store := o.cache
		if store == nil {
			store = httpcache.NewMemoryCache()
		}
		cache := httpcache.NewTransport(store)
		cache.Transport = base
		base = cache
	}

	auth := &authTransport{tokens: tokens, next: base}

	return &Dispatcher{
		client:  &http.Client{Transport: auth, Timeout: o.timeout},
		baseURL: u,
		auth:    auth,
		logger:  o.logger,
	}, nil
}

// OnUnauthorized registers fn to run whenever a request that carried a bearer
// token is answered with 401. Passing nil removes the hook.
func (d *Dispatcher) OnUnauthorized(fn func()) {
	d.auth.setHook(fn)
}

// Get issues a GET and decodes the envelope's data into out (which may be nil).
func (d *Dispatcher) Get(ctx context.Context, path string, query url.Values, out any) error {
	return d.do(ctx, http.MethodGet, path, query, nil, nil, out)
}

// GetFresh issues a GET whose response is never written to the HTTP cache.
// Reads with a unique cache-busting query go through it.
func (d *Dispatcher) GetFresh(ctx context.Context, path string, query url.Values, out any) error {
	h := http.Header{}
	h.Set("Cache-Control", "no-store")
	return d.do(ctx, http.MethodGet, path, query, nil, h, out)
}

// Post issues a POST with a JSON body.
func (d *Dispatcher) Post(ctx context.Context, path string, body, out any) error {
	return d.doJSON(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body. A nil body sends no payload.
func (d *Dispatcher) Put(ctx context.Context, path string, body, out any) error {
	return d.doJSON(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (d *Dispatcher) Delete(ctx context.Context, path string, out any) error {
	return d.do(ctx, http.MethodDelete, path, nil, nil, nil, out)
}

// PostMultipart issues a POST with a multipart/form-data body.
func (d *Dispatcher) PostMultipart(ctx context.Context, path string, form Form, out any) error {
	return d.doMultipart(ctx, http.MethodPost, path, form, out)
}

// PutMultipart issues a PUT with a multipart/form-data body.
func (d *Dispatcher) PutMultipart(ctx context.Context, path string, form Form, out any) error {
	return d.doMultipart(ctx, http.MethodPut, path, form, out)
}

func (d *Dispatcher) doJSON(ctx context.Context, method, path string, body, out any) error {
	if body == nil {
		return d.do(ctx, method, path, nil, nil, nil, out)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s %s body: %w", method, path, err)
	}
	return d.do(ctx, method, path, nil, data, contentTypeHeader("application/json"), out)
}

func (d *Dispatcher) doMultipart(ctx context.Context, method, path string, form Form, out any) error {
	data, contentType, err := form.encode()
	if err != nil {
		return fmt.Errorf("encoding %s %s form: %w", method, path, err)
	}
	return d.do(ctx, method, path, nil, data, contentTypeHeader(contentType), out)
}

func contentTypeHeader(v string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", v)
	return h
}

func (d *Dispatcher) do(ctx context.Context, method, path string, query url.Values, body []byte, header http.Header, out any) error {
	target := d.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		return &model.APIError{
			Kind:    model.KindTransport,
			Method:  method,
			Path:    path,
			Message: "request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	d.logger.Debug("api call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get(requestIDHeader),
		"cached", resp.Header.Get(httpcache.XFromCache) == "1",
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(method, path, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	// Reading to EOF lets httpcache store the body.
	_, _ = io.Copy(io.Discard, resp.Body)
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding %s %s data: %w", method, path, err)
	}
	return nil
}

// responseError builds an APIError from a non-2xx response, taking the
// message from the envelope when the body carries one.
func responseError(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var env Envelope
	_ = json.Unmarshal(raw, &env)

	return &model.APIError{
		Kind:       model.KindForStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Method:     method,
		Path:       path,
		Message:    env.Message,
		Err:        fmt.Errorf("unexpected status %s: %s", resp.Status, bytes.TrimSpace(raw)),
	}
}
