// Package dispatch issues signed API calls against identity providers.
//
// The dispatcher is transport-agnostic: it builds the outbound request,
// attaches whatever authorization evidence the active protocol requires, and
// hands the request to an injected HTTP client. Transport-level failures and
// HTTP error statuses are surfaced as distinct error kinds so callers can
// tell "the provider was unreachable" apart from "the provider answered and
// broke the contract".
package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"dario.cat/mergo"

	"github.com/idconnect/idconnect/pkg/decode"
	"github.com/idconnect/idconnect/pkg/errors"
	"github.com/idconnect/idconnect/pkg/logger"
)

const (
	// maxResponseSize caps response bodies read into memory (1MB).
	maxResponseSize = 1024 * 1024

	// errorPreviewSize caps the response-body excerpt carried in errors.
	errorPreviewSize = 1024
)

// HTTPClient is the transport boundary consumed by the dispatcher. The core
// never assumes a specific transport implementation; anything that can
// execute an *http.Request qualifies, which also allows mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransportOptions carries optional transport tuning supplied by provider
// configuration.
type TransportOptions struct {
	// UserAgent overrides the default User-Agent header at the transport level.
	UserAgent string

	// FollowRedirects controls whether 3xx responses are followed.
	FollowRedirects bool
}

// ConfigurableTransport is an optional capability: a transport either
// implements it or it does not, and the dispatcher checks the interface
// rather than probing for methods.
type ConfigurableTransport interface {
	HTTPClient

	// Configure applies transport options before the first request.
	Configure(opts TransportOptions) error
}

// Request describes one outbound provider call.
type Request struct {
	// URL is the absolute target URL.
	URL string

	// Method is the HTTP method; GET when empty.
	Method string

	// Params are request parameters. For GET and DELETE they are appended
	// to the query string; for other methods they form the request body.
	Params map[string]string

	// Headers are per-call headers, merged over the dispatcher's default
	// headers with the caller's values winning. An empty value suppresses
	// a default header.
	Headers map[string]string

	// Multipart encodes body parameters as multipart/form-data instead of
	// application/x-www-form-urlencoded.
	Multipart bool

	// Evidence is the authorization evidence to attach; nil sends the
	// request unauthenticated.
	Evidence Evidence
}

// Response is the outcome of a dispatched call.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Headers are the response headers.
	Headers http.Header

	// RawBody is the unmodified response body.
	RawBody []byte

	// Data is the tolerantly decoded body.
	Data *decode.Collection
}

// Dispatcher sends signed requests through an injected transport.
type Dispatcher struct {
	client         HTTPClient
	defaultHeaders map[string]string
	defaultParams  map[string]string
	validateStatus bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient sets the transport the dispatcher sends through.
func WithHTTPClient(client HTTPClient) Option {
	return func(d *Dispatcher) {
		d.client = client
	}
}

// WithDefaultHeaders sets headers attached to every request. Per-call
// headers override them.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(d *Dispatcher) {
		d.defaultHeaders = headers
	}
}

// WithDefaultParams sets parameters attached to every request. Per-call
// parameters override them.
func WithDefaultParams(params map[string]string) Option {
	return func(d *Dispatcher) {
		d.defaultParams = params
	}
}

// WithoutStatusValidation disables the 2xx response check. A few providers
// return non-2xx statuses for semantically successful calls.
func WithoutStatusValidation() Option {
	return func(d *Dispatcher) {
		d.validateStatus = false
	}
}

// New creates a Dispatcher. Without options it uses the hardened default
// HTTP client and validates response statuses.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:         DefaultClient(),
		validateStatus: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Do dispatches one request and validates the response.
//
// A transport-level failure is always a hard failure. An HTTP status outside
// 200-299 is a hard failure unless status validation is disabled for this
// dispatcher; the decoded body is still returned alongside the error so
// callers can log provider diagnostics.
func (d *Dispatcher) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := d.build(ctx, req)
	if err != nil {
		return nil, err
	}

	logger.Debugw("dispatching provider request",
		"method", httpReq.Method,
		"url", httpReq.URL.Redacted(),
	)

	httpResp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, errors.NewTransportError(
			fmt.Sprintf("request to %s failed", req.URL), err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.NewTransportError(
			fmt.Sprintf("failed to read response from %s", req.URL), err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		RawBody:    body,
		Data:       decode.Parse(body),
	}

	if d.validateStatus && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return resp, errors.NewProtocolViolationError(
			fmt.Sprintf("%s returned HTTP %d: %s", req.URL, resp.StatusCode, bodyPreview(body)), nil)
	}

	return resp, nil
}

// build assembles the *http.Request: default/caller parameter and header
// merges, parameter placement by method, and evidence attachment.
func (d *Dispatcher) build(ctx context.Context, req Request) (*http.Request, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	target, err := url.Parse(req.URL)
	if err != nil || !target.IsAbs() {
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("invalid request URL %q", req.URL), err)
	}

	params := mergeMaps(req.Params, d.defaultParams)
	headers := mergeMaps(req.Headers, d.defaultHeaders)

	var body io.Reader
	switch {
	case method == http.MethodGet || method == http.MethodDelete:
		q := target.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		target.RawQuery = q.Encode()
	case req.Multipart:
		var contentType string
		body, contentType, err = multipartBody(params)
		if err != nil {
			return nil, errors.NewConfigurationError("failed to encode multipart body", err)
		}
		headers["Content-Type"] = contentType
	default:
		form := url.Values{}
		for k, v := range params {
			form.Set(k, v)
		}
		body = strings.NewReader(form.Encode())
		if _, ok := headers["Content-Type"]; !ok {
			headers["Content-Type"] = "application/x-www-form-urlencoded"
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, errors.NewConfigurationError("failed to create request", err)
	}

	for k, v := range headers {
		if v == "" {
			continue
		}
		httpReq.Header.Set(k, v)
	}

	if req.Evidence != nil {
		if err := req.Evidence.Attach(httpReq); err != nil {
			return nil, err
		}
	}

	return httpReq, nil
}

// mergeMaps merges defaults under caller values; the caller wins on conflict,
// including an explicit empty string, so a caller can blank out a default.
func mergeMaps(caller, defaults map[string]string) map[string]string {
	merged := make(map[string]string, len(caller)+len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}
	_ = mergo.Merge(&merged, caller, mergo.WithOverwriteWithEmptyValue)
	return merged
}

func multipartBody(params map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range params {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// bodyPreview truncates a response body for inclusion in error messages.
func bodyPreview(body []byte) string {
	if len(body) > errorPreviewSize {
		return string(body[:errorPreviewSize]) + "..."
	}
	return string(body)
}
