package dispatch

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/idconnect/idconnect/pkg/errors"
)

// httpTimeout is the overall timeout for outgoing HTTP requests.
const httpTimeout = 30 * time.Second

const defaultUserAgent = "idconnect"

// validatingTransport rejects non-HTTPS URLs before the request leaves the
// process. Provider endpoints carry credentials and must not travel in the
// clear.
type validatingTransport struct {
	transport http.RoundTripper
	allowHTTP bool
	userAgent string
}

func (t *validatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	parsed, err := url.Parse(req.URL.String())
	if err != nil {
		return nil, errors.NewConfigurationError("the request URL is malformed", err)
	}
	if parsed.Scheme != "https" && !t.allowHTTP {
		return nil, errors.NewConfigurationError("the request URL is not HTTPS scheme", nil)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.transport.RoundTrip(req)
}

// ClientBuilder provides a fluent interface for building the default
// HTTP client.
type ClientBuilder struct {
	clientTimeout         time.Duration
	tlsHandshakeTimeout   time.Duration
	responseHeaderTimeout time.Duration
	caCertPath            string
	userAgent             string
	allowHTTP             bool
	followRedirects       bool
}

// NewClientBuilder returns a new ClientBuilder with hardened defaults.
func NewClientBuilder() *ClientBuilder {
	return &ClientBuilder{
		clientTimeout:         httpTimeout,
		tlsHandshakeTimeout:   10 * time.Second,
		responseHeaderTimeout: 10 * time.Second,
		userAgent:             defaultUserAgent,
		followRedirects:       true,
	}
}

// WithTimeout sets the overall request timeout.
func (b *ClientBuilder) WithTimeout(timeout time.Duration) *ClientBuilder {
	b.clientTimeout = timeout
	return b
}

// WithCABundle sets the CA certificate bundle path.
func (b *ClientBuilder) WithCABundle(path string) *ClientBuilder {
	b.caCertPath = path
	return b
}

// WithUserAgent sets the User-Agent header applied to requests that carry
// none of their own.
func (b *ClientBuilder) WithUserAgent(userAgent string) *ClientBuilder {
	b.userAgent = userAgent
	return b
}

// WithPlaintextHTTP allows plain HTTP URLs. Intended for tests against
// local endpoints.
func (b *ClientBuilder) WithPlaintextHTTP(allow bool) *ClientBuilder {
	b.allowHTTP = allow
	return b
}

// WithFollowRedirects controls whether 3xx responses are followed.
func (b *ClientBuilder) WithFollowRedirects(follow bool) *ClientBuilder {
	b.followRedirects = follow
	return b
}

// Build creates the configured client.
func (b *ClientBuilder) Build() (*Client, error) {
	transport := &http.Transport{
		TLSHandshakeTimeout:   b.tlsHandshakeTimeout,
		ResponseHeaderTimeout: b.responseHeaderTimeout,
	}

	if b.caCertPath != "" {
		caCert, err := os.ReadFile(b.caCertPath)
		if err != nil {
			return nil, errors.NewConfigurationError("failed to read CA certificate bundle", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, errors.NewConfigurationError("failed to parse CA certificate bundle", nil)
		}
		transport.TLSClientConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			RootCAs:    caCertPool,
		}
	}

	client := &Client{
		inner: &http.Client{
			Transport: &validatingTransport{
				transport: transport,
				allowHTTP: b.allowHTTP,
				userAgent: b.userAgent,
			},
			Timeout: b.clientTimeout,
		},
	}
	client.setFollowRedirects(b.followRedirects)
	return client, nil
}

// Client is the default transport. It implements ConfigurableTransport so
// provider configuration can tune it after construction.
type Client struct {
	inner *http.Client
}

// DefaultClient returns the hardened default transport.
func DefaultClient() *Client {
	client, _ := NewClientBuilder().Build()
	return client
}

// Do implements HTTPClient.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.inner.Do(req)
}

// Configure implements ConfigurableTransport.
func (c *Client) Configure(opts TransportOptions) error {
	if opts.UserAgent != "" {
		if vt, ok := c.inner.Transport.(*validatingTransport); ok {
			vt.userAgent = opts.UserAgent
		}
	}
	c.setFollowRedirects(opts.FollowRedirects)
	return nil
}

func (c *Client) setFollowRedirects(follow bool) {
	if follow {
		c.inner.CheckRedirect = nil
		return
	}
	c.inner.CheckRedirect = func(_ *http.Request, _ []*http.Request) error {
		return http.ErrUseLastResponse
	}
}
