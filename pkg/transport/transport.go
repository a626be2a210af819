// Package transport builds the authenticated HTTP session the pipeline's
// worker stages share: per-request timeouts, proxy, optional TLS bypass,
// connection-close toggle, and an optional client-side rate limiter — all
// wrapped in an OpenTelemetry-instrumented round tripper.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"runtime"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/dwavesystems/dwave-cloud-client-go/pkg/config"
)

// ClientVersion is embedded in the default User-Agent string.
const ClientVersion = "0.1.0"

// DefaultUserAgent returns the User-Agent header value identifying this
// client, optionally prefixed by the caller's own application name
// (DWAVE_API_CLIENT / Config.ClientAppName).
func DefaultUserAgent(appName string) string {
	base := fmt.Sprintf("dwave-cloud-client-go/%s (%s; %s)", ClientVersion, runtime.GOOS, runtime.GOARCH)
	if appName == "" {
		return base
	}
	return fmt.Sprintf("%s %s", appName, base)
}

// Session is the shared, concurrency-safe HTTP session every worker stage
// issues requests through.
type Session struct {
	httpClient *http.Client
	endpoint   string
	token      string
	userAgent  string
	limiter    *rate.Limiter
}

// Option customizes a Session at construction.
type Option func(*Session)

// WithRateLimit caps outgoing requests to rps requests per second, with a
// burst of burst. Off by default: the solver service's own admission
// control is authoritative, but callers who need to stay under a known
// quota can opt in.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Session) {
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New builds a Session from a Config. The returned Session is safe for
// concurrent use by every worker stage.
func New(cfg *config.Config, opts ...Option) (*Session, error) {
	base := &http.Transport{
		DisableKeepAlives: cfg.ConnectionClose,
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		base.Proxy = http.ProxyURL(proxyURL)
	}

	if cfg.PermissiveSSL {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}

	instrumented := otelhttp.NewTransport(base)

	s := &Session{
		httpClient: &http.Client{
			Transport: instrumented,
			Timeout:   cfg.RequestTimeout,
		},
		endpoint:  cfg.Endpoint,
		token:     cfg.Token,
		userAgent: DefaultUserAgent(cfg.ClientAppName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Endpoint returns the configured solver service base URL.
func (s *Session) Endpoint() string {
	return s.endpoint
}

// NewRequest builds an HTTP request against endpoint + path carrying the
// auth token and User-Agent headers every call to the solver service
// needs.
func (s *Session) NewRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.endpoint+path, newBodyReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Auth-Token", s.token)
	req.Header.Set("User-Agent", s.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Do issues req, applying the optional rate limiter first.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return s.httpClient.Do(req)
}

// Close releases pooled connections. It does not cancel in-flight
// requests; callers should do that via context before calling Close.
func (s *Session) Close() {
	s.httpClient.CloseIdleConnections()
}
