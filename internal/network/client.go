package network

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"relay/backend/internal/config"
)

// ClientFactory creates the long-lived HTTP clients used for the message store
// and the translation providers.
type ClientFactory struct {
	proxyURL       string
	userAgent      string
	testHTTPClient *http.Client // For testing only
}

// NewClientFactory creates a new client factory. An empty proxyURL means direct connections.
func NewClientFactory(proxyURL string) *ClientFactory {
	return &ClientFactory{proxyURL: proxyURL, userAgent: config.UserAgent}
}

// NewClientFactoryForTest creates a client factory that uses the given http.Client for testing.
// This is only for use in tests.
func NewClientFactoryForTest(client *http.Client) *ClientFactory {
	return &ClientFactory{userAgent: config.UserAgent, testHTTPClient: client}
}

// NewHTTPClient creates an http.Client with proxy configuration and the given timeout.
func (f *ClientFactory) NewHTTPClient(timeout time.Duration) *http.Client {
	// For testing: return the injected client
	if f.testHTTPClient != nil {
		return f.testHTTPClient
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: f.NewHTTPTransport(), userAgent: f.userAgent},
	}
}

// NewHTTPTransport creates an http.Transport with proxy configuration.
func (f *ClientFactory) NewHTTPTransport() *http.Transport {
	if f.proxyURL != "" {
		return newTransportWithProxy(f.proxyURL)
	}
	return http.DefaultTransport.(*http.Transport).Clone()
}

// ProxyURL returns the configured proxy URL.
func (f *ClientFactory) ProxyURL() string {
	return f.proxyURL
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// newTransportWithProxy creates an http.Transport with proper proxy support.
// For SOCKS5 proxies, it uses golang.org/x/net/proxy for correct handling.
// For HTTP/HTTPS proxies, it uses the standard http.ProxyURL.
func newTransportWithProxy(proxyURL string) *http.Transport {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return &http.Transport{}
	}

	if strings.HasPrefix(parsed.Scheme, "socks") {
		var auth *proxy.Auth
		if parsed.User != nil {
			auth = &proxy.Auth{
				User: parsed.User.Username(),
			}
			if password, ok := parsed.User.Password(); ok {
				auth.Password = password
			}
		}

		dialer, err := proxy.SOCKS5("tcp", parsed.Host, auth, proxy.Direct)
		if err != nil {
			return &http.Transport{}
		}

		if ctxDialer, ok := dialer.(proxy.ContextDialer); ok {
			return &http.Transport{DialContext: ctxDialer.DialContext}
		}
		return &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
		}
	}

	return &http.Transport{
		Proxy: http.ProxyURL(parsed),
	}
}
