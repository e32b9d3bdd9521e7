// Package safehttp builds the outbound HTTP client used for model calls.
package safehttp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrPrivateAddress is returned when a connection resolves to a private,
// loopback or link-local address.
var ErrPrivateAddress = errors.New("access to private address denied")

// Options configures NewClient.
type Options struct {
	// AllowPrivate permits private and loopback destinations, for a local
	// proxy or test server.
	AllowPrivate bool
	DialTimeout  time.Duration
}

// NewClient returns a traced HTTP client. Unless AllowPrivate is set the
// remote address is checked after dialing, so DNS answers pointing at
// internal hosts are refused.
func NewClient(opts Options) *http.Client {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return &http.Client{Transport: otelhttp.NewTransport(NewTransport(opts))}
}

// NewTransport returns the untraced transport behind NewClient.
func NewTransport(opts Options) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	dialer := &net.Dialer{Timeout: opts.DialTimeout}
	if opts.AllowPrivate {
		t.DialContext = dialer.DialContext
		return t
	}
	t.Proxy = nil
	t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
		ip := net.ParseIP(host)
		if ip == nil {
			conn.Close()
			return nil, fmt.Errorf("failed to parse remote IP for %q", addr)
		}

		if !Public(ip) {
			conn.Close()
			return nil, fmt.Errorf("%w: %s", ErrPrivateAddress, ip)
		}

		return conn, nil
	}
	return t
}

// Public reports whether ip is routable on the public internet.
func Public(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified())
}
