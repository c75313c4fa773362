// Package publicip resolves the host's public address via well-known
// echo services and caches the result.
package publicip

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/i978sukhoi/nbwin/internal/stats"
)

const (
	// DefaultTTL is how long a fetched address stays fresh.
	DefaultTTL = 5 * time.Minute
	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 3 * time.Second

	// maxResponseSize caps how much of a service response is read. The
	// longest well-formed address is an IPv6 string of 45 characters.
	maxResponseSize = 64
)

// DefaultServices returns the echo services tried in order. Each returns the
// caller's address as plain text.
func DefaultServices() []string {
	return []string{
		"https://api.ipify.org",
		"https://checkip.amazonaws.com",
		"https://ipinfo.io/ip",
		"https://ifconfig.me/ip",
	}
}

// Options configures a Resolver. Zero values select the defaults.
type Options struct {
	// Services are the URLs tried in order.
	Services []string
	// TTL is how long a fetched address stays fresh.
	TTL time.Duration
	// Timeout bounds each HTTP request.
	Timeout time.Duration
}

// Resolver caches the most recently fetched public address. Failed fetches
// are never cached, so the next lookup retries.
type Resolver struct {
	client   *http.Client
	clock    stats.Clock
	services []string
	ttl      time.Duration

	mu        sync.Mutex
	address   string
	fetchedAt time.Time
	fetching  bool
}

// NewResolver creates a resolver with its own HTTP client.
func NewResolver(opts Options) *Resolver {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return NewResolverWithClient(&http.Client{Timeout: timeout}, stats.RealClock{}, opts)
}

// NewResolverWithClient creates a resolver with a custom HTTP client and clock.
// This is primarily used for testing.
func NewResolverWithClient(client *http.Client, clock stats.Clock, opts Options) *Resolver {
	services := opts.Services
	if len(services) == 0 {
		services = DefaultServices()
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Resolver{
		client:   client,
		clock:    clock,
		services: services,
		ttl:      ttl,
	}
}

// Lookup returns the cached public address without blocking. A fresh entry is
// returned as-is. A miss or expired entry starts one background fetch and
// returns the last-known address, or ("", false) before the first successful
// fetch.
func (r *Resolver) Lookup() (string, bool) {
	r.mu.Lock()

	if r.address != "" && r.clock.Now().Sub(r.fetchedAt) < r.ttl {
		address := r.address
		r.mu.Unlock()
		return address, true
	}

	stale := r.address
	startFetch := !r.fetching
	if startFetch {
		r.fetching = true
	}
	r.mu.Unlock()

	if startFetch {
		go r.refresh()
	}

	return stale, stale != ""
}

// Resolve returns the public address, fetching it synchronously when the
// cache is empty or expired.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.address != "" && r.clock.Now().Sub(r.fetchedAt) < r.ttl {
		address := r.address
		r.mu.Unlock()
		return address, nil
	}
	r.mu.Unlock()

	address, err := r.fetch(ctx)
	if err != nil {
		return "", err
	}

	r.store(address)
	return address, nil
}

func (r *Resolver) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(len(r.services))*DefaultTimeout)
	defer cancel()

	address, err := r.fetch(ctx)

	r.mu.Lock()
	r.fetching = false
	if err == nil {
		r.address = address
		r.fetchedAt = r.clock.Now()
	}
	r.mu.Unlock()

	if err != nil {
		slog.Debug("Public IP refresh failed", "error", err)
	}
}

func (r *Resolver) store(address string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.address = address
	r.fetchedAt = r.clock.Now()
}

// fetch tries each service in order and returns the first valid address.
func (r *Resolver) fetch(ctx context.Context) (string, error) {
	var lastErr error
	for _, service := range r.services {
		address, err := r.fetchFrom(ctx, service)
		if err != nil {
			lastErr = err
			slog.Debug("Public IP service failed", "service", service, "error", err)
			continue
		}
		return address, nil
	}

	return "", fmt.Errorf("all public IP services failed: %w", lastErr)
}

func (r *Resolver) fetchFrom(ctx context.Context, service string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, service, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	address := strings.TrimSpace(string(body))
	if net.ParseIP(address) == nil {
		return "", fmt.Errorf("service returned %q, not an address", address)
	}

	return address, nil
}

// IsPrivate reports whether the address is not globally routable: RFC 1918
// and ULA ranges, loopback, link-local and unspecified addresses.
func IsPrivate(address string) bool {
	ip := net.ParseIP(address)
	if ip == nil {
		return false
	}

	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
