package publicip

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock returns a manually advanced time. The background refresh reads it
// concurrently, so access is locked.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, time.June, 1, 10, 30, 0, 0, time.UTC)}
}

func newTestResolver(clock *fakeClock, services ...string) *Resolver {
	return NewResolverWithClient(&http.Client{Timeout: time.Second}, clock, Options{Services: services})
}

// refreshInFlight exposes the single-flight flag for tests.
func (r *Resolver) refreshInFlight() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetching
}

func TestResolve_ReturnsAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, "203.0.113.7")
	}))
	defer server.Close()

	resolver := newTestResolver(newTestClock(), server.URL)

	address, err := resolver.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", address)
}

func TestResolve_FallsBackToNextService(t *testing.T) {
	var brokenHits atomic.Int32
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		brokenHits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "203.0.113.7")
	}))
	defer working.Close()

	resolver := newTestResolver(newTestClock(), broken.URL, working.URL)

	address, err := resolver.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", address)
	assert.EqualValues(t, 1, brokenHits.Load())
}

func TestResolve_RejectsNonAddressResponse(t *testing.T) {
	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html>rate limited</html>")
	}))
	defer garbage.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "2001:db8::1234")
	}))
	defer working.Close()

	resolver := newTestResolver(newTestClock(), garbage.URL, working.URL)

	address, err := resolver.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "2001:db8::1234", address)
}

func TestResolve_AllServicesFailing(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	resolver := newTestResolver(newTestClock(), broken.URL, broken.URL)

	_, err := resolver.Resolve(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all public IP services failed")
}

func TestResolve_CachesWithinTTL(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "203.0.113.7")
	}))
	defer server.Close()

	clock := newTestClock()
	resolver := newTestResolver(clock, server.URL)

	for i := 0; i < 3; i++ {
		_, err := resolver.Resolve(context.Background())
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, hits.Load())

	clock.advance(DefaultTTL)
	_, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, hits.Load())
}

func TestLookup_StartsBackgroundFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "203.0.113.7")
	}))
	defer server.Close()

	resolver := newTestResolver(newTestClock(), server.URL)

	address, ok := resolver.Lookup()
	assert.False(t, ok)
	assert.Empty(t, address)

	require.Eventually(t, func() bool {
		address, ok := resolver.Lookup()
		return ok && address == "203.0.113.7"
	}, time.Second, 5*time.Millisecond)
}

func TestLookup_SingleFlight(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		<-release
		fmt.Fprint(w, "203.0.113.7")
	}))
	defer server.Close()

	resolver := newTestResolver(newTestClock(), server.URL)

	for i := 0; i < 5; i++ {
		_, ok := resolver.Lookup()
		assert.False(t, ok)
	}

	// Only the first lookup started a fetch; the rest saw it in flight.
	require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, 5*time.Millisecond)
	for i := 0; i < 5; i++ {
		resolver.Lookup()
	}
	assert.EqualValues(t, 1, hits.Load())

	close(release)
	require.Eventually(t, func() bool {
		_, ok := resolver.Lookup()
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestLookup_ReturnsStaleWhileRefreshing(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			fmt.Fprint(w, "203.0.113.7")
		} else {
			fmt.Fprint(w, "203.0.113.99")
		}
	}))
	defer server.Close()

	clock := newTestClock()
	resolver := newTestResolver(clock, server.URL)

	_, err := resolver.Resolve(context.Background())
	require.NoError(t, err)

	clock.advance(DefaultTTL + time.Second)

	// Expired, but the last-known address is served while the refresh runs.
	address, ok := resolver.Lookup()
	assert.True(t, ok)
	assert.Equal(t, "203.0.113.7", address)

	require.Eventually(t, func() bool {
		address, ok := resolver.Lookup()
		return ok && address == "203.0.113.99"
	}, time.Second, 5*time.Millisecond)
}

func TestLookup_FailureIsNotCached(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	resolver := newTestResolver(newTestClock(), server.URL)

	_, ok := resolver.Lookup()
	assert.False(t, ok)
	require.Eventually(t, func() bool { return !resolver.refreshInFlight() }, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 1, hits.Load())

	// The failure was not cached, so the next lookup tries again.
	_, ok = resolver.Lookup()
	assert.False(t, ok)
	require.Eventually(t, func() bool { return hits.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestIsPrivate(t *testing.T) {
	tests := []struct {
		address  string
		expected bool
	}{
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"172.32.0.1", false},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		{"169.254.1.1", true},
		{"0.0.0.0", true},
		{"8.8.8.8", false},
		{"203.0.113.7", false},
		{"fc00::1", true},
		{"fe80::1", true},
		{"::1", true},
		{"2001:db8::1", false},
		{"", false},
		{"not-an-address", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsPrivate(tt.address))
		})
	}
}

func TestDefaultServices(t *testing.T) {
	services := DefaultServices()

	require.Len(t, services, 4)
	for _, service := range services {
		assert.True(t, strings.HasPrefix(service, "https://"), service)
	}

	services[0] = "mutated"
	assert.NotEqual(t, "mutated", DefaultServices()[0])
}

func TestNewResolver_Defaults(t *testing.T) {
	resolver := NewResolver(Options{})

	assert.Equal(t, DefaultTTL, resolver.ttl)
	assert.Len(t, resolver.services, 4)
	assert.Equal(t, DefaultTimeout, resolver.client.Timeout)
}
