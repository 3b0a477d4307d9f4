package ratelimit

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(cfg *Config) (*Limiter, *fakeClock) {
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l.now = clock.Now
	return l, clock
}

func testConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{},
		Blacklist:     map[string]bool{},
		EndpointConfigs: []EndpointConfig{
			{Path: "/generate", Method: http.MethodPost, Limit: 3, Window: time.Minute, Burst: 3},
			{Path: "/drafts/", Method: http.MethodPost, Limit: 2, Window: time.Minute},
		},
	}
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	l, _ := newTestLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("1.2.3.4", "/generate", http.MethodPost)
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	allowed, info := l.Allow("1.2.3.4", "/generate", http.MethodPost)
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, 20*time.Second, info.RetryAfter)
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 3; i++ {
		l.Allow("1.2.3.4", "/generate", http.MethodPost)
	}
	allowed, _ := l.Allow("1.2.3.4", "/generate", http.MethodPost)
	require.False(t, allowed)

	clock.Advance(20 * time.Second)
	allowed, _ = l.Allow("1.2.3.4", "/generate", http.MethodPost)
	assert.True(t, allowed)

	allowed, _ = l.Allow("1.2.3.4", "/generate", http.MethodPost)
	assert.False(t, allowed)
}

func TestLimiter_SeparateClients(t *testing.T) {
	l, _ := newTestLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 3; i++ {
		l.Allow("client-a", "/generate", http.MethodPost)
	}
	allowedA, _ := l.Allow("client-a", "/generate", http.MethodPost)
	allowedB, _ := l.Allow("client-b", "/generate", http.MethodPost)

	assert.False(t, allowedA)
	assert.True(t, allowedB)
}

func TestLimiter_PrefixSharesBucket(t *testing.T) {
	l, _ := newTestLimiter(testConfig())
	defer l.Stop()

	allowed, info := l.Allow("c", "/drafts/improve", http.MethodPost)
	require.True(t, allowed)
	assert.Equal(t, 2, info.Limit, "burst defaults to the limit")

	allowed, _ = l.Allow("c", "/drafts/refine", http.MethodPost)
	require.True(t, allowed)

	allowed, _ = l.Allow("c", "/drafts/improve", http.MethodPost)
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("c", "/generate", http.MethodPost)
		require.True(t, allowed)
	}
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	cfg := testConfig()
	cfg.Whitelist["10.0.0.1"] = true
	cfg.Blacklist["10.0.0.2"] = true
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/generate", http.MethodPost)
		require.True(t, allowed)
	}

	allowed, _ := l.Allow("10.0.0.2", "/health", http.MethodGet)
	assert.False(t, allowed)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLimit = 1
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("c", "/health", http.MethodGet)
		require.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}
}

func TestLimiter_DefaultLimit(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLimit = 2
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	l.Allow("c", "/modes", http.MethodGet)
	l.Allow("c", "/profile", http.MethodGet)
	allowed, _ := l.Allow("c", "/modes", http.MethodGet)
	assert.False(t, allowed)
}

func TestLimiter_CleanupDropsIdleBuckets(t *testing.T) {
	l, clock := newTestLimiter(testConfig())
	defer l.Stop()

	l.Allow("c", "/generate", http.MethodPost)
	require.Len(t, l.buckets, 1)

	clock.Advance(2 * time.Hour)
	l.cleanupBuckets()
	assert.Empty(t, l.buckets)
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(testConfig())
	defer l.Stop()

	var allowedCount int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", "/generate", http.MethodPost); ok {
				atomic.AddInt32(&allowedCount, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), allowedCount)
}

func TestLimiter_StopTwice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CleanupInterval = time.Millisecond
	l := NewLimiter(cfg)
	l.Stop()
	l.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path, method string
		wantPath     string
		wantNil      bool
	}{
		{"/generate", http.MethodPost, "/generate", false},
		{"/generate/stream", http.MethodPost, "/generate/stream", false},
		{"/drafts/refine", http.MethodPost, "/drafts/", false},
		{"/emails/summarize", http.MethodPost, "/emails/", false},
		{"/profile", http.MethodPut, "/profile", false},
		{"/profile", http.MethodGet, "", true},
		{"/health", http.MethodGet, "/health", false},
		{"/metrics", http.MethodGet, "/metrics", false},
		{"/modes", http.MethodGet, "", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "50")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_CLEANUP_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")
	t.Setenv("RATE_LIMIT_BLACKLIST", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 50, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.True(t, cfg.Whitelist["10.0.0.2"])
	assert.Empty(t, cfg.Blacklist)
	assert.NotEmpty(t, cfg.EndpointConfigs)
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "lots")

	_, err := LoadConfig()
	assert.Error(t, err)
}
