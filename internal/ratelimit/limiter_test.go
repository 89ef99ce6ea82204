package ratelimit

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testClient *redis.Client

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis container unavailable, integration tests will skip: %v\n", err)
		os.Exit(m.Run())
	}

	code := func() int {
		defer container.Terminate(ctx)

		endpoint, err := container.Endpoint(ctx, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to get redis endpoint: %v\n", err)
			return 1
		}
		testClient = redis.NewClient(&redis.Options{Addr: endpoint})
		defer testClient.Close()

		return m.Run()
	}()

	os.Exit(code)
}

func newTestLimiter(t *testing.T, max int, window time.Duration) *Limiter {
	t.Helper()
	if testClient == nil {
		t.Skip("redis integration tests need a container runtime")
	}
	require.NoError(t, testClient.FlushDB(context.Background()).Err())
	return NewFixedWindowLimiter(testClient, "ratelimit:test", max, window)
}

func TestAllow_WithinLimit(t *testing.T) {
	limiter := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		allowed, remaining, reset, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 3-i, remaining)
		assert.WithinDuration(t, time.Now().Add(time.Minute), reset, 2*time.Second)
	}

	allowed, remaining, _, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	limiter := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	allowed, _, _, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, _, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestAllow_WindowResets(t *testing.T) {
	limiter := newTestLimiter(t, 1, 200*time.Millisecond)
	ctx := context.Background()

	_, _, _, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	allowed, _, _, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.Eventually(t, func() bool {
		allowed, _, _, err := limiter.Allow(ctx, "client")
		return err == nil && allowed
	}, 2*time.Second, 50*time.Millisecond)
}

func TestMaxRequests(t *testing.T) {
	limiter := newTestLimiter(t, 3, time.Minute)

	assert.Equal(t, 3, limiter.MaxRequests())
}
