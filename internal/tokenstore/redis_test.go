package tokenstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Mutombe/silver-carbon/internal/models"
)

// TestMain поднимает Redis в контейнере, если задан GO_TEST_INTEGRATION.
// Адрес прокидывается в REDIS_URL; без него Redis-тесты пропускаются.
func TestMain(m *testing.M) {
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start redis testcontainer: %v\n", err)
		os.Exit(1)
	}

	host, err := redisC.Host(ctx)
	if err != nil {
		_ = redisC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}

	port, err := redisC.MappedPort(ctx, "6379/tcp")
	if err != nil {
		_ = redisC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get mapped port: %v\n", err)
		os.Exit(1)
	}

	_ = os.Setenv("REDIS_URL", fmt.Sprintf("redis://%s:%s/0", host, port.Port()))

	code := m.Run()

	_ = redisC.Terminate(context.Background())
	os.Exit(code)
}

// newTestRedis — отдельный префикс на тест, чтобы тесты не делили ключ.
func newTestRedis(t *testing.T) *Redis {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL is not set; run with GO_TEST_INTEGRATION=1")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := NewRedis(ctx, url, "silver_test_"+uuid.NewString()+":")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return st
}

func TestRedis(t *testing.T) {
	st := newTestRedis(t)

	testContract(t, st)
	testAtomicity(t, st)
}

// TestRedis_KeyLayout — пара лежит одним JSON-значением под <prefix>tokens без TTL.
func TestRedis_KeyLayout(t *testing.T) {
	st := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, models.TokenPair{Access: "A1", Refresh: "R1"}))

	raw, err := st.rdb.Get(ctx, st.key).Result()
	require.NoError(t, err)
	require.JSONEq(t, `{"access":"A1","refresh":"R1"}`, raw)

	ttl, err := st.rdb.TTL(ctx, st.key).Result()
	require.NoError(t, err)
	require.Equal(t, time.Duration(-1), ttl)
}

func TestNewRedis_Unreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedis(ctx, "redis://127.0.0.1:1/0", "")
	require.Error(t, err)

	_, err = NewRedis(ctx, "not-a-url", "")
	require.Error(t, err)
}

func TestNewRedisFromClient_DefaultKey(t *testing.T) {
	t.Parallel()

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()

	require.Equal(t, "silver:tokens", NewRedisFromClient(rdb, "silver:").key)
}
