package snapshot

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSetRoundTrips(t *testing.T) {
	c := NewMemoryCache()
	c.Set("k", []byte("v"), 0)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

func TestMemoryCache_ExpiresAfterTTL(t *testing.T) {
	c := NewMemoryCache()
	c.Set("k", []byte("v"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestMemoryCache_MissingKey(t *testing.T) {
	c := NewMemoryCache()
	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestNewAutoCache_FallsBackToMemoryWithoutRedisAddr(t *testing.T) {
	require.NoError(t, os.Unsetenv("REDIS_ADDR"))

	c := NewAutoCache()
	_, isMemory := c.(*memoryCache)
	assert.True(t, isMemory)
}

func TestNewAutoCache_UsesRedisWhenAddrSet(t *testing.T) {
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")

	c := NewAutoCache()
	_, isRedis := c.(*redisCache)
	assert.True(t, isRedis)
}
