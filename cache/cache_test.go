package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		c, err := New(100, time.Minute)
		require.NoError(t, err)
		defer c.Close()

		assert.NotNil(t, c)
	})

	t.Run("invalid capacity", func(t *testing.T) {
		_, err := New(0, time.Minute)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})

	t.Run("invalid ttl", func(t *testing.T) {
		_, err := New(100, 0)
		assert.ErrorIs(t, err, ErrInvalidTTL)
	})
}

func TestCacheSetGet(t *testing.T) {
	c, err := New(100, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("query-hash", "expanded query text")

	got, ok := c.Get("query-hash")
	require.True(t, ok)
	assert.Equal(t, "expanded query text", got)
}

func TestCacheExpiry(t *testing.T) {
	c, err := New(100, 50*time.Millisecond)
	require.NoError(t, err)
	defer c.Close()

	c.Set("k", "v")

	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(100 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Key("a", "b"), Key("a", "b"))
	})

	t.Run("distinct for different parts", func(t *testing.T) {
		assert.NotEqual(t, Key("a", "b"), Key("a", "c"))
	})

	t.Run("boundary sensitive", func(t *testing.T) {
		assert.NotEqual(t, Key("a", "bc"), Key("ab", "c"))
	})
}
