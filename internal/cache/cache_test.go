package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tributolabs/fiscalgw/internal/extract"
)

func TestCacheSetGet(t *testing.T) {
	c := New[string, int](4, time.Minute)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCacheTTLExpiry(t *testing.T) {
	c := New[string, int](4, 20*time.Millisecond)

	c.Set("a", 1)
	_, ok := c.Get("a")
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCacheLRUEviction(t *testing.T) {
	c := New[string, int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // make "b" the least recently used
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)

	assert.Equal(t, int64(1), c.Snapshot().Evictions)
}

func TestCacheGetOrLoad(t *testing.T) {
	c := New[string, int](4, time.Minute)
	var loads atomic.Int32

	load := func() (int, error) {
		loads.Add(1)
		return 42, nil
	}

	v, err := c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, int32(1), loads.Load())
}

func TestCacheGetOrLoadErrorNotCached(t *testing.T) {
	c := New[string, int](4, time.Minute)
	var loads atomic.Int32

	_, err := c.GetOrLoad("k", func() (int, error) {
		loads.Add(1)
		return 0, errors.New("boom")
	})
	require.Error(t, err)

	v, err := c.GetOrLoad("k", func() (int, error) {
		loads.Add(1)
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, int32(2), loads.Load())
}

func TestCacheGetOrLoadSingleflight(t *testing.T) {
	c := New[string, int](4, time.Minute)
	var loads atomic.Int32
	release := make(chan struct{})

	load := func() (int, error) {
		loads.Add(1)
		<-release
		return 99, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad("shared", load)
			assert.NoError(t, err)
			assert.Equal(t, 99, v)
		}()
	}

	// Give the goroutines time to pile onto the in-flight load.
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
}

func TestCacheFlush(t *testing.T) {
	c := New[string, int](4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	require.Equal(t, 2, c.Len())

	c.Flush()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestPromptCacheKeyDependsOnArgs(t *testing.T) {
	pc := NewPromptCache(8, time.Minute)
	var loads atomic.Int32

	load := func() (extract.Value, error) {
		loads.Add(1)
		return extract.FromAny("plantilla"), nil
	}

	_, err := pc.GetOrLoad("consulta_fiscal", map[string]any{"consulta": "iva"}, load)
	require.NoError(t, err)
	_, err = pc.GetOrLoad("consulta_fiscal", map[string]any{"consulta": "iva"}, load)
	require.NoError(t, err)
	assert.Equal(t, int32(1), loads.Load())

	_, err = pc.GetOrLoad("consulta_fiscal", map[string]any{"consulta": "isr"}, load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), loads.Load())
}
