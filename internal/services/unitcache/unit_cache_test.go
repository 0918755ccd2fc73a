package unitcache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	t.Parallel()

	cache := New(10)

	_, ok := cache.Get(1)
	assert.False(t, ok)

	cache.Set(1, "Truck 101")
	got, ok := cache.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Truck 101", got)

	// Updating an existing key replaces the value without growing the cache.
	cache.Set(1, "Truck 101-B")
	got, ok = cache.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Truck 101-B", got)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	cache := New(3)
	for i := int64(1); i <= 3; i++ {
		cache.Set(i, fmt.Sprintf("Truck %d", i))
	}

	// Touch 1 so 2 becomes the least recently used entry.
	_, ok := cache.Get(1)
	require.True(t, ok)

	cache.Set(4, "Truck 4")

	_, ok = cache.Get(2)
	assert.False(t, ok, "least recently used entry should be evicted")
	for _, key := range []int64{1, 3, 4} {
		_, ok := cache.Get(key)
		assert.True(t, ok, "key %d should survive eviction", key)
	}
	assert.Equal(t, 3, cache.Len())
}

func TestCache_CapacityIsExact(t *testing.T) {
	t.Parallel()

	cache := New(DefaultCapacity)
	for i := int64(0); i < DefaultCapacity+25; i++ {
		cache.Set(i, "unit")
	}
	assert.Equal(t, DefaultCapacity, cache.Len())

	// The first 25 insertions are the ones that fell off.
	for i := int64(0); i < 25; i++ {
		_, ok := cache.Get(i)
		assert.False(t, ok)
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	cache := New(32)

	// Hammer the cache from many goroutines over an overlapping key space;
	// run with -race. Interleaving is unconstrained, so the assertion is
	// only that the capacity bound holds once everything settles.
	const (
		goroutines = 16
		iterations = 500
	)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			owned := int64(1000 + g)
			for i := 0; i < iterations; i++ {
				shared := int64(i % 8)
				cache.Set(shared, fmt.Sprintf("Truck %d", shared))
				cache.Get(shared)
				cache.Set(owned, "owned")
				cache.Get(int64((i + g) % 48))
				if g == 0 && i%97 == 0 {
					cache.Clear()
				}
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Len(), 32)
}

func TestCache_Clear(t *testing.T) {
	t.Parallel()

	cache := New(5)
	cache.Set(1, "Truck 1")
	cache.Set(2, "Truck 2")

	cache.Clear()

	assert.Zero(t, cache.Len())
	_, ok := cache.Get(1)
	assert.False(t, ok)
}
