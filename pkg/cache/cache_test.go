package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestMemoryRoundTripAndPrefixDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	require.NoError(t, c.Set(ctx, "sweets:list:1", []item{{Name: "Ladoo", Price: 10}}, time.Minute))
	require.NoError(t, c.Set(ctx, "sweets:one:a", item{Name: "Barfi"}, time.Minute))
	require.NoError(t, c.Set(ctx, "users:a", item{Name: "keep"}, time.Minute))

	var got []item
	require.True(t, c.Get(ctx, "sweets:list:1", &got))
	assert.Equal(t, "Ladoo", got[0].Name)

	require.NoError(t, c.DeletePrefix(ctx, "sweets:"))

	var one item
	assert.False(t, c.Get(ctx, "sweets:one:a", &one))
	assert.True(t, c.Get(ctx, "users:a", &one))
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", item{Name: "x"}, time.Second))

	var v item
	assert.True(t, c.Get(ctx, "k", &v))

	now = now.Add(2 * time.Second)
	assert.False(t, c.Get(ctx, "k", &v))
}

func TestNopNeverHits(t *testing.T) {
	var c Cache = Nop{}
	require.NoError(t, c.Set(context.Background(), "k", 1, time.Minute))
	var v int
	assert.False(t, c.Get(context.Background(), "k", &v))
}

func TestFillSkipsValuesReadBeforeInvalidation(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	gen := c.Generation()
	require.NoError(t, c.DeletePrefix(ctx, "sweets:"))
	require.NoError(t, Fill(ctx, c, "sweets:one:1", item{Name: "stale"}, time.Minute, gen))

	var got item
	assert.False(t, c.Get(ctx, "sweets:one:1", &got))

	gen = c.Generation()
	require.NoError(t, Fill(ctx, c, "sweets:one:1", item{Name: "fresh"}, time.Minute, gen))
	require.True(t, c.Get(ctx, "sweets:one:1", &got))
	assert.Equal(t, "fresh", got.Name)
}

// invalidatingCache runs an invalidation right after each Set lands.
type invalidatingCache struct {
	*Memory
}

func (c invalidatingCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := c.Memory.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return c.Memory.DeletePrefix(ctx, "unrelated:")
}

func TestFillRemovesValueWhenInvalidatedDuringWrite(t *testing.T) {
	ctx := context.Background()
	c := invalidatingCache{NewMemory()}

	require.NoError(t, Fill(ctx, c, "sweets:list:all", item{Name: "raced"}, time.Minute, c.Generation()))

	var got item
	assert.False(t, c.Get(ctx, "sweets:list:all", &got))
}
