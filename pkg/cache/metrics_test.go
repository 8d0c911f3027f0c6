package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad(t *testing.T) {
	c, err := NewRistrettoCache(&RistrettoConfig{
		Name:        "load-test",
		NumCounters: 100,
		MaxCost:     10,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	defer c.Close()

	hits := testutil.ToFloat64(CacheHitsTotal.WithLabelValues("load-test"))
	misses := testutil.ToFloat64(CacheMissesTotal.WithLabelValues("load-test"))

	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"ETHBTC"}, nil
	}

	v, hit, err := Load(c, "symbols", time.Minute, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"ETHBTC"}, v)

	v, hit, err = Load(c, "symbols", time.Minute, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"ETHBTC"}, v)
	assert.Equal(t, 1, calls)

	assert.Equal(t, hits+1, testutil.ToFloat64(CacheHitsTotal.WithLabelValues("load-test")))
	assert.Equal(t, misses+1, testutil.ToFloat64(CacheMissesTotal.WithLabelValues("load-test")))

	// a value of another type under the same key is reloaded
	_, hit, err = Load(c, "symbols", time.Minute, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.False(t, hit)

	boom := errors.New("boom")
	_, _, err = Load(c, "other", time.Minute, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	_, found := c.Get("other")
	assert.False(t, found, "errors are not cached")
}
