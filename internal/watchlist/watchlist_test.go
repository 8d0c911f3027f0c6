package watchlist

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchlist_ReplaceAndSnapshot(t *testing.T) {
	w := New()
	assert.Equal(t, 0, w.Len())
	assert.True(t, w.UpdatedAt().IsZero())

	input := []string{"ETHUSDT", "ETHBTC", "BNBUSDT", "BNBBTC"}
	w.Replace(input)

	assert.Equal(t, input, w.Snapshot())
	assert.Equal(t, 4, w.Len())
	assert.Equal(t, uint64(1), w.Swaps())
	assert.False(t, w.UpdatedAt().IsZero())

	// Mutating the caller's slice or a snapshot must not leak into the list.
	input[0] = "XXX"
	snap := w.Snapshot()
	snap[1] = "YYY"
	assert.Equal(t, []string{"ETHUSDT", "ETHBTC", "BNBUSDT", "BNBBTC"}, w.Snapshot())

	w.Replace([]string{"ADAUSDT"})
	assert.Equal(t, []string{"ADAUSDT"}, w.Snapshot())
	assert.Equal(t, uint64(2), w.Swaps())
}

func TestWatchlist_ConcurrentReaders(t *testing.T) {
	w := New()
	full := []string{"A", "B", "C", "D"}
	other := []string{"E", "F", "G", "H"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				snap := w.Snapshot()
				// Readers see an old or new list, never a mix.
				if len(snap) > 0 {
					assert.Contains(t, [][]string{full, other}, snap)
				}
			}
		}()
	}

	for j := 0; j < 200; j++ {
		if j%2 == 0 {
			w.Replace(full)
		} else {
			w.Replace(other)
		}
	}
	wg.Wait()
}

func TestRedisPublisher_RoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	pub := NewRedisPublisher(client, "", time.Minute)
	ctx := context.Background()

	empty, err := pub.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Symbols)

	err = pub.Publish(ctx, []string{"ETHUSDT", "ETHBTC"})
	require.NoError(t, err)

	doc, err := pub.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ETHUSDT", "ETHBTC"}, doc.Symbols)
	assert.False(t, doc.UpdatedAt.IsZero())

	assert.True(t, srv.Exists(DefaultKey))
	assert.Equal(t, time.Minute, srv.TTL(DefaultKey))
}

func TestRedisPublisher_CorruptDocument(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	require.NoError(t, srv.Set("wl", "not json"))

	_, err := NewRedisPublisher(client, "wl", 0).Load(context.Background())
	assert.Error(t, err)
}

func TestRedisPublisher_ServerDown(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr(), MaxRetries: -1})
	defer client.Close()
	srv.Close()

	err := NewRedisPublisher(client, "", 0).Publish(context.Background(), []string{"ETHUSDT"})
	assert.Error(t, err)
}
