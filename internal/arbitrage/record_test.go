package arbitrage

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	cycle, _, _ := triangle()
	now := time.Unix(1700000000, 0)

	rec := NewRecord(cycle, 1.04, 0.03, now)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, uint64(1700000000), rec.Timestamp())
	assert.Equal(t, 3, rec.Length)
	assert.Equal(t, 1.04, rec.Rate)
	assert.Equal(t, 0.03, rec.Surface)
	assert.Equal(t, 3, rec.AssetCount())
	assert.Equal(t, [MaxRecordAssets]string{"USDT", "BTC", "ETH"}, rec.Assets)
	assert.True(t, strings.HasPrefix(rec.String(), "Record["))
}

func TestNewRecord_TruncatesAssets(t *testing.T) {
	assets := []string{"USDT", "A", "B", "C", "D", "E", "F", "G", "H", "USDT"}
	cycle, err := CycleFromAssets(assets)
	require.NoError(t, err)
	require.Len(t, cycle.Assets(), 9)

	rec := NewRecord(cycle, 1.02, 0, time.Now())

	assert.Equal(t, 9, rec.Length)
	assert.Equal(t, MaxRecordAssets, rec.AssetCount())
	assert.Equal(t, "USDT", rec.Assets[0])
	assert.Equal(t, "G", rec.Assets[MaxRecordAssets-1], "ninth asset is dropped")
}

func TestNewRecord_UniqueIDs(t *testing.T) {
	cycle, _, _ := triangle()
	a := NewRecord(cycle, 1.02, 0, time.Now())
	b := NewRecord(cycle, 1.02, 0, time.Now())
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSurfaceRate(t *testing.T) {
	tests := []struct {
		name  string
		cycle Cycle
		want  float64
	}{
		{
			name:  "zero-weights",
			cycle: Cycle{{From: "A", To: "B"}, {From: "B", To: "C"}, {From: "C", To: "A"}},
			want:  0,
		},
		{
			name: "profitable",
			cycle: Cycle{
				{From: "A", To: "B", Weight: -math.Log(1.01)},
				{From: "B", To: "C", Weight: -math.Log(1.02)},
				{From: "C", To: "A", Weight: -math.Log(0.995)},
			},
			want: 1.01*1.02*0.995 - 1,
		},
		{
			name:  "empty",
			cycle: nil,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SurfaceRate(tt.cycle), 1e-12)
		})
	}
}
