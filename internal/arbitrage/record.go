package arbitrage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxRecordAssets is the number of asset columns in a persisted record.
// Cycles touching more distinct assets keep only the first ones seen.
const MaxRecordAssets = 8

// Record is a profitable, depth-validated cycle as it is persisted.
type Record struct {
	ID         string
	DetectedAt time.Time
	Length     int
	Rate       float64
	Surface    float64
	// Assets holds up to MaxRecordAssets distinct assets; empty entries are absent.
	Assets [MaxRecordAssets]string
}

// NewRecord builds a record from a cycle, its realized rate and its surface rate.
func NewRecord(cycle Cycle, realRate float64, surfaceRate float64, now time.Time) *Record {
	rec := &Record{
		ID:         uuid.New().String(),
		DetectedAt: now,
		Length:     len(cycle),
		Rate:       realRate,
		Surface:    surfaceRate,
	}

	for i, asset := range cycle.Assets() {
		if i >= MaxRecordAssets {
			break
		}
		rec.Assets[i] = asset
	}

	return rec
}

// Timestamp returns the detection time in unix seconds.
func (r *Record) Timestamp() uint64 {
	return uint64(r.DetectedAt.Unix())
}

// AssetCount returns the number of populated asset columns.
func (r *Record) AssetCount() int {
	n := 0
	for _, a := range r.Assets {
		if a != "" {
			n++
		}
	}
	return n
}

// String returns a human-readable representation of the record.
func (r *Record) String() string {
	return fmt.Sprintf("Record[%s] len=%d rate=%.6f surface=%.6f assets=%d",
		r.ID[:8], r.Length, r.Rate, r.Surface, r.AssetCount())
}
