package cycles

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mselser95/depth-arb/internal/arbitrage"
)

// FileSource reads cycles from a JSON file, re-reading it only when its
// modification time changes.
type FileSource struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	cached  []arbitrage.Cycle
}

// NewFileSource creates a source backed by the file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Cycles returns the cycles currently in the file.
func (f *FileSource) Cycles(_ context.Context) ([]arbitrage.Cycle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	info, err := os.Stat(f.path)
	if err != nil {
		LoadErrorsTotal.WithLabelValues("file").Inc()
		return nil, fmt.Errorf("stat %s: %w", f.path, err)
	}

	if f.cached != nil && info.ModTime().Equal(f.modTime) {
		return f.cached, nil
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		LoadErrorsTotal.WithLabelValues("file").Inc()
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	cycles, err := Decode(data)
	if err != nil {
		LoadErrorsTotal.WithLabelValues("file").Inc()
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	if cycles == nil {
		cycles = []arbitrage.Cycle{}
	}

	f.cached = cycles
	f.modTime = info.ModTime()
	return cycles, nil
}
