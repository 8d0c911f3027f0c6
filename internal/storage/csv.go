package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/mselser95/depth-arb/internal/arbitrage"
	"go.uber.org/zap"
)

// CSVHeader is the column layout of the records file.
var CSVHeader = []string{
	"timestamp", "arb_length", "arb_rate", "arb_surface",
	"asset_0", "asset_1", "asset_2", "asset_3", "asset_4", "asset_5", "asset_6", "asset_7",
}

// CSVStorage appends records to a CSV file. The header is written only when
// the file is empty, so an existing file keeps growing across restarts.
type CSVStorage struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	logger *zap.Logger
}

// NewCSVStorage opens path for appending, creating it when needed.
func NewCSVStorage(path string, logger *zap.Logger) (*CSVStorage, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	s := &CSVStorage{
		file:   file,
		writer: csv.NewWriter(file),
		logger: logger,
	}

	if info.Size() == 0 {
		err = s.writeRow(CSVHeader)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	logger.Info("csv-storage-initialized", zap.String("path", path))
	return s, nil
}

// StoreRecord appends one row.
func (s *CSVStorage) StoreRecord(ctx context.Context, rec *arbitrage.Record) error {
	row := make([]string, 0, len(CSVHeader))
	row = append(row,
		strconv.FormatUint(rec.Timestamp(), 10),
		strconv.Itoa(rec.Length),
		strconv.FormatFloat(rec.Rate, 'f', -1, 64),
		strconv.FormatFloat(rec.Surface, 'f', -1, 64),
	)
	row = append(row, rec.Assets[:]...)

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.writeRow(row)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

func (s *CSVStorage) writeRow(row []string) error {
	err := s.writer.Write(row)
	if err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}

// Close flushes and closes the file.
func (s *CSVStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("closing-csv-storage")
	s.writer.Flush()
	return s.file.Close()
}
