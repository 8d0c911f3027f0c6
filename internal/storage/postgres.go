package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/mselser95/depth-arb/internal/arbitrage"
	"go.uber.org/zap"
)

const createRecordsTable = `
	CREATE TABLE IF NOT EXISTS arbitrage_records (
		id          UUID PRIMARY KEY,
		detected_at TIMESTAMPTZ NOT NULL,
		arb_length  INTEGER NOT NULL,
		arb_rate    DOUBLE PRECISION NOT NULL,
		arb_surface DOUBLE PRECISION NOT NULL,
		asset_0 TEXT, asset_1 TEXT, asset_2 TEXT, asset_3 TEXT,
		asset_4 TEXT, asset_5 TEXT, asset_6 TEXT, asset_7 TEXT
	)
`

const insertRecord = `
	INSERT INTO arbitrage_records (
		id, detected_at, arb_length, arb_rate, arb_surface,
		asset_0, asset_1, asset_2, asset_3, asset_4, asset_5, asset_6, asset_7
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
	)
`

// PostgresStorage implements Storage using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage connects to PostgreSQL and ensures the records table exists.
func NewPostgresStorage(ctx context.Context, cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := &PostgresStorage{db: db, logger: cfg.Logger}

	err = p.EnsureSchema(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return p, nil
}

// EnsureSchema creates the records table when it is missing.
func (p *PostgresStorage) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, createRecordsTable)
	if err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

// StoreRecord inserts a record. Unused asset columns are stored as NULL.
func (p *PostgresStorage) StoreRecord(ctx context.Context, rec *arbitrage.Record) error {
	args := make([]any, 0, 5+arbitrage.MaxRecordAssets)
	args = append(args, rec.ID, rec.DetectedAt, rec.Length, rec.Rate, rec.Surface)
	for _, asset := range rec.Assets {
		args = append(args, sql.NullString{String: asset, Valid: asset != ""})
	}

	_, err := p.db.ExecContext(ctx, insertRecord, args...)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	p.logger.Debug("record-stored",
		zap.String("record-id", rec.ID),
		zap.Int("arb-length", rec.Length),
		zap.Float64("arb-rate", rec.Rate))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
