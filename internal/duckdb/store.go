package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/coral-mesh/symranges/internal/errors"
	"github.com/coral-mesh/symranges/internal/resolver"
)

// Store writes result records into DuckDB.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewStore creates a Store and ensures its schema exists.
func NewStore(ctx context.Context, db *sql.DB, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		db:     db,
		logger: logger.With().Str("component", "duckdb_store").Logger(),
	}

	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS images (
			run_id          VARCHAR PRIMARY KEY,
			image           VARCHAR NOT NULL,
			uuid            VARCHAR NOT NULL,
			arch            VARCHAR NOT NULL,
			function_count  INTEGER NOT NULL,
			created_at      TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS function_ranges (
			run_id      VARCHAR NOT NULL,
			seq         INTEGER NOT NULL,
			start_addr  UBIGINT NOT NULL,
			end_addr    UBIGINT NOT NULL,
			name        VARCHAR NOT NULL,
			PRIMARY KEY (run_id, seq)
		);

		CREATE INDEX IF NOT EXISTS idx_images_uuid ON images(uuid);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create function range schema: %w", err)
	}
	return nil
}

// SaveRecord stores rec as a new run and returns the run id.
func (s *Store) SaveRecord(ctx context.Context, rec *resolver.ResultRecord) (string, error) {
	runID := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer errors.DeferRollback(s.logger, tx)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO images (run_id, image, uuid, arch, function_count, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, rec.Image, rec.UUID, rec.Arch, len(rec.Functions), time.Now().UTC(),
	); err != nil {
		return "", fmt.Errorf("insert image: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO function_ranges (run_id, seq, start_addr, end_addr, name) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare function insert: %w", err)
	}
	defer errors.DeferClose(s.logger, stmt, "failed to close prepared statement")

	for i, fn := range rec.Functions {
		if _, err := stmt.ExecContext(ctx, runID, i, fn.Start, fn.End, fn.Name); err != nil {
			return "", fmt.Errorf("insert function %q: %w", fn.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug().
		Str("run_id", runID).
		Str("image", rec.Image).
		Int("functions", len(rec.Functions)).
		Msg("Record exported to DuckDB")

	return runID, nil
}

// LoadFunctions returns the function ranges stored for a run, in record order.
func (s *Store) LoadFunctions(ctx context.Context, runID string) ([]resolver.FunctionRange, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT start_addr, end_addr, name FROM function_ranges WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query functions: %w", err)
	}
	defer errors.DeferClose(s.logger, rows, "failed to close rows")

	funcs := make([]resolver.FunctionRange, 0)
	for rows.Next() {
		var fn resolver.FunctionRange
		if err := rows.Scan(&fn.Start, &fn.End, &fn.Name); err != nil {
			return nil, fmt.Errorf("scan function: %w", err)
		}
		funcs = append(funcs, fn)
	}
	return funcs, rows.Err()
}
