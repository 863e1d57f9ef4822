// Package pipeline runs one symranges build: read both dumps, build the range table
// and entry set, then resolve names into the result record.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/coral-mesh/symranges/internal/config"
	"github.com/coral-mesh/symranges/internal/demangle"
	"github.com/coral-mesh/symranges/internal/duckdb"
	"github.com/coral-mesh/symranges/internal/dwarfdump"
	"github.com/coral-mesh/symranges/internal/errors"
	"github.com/coral-mesh/symranges/internal/namemap"
	"github.com/coral-mesh/symranges/internal/resolver"
	"github.com/coral-mesh/symranges/internal/retry"
	"github.com/coral-mesh/symranges/internal/safe"
)

// Result is the outcome of Build.
type Result struct {
	Record *resolver.ResultRecord
	Stats  resolver.Stats
}

// Options overrides collaborators, for tests.
type Options struct {
	// Runner replaces command execution for the Swift demangler.
	Runner demangle.Runner
}

// Build reads the inputs and resolves the record. Only a failure to read either
// dump is returned; every other problem degrades with a diagnostic.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts Options) (*Result, error) {
	logger = logger.With().Str("component", "pipeline").Logger()

	infoData, rangesData, err := readInputs(cfg.Inputs)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranges, err := dwarfdump.ParseRanges(bytes.NewReader(rangesData))
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("size", humanize.Bytes(uint64(len(rangesData)))).
		Str("digest", digest(rangesData)).
		Int("offsets", len(ranges)).
		Int("pairs", ranges.PairCount()).
		Msg("Ranges table built")

	entries, err := dwarfdump.ParseEntries(bytes.NewReader(infoData))
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("size", humanize.Bytes(uint64(len(infoData)))).
		Str("digest", digest(infoData)).
		Int("total_dies", entries.Len()).
		Int("subprogram_like", entries.SubprogramCount()).
		Msg("Debug entries built")

	names := namemap.Load(cfg.Mapping, logger)

	dm := demangle.New(ctx, demangle.Options{
		Swift:       cfg.Demangle.Swift,
		SwiftBin:    cfg.Demangle.SwiftBin,
		Itanium:     cfg.Demangle.Itanium,
		ItaniumMode: cfg.Demangle.ItaniumMode,
		CacheSize:   cfg.Demangle.CacheSize,
		Timeout:     cfg.Demangle.Timeout,
		Runner:      opts.Runner,
	}, logger)

	r := resolver.New(entries, ranges,
		resolver.WithNameMap(names),
		resolver.WithFinisher(demangle.Finisher(names, dm)),
		resolver.WithLogger(logger),
	)

	rec, stats := r.Record(resolver.Identity{
		Image: cfg.Image.Path,
		UUID:  cfg.Image.UUID,
		Arch:  cfg.Image.Arch,
	})

	logger.Debug().
		Int("functions", stats.Emitted).
		Int("missing_name", stats.MissingName).
		Msg("Record resolved")

	return &Result{Record: rec, Stats: stats}, nil
}

// exportPolicy retries an export while another process holds the database.
var exportPolicy = retry.Policy{
	Attempts:       5,
	InitialBackoff: 100 * time.Millisecond,
	MaxBackoff:     2 * time.Second,
	Jitter:         0.2,
}

// ExportDuckDB stores rec as a new run in the DuckDB database at dsn and returns
// the run id. Lock and write conflicts are retried with backoff.
func ExportDuckDB(ctx context.Context, dsn string, rec *resolver.ResultRecord, logger zerolog.Logger) (string, error) {
	policy := exportPolicy
	policy.OnRetry = func(attempt int, wait time.Duration, err error) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("DuckDB busy, retrying export")
	}

	var runID string
	err := retry.Do(ctx, policy, func() error {
		id, err := exportOnce(ctx, dsn, rec, logger)
		if err != nil {
			return err
		}
		runID = id
		return nil
	}, duckdb.IsTransient)
	if err != nil {
		return "", fmt.Errorf("duckdb export: %w", err)
	}
	return runID, nil
}

func exportOnce(ctx context.Context, dsn string, rec *resolver.ResultRecord, logger zerolog.Logger) (string, error) {
	db, err := duckdb.OpenDB(dsn)
	if err != nil {
		return "", err
	}
	defer errors.DeferClose(logger, db, "failed to close duckdb")

	// Surface connection failures before touching the schema.
	if err := db.PingContext(ctx); err != nil {
		return "", err
	}

	store, err := duckdb.NewStore(ctx, db, logger)
	if err != nil {
		return "", err
	}
	return store.SaveRecord(ctx, rec)
}

// readInputs reads both dumps concurrently. Either failure aborts the run.
func readInputs(in config.InputsConfig) (info, ranges []byte, err error) {
	opts := &safe.ReadOptions{MaxSize: in.MaxSize, AllowSymlinks: true}

	var g errgroup.Group
	g.Go(func() error {
		data, err := safe.ReadFile(in.DebugInfo, opts)
		if err != nil {
			return fmt.Errorf("read debug-info dump %s: %w", in.DebugInfo, err)
		}
		info = data
		return nil
	})
	g.Go(func() error {
		data, err := safe.ReadFile(in.DebugRanges, opts)
		if err != nil {
			return fmt.Errorf("read debug-ranges dump %s: %w", in.DebugRanges, err)
		}
		ranges = data
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return info, ranges, nil
}

func digest(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}
