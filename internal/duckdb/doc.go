// Package duckdb exports result records into a DuckDB database so function ranges
// from many images can be queried with SQL.
//
// Each export is one run, identified by a random UUID:
//
//	db, err := duckdb.OpenDB("ranges.duckdb")
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	store, err := duckdb.NewStore(ctx, db, logger)
//	if err != nil {
//		return err
//	}
//	runID, err := store.SaveRecord(ctx, record)
//
// Two tables are maintained: images (one row per run) and function_ranges (one row
// per emitted range, keyed by run_id). Addresses are stored as UBIGINT.
package duckdb
