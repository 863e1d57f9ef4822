package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	duckdbDriver "github.com/marcboeker/go-duckdb"
)

// OpenDB opens a DuckDB database. An empty DSN or ":memory:" opens an in-memory
// database. Every pooled connection gets the same session settings.
func OpenDB(dsn string) (*sql.DB, error) {
	if dsn == ":memory:" {
		dsn = ""
	}

	connector, err := duckdbDriver.NewConnector(dsn, func(execer driver.ExecerContext) error {
		ctx := context.Background()
		bootQueries := []string{
			"SET preserve_insertion_order = true",
		}
		for _, query := range bootQueries {
			if _, err := execer.ExecContext(ctx, query, nil); err != nil {
				return fmt.Errorf("init connection (%s): %w", strings.ToLower(query), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("open duckdb %q: %w", dsn, err)
	}

	return sql.OpenDB(connector), nil
}
