// Package errors provides cleanup helpers that keep close and rollback failures
// visible.
package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// DeferClose closes an io.Closer and logs a failure.
// Use this in defer statements for read-only resources.
func DeferClose(logger zerolog.Logger, closer io.Closer, msg string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn().Err(err).Msg(msg)
	}
}

// CloseInto closes an io.Closer and stores a failure in *errp unless an earlier
// error is already there. Use this in defer statements for written resources,
// where a failed close means lost output.
func CloseInto(errp *error, closer io.Closer, what string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil && *errp == nil {
		*errp = fmt.Errorf("close %s: %w", what, err)
	}
}

// DeferRollback rolls back a transaction and logs a failure.
// sql.ErrTxDone, expected after a successful commit, is ignored.
func DeferRollback(logger zerolog.Logger, tx *sql.Tx) {
	if tx == nil {
		return
	}
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Warn().Err(err).Msg("transaction rollback failed")
	}
}
