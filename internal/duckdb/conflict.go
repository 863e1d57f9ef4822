package duckdb

import "strings"

// IsTransient reports whether err is a lock or write conflict that may clear once
// another writer is done with the database file.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Could not set lock on file") ||
		strings.Contains(msg, "Conflict on") ||
		strings.Contains(msg, "TransactionContext Error")
}
