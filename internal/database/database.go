package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// New opens the SQLite database behind the given DSN.
//
// The pool is pinned to a single connection: SQLite serializes writers
// anyway, and one connection guarantees every unit of work sees the
// same writer queue instead of fighting over file locks.
func New(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1)

	return db, nil
}
