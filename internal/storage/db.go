package storage

import (
	"context"
	"database/sql"
	"time"
)

const timeLayout = time.RFC3339

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// DBTX is satisfied by both *sql.DB and *sql.Tx so every query can run
// either standalone or inside a transaction.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries holds every SQL statement the application issues.
type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type rowScanner interface {
	Scan(dest ...any) error
}
