package sql

import (
	"context"
	"database/sql"
)

// preparer is satisfied by both *sql.DB and *sql.Tx. Every repository query
// goes through a prepared statement.
type preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// conn binds a repository to the pool, or to the transaction opened by
// TransactionalRepository.WithinTransaction.
type conn struct {
	db  *sql.DB
	txn *sql.Tx
}

func (c conn) executor() preparer {
	if c.txn != nil {
		return c.txn
	}
	return c.db
}

func (c conn) inTransaction() bool {
	return c.txn != nil
}
