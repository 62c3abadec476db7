package xcontext

import (
	"context"

	"gorm.io/gorm"
)

type transaction struct {
	tx       *gorm.DB
	finished bool
}

// WithDBTransaction begins a database transaction and stores it in the
// returned context. Until the transaction is committed or rolled back,
// DB() resolves to it instead of the root handle.
func WithDBTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, &transaction{tx: DB(ctx).Begin()})
}

// HasDBTransaction reports whether the context carries an unfinished
// transaction.
func HasDBTransaction(ctx context.Context) bool {
	t, ok := ctx.Value(txKey{}).(*transaction)
	return ok && !t.finished
}

// WithCommitDBTransaction commits the current transaction if it exists
// and hasn't finished yet.
func WithCommitDBTransaction(ctx context.Context) context.Context {
	if t, ok := ctx.Value(txKey{}).(*transaction); ok && !t.finished {
		t.tx.Commit()
		t.finished = true
	}

	return ctx
}

// WithRollbackDBTransaction rollbacks the current transaction. It is a
// no-op after WithCommitDBTransaction, so it is safe to defer right
// after WithDBTransaction.
func WithRollbackDBTransaction(ctx context.Context) context.Context {
	if t, ok := ctx.Value(txKey{}).(*transaction); ok && !t.finished {
		t.tx.Rollback()
		t.finished = true
	}

	return ctx
}
