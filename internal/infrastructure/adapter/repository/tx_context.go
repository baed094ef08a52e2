package repository

import (
	"context"

	"gorm.io/gorm"
)

type txContextKey struct{}

// ContextWithTx returns a context carrying the given transaction handle.
// Repositories resolved from this context run their statements on that
// transaction instead of the base connection. Nesting is last-wins: a unit
// of work begun inside a repair claim supersedes the claim's handle for
// its own scope.
func ContextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext extracts the transaction handle from the context, if any
func TxFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txContextKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}
