package bob

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"

	"github.com/mpapenbr/race-strategy-sim/pkg/repository/api"
	bobCtx "github.com/mpapenbr/race-strategy-sim/pkg/repository/bob/context"
)

type bobTransaction struct {
	db bob.DB
}

var _ api.TransactionManager = (*bobTransaction)(nil)

func NewTransactionManager(db bob.DB) api.TransactionManager {
	return &bobTransaction{db: db}
}

func NewTransactionManagerFromPool(pool *pgxpool.Pool) api.TransactionManager {
	return NewTransactionManager(bob.NewDB(stdlib.OpenDBFromPool(pool)))
}

// RunInTx puts the transaction executor into the context passed to fn.
// Repositories pick it up from there before falling back to their own connection.
//
//nolint:whitespace //editor/linter issue
func (b *bobTransaction) RunInTx(
	ctx context.Context,
	fn func(ctx context.Context) error,
) error {
	return b.db.RunInTx(ctx, nil, func(ctx context.Context, e bob.Executor) error {
		return fn(bobCtx.NewContext(ctx, e))
	})
}
