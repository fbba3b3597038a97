package composables

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/taskdesk/pkg/constants"
)

var (
	ErrNoTx   = errors.New("no transaction found in context")
	ErrNoPool = errors.New("no database pool found in context")
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx. Repositories
// take it from context so the same code runs inside and outside a transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, constants.TxKey, tx)
}

func UseTx(ctx context.Context) (Querier, error) {
	tx := ctx.Value(constants.TxKey)
	if tx == nil {
		return UsePool(ctx)
	}
	return tx.(pgx.Tx), nil
}

func WithPool(ctx context.Context, pool *pgxpool.Pool) context.Context {
	return context.WithValue(ctx, constants.PoolKey, pool)
}

func UsePool(ctx context.Context) (*pgxpool.Pool, error) {
	pool := ctx.Value(constants.PoolKey)
	if pool == nil {
		return nil, ErrNoPool
	}
	return pool.(*pgxpool.Pool), nil
}

type txHooks struct {
	fns []func(context.Context)
}

func (h *txHooks) run(ctx context.Context) {
	for _, fn := range h.fns {
		fn(ctx)
	}
}

// OnCommit defers fn until the unit of work on ctx commits; if the unit rolls
// back fn never runs. Outside a unit fn runs immediately. Hooks run with the
// post-commit context, which carries no transaction. Meant for side effects
// that cannot be rolled back, like push delivery.
func OnCommit(ctx context.Context, fn func(context.Context)) {
	if hooks, ok := ctx.Value(constants.TxHooksKey).(*txHooks); ok {
		hooks.fns = append(hooks.fns, fn)
		return
	}
	fn(ctx)
}

// InTx runs fn inside a new transaction. Nested calls reuse the transaction
// already on the context, so a service composing other services still commits
// everything as one unit. Without a pool on the context fn runs unmanaged;
// production wiring always installs the pool. OnCommit hooks registered by fn
// run after a successful commit (or after fn succeeds, in the unmanaged case).
func InTx(ctx context.Context, fn func(context.Context) error) error {
	if ctx.Value(constants.TxKey) != nil {
		return fn(ctx)
	}

	hooks := &txHooks{}
	hookCtx := context.WithValue(ctx, constants.TxHooksKey, hooks)

	pool, err := UsePool(ctx)
	if err != nil {
		if errors.Is(err, ErrNoPool) {
			// nested unmanaged call: the outer unit already owns the hooks
			if ctx.Value(constants.TxHooksKey) != nil {
				return fn(ctx)
			}
			if err := fn(hookCtx); err != nil {
				return err
			}
			hooks.run(ctx)
			return nil
		}
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(WithTx(hookCtx, tx)); err != nil {
		if rErr := tx.Rollback(ctx); rErr != nil {
			return errors.Join(err, rErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	hooks.run(ctx)
	return nil
}
