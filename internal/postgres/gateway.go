package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const DefaultTxTimeout = 5 * time.Second

// Querier is the single-statement surface shared by the pool and a tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Gateway struct {
	db        DB
	txTimeout time.Duration
}

func NewGateway(db DB, txTimeout time.Duration) *Gateway {
	if txTimeout <= 0 {
		txTimeout = DefaultTxTimeout
	}
	return &Gateway{db: db, txTimeout: txTimeout}
}

// Q returns the pool for statements that need no transaction.
func (g *Gateway) Q() Querier { return g.db }

// WithTx runs fn on a dedicated connection inside one transaction, with ctx
// bounded by the gateway's tx timeout.
// fn returning nil commits; an error or a panic rolls back. The connection
// goes back to the pool on every path, including a timed out ctx.
func (g *Gateway) WithTx(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	ctx, cancel := context.WithTimeout(ctx, g.txTimeout)
	defer cancel()

	tx, err := g.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	done := false
	defer func() {
		if done {
			return
		}
		// rollback must still reach the server after ctx expired
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	// a failed commit also ends the tx, no rollback after it
	done = true
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
