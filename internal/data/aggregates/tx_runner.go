package aggregates

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
)

// TxRunner opens the transaction an aggregate operation runs in.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

// ReadTxRunner is implemented by runners that can open a read-only
// transaction. Reads fall back to InTx on runners without it.
type ReadTxRunner interface {
	InReadTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type TxOption func(*gormTxRunner)

// WithLockTimeout bounds how long a write waits for a row lock on postgres.
// A wait that runs out fails with 55P03, which MapError reports as retryable.
func WithLockTimeout(d time.Duration) TxOption {
	return func(r *gormTxRunner) { r.lockTimeout = d }
}

type gormTxRunner struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

var (
	_ TxRunner     = (*gormTxRunner)(nil)
	_ ReadTxRunner = (*gormTxRunner)(nil)
)

// NewGormTxRunner returns a runner backed by GORM transactions.
func NewGormTxRunner(db *gorm.DB, opts ...TxOption) TxRunner {
	r := &gormTxRunner{db: db}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return r.run(ctx, "aggregate.tx", nil, fn)
}

// InReadTx opens the transaction read-only. Drivers that ignore TxOptions
// (sqlite) run it as a plain transaction.
func (r *gormTxRunner) InReadTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return r.run(ctx, "aggregate.read_tx", &sql.TxOptions{ReadOnly: true}, fn)
}

func (r *gormTxRunner) run(ctx context.Context, op string, txOpts *sql.TxOptions, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeCollaboratorFailure, op, "transaction runner has nil db", nil)
	}
	var opts []*sql.TxOptions
	if txOpts != nil {
		opts = append(opts, txOpts)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if txOpts == nil {
			if stmt := lockTimeoutStatement(tx.Dialector.Name(), r.lockTimeout); stmt != "" {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}
		}
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	}, opts...)
}

// lockTimeoutStatement is empty unless the dialect understands SET LOCAL.
func lockTimeoutStatement(dialect string, d time.Duration) string {
	if dialect != "postgres" || d <= 0 {
		return ""
	}
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", ms)
}
