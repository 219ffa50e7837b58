package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/lms-backend/internal/data/aggregates"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
)

// InjectedTxRunner is a test helper for aggregate integration tests.
// It supports rollback/failure injection. With Inner set, the body runs in
// Inner's real transaction and an injected commit failure rolls it back.
type InjectedTxRunner struct {
	mu sync.Mutex

	Inner aggregates.TxRunner

	FailBegin      error
	FailBeforeBody error
	FailCommit     error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failBeforeBody := r.FailBeforeBody
	failCommit := r.FailCommit
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if failBeforeBody != nil {
		r.mu.Lock()
		r.RollbackCalls++
		r.mu.Unlock()
		return failBeforeBody
	}
	if fn == nil {
		r.mu.Lock()
		r.CommitCalls++
		r.mu.Unlock()
		return nil
	}
	if r.Inner != nil {
		return r.runInner(ctx, fn, failCommit)
	}
	if err := fn(dbctx.Context{Ctx: ctx}); err != nil {
		r.mu.Lock()
		r.RollbackCalls++
		r.mu.Unlock()
		return err
	}
	if failCommit != nil {
		r.mu.Lock()
		r.RollbackCalls++
		r.mu.Unlock()
		return failCommit
	}
	r.mu.Lock()
	r.CommitCalls++
	r.mu.Unlock()
	return nil
}

func (r *InjectedTxRunner) runInner(ctx context.Context, fn func(dbc dbctx.Context) error, failCommit error) error {
	err := r.Inner.InTx(ctx, func(dbc dbctx.Context) error {
		if err := fn(dbc); err != nil {
			return err
		}
		return failCommit
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.RollbackCalls++
		return err
	}
	r.CommitCalls++
	return nil
}
