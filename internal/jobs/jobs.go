// Package jobs runs asynchronous AI work with single-flight semantics:
// at most one job per kind, stale results discarded.
package jobs

import (
	"context"
	"errors"
	"sync"
)

// Kind identifies a job slot.
type Kind string

const (
	KindClassify Kind = "classify"
	KindGroup    Kind = "group"
)

// ErrBusy is returned when a job of the same kind is already running.
var ErrBusy = errors.New("a job of this kind is already running")

type job struct {
	token  uint64
	cancel context.CancelFunc
}

// Runner owns one in-flight slot per job kind. Each started job gets a
// monotonic token; a result is committed only while its token is still
// current, so cancelled or superseded jobs never apply.
type Runner struct {
	mu       sync.Mutex
	inflight map[Kind]*job
	next     uint64
}

func NewRunner() *Runner {
	return &Runner{inflight: make(map[Kind]*job)}
}

// Start runs fn on its own goroutine. commit receives fn's result, but
// only when the job finished without being cancelled or superseded.
func (r *Runner) Start(ctx context.Context, kind Kind, fn func(ctx context.Context) (any, error), commit func(result any, err error)) error {
	r.mu.Lock()
	if _, ok := r.inflight[kind]; ok {
		r.mu.Unlock()
		return ErrBusy
	}
	r.next++
	token := r.next
	jctx, cancel := context.WithCancel(ctx)
	r.inflight[kind] = &job{token: token, cancel: cancel}
	r.mu.Unlock()

	go func() {
		defer cancel()
		result, err := fn(jctx)

		r.mu.Lock()
		j, ok := r.inflight[kind]
		current := ok && j.token == token
		if current {
			delete(r.inflight, kind)
		}
		r.mu.Unlock()

		if current && jctx.Err() == nil && commit != nil {
			commit(result, err)
		}
	}()
	return nil
}

// Cancel aborts the in-flight job of a kind, freeing the slot
// immediately. The job's result, if any, is discarded.
func (r *Runner) Cancel(kind Kind) {
	r.mu.Lock()
	j, ok := r.inflight[kind]
	if ok {
		delete(r.inflight, kind)
	}
	r.mu.Unlock()
	if ok {
		j.cancel()
	}
}

// Busy reports whether a job of the kind is in flight.
func (r *Runner) Busy(kind Kind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inflight[kind]
	return ok
}
