package dialog

import (
	"context"
	"time"
)

// Transition delivers the "exit transition finished" signal for a close
// cycle. done must be invoked on the view's event loop.
type Transition interface {
	Schedule(token uint64, done func(token uint64))
}

// Immediate settles a close synchronously, for views without an exit
// animation.
type Immediate struct{}

func (Immediate) Schedule(token uint64, done func(uint64)) { done(token) }

// Timed settles a close after Delay. Post hands the callback back to the
// event loop (tview's QueueUpdateDraw). Once Ctx is done the signal is
// dropped, since the loop may no longer drain its queue.
type Timed struct {
	Ctx   context.Context
	Delay time.Duration
	Post  func(func())
}

func (t Timed) Schedule(token uint64, done func(uint64)) {
	if t.Delay <= 0 || t.Post == nil {
		done(token)
		return
	}
	time.AfterFunc(t.Delay, func() {
		if stopped(t.Ctx) {
			return
		}
		t.Post(func() { done(token) })
	})
}

// NewTransition picks Timed for a positive delay and Immediate otherwise.
func NewTransition(ctx context.Context, delay time.Duration, post func(func())) Transition {
	if delay <= 0 || post == nil {
		return Immediate{}
	}
	return Timed{Ctx: ctx, Delay: delay, Post: post}
}

func stopped(ctx context.Context) bool {
	return ctx != nil && ctx.Err() != nil
}

// Runner executes a request away from the event loop and reports its
// outcome back on it.
type Runner interface {
	Run(work func(ctx context.Context) (commit func(), err error), done func(commit func(), err error))
}

// Inline runs work and done on the calling goroutine.
type Inline struct{}

func (Inline) Run(work func(context.Context) (func(), error), done func(func(), error)) {
	commit, err := work(context.Background())
	done(commit, err)
}

// LoopRunner runs each request on its own goroutine and posts completion to
// the event loop. Closing a dialog does not cancel its request; Ctx only
// stops work when the whole console shuts down, and completions arriving
// after that are dropped.
type LoopRunner struct {
	Ctx  context.Context
	Post func(func())
}

func (r LoopRunner) Run(work func(context.Context) (func(), error), done func(func(), error)) {
	ctx := r.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		commit, err := work(ctx)
		if stopped(ctx) {
			return
		}
		r.Post(func() { done(commit, err) })
	}()
}
