package dialog

import "context"

// Cloner is implemented by drafts holding reference types. The flow clones
// the draft before handing it to a request so the request never shares
// memory with inputs that are still editable.
type Cloner[D any] interface {
	Clone() D
}

// Request performs the save or delete call for a submitted draft. commit
// applies the result to the page's list and runs on the event loop whether
// or not the dialog is still visible.
type Request[D any] func(ctx context.Context, draft D) (commit func(), err error)

// Flow drives one dialog through the Form Dialog Flow: open with a draft,
// validate locally, send the request while the submit control is disabled,
// close on success and keep the draft on failure.
type Flow[D any] struct {
	ctrl       *Controller
	transition Transition
	runner     Runner
	blank      func() D

	// draftGen identifies the current draft. Begin and the settle reset start
	// a new one; Resume keeps it. busyGen is the draft with a request in
	// flight, zero when idle.
	draft    D
	draftGen uint64
	busyGen  uint64
	errText  string

	notify   func(error)
	onChange []func()
}

// NewFlow returns a closed flow whose draft is blank(). A nil transition
// settles immediately and a nil runner runs requests inline.
func NewFlow[D any](blank func() D, transition Transition, runner Runner) *Flow[D] {
	if transition == nil {
		transition = Immediate{}
	}
	if runner == nil {
		runner = Inline{}
	}
	f := &Flow[D]{
		transition: transition,
		runner:     runner,
		blank:      blank,
	}
	f.ctrl = NewController(f.reset)
	f.reset()
	return f
}

// OnChange registers a view hook called after every state change.
func (f *Flow[D]) OnChange(fn func()) { f.onChange = append(f.onChange, fn) }

// OnNotify sets where request failures go once their dialog is gone.
func (f *Flow[D]) OnNotify(fn func(error)) { f.notify = fn }

func (f *Flow[D]) Dialog() *Controller { return f.ctrl }
func (f *Flow[D]) Draft() *D           { return &f.draft }
func (f *Flow[D]) Err() string         { return f.errText }

// Busy reports whether the visible draft has a request in flight. A session
// resumed while its draft is still being sent stays busy.
func (f *Flow[D]) Busy() bool {
	return f.ctrl.Visible() && f.inFlight()
}

func (f *Flow[D]) inFlight() bool {
	return f.busyGen != 0 && f.busyGen == f.draftGen
}

// Begin replaces the draft and opens a fresh session.
func (f *Flow[D]) Begin(draft D) uint64 {
	f.draft = draft
	f.draftGen++
	f.errText = ""
	token := f.ctrl.Open()
	f.changed()
	return token
}

// Resume opens a fresh session keeping the current draft, so a dialog that
// is reopened while still closing shows what the user typed.
func (f *Flow[D]) Resume() uint64 {
	token := f.ctrl.Open()
	f.changed()
	return token
}

// Cancel closes the dialog and schedules its exit transition. The draft is
// only reset when the transition settles.
func (f *Flow[D]) Cancel() bool {
	token, ok := f.ctrl.Close()
	if !ok {
		return false
	}
	f.changed()
	f.transition.Schedule(token, f.settle)
	return true
}

// Submit validates the draft and dispatches request. It returns false when
// nothing was sent: the dialog is not open, the draft already has a request
// in flight, or validation failed (the error is then shown inline).
func (f *Flow[D]) Submit(validate func(D) error, request Request[D]) bool {
	if !f.ctrl.Visible() || f.inFlight() {
		return false
	}
	draft := f.snapshot()
	if validate != nil {
		if err := validate(draft); err != nil {
			f.errText = err.Error()
			f.changed()
			return false
		}
	}

	gen := f.draftGen
	f.busyGen = gen
	f.errText = ""
	f.changed()

	f.runner.Run(func(ctx context.Context) (func(), error) {
		return request(ctx, draft)
	}, func(commit func(), err error) {
		f.complete(gen, commit, err)
	})
	return true
}

// complete applies a finished request. The visible session owns the result
// when it still shows the submitted draft, including after a Resume.
func (f *Flow[D]) complete(gen uint64, commit func(), err error) {
	if f.busyGen == gen {
		f.busyGen = 0
	}
	current := f.ctrl.Visible() && f.draftGen == gen

	if err != nil {
		if current {
			f.errText = err.Error()
		} else if f.notify != nil {
			f.notify(err)
		}
		f.changed()
		return
	}

	if commit != nil {
		commit()
	}
	if current && f.Cancel() {
		return
	}
	f.changed()
}

func (f *Flow[D]) settle(token uint64) {
	if f.ctrl.SettleClose(token) {
		f.changed()
	}
}

func (f *Flow[D]) reset() {
	f.draft = f.blank()
	f.draftGen++
	f.errText = ""
}

func (f *Flow[D]) snapshot() D {
	if c, ok := any(f.draft).(Cloner[D]); ok {
		return c.Clone()
	}
	return f.draft
}

func (f *Flow[D]) changed() {
	for _, fn := range f.onChange {
		fn()
	}
}
