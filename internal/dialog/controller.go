package dialog

// State is the lifecycle phase of a single dialog.
type State uint8

const (
	StateClosed State = iota
	StateOpen
	// StateClosing means the dialog is hidden but its exit transition has not
	// finished yet.
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the controller state.
type Snapshot struct {
	State State
	Token uint64
}

func (s Snapshot) Visible() bool { return s.State == StateOpen }
func (s Snapshot) Closing() bool { return s.State == StateClosing }

// Controller tracks visibility, the remount token and the close guard of one
// dialog instance. It is owned by the view that renders the dialog and must
// only be used from that view's event loop.
type Controller struct {
	state State
	token uint64
	reset func()
}

// NewController returns a closed controller. reset runs once per completed
// close cycle and should clear the caller's draft and pending selection.
func NewController(reset func()) *Controller {
	return &Controller{reset: reset}
}

// Open shows the dialog under a new remount token. Calling it while the
// dialog is open or closing is allowed and still forces a fresh remount.
func (c *Controller) Open() uint64 {
	c.token++
	c.state = StateOpen
	return c.token
}

// Close hides the dialog and starts a close cycle. The returned token
// identifies the cycle for SettleClose. ok is false when no cycle started
// because the dialog was already closing or closed.
func (c *Controller) Close() (token uint64, ok bool) {
	if c.state != StateOpen {
		return c.token, false
	}
	c.token++
	c.state = StateClosing
	return c.token, true
}

// AfterClose finishes the current close cycle: the reset callback runs and
// the dialog becomes closed. Outside of a close cycle it does nothing.
func (c *Controller) AfterClose() bool {
	if c.state != StateClosing {
		return false
	}
	c.state = StateClosed
	if c.reset != nil {
		c.reset()
	}
	return true
}

// SettleClose is AfterClose for a transition signal that carries the token
// returned by Close. Signals from an older cycle are dropped.
func (c *Controller) SettleClose(token uint64) bool {
	if token != c.token {
		return false
	}
	return c.AfterClose()
}

func (c *Controller) State() State    { return c.state }
func (c *Controller) Token() uint64   { return c.token }
func (c *Controller) Visible() bool   { return c.state == StateOpen }
func (c *Controller) IsClosing() bool { return c.state == StateClosing }

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{State: c.state, Token: c.token}
}
