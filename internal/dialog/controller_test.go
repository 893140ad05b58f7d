package dialog

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewController(t *testing.T) {
	c := NewController(nil)

	assert.Equal(t, StateClosed, c.State())
	assert.Equal(t, uint64(0), c.Token())
	assert.False(t, c.Visible())
	assert.False(t, c.IsClosing())
}

func TestController_OpenCloseSettle(t *testing.T) {
	field := ""
	c := NewController(func() { field = "" })

	c.Open()
	assert.Equal(t, Snapshot{State: StateOpen, Token: 1}, c.Snapshot())
	assert.True(t, c.Snapshot().Visible())

	field = "Hello"

	token, ok := c.Close()
	require.True(t, ok)
	assert.Equal(t, uint64(2), token)
	assert.Equal(t, Snapshot{State: StateClosing, Token: 2}, c.Snapshot())
	assert.True(t, c.Snapshot().Closing())
	assert.Equal(t, "Hello", field)

	assert.True(t, c.AfterClose())
	assert.Equal(t, Snapshot{State: StateClosed, Token: 2}, c.Snapshot())
	assert.Equal(t, "", field)
}

func TestController_DoubleClose(t *testing.T) {
	resets := 0
	c := NewController(func() { resets++ })

	c.Open()
	first, ok := c.Close()
	require.True(t, ok)
	assert.Equal(t, uint64(2), first)

	second, ok := c.Close()
	assert.False(t, ok)
	assert.Equal(t, first, second)
	assert.Equal(t, Snapshot{State: StateClosing, Token: 2}, c.Snapshot())

	assert.True(t, c.AfterClose())
	assert.False(t, c.IsClosing())
	assert.Equal(t, 1, resets)
}

func TestController_CloseWhenClosedIsNoop(t *testing.T) {
	c := NewController(nil)

	token, ok := c.Close()
	assert.False(t, ok)
	assert.Equal(t, uint64(0), token)
	assert.Equal(t, StateClosed, c.State())
}

func TestController_AfterCloseWhenClosed(t *testing.T) {
	resets := 0
	c := NewController(func() { resets++ })

	assert.False(t, c.AfterClose())
	assert.Equal(t, Snapshot{State: StateClosed, Token: 0}, c.Snapshot())

	c.Open()
	c.Close()
	c.AfterClose()
	before := c.Snapshot()

	assert.False(t, c.AfterClose())
	assert.Equal(t, before, c.Snapshot())
	assert.Equal(t, 1, resets)
}

func TestController_AfterCloseWhileOpen(t *testing.T) {
	resets := 0
	c := NewController(func() { resets++ })

	c.Open()
	assert.False(t, c.AfterClose())
	assert.True(t, c.Visible())
	assert.Zero(t, resets)
}

func TestController_ReopenBeforeSettle(t *testing.T) {
	draft := ""
	c := NewController(func() { draft = "" })

	assert.Equal(t, uint64(1), c.Open())
	closeToken, ok := c.Close()
	require.True(t, ok)
	assert.Equal(t, uint64(2), closeToken)

	assert.Equal(t, uint64(3), c.Open())
	assert.Equal(t, Snapshot{State: StateOpen, Token: 3}, c.Snapshot())
	draft = "new session"

	assert.False(t, c.SettleClose(closeToken))
	assert.False(t, c.AfterClose())
	assert.Equal(t, "new session", draft)
	assert.True(t, c.Visible())
}

func TestController_SettleCloseMatchingToken(t *testing.T) {
	resets := 0
	c := NewController(func() { resets++ })

	c.Open()
	token, _ := c.Close()

	assert.True(t, c.SettleClose(token))
	assert.False(t, c.SettleClose(token))
	assert.Equal(t, 1, resets)
}

func TestController_ReopenWhileOpen(t *testing.T) {
	c := NewController(nil)

	first := c.Open()
	second := c.Open()

	assert.Greater(t, second, first)
	assert.Equal(t, StateOpen, c.State())
}

func TestController_MountTokensStrictlyIncrease(t *testing.T) {
	c := NewController(nil)
	rng := rand.New(rand.NewSource(7))

	var mounted []uint64
	for range 500 {
		switch rng.Intn(3) {
		case 0:
			mounted = append(mounted, c.Open())
		case 1:
			c.Close()
		case 2:
			c.AfterClose()
		}
	}

	require.NotEmpty(t, mounted)
	for i := 1; i < len(mounted); i++ {
		assert.Greater(t, mounted[i], mounted[i-1])
	}
}

func TestController_TokenOnlyMovesOnOpenAndClose(t *testing.T) {
	c := NewController(nil)

	c.Open()
	c.Close()
	before := c.Token()
	c.AfterClose()

	assert.Equal(t, before, c.Token())
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateClosing, "closing"},
		{State(9), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}
