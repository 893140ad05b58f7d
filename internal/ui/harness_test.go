package ui

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/plumber-cd/ez-desk/internal/api"
	"github.com/plumber-cd/ez-desk/internal/domain"
	"github.com/plumber-cd/ez-desk/internal/server"
)

const (
	sentinelSyncKey = tcell.KeyF63
	waitTimeout     = 3 * time.Second
)

type TestHarness struct {
	t       *testing.T
	app     *App
	screen  tcell.SimulationScreen
	dataDir string
	runErr  chan error
	once    sync.Once
}

// fakeBackend is an in-memory Backend. gate, when set, holds every mutation
// until it is closed. listHold does the same for List after it has taken its
// snapshot, which is then announced on listed.
type fakeBackend struct {
	mu        sync.Mutex
	book      *domain.Book
	seq       int
	saveErr   error
	deleteErr error
	gate      chan struct{}
	listHold  chan struct{}
	listed    chan struct{}
}

func newFakeBackend(records ...domain.Record) *fakeBackend {
	b := &fakeBackend{book: domain.NewBook()}
	for _, r := range records {
		b.book.Put(r)
	}
	return b
}

func (b *fakeBackend) wait(ctx context.Context) error {
	if b.gate == nil {
		return nil
	}
	select {
	case <-b.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *fakeBackend) List(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	b.mu.Lock()
	var out []domain.Record
	for _, r := range b.book.List(kind) {
		c, err := domain.FromValues(kind, r.RawID(), r.Values())
		if err != nil {
			b.mu.Unlock()
			return nil, err
		}
		out = append(out, c)
	}
	hold, listed := b.listHold, b.listed
	b.mu.Unlock()

	if hold == nil {
		return out, nil
	}
	select {
	case listed <- struct{}{}:
	default:
	}
	select {
	case <-hold:
		return out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *fakeBackend) Create(ctx context.Context, r domain.Record) (domain.Record, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return nil, b.saveErr
	}
	b.seq++
	return b.store(r, fmt.Sprintf("id-%d", b.seq))
}

func (b *fakeBackend) Update(ctx context.Context, r domain.Record) (domain.Record, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return nil, b.saveErr
	}
	return b.store(r, r.RawID())
}

func (b *fakeBackend) store(r domain.Record, id string) (domain.Record, error) {
	saved, err := domain.FromValues(r.Kind(), id, r.Values())
	if err != nil {
		return nil, err
	}
	if err := saved.Validate(); err != nil {
		return nil, err
	}
	b.book.Put(saved)
	return domain.FromValues(saved.Kind(), id, saved.Values())
}

func (b *fakeBackend) DeleteRecord(ctx context.Context, kind domain.Kind, id string) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	if b.book.Remove(kind, id) == nil {
		return &api.StatusError{Code: 404, Message: "record not found"}
	}
	return nil
}

func (b *fakeBackend) count(kind domain.Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.book.Count(kind)
}

// newServerBackend serves book over a real REST backend persisting into a
// temp dir.
func newServerBackend(t *testing.T, book *domain.Book) (*api.Client, string) {
	t.Helper()
	dir := t.TempDir()
	srv := server.New(dir, book, "secret")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := api.New(ts.URL, "secret", 5*time.Second)
	if err != nil {
		t.Fatalf("api client: %v", err)
	}
	return client, dir
}

func NewTestHarness(t *testing.T, backend Backend, exitTransition time.Duration) *TestHarness {
	t.Helper()

	dataDir := t.TempDir()
	app, err := New(Options{
		Backend:        backend,
		DataDir:        dataDir,
		ExitTransition: exitTransition,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	screen.SetSize(100, 30)
	app.TviewApp.SetScreen(screen)

	h := &TestHarness{
		t:       t,
		app:     app,
		screen:  screen,
		dataDir: dataDir,
		runErr:  make(chan error, 1),
	}
	t.Cleanup(h.Close)

	go func() {
		h.runErr <- app.Run()
	}()

	h.WaitForDraw()
	return h
}

func (h *TestHarness) Close() {
	h.once.Do(func() {
		h.app.Stop()
		select {
		case err := <-h.runErr:
			if err != nil {
				h.t.Errorf("app run failed: %v", err)
			}
		case <-time.After(2 * time.Second):
		}
	})
}

// Sync runs fn on the event loop and waits for the following draw.
func (h *TestHarness) Sync(fn func()) {
	h.t.Helper()
	done := make(chan struct{})
	h.app.TviewApp.QueueUpdateDraw(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
	case <-time.After(waitTimeout):
		h.t.Fatalf("timed out waiting for event loop")
	}
}

func (h *TestHarness) WaitForDraw() {
	h.t.Helper()
	h.Sync(func() {})
}

func (h *TestHarness) PressKey(key tcell.Key, r rune, mod tcell.ModMask) {
	h.t.Helper()
	done := make(chan struct{})
	h.Sync(func() { h.app.SentinelCh = done })

	h.screen.InjectKey(key, r, mod)
	h.screen.InjectKey(sentinelSyncKey, 0, tcell.ModNone)

	select {
	case <-done:
	case <-time.After(waitTimeout):
		h.t.Fatalf("timed out waiting for key processing")
	}
	h.WaitForDraw()
}

func (h *TestHarness) PressRune(r rune) {
	h.t.Helper()
	h.PressKey(tcell.KeyRune, r, tcell.ModNone)
}

func (h *TestHarness) TypeText(s string) {
	h.t.Helper()
	for _, r := range s {
		h.PressRune(r)
	}
}

func (h *TestHarness) PressEnter() {
	h.t.Helper()
	h.PressKey(tcell.KeyEnter, 0, tcell.ModNone)
}

func (h *TestHarness) PressEscape() {
	h.t.Helper()
	h.PressKey(tcell.KeyEscape, 0, tcell.ModNone)
}

func (h *TestHarness) PressTab() {
	h.t.Helper()
	h.PressKey(tcell.KeyTab, 0, tcell.ModNone)
}

func (h *TestHarness) PressBacktab() {
	h.t.Helper()
	h.PressKey(tcell.KeyBacktab, 0, tcell.ModNone)
}

// ConfirmModal moves from the default second button to the first one and
// activates it.
func (h *TestHarness) ConfirmModal() {
	h.t.Helper()
	h.PressTab()
	h.PressEnter()
}

func (h *TestHarness) WaitForExit(timeout time.Duration) error {
	select {
	case err := <-h.runErr:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for app exit")
	}
}

func (h *TestHarness) GetScreenText() string {
	h.t.Helper()
	var sb strings.Builder
	h.Sync(func() {
		cells, width, height := h.screen.GetContents()
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				cell := cells[row*width+col]
				if len(cell.Runes) > 0 && cell.Runes[0] != 0 {
					sb.WriteRune(cell.Runes[0])
				} else {
					sb.WriteRune(' ')
				}
			}
			sb.WriteRune('\n')
		}
	})
	return sb.String()
}

func (h *TestHarness) DumpScreen() {
	h.t.Logf("\n%s", h.GetScreenText())
}

func (h *TestHarness) AssertScreenContains(substr string) {
	h.t.Helper()
	text := h.GetScreenText()
	if !strings.Contains(text, substr) {
		h.t.Logf("\n%s", text)
		h.t.Fatalf("screen does not contain %q", substr)
	}
}

func (h *TestHarness) AssertScreenNotContains(substr string) {
	h.t.Helper()
	text := h.GetScreenText()
	if strings.Contains(text, substr) {
		h.t.Logf("\n%s", text)
		h.t.Fatalf("screen unexpectedly contains %q", substr)
	}
}

// WaitForScreen polls until substr is drawn, for results that arrive from
// background requests.
func (h *TestHarness) WaitForScreen(substr string) {
	h.t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for {
		text := h.GetScreenText()
		if strings.Contains(text, substr) {
			return
		}
		if time.Now().After(deadline) {
			h.t.Logf("\n%s", text)
			h.t.Fatalf("timed out waiting for %q on screen", substr)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// OpenSection moves the home cursor to the section at index and enters it.
func (h *TestHarness) OpenSection(index int, title string) {
	h.t.Helper()
	for range index {
		h.PressRune('j')
	}
	h.PressEnter()
	h.AssertScreenContains("Home > " + title)
}
