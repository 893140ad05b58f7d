package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rivo/tview"

	"github.com/plumber-cd/ez-desk/internal/dialog"
	"github.com/plumber-cd/ez-desk/internal/domain"
	"github.com/plumber-cd/ez-desk/internal/export"
	"github.com/plumber-cd/ez-desk/internal/logging"
	"github.com/plumber-cd/ez-desk/internal/store"
)

const (
	mainPageName   = "*main*"
	quitPageName   = "*quit*"
	helpPageName   = "*help*"
	editorPageName = "*editor*"
	deletePageName = "*delete*"

	reportsTitle = "Reports"

	FormFieldWidth          = 42
	multilineHint           = "Ctrl+E: edit in $EDITOR"
	maxDialogViewportHeight = 23

	loadTimeout = 30 * time.Second
)

var GlobalKeys = []string{"<q> Quit", "<R> Reload", "<X> Export"}

// Backend is the REST collaborator the console reads and writes through.
// *api.Client satisfies it.
type Backend interface {
	List(ctx context.Context, kind domain.Kind) ([]domain.Record, error)
	Create(ctx context.Context, r domain.Record) (domain.Record, error)
	Update(ctx context.Context, r domain.Record) (domain.Record, error)
	DeleteRecord(ctx context.Context, kind domain.Kind, id string) error
}

// Options configures a console.
type Options struct {
	Backend Backend
	// DataDir receives exported reports.
	DataDir string
	// ExitTransition is how long a closed dialog lingers before its draft
	// is reset. Zero settles synchronously.
	ExitTransition time.Duration
	// Context stops in-flight requests when the console shuts down.
	Context context.Context
}

// App holds all UI state for the EZ-DESK console.
type App struct {
	Book    *domain.Book
	DataDir string

	backend    Backend
	ctx        context.Context
	cancel     context.CancelFunc
	runner     dialog.Runner
	transition dialog.Transition

	TviewApp *tview.Application
	Pages    *tview.Pages

	PositionLine *tview.TextView
	NavPanel     *tview.List
	DetailsPanel *tview.TextView
	StatusLine   *tview.TextView
	KeysLine     *tview.TextView
	DetailsFlex  *tview.Flex

	// Navigation state. section is nil on the home list.
	section             *domain.Schema
	menuRecords         []domain.Record
	focus               domain.Record
	CurrentMenuItemKeys []string
	CurrentFocusKeys    []string

	// mouseSelectArmed is false right after a single click. tview reports a
	// double click to SetSelectedFunc as a click, so only an armed select
	// opens the item.
	mouseSelectArmed bool

	quitDialog *tview.Modal

	// bookGen counts local commits to Book.
	bookGen uint64

	editor       *dialog.Flow[recordDraft]
	editorToken  uint64
	editorForm   *tview.Form
	editorErr    *tview.TextView
	editorResume bool

	deleter     *dialog.Flow[domain.Record]
	deleteToken uint64
	deleteModal *tview.Modal

	// SentinelCh is closed by the loop when it reads KeyF63.
	SentinelCh chan struct{}
}

// New creates a console, loads every record kind from the backend and sets
// up the UI.
func New(opts Options) (*App, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	a := &App{
		DataDir:          opts.DataDir,
		backend:          opts.Backend,
		ctx:              ctx,
		cancel:           cancel,
		mouseSelectArmed: true,
	}

	loadCtx, cancelLoad := context.WithTimeout(ctx, loadTimeout)
	defer cancelLoad()
	book, err := a.fetchBook(loadCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load data: %w", err)
	}
	a.Book = book

	a.setupLayout()
	a.runner = dialog.LoopRunner{Ctx: ctx, Post: a.post}
	a.transition = dialog.NewTransition(ctx, opts.ExitTransition, a.post)
	a.setupDialogs()
	a.ReloadMenu(nil)

	return a, nil
}

// Run blocks on the tview event loop. In-flight requests are canceled once
// it returns.
func (a *App) Run() error {
	defer a.cancel()
	return a.TviewApp.Run()
}

func (a *App) Stop() {
	a.cancel()
	if a.TviewApp != nil {
		a.TviewApp.Stop()
	}
}

// post queues fn on the event loop unless the console is shutting down.
func (a *App) post(fn func()) {
	if a.ctx.Err() != nil {
		return
	}
	a.TviewApp.QueueUpdateDraw(fn)
}

// bookChanged marks a local mutation of the book so an overlapping reload
// does not overwrite it with an older snapshot.
func (a *App) bookChanged() {
	a.bookGen++
}

func (a *App) setStatus(text string) {
	a.StatusLine.Clear()
	a.StatusLine.SetText(text)
}

func (a *App) fetchBook(ctx context.Context) (*domain.Book, error) {
	book := domain.NewBook()
	for _, kind := range domain.Kinds() {
		records, err := a.backend.List(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", kind, err)
		}
		book.Replace(kind, records)
	}
	return book, nil
}

// Reload refetches every record kind in the background. A save or delete
// committed while the fetch runs makes the result stale, so it is fetched
// again.
func (a *App) Reload() {
	a.setStatus("Reloading...")
	gen := a.bookGen
	a.runner.Run(func(ctx context.Context) (func(), error) {
		book, err := a.fetchBook(ctx)
		if err != nil {
			return nil, err
		}
		return func() {
			a.Book = book
			a.ReloadMenu(a.focus)
		}, nil
	}, func(commit func(), err error) {
		if err != nil {
			logging.Warnf("reload failed: %v", err)
			a.setStatus("Reload failed: " + err.Error())
			return
		}
		if a.bookGen != gen {
			logging.Debugf("records changed during reload, fetching again")
			a.Reload()
			return
		}
		commit()
		a.setStatus(fmt.Sprintf("Reloaded %d records", len(a.Book.All())))
	})
}

// Export renders the markdown and Excel reports into the data directory.
func (a *App) Export() {
	md, err := export.RenderMarkdown(a.Book)
	if err != nil {
		a.setStatus("Error rendering markdown: " + err.Error())
		return
	}
	mdPath := filepath.Join(a.DataDir, store.MarkdownFileName)
	if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
		a.setStatus("Error writing markdown: " + err.Error())
		return
	}

	xlsxPath := filepath.Join(a.DataDir, store.XLSXFileName)
	f, err := os.Create(xlsxPath)
	if err != nil {
		a.setStatus("Error creating workbook: " + err.Error())
		return
	}
	if err := export.WriteXLSX(a.Book, f); err != nil {
		_ = f.Close()
		a.setStatus("Error writing workbook: " + err.Error())
		return
	}
	if err := f.Close(); err != nil {
		a.setStatus("Error writing workbook: " + err.Error())
		return
	}

	logging.Infof("exported reports to %s", a.DataDir)
	a.setStatus(fmt.Sprintf("Exported %s and %s", store.MarkdownFileName, store.XLSXFileName))
}

// ReloadMenu rebuilds the navigation list, preserving focus on focused when
// it is still listed.
func (a *App) ReloadMenu(focused domain.Record) {
	a.reloadMenuAt(focused, a.NavPanel.GetCurrentItem())
}

// reloadMenuAt rebuilds the navigation list. When focused is not listed the
// cursor goes to fallback, clamped to the list.
func (a *App) reloadMenuAt(focused domain.Record, fallback int) {
	a.NavPanel.Clear()

	if a.section == nil {
		a.menuRecords = nil
		for _, s := range domain.Schemas() {
			a.NavPanel.AddItem(s.Title, string(s.Kind), 0, nil)
		}
		a.NavPanel.AddItem(reportsTitle, "", 0, nil)
	} else {
		a.menuRecords = a.Book.List(a.section.Kind)
		for _, r := range a.menuRecords {
			a.NavPanel.AddItem(tview.Escape(r.DisplayID()), r.RawID(), 0, nil)
		}
	}

	index := fallback
	if focused != nil {
		for i, r := range a.menuRecords {
			if r.Kind() == focused.Kind() && r.RawID() == focused.RawID() {
				index = i
				break
			}
		}
	}
	count := a.NavPanel.GetItemCount()
	if index >= count {
		index = count - 1
	}
	if index < 0 {
		index = 0
	}
	if count > 0 {
		a.NavPanel.SetCurrentItem(index)
	}
	a.onItemChanged(a.NavPanel.GetCurrentItem())
	a.UpdateKeysLine()
}
