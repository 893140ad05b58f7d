package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// navKeyAliases maps list keys onto the keys tview.List already handles.
var navKeyAliases = map[tcell.Key]tcell.Key{
	tcell.KeyBS:         tcell.KeyEscape,
	tcell.KeyBackspace2: tcell.KeyEscape,
	tcell.KeyLeft:       tcell.KeyEscape,
	tcell.KeyRight:      tcell.KeyEnter,
	tcell.KeyCtrlU:      tcell.KeyPgUp,
	tcell.KeyCtrlD:      tcell.KeyPgDn,
}

var navRuneAliases = map[rune]tcell.Key{
	'h': tcell.KeyEscape,
	'j': tcell.KeyDown,
	'k': tcell.KeyUp,
	'l': tcell.KeyEnter,
}

func translateNavKey(event *tcell.EventKey) (*tcell.EventKey, bool) {
	key, ok := navKeyAliases[event.Key()]
	if !ok && event.Key() == tcell.KeyRune {
		key, ok = navRuneAliases[event.Rune()]
	}
	if !ok {
		return event, false
	}
	return tcell.NewEventKey(key, 0, tcell.ModNone), true
}

// newTextPanel builds a read-only text view that hands focus to the menu.
func (a *App) newTextPanel(title string, border bool) *tview.TextView {
	view := tview.NewTextView()
	view.SetBorder(border)
	if title != "" {
		view.SetTitle(title)
	}
	view.SetFocusFunc(func() { a.TviewApp.SetFocus(a.NavPanel) })
	return view
}

func (a *App) setupLayout() {
	a.TviewApp = tview.NewApplication()
	a.Pages = tview.NewPages()

	a.PositionLine = a.newTextPanel("Navigation", true)
	a.PositionLine.SetText("Home")
	a.DetailsPanel = a.newTextPanel("Details", true)
	a.KeysLine = a.newTextPanel("", false)
	a.StatusLine = a.newTextPanel("Status", true)
	a.StatusLine.SetWrap(true).SetWordWrap(true)
	a.StatusLine.SetChangedFunc(a.resizeStatusLine)

	a.NavPanel = tview.NewList().ShowSecondaryText(false)
	a.NavPanel.SetBorder(true).SetTitle("Menu")
	a.wireNavPanel()

	a.DetailsFlex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.DetailsPanel, 0, 1, false).
		AddItem(a.StatusLine, 3, 0, false)
	body := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(a.NavPanel, 0, 1, false).
		AddItem(a.DetailsFlex, 0, 2, false)
	screen := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.PositionLine, 3, 1, false).
		AddItem(body, 0, 2, false).
		AddItem(a.KeysLine, 1, 1, false)
	a.Pages.AddPage(mainPageName, screen, true, true)
	a.UpdateKeysLine()

	a.setupQuitModal()

	a.TviewApp.SetRoot(a.Pages, true).EnableMouse(true)
	a.TviewApp.SetBeforeDrawFunc(func(tcell.Screen) bool {
		a.resizeStatusLine()
		a.UpdateKeysLine()
		return false
	})
	a.TviewApp.SetInputCapture(a.captureGlobalKeys)
	a.Pages.SwitchToPage(mainPageName)
	a.TviewApp.SetFocus(a.NavPanel)
}

func (a *App) wireNavPanel() {
	// A single click only moves the cursor; a double click opens the item.
	a.NavPanel.SetMouseCapture(func(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
		switch action {
		case tview.MouseLeftClick:
			a.mouseSelectArmed = false
		case tview.MouseLeftDoubleClick:
			a.mouseSelectArmed = true
			return tview.MouseLeftClick, event
		}
		return action, event
	})

	a.NavPanel.SetChangedFunc(func(index int, _, _ string, _ rune) {
		a.onItemChanged(index)
		a.UpdateKeysLine()
	})
	a.NavPanel.SetSelectedFunc(func(index int, _, _ string, _ rune) {
		if !a.mouseSelectArmed {
			a.mouseSelectArmed = true
			return
		}
		a.onItemSelected(index)
		a.UpdateKeysLine()
	})
	a.NavPanel.SetDoneFunc(func() {
		a.onItemDone()
		a.UpdateKeysLine()
	})

	a.NavPanel.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if translated, ok := translateNavKey(event); ok {
			return translated
		}
		if event.Key() == tcell.KeyRune {
			switch event.Rune() {
			case 'q':
				a.showQuitDialog()
				return nil
			case '?':
				a.showHelpPopup()
				return nil
			}
		}
		return a.onKeyPress(event)
	})
}

// captureGlobalKeys runs before any focused primitive sees the event.
func (a *App) captureGlobalKeys(event *tcell.EventKey) *tcell.EventKey {
	// The harness injects KeyF63 after its real keys and waits for this close.
	if a.SentinelCh != nil && event.Key() == tcell.KeyF63 {
		close(a.SentinelCh)
		a.SentinelCh = nil
		return nil
	}
	switch event.Key() {
	case tcell.KeyCtrlC:
		a.showQuitDialog()
		return nil
	case tcell.KeyCtrlQ:
		a.TviewApp.Stop()
		return nil
	}
	return event
}

func (a *App) setupQuitModal() {
	a.quitDialog = tview.NewModal().
		SetText("Quit EZ-DESK?").
		AddButtons([]string{"Yes", "No"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			if buttonLabel == "Yes" {
				a.TviewApp.Stop()
				return
			}
			a.Pages.HidePage(quitPageName)
			a.restoreFocus()
		})
	a.Pages.AddPage(quitPageName, a.quitDialog, true, false)
}

func (a *App) showQuitDialog() {
	a.Pages.ShowPage(quitPageName)
	a.quitDialog.SetFocus(1)
	a.TviewApp.SetFocus(a.quitDialog)
}

// restoreFocus returns focus to the visible dialog, or to the nav panel.
func (a *App) restoreFocus() {
	switch {
	case a.editor.Dialog().Visible() && a.editorForm != nil:
		a.TviewApp.SetFocus(a.editorForm)
	case a.deleter.Dialog().Visible() && a.deleteModal != nil:
		a.TviewApp.SetFocus(a.deleteModal)
	default:
		a.TviewApp.SetFocus(a.NavPanel)
	}
}

// mouseBlocker swallows clicks around a dialog so they do not reach the menu.
func mouseBlocker() *tview.Box {
	box := tview.NewBox()
	box.SetMouseCapture(func(action tview.MouseAction, _ *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
		return action, nil
	})
	return box
}

// createDialogPage centers content over the main page.
func (a *App) createDialogPage(content tview.Primitive, width, height int) tview.Primitive {
	column := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(mouseBlocker(), 0, 1, false).
		AddItem(content, height, 1, true).
		AddItem(mouseBlocker(), 0, 1, false)
	return tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(mouseBlocker(), 0, 1, false).
		AddItem(column, width, 1, true).
		AddItem(mouseBlocker(), 0, 1, false)
}

// submitPrimaryFormButton presses the first button of form.
func submitPrimaryFormButton(form *tview.Form, setFocus func(p tview.Primitive)) {
	if form.GetButtonCount() == 0 {
		return
	}
	if press := form.GetButton(0).InputHandler(); press != nil {
		press(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), setFocus)
	}
}

func focusedItem(form *tview.Form) tview.FormItem {
	index, _ := form.GetFocusedItemIndex()
	if index < 0 {
		return nil
	}
	return form.GetFormItem(index)
}

// wireDialogFormKeys gives a dialog form Esc to cancel, Enter to submit and
// Ctrl+E to edit the focused text area in $EDITOR. Open dropdowns keep their
// own keys.
func (a *App) wireDialogFormKeys(form *tview.Form, onCancel func()) {
	form.SetCancelFunc(onCancel)
	form.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		item := focusedItem(form)
		if _, ok := item.(*tview.DropDown); ok {
			return event
		}
		area, inTextArea := item.(*hintedTextArea)

		switch event.Key() {
		case tcell.KeyEscape:
			onCancel()
			return nil
		case tcell.KeyCtrlE:
			if !inTextArea {
				return event
			}
			text, err := a.openInExternalEditor(area.GetText())
			if err != nil {
				a.setStatus("Failed to open external editor: " + err.Error())
				return nil
			}
			area.SetText(text, true)
			return nil
		case tcell.KeyEnter:
			if inTextArea {
				return event
			}
			submitPrimaryFormButton(form, func(p tview.Primitive) { a.TviewApp.SetFocus(p) })
			return nil
		}
		return event
	})
}
