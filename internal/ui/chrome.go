package ui

import (
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const helpKey = "<?> Help"

type helpSection struct {
	title string
	lines []string
}

var helpSections = []helpSection{
	{"Navigation", []string{
		"h / Left Arrow / Backspace: Back to home",
		"j / Down Arrow: Move down",
		"k / Up Arrow: Move up",
		"l / Right Arrow / Enter: Open section or edit record",
		"Ctrl+U / Ctrl+D: Page up / down",
	}},
	{"Global", []string{
		"q / Ctrl+C: Quit (with confirmation)",
		"Ctrl+Q: Force quit",
		"R: Reload from server",
		"X: Export EZ-DESK.md and EZ-DESK.xlsx",
		"?: Show this help",
	}},
	{"Dialogs", []string{
		"Enter: Save",
		"Esc: Cancel",
		"Ctrl+E: Edit text area in $EDITOR",
	}},
}

func writeHelpSection(b *strings.Builder, title string, lines []string) {
	b.WriteString(title + "\n")
	for _, line := range lines {
		b.WriteString("- " + line + "\n")
	}
	b.WriteString("\n")
}

func (a *App) showHelpPopup() {
	var b strings.Builder
	for _, s := range helpSections {
		writeHelpSection(&b, s.title, s.lines)
	}
	local := append(append([]string{}, a.CurrentMenuItemKeys...), a.CurrentFocusKeys...)
	if len(local) > 0 {
		writeHelpSection(&b, "This screen", local)
	}

	view := tview.NewTextView().
		SetText(tview.Escape(strings.TrimRight(b.String(), "\n"))).
		SetScrollable(true).
		SetWrap(true).
		SetWordWrap(true)
	view.SetBorder(true).SetTitle("Keyboard Shortcuts (Esc to close)")
	view.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape, tcell.KeyEnter, tcell.KeyBS, tcell.KeyBackspace2:
			a.dismissHelpPopup()
			return nil
		}
		return event
	})

	a.Pages.RemovePage(helpPageName)
	a.Pages.AddPage(helpPageName, a.createDialogPage(view, 60, 22), true, true)
	a.TviewApp.SetFocus(view)
}

func (a *App) dismissHelpPopup() {
	a.Pages.RemovePage(helpPageName)
	a.restoreFocus()
}

// fitKeys drops context keys from the end until the line fits width. The
// help key always stays.
func fitKeys(keys []string, width int) string {
	join := func(k []string) string { return " " + strings.Join(append(k[:len(k):len(k)], helpKey), " | ") }
	line := join(keys)
	for n := len(keys); width > 0 && n > 0 && len(line) > width; n-- {
		line = join(keys[:n-1])
	}
	return line
}

// UpdateKeysLine shows the global, menu and focus keys that fit the screen.
func (a *App) UpdateKeysLine() {
	if a.KeysLine == nil {
		return
	}
	keys := append(append(append([]string{}, GlobalKeys...), a.CurrentMenuItemKeys...), a.CurrentFocusKeys...)
	_, _, width, _ := a.KeysLine.GetInnerRect()
	a.KeysLine.SetText(fitKeys(keys, width))
}

// resizeStatusLine grows the status panel to fit its wrapped text.
func (a *App) resizeStatusLine() {
	if a.StatusLine == nil || a.DetailsFlex == nil {
		return
	}
	height := 3
	if _, _, width, _ := a.StatusLine.GetInnerRect(); width > 0 {
		height = max(wrappedLineCount(a.StatusLine.GetText(false), width)+2, 3)
	}
	a.DetailsFlex.ResizeItem(a.StatusLine, height, 0)
}

// wrappedLineCount is the number of screen rows text takes at width.
func wrappedLineCount(text string, width int) int {
	if width <= 0 {
		return 1
	}
	rows := 0
	for _, line := range strings.Split(text, "\n") {
		rows += max(len(tview.WordWrap(line, width)), 1)
	}
	return max(rows, 1)
}

func editorCommand() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	return "vi"
}

// openInExternalEditor suspends the UI, runs $VISUAL or $EDITOR on a temp
// copy of text and returns what was saved.
func (a *App) openInExternalEditor(text string) (string, error) {
	tmp, err := os.CreateTemp("", "ez-desk-*.txt")
	if err != nil {
		return "", err
	}
	path := tmp.Name()
	defer func() { _ = os.Remove(path) }()

	_, err = tmp.WriteString(text)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}

	var runErr error
	suspended := a.TviewApp.Suspend(func() {
		cmd := exec.Command("sh", "-c", editorCommand()+` "$@"`, "ez-desk-editor", path)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		runErr = cmd.Run()
	})
	if !suspended {
		return "", errors.New("cannot suspend the terminal UI")
	}
	if runErr != nil {
		return "", runErr
	}

	saved, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(saved), nil
}

// SelectDialogDropdownOption picks option in the dropdown labelled label on
// the front page's form.
func (a *App) SelectDialogDropdownOption(label, option string) bool {
	_, front := a.Pages.GetFrontPage()
	form := findFormInPrimitive(front)
	if form == nil {
		return false
	}
	item, ok := getFormItemByLabelIfPresent(form, label)
	if !ok {
		return false
	}
	dropdown, ok := item.(*tview.DropDown)
	if !ok {
		return false
	}
	for i := range dropdown.GetOptionCount() {
		dropdown.SetCurrentOption(i)
		if _, text := dropdown.GetCurrentOption(); text == option {
			return true
		}
	}
	return false
}

// hintedTextArea is a text area form item with a gray hint line under it.
type hintedTextArea struct {
	*tview.TextArea
	hint       string
	labelWidth int
}

func newHintedTextArea(label, text string, width, height int, hint string) *hintedTextArea {
	area := tview.NewTextArea().SetLabel(label).SetSize(height, width)
	area.SetText(text, false)
	return &hintedTextArea{TextArea: area, hint: hint}
}

func (h *hintedTextArea) GetFieldHeight() int {
	return h.TextArea.GetFieldHeight()
}

func (h *hintedTextArea) SetFormAttributes(labelWidth int, labelColor, bgColor, fieldTextColor, fieldBgColor tcell.Color) tview.FormItem {
	h.labelWidth = labelWidth
	h.TextArea.SetFormAttributes(labelWidth, labelColor, bgColor, fieldTextColor, fieldBgColor)
	return h
}

func (h *hintedTextArea) Draw(screen tcell.Screen) {
	x, y, width, height := h.GetRect()
	if height <= 0 {
		return
	}
	h.SetRect(x, y, width, height-1)
	h.TextArea.Draw(screen)
	tview.Print(screen, h.hint, x+h.labelWidth, y+height-1, max(width-h.labelWidth, 0), tview.AlignLeft, tcell.ColorGray)
}
