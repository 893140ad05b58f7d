package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/plumber-cd/ez-desk/internal/dialog"
	"github.com/plumber-cd/ez-desk/internal/domain"
	"github.com/plumber-cd/ez-desk/internal/logging"
)

// recordDraft is the editor's form state. An empty ID means a new record.
type recordDraft struct {
	Kind   domain.Kind
	ID     string
	Values domain.Values
}

func (d recordDraft) Clone() recordDraft {
	d.Values = d.Values.Clone()
	return d
}

func (d recordDraft) sameTarget(kind domain.Kind, id string) bool {
	return d.Kind == kind && d.ID == id
}

func validateDraft(d recordDraft) error {
	r, err := domain.FromValues(d.Kind, d.ID, d.Values)
	if err != nil {
		return err
	}
	return r.Validate()
}

func (a *App) setupDialogs() {
	a.editor = dialog.NewFlow(func() recordDraft { return recordDraft{} }, a.transition, a.runner)
	a.editor.OnChange(a.syncEditor)
	a.editor.OnNotify(func(err error) {
		logging.Warnf("save failed after dialog closed: %v", err)
		a.setStatus("Save failed: " + err.Error())
	})

	a.deleter = dialog.NewFlow(func() domain.Record { return nil }, a.transition, a.runner)
	a.deleter.OnChange(a.syncDeleteDialog)
	a.deleter.OnNotify(func(err error) {
		logging.Warnf("delete failed after dialog closed: %v", err)
		a.setStatus("Delete failed: " + err.Error())
	})
}

// ---------- Add / edit ----------

func (a *App) showNewRecordDialog(s domain.Schema) {
	a.openEditor(recordDraft{Kind: s.Kind, Values: s.Blank()})
}

func (a *App) showEditRecordDialog(r domain.Record) {
	a.openEditor(recordDraft{Kind: r.Kind(), ID: r.RawID(), Values: r.Values()})
}

// openEditor starts a fresh session, or resumes the canceled one when the
// same record is reopened before its exit transition settles.
func (a *App) openEditor(draft recordDraft) {
	if a.editorResume && a.editor.Dialog().IsClosing() && a.editor.Draft().sameTarget(draft.Kind, draft.ID) {
		a.editor.Resume()
		return
	}
	a.editorResume = false
	a.editor.Begin(draft)
}

func (a *App) cancelEditor() {
	if a.editor.Cancel() {
		a.editorResume = true
	}
}

func (a *App) submitEditor() {
	if a.editorForm != nil && !a.editor.Busy() {
		if s, ok := domain.SchemaFor(a.editor.Draft().Kind); ok {
			a.editor.Draft().Values = captureFormValues(a.editorForm, s)
		}
	}
	a.editor.Submit(validateDraft, a.saveRecord)
}

// saveRecord creates or updates the drafted record. The commit puts the
// saved record into the book even when the dialog was closed meanwhile.
func (a *App) saveRecord(ctx context.Context, d recordDraft) (func(), error) {
	r, err := domain.FromValues(d.Kind, d.ID, d.Values)
	if err != nil {
		return nil, err
	}
	var saved domain.Record
	if d.ID == "" {
		saved, err = a.backend.Create(ctx, r)
	} else {
		saved, err = a.backend.Update(ctx, r)
	}
	if err != nil {
		return nil, err
	}
	return func() {
		a.editorResume = false
		a.Book.Put(saved)
		a.bookChanged()
		a.ReloadMenu(saved)
		s, _ := domain.SchemaFor(saved.Kind())
		a.setStatus(fmt.Sprintf("Saved %s %s", s.Singular, saved.DisplayID()))
	}, nil
}

// syncEditor mirrors the editor flow onto the page stack. A new token
// remounts the form from the draft; the same token only refreshes the error
// line and the Save button.
func (a *App) syncEditor() {
	ctrl := a.editor.Dialog()
	switch {
	case ctrl.Visible():
		if ctrl.Token() != a.editorToken {
			a.mountEditor(ctrl.Token())
			return
		}
		a.refreshEditor()
	case ctrl.IsClosing():
		a.Pages.HidePage(editorPageName)
		a.restoreFocus()
	default:
		a.Pages.RemovePage(editorPageName)
		a.editorToken = 0
		a.editorForm = nil
		a.editorErr = nil
		a.restoreFocus()
	}
}

func (a *App) mountEditor(token uint64) {
	draft := a.editor.Draft()
	s, ok := domain.SchemaFor(draft.Kind)
	if !ok {
		a.setStatus(fmt.Sprintf("Unknown record kind %q", draft.Kind))
		a.editor.Cancel()
		return
	}
	if draft.Values == nil {
		draft.Values = s.Blank()
	}

	a.Pages.RemovePage(editorPageName)

	form := a.buildRecordForm(s, draft.Values)
	form.AddButton("Save", a.submitEditor)
	form.AddButton("Cancel", a.cancelEditor)
	a.wireDialogFormKeys(form, a.cancelEditor)

	title := "New " + s.Singular
	if draft.ID != "" {
		title = "Edit " + s.Singular
	}
	errLine := tview.NewTextView().SetWrap(true).SetWordWrap(true)
	errLine.SetTextColor(tcell.ColorRed)
	frame := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(errLine, 2, 0, false)
	frame.SetBorder(true).SetTitle(title)

	a.editorToken = token
	a.editorForm = form
	a.editorErr = errLine
	a.refreshEditor()

	width := computeFormDialogWidth(form)
	height := min(computeFormDialogHeight(form)+2, maxDialogViewportHeight)
	a.Pages.AddPage(editorPageName, a.createDialogPage(frame, width, height), true, true)
	form.SetFocus(0)
	a.TviewApp.SetFocus(form)
}

// buildRecordForm renders one input per schema field. Every change is
// written straight into the draft so a resumed session shows it.
func (a *App) buildRecordForm(s domain.Schema, values domain.Values) *tview.Form {
	form := tview.NewForm().SetButtonsAlign(tview.AlignCenter)
	for _, f := range s.Fields {
		key := f.Key
		set := func(text string) { a.editor.Draft().Values[key] = text }
		switch {
		case len(f.Options) > 0:
			form.AddDropDown(fieldLabel(f), f.Options, findOptionIndex(f.Options, values[key]), func(option string, _ int) {
				set(option)
			})
		case f.Multiline:
			textArea := newHintedTextArea(fieldLabel(f), values[key], FormFieldWidth, 3, multilineHint)
			textArea.SetChangedFunc(func() { set(textArea.GetText()) })
			form.AddFormItem(textArea)
		default:
			input := tview.NewInputField().
				SetLabel(fieldLabel(f)).
				SetText(values[key]).
				SetFieldWidth(fieldWidth(f)).
				SetPlaceholder(f.Hint)
			input.SetChangedFunc(set)
			form.AddFormItem(input)
		}
	}
	return form
}

func (a *App) refreshEditor() {
	if a.editorForm == nil {
		return
	}
	busy := a.editor.Busy()
	if a.editorForm.GetButtonCount() > 0 {
		save := a.editorForm.GetButton(0)
		save.SetDisabled(busy)
		if busy {
			save.SetLabel("Saving...")
		} else {
			save.SetLabel("Save")
		}
	}
	a.editorErr.SetText(a.editor.Err())
}

// ---------- Delete ----------

func (a *App) showDeleteDialog(r domain.Record) {
	a.deleter.Begin(r)
}

func (a *App) confirmDelete() {
	a.deleter.Submit(nil, a.deleteRecord)
}

func (a *App) deleteRecord(ctx context.Context, r domain.Record) (func(), error) {
	if r == nil {
		return nil, fmt.Errorf("nothing selected")
	}
	if err := a.backend.DeleteRecord(ctx, r.Kind(), r.RawID()); err != nil {
		return nil, err
	}
	return func() {
		a.Book.Remove(r.Kind(), r.RawID())
		a.bookChanged()
		a.ReloadMenu(nil)
		s, _ := domain.SchemaFor(r.Kind())
		a.setStatus(fmt.Sprintf("Deleted %s %s", s.Singular, r.DisplayID()))
	}, nil
}

func (a *App) syncDeleteDialog() {
	ctrl := a.deleter.Dialog()
	switch {
	case ctrl.Visible():
		if ctrl.Token() != a.deleteToken {
			a.mountDeleteDialog(ctrl.Token())
			return
		}
		a.deleteModal.SetText(a.deleteText())
	case ctrl.IsClosing():
		a.Pages.HidePage(deletePageName)
		a.restoreFocus()
	default:
		a.Pages.RemovePage(deletePageName)
		a.deleteToken = 0
		a.deleteModal = nil
		a.restoreFocus()
	}
}

func (a *App) mountDeleteDialog(token uint64) {
	a.Pages.RemovePage(deletePageName)

	modal := tview.NewModal().AddButtons([]string{"Delete", "Cancel"})
	modal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
		if buttonLabel == "Delete" {
			a.confirmDelete()
			return
		}
		a.deleter.Cancel()
	})

	a.deleteToken = token
	a.deleteModal = modal
	modal.SetText(a.deleteText())

	a.Pages.AddPage(deletePageName, modal, true, true)
	modal.SetFocus(1)
	a.TviewApp.SetFocus(modal)
}

func (a *App) deleteText() string {
	r := *a.deleter.Draft()
	if r == nil {
		return ""
	}
	s, _ := domain.SchemaFor(r.Kind())
	lines := []string{fmt.Sprintf("Delete %s %s?", strings.ToLower(s.Singular), tview.Escape(r.DisplayID()))}
	if a.deleter.Busy() {
		lines = append(lines, "Deleting...")
	}
	if msg := a.deleter.Err(); msg != "" {
		lines = append(lines, "Error: "+tview.Escape(msg))
	}
	return strings.Join(lines, "\n\n")
}
