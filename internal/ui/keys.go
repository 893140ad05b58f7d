package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/plumber-cd/ez-desk/internal/domain"
)

// onKeyPress handles the console shortcuts of the nav panel.
func (a *App) onKeyPress(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() != tcell.KeyRune {
		return event
	}

	switch event.Rune() {
	case 'R':
		a.Reload()
		return nil
	case 'X':
		a.Export()
		return nil
	case 'n':
		if s, ok := a.targetSchema(); ok {
			a.showNewRecordDialog(s)
			return nil
		}
	case 'u':
		if a.focus != nil {
			a.showEditRecordDialog(a.focus)
			return nil
		}
	case 'D':
		if a.focus != nil {
			a.showDeleteDialog(a.focus)
			return nil
		}
	}
	return event
}

// targetSchema is the kind a new record goes into: the open section, or the
// section under the cursor on the home list.
func (a *App) targetSchema() (domain.Schema, bool) {
	if a.section != nil {
		return *a.section, true
	}
	schemas := domain.Schemas()
	index := a.NavPanel.GetCurrentItem()
	if index < 0 || index >= len(schemas) {
		return domain.Schema{}, false
	}
	return schemas[index], true
}

func findFormInPrimitive(p tview.Primitive) *tview.Form {
	if form, ok := p.(*tview.Form); ok {
		return form
	}
	if flex, ok := p.(*tview.Flex); ok {
		for i := range flex.GetItemCount() {
			item := flex.GetItem(i)
			if result := findFormInPrimitive(item); result != nil {
				return result
			}
		}
	}
	return nil
}
