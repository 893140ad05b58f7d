package ui

import (
	"fmt"
	"strings"

	"github.com/plumber-cd/ez-desk/internal/domain"
)

// onItemChanged is called when nav panel focus moves to a new item.
func (a *App) onItemChanged(index int) {
	a.focus = nil
	a.DetailsPanel.SetDynamicColors(false)

	if a.section == nil {
		schemas := domain.Schemas()
		a.CurrentMenuItemKeys = nil
		switch {
		case index >= 0 && index < len(schemas):
			a.renderSectionSummary(schemas[index])
			a.CurrentFocusKeys = []string{"<enter> Open", "<n> Add " + schemas[index].Singular}
		case index == len(schemas):
			a.renderReport()
			a.CurrentFocusKeys = nil
		default:
			a.DetailsPanel.Clear()
			a.CurrentFocusKeys = nil
		}
		return
	}

	a.CurrentMenuItemKeys = []string{"<n> Add " + a.section.Singular}
	if index < 0 || index >= len(a.menuRecords) {
		a.DetailsPanel.Clear()
		a.DetailsPanel.SetText(fmt.Sprintf("No %s yet. Press n to add one.", strings.ToLower(a.section.Title)))
		a.CurrentFocusKeys = nil
		return
	}
	a.focus = a.menuRecords[index]
	a.renderRecord(*a.section, a.focus)
	a.CurrentFocusKeys = []string{"<u> Edit", "<D> Delete"}
}

// onItemSelected is called when an item is entered.
func (a *App) onItemSelected(index int) {
	if a.section != nil {
		if a.focus != nil {
			a.showEditRecordDialog(a.focus)
		}
		return
	}

	schemas := domain.Schemas()
	if index < 0 || index >= len(schemas) {
		return
	}
	s := schemas[index]
	a.section = &s
	a.PositionLine.Clear()
	a.PositionLine.SetText("Home > " + s.Title)
	a.reloadMenuAt(nil, 0)
}

// onItemDone is called when leaving a section.
func (a *App) onItemDone() {
	if a.section == nil {
		return
	}
	kind := a.section.Kind
	a.section = nil
	a.PositionLine.Clear()
	a.PositionLine.SetText("Home")

	index := 0
	for i, k := range domain.Kinds() {
		if k == kind {
			index = i
		}
	}
	a.reloadMenuAt(nil, index)
}

// ---------- Detail renderers ----------

func (a *App) renderSectionSummary(s domain.Schema) {
	details := new(strings.Builder)
	fmt.Fprintf(details, "%-21s: %d\n", s.Title, a.Book.Count(s.Kind))
	for _, c := range a.Book.StatusCounts(s.Kind) {
		fmt.Fprintf(details, "  %-19s: %d\n", c.Status, c.Count)
	}
	a.DetailsPanel.Clear()
	a.DetailsPanel.SetText(details.String())
}

func (a *App) renderRecord(s domain.Schema, r domain.Record) {
	values := r.Values()
	details := new(strings.Builder)
	fmt.Fprintf(details, "%-21s: %s\n", "ID", r.RawID())
	for _, f := range s.Fields {
		value := values[f.Key]
		if strings.TrimSpace(value) == "" {
			value = "<none>"
		}
		fmt.Fprintf(details, "%-21s: %s\n", f.Label, value)
	}

	switch m := r.(type) {
	case *domain.Attendance:
		if worked, ok := m.Worked(); ok {
			fmt.Fprintf(details, "%-21s: %s\n", "Worked", domain.FormatWorked(worked))
		}
	case *domain.LeaveRequest:
		fmt.Fprintf(details, "%-21s: %d\n", "Days", m.Days())
	}

	a.DetailsPanel.Clear()
	a.DetailsPanel.SetText(details.String())
}
