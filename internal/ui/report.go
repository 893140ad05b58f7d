package ui

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rivo/tview"

	"github.com/plumber-cd/ez-desk/internal/domain"
)

// reportBars returns one bar per status of every kind with a status field,
// and one bar for the total of every kind without one.
func reportBars(book *domain.Book) []pterm.Bar {
	var bars []pterm.Bar
	for _, s := range domain.Schemas() {
		counts := book.StatusCounts(s.Kind)
		if counts == nil {
			bars = append(bars, pterm.Bar{Label: s.Title, Value: book.Count(s.Kind)})
			continue
		}
		for _, c := range counts {
			bars = append(bars, pterm.Bar{Label: s.Title + "/" + c.Status, Value: c.Count})
		}
	}
	return bars
}

// reportSummary renders totals, hours worked and approved leave as plain text.
func reportSummary(book *domain.Book) string {
	sb := new(strings.Builder)
	sb.WriteString("Totals\n")
	for _, total := range book.Totals() {
		fmt.Fprintf(sb, "  %s: %d\n", total.Title, total.Count)
	}

	if hours := book.HoursByEmployee(); len(hours) > 0 {
		sb.WriteString("\nHours worked\n")
		for _, h := range hours {
			fmt.Fprintf(sb, "  %s: %s over %d days\n", h.Employee, domain.FormatWorked(h.Worked), h.Days)
		}
	}

	if leave := book.ApprovedLeaveByEmployee(); len(leave) > 0 {
		sb.WriteString("\nApproved leave\n")
		for _, l := range leave {
			fmt.Fprintf(sb, "  %s: %d days in %d requests\n", l.Employee, l.Days, l.Requests)
		}
	}
	return sb.String()
}

func (a *App) renderReport() {
	a.DetailsPanel.Clear()
	a.DetailsPanel.SetDynamicColors(true)
	_, _ = fmt.Fprint(a.DetailsPanel, tview.Escape(reportSummary(a.Book)))
	_, _ = fmt.Fprintln(a.DetailsPanel)

	if len(a.Book.All()) == 0 {
		_, _ = fmt.Fprintln(a.DetailsPanel, "No records to chart.")
		return
	}

	width := 40
	if _, _, inner, _ := a.DetailsPanel.GetInnerRect(); inner > 0 {
		width = max(inner-30, 10)
	}
	err := pterm.DefaultBarChart.
		WithBars(reportBars(a.Book)).
		WithHorizontal().
		WithWidth(width).
		WithShowValue().
		WithWriter(tview.ANSIWriter(a.DetailsPanel)).
		Render()
	if err != nil {
		a.setStatus("Error rendering chart: " + err.Error())
	}
}
