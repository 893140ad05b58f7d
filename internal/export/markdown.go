package export

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/plumber-cd/ez-desk/internal/domain"
)

//go:embed markdown.tmpl
var markdownTmpl string

// section is one record kind rendered as a table.
type section struct {
	Kind    domain.Kind
	Title   string
	Anchor  string
	Headers []string
	Rows    [][]string
}

// sections builds the unescaped tables shared by every export format.
func sections(book *domain.Book) []section {
	out := make([]section, 0, len(domain.Schemas()))
	for _, s := range domain.Schemas() {
		sec := section{
			Kind:   s.Kind,
			Title:  s.Title,
			Anchor: anchor(s.Title),
		}
		for _, f := range s.Fields {
			sec.Headers = append(sec.Headers, f.Label)
		}
		extra := extraColumn(s.Kind)
		if extra != "" {
			sec.Headers = append(sec.Headers, extra)
		}
		for _, r := range book.List(s.Kind) {
			values := r.Values()
			row := make([]string, 0, len(sec.Headers))
			for _, f := range s.Fields {
				row = append(row, values[f.Key])
			}
			if extra != "" {
				row = append(row, extraValue(r))
			}
			sec.Rows = append(sec.Rows, row)
		}
		out = append(out, sec)
	}
	return out
}

func extraColumn(kind domain.Kind) string {
	switch kind {
	case domain.KindAttendance:
		return "Worked"
	case domain.KindLeave:
		return "Days"
	}
	return ""
}

func extraValue(r domain.Record) string {
	switch m := r.(type) {
	case *domain.Attendance:
		if worked, ok := m.Worked(); ok {
			return domain.FormatWorked(worked)
		}
		return ""
	case *domain.LeaveRequest:
		return strconv.Itoa(m.Days())
	}
	return ""
}

// breakdown renders status counts as "open: 2, closed: 1".
func breakdown(book *domain.Book, kind domain.Kind) string {
	counts := book.StatusCounts(kind)
	if len(counts) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s: %d", c.Status, c.Count))
	}
	return strings.Join(parts, ", ")
}

// RenderMarkdown generates the full markdown report from a book.
func RenderMarkdown(book *domain.Book) (string, error) {
	summaryRows := []map[string]string{}
	for _, total := range book.Totals() {
		summaryRows = append(summaryRows, map[string]string{
			"Title":     total.Title,
			"Anchor":    anchor(total.Title),
			"Count":     strconv.Itoa(total.Count),
			"Breakdown": breakdown(book, total.Kind),
		})
	}

	secs := sections(book)
	for i := range secs {
		for j := range secs[i].Headers {
			secs[i].Headers[j] = markdownTableCell(secs[i].Headers[j])
		}
		for _, row := range secs[i].Rows {
			for j := range row {
				row[j] = markdownTableCell(defaultIfEmpty(row[j], "-"))
			}
		}
	}

	hoursRows := []map[string]string{}
	for _, h := range book.HoursByEmployee() {
		hoursRows = append(hoursRows, map[string]string{
			"Employee": markdownInline(h.Employee),
			"Days":     strconv.Itoa(h.Days),
			"Hours":    domain.FormatWorked(h.Worked),
		})
	}

	leaveRows := []map[string]string{}
	for _, l := range book.ApprovedLeaveByEmployee() {
		leaveRows = append(leaveRows, map[string]string{
			"Employee": markdownInline(l.Employee),
			"Requests": strconv.Itoa(l.Requests),
			"Days":     strconv.Itoa(l.Days),
		})
	}

	tmpl := template.Must(template.New("markdown").Funcs(template.FuncMap{
		"join": strings.Join,
	}).Parse(markdownTmpl))
	input := map[string]any{
		"SummaryRows": summaryRows,
		"Sections":    secs,
		"HoursRows":   hoursRows,
		"LeaveRows":   leaveRows,
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, input); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return sb.String(), nil
}

func anchor(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "-")
}

func markdownInline(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "|", "\\|")
	return value
}

func markdownTableCell(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")
	value = strings.ReplaceAll(value, "|", "\\|")
	value = strings.ReplaceAll(value, "\n", "<br>")
	return value
}

func defaultIfEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
