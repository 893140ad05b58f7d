package domain

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

// ---------- Parsing ----------

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(text string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", text, err)
	}
	return t, nil
}

// ParseClock parses an HH:MM time of day.
func ParseClock(text string) (time.Time, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", text, err)
	}
	return t, nil
}

// FormatWorked renders a worked duration as H:MM.
func FormatWorked(d time.Duration) string {
	d = d.Round(time.Minute)
	return fmt.Sprintf("%d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// ---------- Sorting ----------

// CompareNaturalNumberOrder compares two strings using natural number ordering.
func CompareNaturalNumberOrder(left, right string) int {
	l := []rune(strings.ToLower(left))
	r := []rune(strings.ToLower(right))
	li, ri := 0, 0

	for li < len(l) && ri < len(r) {
		if isDigitRune(l[li]) && isDigitRune(r[ri]) {
			lnStart, rnStart := li, ri
			for li < len(l) && isDigitRune(l[li]) {
				li++
			}
			for ri < len(r) && isDigitRune(r[ri]) {
				ri++
			}

			ln := trimLeadingZeroes(string(l[lnStart:li]))
			rn := trimLeadingZeroes(string(r[rnStart:ri]))

			if c := cmp.Compare(len(ln), len(rn)); c != 0 {
				return c
			}
			if c := cmp.Compare(ln, rn); c != 0 {
				return c
			}
			if c := cmp.Compare(li-lnStart, ri-rnStart); c != 0 {
				return c
			}
			continue
		}

		if c := cmp.Compare(l[li], r[ri]); c != 0 {
			return c
		}
		li++
		ri++
	}

	if c := cmp.Compare(len(l)-li, len(r)-ri); c != 0 {
		return c
	}

	return cmp.Compare(left, right)
}

func trimLeadingZeroes(value string) string {
	trimmed := strings.TrimLeft(value, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

func isDigitRune(r rune) bool {
	return r >= '0' && r <= '9'
}
