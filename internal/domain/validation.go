package domain

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError reports a single field that failed local validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "is required")
	}
	return nil
}

func oneOf(field, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return invalid(field, "must be one of %s, got %q", strings.Join(allowed, ", "), value)
	}
	return nil
}

func optionalDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := ParseDate(value); err != nil {
		return invalid(field, "must be a date (YYYY-MM-DD), got %q", value)
	}
	return nil
}

func optionalClock(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := ParseClock(value); err != nil {
		return invalid(field, "must be a time (HH:MM), got %q", value)
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that subject and message are present.
func (t *Ticket) Validate() error {
	return firstError(
		required("subject", t.Subject),
		required("message", t.Message),
		oneOf("priority", t.Priority, priorities),
		oneOf("status", t.Status, ticketStatuses),
	)
}

// Validate checks attendance invariants. Check-out may be empty while the
// employee is still in.
func (a *Attendance) Validate() error {
	if err := firstError(
		required("employee", a.Employee),
		required("date", a.Date),
		optionalDate("date", a.Date),
		optionalClock("check_in", a.CheckIn),
		optionalClock("check_out", a.CheckOut),
	); err != nil {
		return err
	}
	if a.CheckOut != "" && a.CheckIn == "" {
		return invalid("check_in", "is required when check_out is set")
	}
	if worked, ok := a.Worked(); ok && worked < 0 {
		return invalid("check_out", "must not be before check_in")
	}
	return nil
}

// Validate checks leave request invariants.
func (l *LeaveRequest) Validate() error {
	if err := firstError(
		required("employee", l.Employee),
		required("leave_type", l.LeaveType),
		required("from", l.From),
		required("to", l.To),
		optionalDate("from", l.From),
		optionalDate("to", l.To),
		oneOf("status", l.Status, leaveStatuses),
	); err != nil {
		return err
	}
	from, _ := ParseDate(l.From)
	to, _ := ParseDate(l.To)
	if to.Before(from) {
		return invalid("to", "must not be before from")
	}
	return nil
}

// Validate checks task invariants.
func (t *Task) Validate() error {
	return firstError(
		required("title", t.Title),
		optionalDate("due", t.Due),
		oneOf("status", t.Status, taskStatuses),
	)
}
