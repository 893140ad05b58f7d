package domain

import "fmt"

// Field describes one form input of a record kind.
type Field struct {
	Key      string
	Label    string
	Required bool
	// Options turns the input into a dropdown. The first option is the
	// default.
	Options []string
	Hint    string
	Width   int
	// Multiline fields are edited in a text area.
	Multiline bool
}

// Schema describes a record kind for forms, tables and routing.
type Schema struct {
	Kind     Kind
	Title    string
	Singular string
	Fields   []Field
	// StatusField names the field grouped by reports, if any.
	StatusField string
	New         func() Record
}

// Blank returns the values of an empty draft with dropdown defaults applied.
func (s Schema) Blank() Values {
	v := make(Values, len(s.Fields))
	for _, f := range s.Fields {
		if len(f.Options) > 0 {
			v[f.Key] = f.Options[0]
			continue
		}
		v[f.Key] = ""
	}
	return v
}

// Statuses returns the status options in display order.
func (s Schema) Statuses() []string {
	for _, f := range s.Fields {
		if f.Key == s.StatusField {
			return f.Options
		}
	}
	return nil
}

var schemas = []Schema{
	{
		Kind:     KindTicket,
		Title:    "Tickets",
		Singular: "Ticket",
		Fields: []Field{
			{Key: "subject", Label: "Subject", Required: true, Width: 40},
			{Key: "message", Label: "Message", Required: true, Width: 60, Multiline: true},
			{Key: "priority", Label: "Priority", Options: []string{PriorityNormal, PriorityLow, PriorityHigh}},
			{Key: "status", Label: "Status", Options: ticketStatuses},
		},
		StatusField: "status",
		New:         func() Record { return &Ticket{} },
	},
	{
		Kind:     KindAttendance,
		Title:    "Attendance",
		Singular: "Attendance",
		Fields: []Field{
			{Key: "employee", Label: "Employee", Required: true, Width: 30},
			{Key: "date", Label: "Date", Required: true, Hint: "YYYY-MM-DD", Width: 12},
			{Key: "check_in", Label: "Check in", Hint: "HH:MM", Width: 6},
			{Key: "check_out", Label: "Check out", Hint: "HH:MM", Width: 6},
			{Key: "note", Label: "Note", Width: 60, Multiline: true},
		},
		New: func() Record { return &Attendance{} },
	},
	{
		Kind:     KindLeave,
		Title:    "Leave Requests",
		Singular: "Leave Request",
		Fields: []Field{
			{Key: "employee", Label: "Employee", Required: true, Width: 30},
			{Key: "leave_type", Label: "Leave type", Required: true, Hint: "vacation, sick, ...", Width: 20},
			{Key: "from", Label: "From", Required: true, Hint: "YYYY-MM-DD", Width: 12},
			{Key: "to", Label: "To", Required: true, Hint: "YYYY-MM-DD", Width: 12},
			{Key: "reason", Label: "Reason", Width: 60, Multiline: true},
			{Key: "status", Label: "Status", Options: leaveStatuses},
		},
		StatusField: "status",
		New:         func() Record { return &LeaveRequest{} },
	},
	{
		Kind:     KindTask,
		Title:    "Tasks",
		Singular: "Task",
		Fields: []Field{
			{Key: "title", Label: "Title", Required: true, Width: 40},
			{Key: "assignee", Label: "Assignee", Width: 30},
			{Key: "due", Label: "Due", Hint: "YYYY-MM-DD", Width: 12},
			{Key: "status", Label: "Status", Options: taskStatuses},
		},
		StatusField: "status",
		New:         func() Record { return &Task{} },
	},
}

// Schemas returns every record kind in menu order.
func Schemas() []Schema {
	return schemas
}

// Kinds returns every record kind in menu order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(schemas))
	for _, s := range schemas {
		kinds = append(kinds, s.Kind)
	}
	return kinds
}

// SchemaFor returns the schema of kind.
func SchemaFor(kind Kind) (Schema, bool) {
	for _, s := range schemas {
		if s.Kind == kind {
			return s, true
		}
	}
	return Schema{}, false
}

// ParseKind validates a kind coming from a URL or a directory name.
func ParseKind(text string) (Kind, error) {
	if _, ok := SchemaFor(Kind(text)); !ok {
		return "", fmt.Errorf("unknown record kind %q", text)
	}
	return Kind(text), nil
}

// NewRecord returns an empty record of kind, or nil for an unknown kind.
func NewRecord(kind Kind) Record {
	s, ok := SchemaFor(kind)
	if !ok {
		return nil
	}
	return s.New()
}

// FromValues builds a record of kind from form values.
func FromValues(kind Kind, id string, v Values) (Record, error) {
	r := NewRecord(kind)
	if r == nil {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	r.SetID(id)
	r.Apply(v)
	return r, nil
}
