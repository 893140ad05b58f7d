package domain

import (
	"cmp"
	"fmt"
	"maps"
	"strings"
	"time"
)

// Kind identifies a record collection. The value doubles as the REST path
// segment and the store directory name.
type Kind string

const (
	KindTicket     Kind = "tickets"
	KindAttendance Kind = "attendance"
	KindLeave      Kind = "leave"
	KindTask       Kind = "tasks"
)

// Ticket priorities and statuses.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"

	TicketOpen   = "open"
	TicketClosed = "closed"
)

// Leave request statuses.
const (
	LeavePending  = "pending"
	LeaveApproved = "approved"
	LeaveRejected = "rejected"
)

// Task statuses.
const (
	TaskTodo  = "todo"
	TaskDoing = "doing"
	TaskDone  = "done"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Record is the interface implemented by every business record.
type Record interface {
	Kind() Kind
	RawID() string
	SetID(id string)
	DisplayID() string
	Compare(other Record) int
	Validate() error
	// Values returns the record as form values keyed by field key.
	Values() Values
	// Apply copies form values onto the record. The ID is left untouched.
	Apply(v Values)
}

// Values holds string form input keyed by field key.
type Values map[string]string

// Get returns the trimmed value for key.
func (v Values) Get(key string) string {
	return strings.TrimSpace(v[key])
}

// Or returns the trimmed value for key, or def when it is blank.
func (v Values) Or(key, def string) string {
	if value := v.Get(key); value != "" {
		return value
	}
	return def
}

func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	return maps.Clone(v)
}

// Base holds the identity shared by all records.
type Base struct {
	ID string `json:"id"`
}

func (b *Base) RawID() string          { return b.ID }
func (b *Base) SetID(id string)        { b.ID = id }
func (b *Base) compareID(o string) int { return cmp.Compare(b.ID, o) }

// ---------- Ticket ----------

// Ticket is a support request.
type Ticket struct {
	Base
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
}

func (t *Ticket) Kind() Kind        { return KindTicket }
func (t *Ticket) DisplayID() string { return fmt.Sprintf("[%s] %s", t.Priority, t.Subject) }

func (t *Ticket) Compare(other Record) int {
	if other == nil {
		return 1
	}
	o, ok := other.(*Ticket)
	if !ok {
		return cmp.Compare(t.DisplayID(), other.DisplayID())
	}
	if c := cmp.Compare(rank(ticketStatuses, t.Status), rank(ticketStatuses, o.Status)); c != 0 {
		return c
	}
	// High priority first.
	if c := cmp.Compare(rank(priorities, o.Priority), rank(priorities, t.Priority)); c != 0 {
		return c
	}
	if c := CompareNaturalNumberOrder(t.Subject, o.Subject); c != 0 {
		return c
	}
	return t.compareID(o.ID)
}

func (t *Ticket) Values() Values {
	return Values{
		"subject":  t.Subject,
		"message":  t.Message,
		"priority": t.Priority,
		"status":   t.Status,
	}
}

func (t *Ticket) Apply(v Values) {
	t.Subject = v.Get("subject")
	t.Message = v.Get("message")
	t.Priority = v.Or("priority", PriorityNormal)
	t.Status = v.Or("status", TicketOpen)
}

// ---------- Attendance ----------

// Attendance is one employee's check-in record for a day.
type Attendance struct {
	Base
	Employee string `json:"employee"`
	Date     string `json:"date"`
	CheckIn  string `json:"check_in,omitempty"`
	CheckOut string `json:"check_out,omitempty"`
	Note     string `json:"note,omitempty"`
}

func (a *Attendance) Kind() Kind        { return KindAttendance }
func (a *Attendance) DisplayID() string { return fmt.Sprintf("%s %s", a.Date, a.Employee) }

// Compare sorts the most recent day first.
func (a *Attendance) Compare(other Record) int {
	if other == nil {
		return 1
	}
	o, ok := other.(*Attendance)
	if !ok {
		return cmp.Compare(a.DisplayID(), other.DisplayID())
	}
	if c := cmp.Compare(o.Date, a.Date); c != 0 {
		return c
	}
	if c := CompareNaturalNumberOrder(a.Employee, o.Employee); c != 0 {
		return c
	}
	return a.compareID(o.ID)
}

// Worked returns the time between check-in and check-out. ok is false while
// either is missing or unparsable.
func (a *Attendance) Worked() (d time.Duration, ok bool) {
	in, err := ParseClock(a.CheckIn)
	if err != nil || a.CheckIn == "" {
		return 0, false
	}
	out, err := ParseClock(a.CheckOut)
	if err != nil || a.CheckOut == "" {
		return 0, false
	}
	return out.Sub(in), true
}

func (a *Attendance) Values() Values {
	return Values{
		"employee":  a.Employee,
		"date":      a.Date,
		"check_in":  a.CheckIn,
		"check_out": a.CheckOut,
		"note":      a.Note,
	}
}

func (a *Attendance) Apply(v Values) {
	a.Employee = v.Get("employee")
	a.Date = v.Get("date")
	a.CheckIn = v.Get("check_in")
	a.CheckOut = v.Get("check_out")
	a.Note = v.Get("note")
}

// ---------- LeaveRequest ----------

// LeaveRequest asks for time off between two dates, both inclusive.
type LeaveRequest struct {
	Base
	Employee  string `json:"employee"`
	LeaveType string `json:"leave_type"`
	From      string `json:"from"`
	To        string `json:"to"`
	Reason    string `json:"reason,omitempty"`
	Status    string `json:"status"`
}

func (l *LeaveRequest) Kind() Kind { return KindLeave }

func (l *LeaveRequest) DisplayID() string {
	return fmt.Sprintf("%s: %s (%s..%s)", l.Employee, l.LeaveType, l.From, l.To)
}

func (l *LeaveRequest) Compare(other Record) int {
	if other == nil {
		return 1
	}
	o, ok := other.(*LeaveRequest)
	if !ok {
		return cmp.Compare(l.DisplayID(), other.DisplayID())
	}
	if c := cmp.Compare(rank(leaveStatuses, l.Status), rank(leaveStatuses, o.Status)); c != 0 {
		return c
	}
	if c := cmp.Compare(l.From, o.From); c != 0 {
		return c
	}
	if c := CompareNaturalNumberOrder(l.Employee, o.Employee); c != 0 {
		return c
	}
	return l.compareID(o.ID)
}

// Days returns the number of calendar days covered, or 0 when the range is
// invalid.
func (l *LeaveRequest) Days() int {
	from, err := ParseDate(l.From)
	if err != nil {
		return 0
	}
	to, err := ParseDate(l.To)
	if err != nil || to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

func (l *LeaveRequest) Values() Values {
	return Values{
		"employee":   l.Employee,
		"leave_type": l.LeaveType,
		"from":       l.From,
		"to":         l.To,
		"reason":     l.Reason,
		"status":     l.Status,
	}
}

func (l *LeaveRequest) Apply(v Values) {
	l.Employee = v.Get("employee")
	l.LeaveType = v.Get("leave_type")
	l.From = v.Get("from")
	l.To = v.Get("to")
	l.Reason = v.Get("reason")
	l.Status = v.Or("status", LeavePending)
}

// ---------- Task ----------

// Task is a unit of tracked work.
type Task struct {
	Base
	Title    string `json:"title"`
	Assignee string `json:"assignee,omitempty"`
	Due      string `json:"due,omitempty"`
	Status   string `json:"status"`
}

func (t *Task) Kind() Kind { return KindTask }

func (t *Task) DisplayID() string {
	if t.Assignee == "" {
		return t.Title
	}
	return fmt.Sprintf("%s (%s)", t.Title, t.Assignee)
}

// Compare orders by status, then due date with undated tasks last.
func (t *Task) Compare(other Record) int {
	if other == nil {
		return 1
	}
	o, ok := other.(*Task)
	if !ok {
		return cmp.Compare(t.DisplayID(), other.DisplayID())
	}
	if c := cmp.Compare(rank(taskStatuses, t.Status), rank(taskStatuses, o.Status)); c != 0 {
		return c
	}
	switch {
	case t.Due == "" && o.Due != "":
		return 1
	case t.Due != "" && o.Due == "":
		return -1
	}
	if c := cmp.Compare(t.Due, o.Due); c != 0 {
		return c
	}
	if c := CompareNaturalNumberOrder(t.Title, o.Title); c != 0 {
		return c
	}
	return t.compareID(o.ID)
}

func (t *Task) Values() Values {
	return Values{
		"title":    t.Title,
		"assignee": t.Assignee,
		"due":      t.Due,
		"status":   t.Status,
	}
}

func (t *Task) Apply(v Values) {
	t.Title = v.Get("title")
	t.Assignee = v.Get("assignee")
	t.Due = v.Get("due")
	t.Status = v.Or("status", TaskTodo)
}

var (
	priorities     = []string{PriorityLow, PriorityNormal, PriorityHigh}
	ticketStatuses = []string{TicketOpen, TicketClosed}
	leaveStatuses  = []string{LeavePending, LeaveApproved, LeaveRejected}
	taskStatuses   = []string{TaskTodo, TaskDoing, TaskDone}
)

// rank returns the index of value in order, unknown values sort last.
func rank(order []string, value string) int {
	for i, o := range order {
		if o == value {
			return i
		}
	}
	return len(order)
}
