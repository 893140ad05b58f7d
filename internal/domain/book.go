package domain

import (
	"slices"
	"time"
)

// Book holds the in-memory state of all records, keyed by kind and ID.
type Book struct {
	records map[Kind]map[string]Record
}

// NewBook creates an empty book.
func NewBook() *Book {
	b := &Book{records: make(map[Kind]map[string]Record)}
	for _, k := range Kinds() {
		b.records[k] = make(map[string]Record)
	}
	return b
}

// Put stores a record without validation, replacing any record with the same
// kind and ID.
func (b *Book) Put(r Record) {
	m, ok := b.records[r.Kind()]
	if !ok {
		m = make(map[string]Record)
		b.records[r.Kind()] = m
	}
	m[r.RawID()] = r
}

// Add validates and stores a record.
func (b *Book) Add(r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	b.Put(r)
	return nil
}

// Get returns the record with the given kind and ID, or nil.
func (b *Book) Get(kind Kind, id string) Record {
	return b.records[kind][id]
}

// Remove deletes a record and returns it, or nil when it was not present.
func (b *Book) Remove(kind Kind, id string) Record {
	r, ok := b.records[kind][id]
	if !ok {
		return nil
	}
	delete(b.records[kind], id)
	return r
}

// List returns the records of kind sorted by Compare.
func (b *Book) List(kind Kind) []Record {
	list := make([]Record, 0, len(b.records[kind]))
	for _, r := range b.records[kind] {
		list = append(list, r)
	}
	slices.SortStableFunc(list, func(a, b Record) int {
		return a.Compare(b)
	})
	return list
}

// Replace drops every record of kind and stores records instead.
func (b *Book) Replace(kind Kind, records []Record) {
	m := make(map[string]Record, len(records))
	for _, r := range records {
		m[r.RawID()] = r
	}
	b.records[kind] = m
}

// Count returns the number of records of kind.
func (b *Book) Count(kind Kind) int {
	return len(b.records[kind])
}

// All returns every record, grouped by kind in menu order.
func (b *Book) All() []Record {
	var all []Record
	for _, k := range Kinds() {
		all = append(all, b.List(k)...)
	}
	return all
}

// StatusCount is the number of records of one kind in one status.
type StatusCount struct {
	Status string
	Count  int
}

// StatusCounts groups the records of kind by their status field, in the
// schema's option order. Kinds without a status field return nil.
func (b *Book) StatusCounts(kind Kind) []StatusCount {
	s, ok := SchemaFor(kind)
	if !ok || s.StatusField == "" {
		return nil
	}
	statuses := s.Statuses()
	counts := make([]StatusCount, len(statuses))
	for i, status := range statuses {
		counts[i].Status = status
	}
	for _, r := range b.records[kind] {
		i := slices.Index(statuses, r.Values()[s.StatusField])
		if i < 0 {
			continue
		}
		counts[i].Count++
	}
	return counts
}

// Total is the record count of one kind.
type Total struct {
	Kind  Kind
	Title string
	Count int
}

// Totals returns per-kind record counts in menu order.
func (b *Book) Totals() []Total {
	totals := make([]Total, 0, len(schemas))
	for _, s := range schemas {
		totals = append(totals, Total{Kind: s.Kind, Title: s.Title, Count: b.Count(s.Kind)})
	}
	return totals
}

// EmployeeHours is the attendance summary of one employee.
type EmployeeHours struct {
	Employee string
	Days     int
	Worked   time.Duration
}

// HoursByEmployee sums worked time per employee. Days without a check-out
// count as attended but add no hours.
func (b *Book) HoursByEmployee() []EmployeeHours {
	index := map[string]int{}
	var out []EmployeeHours
	for _, r := range b.records[KindAttendance] {
		a, ok := r.(*Attendance)
		if !ok {
			continue
		}
		i, seen := index[a.Employee]
		if !seen {
			i = len(out)
			index[a.Employee] = i
			out = append(out, EmployeeHours{Employee: a.Employee})
		}
		out[i].Days++
		if worked, ok := a.Worked(); ok && worked > 0 {
			out[i].Worked += worked
		}
	}
	slices.SortFunc(out, func(x, y EmployeeHours) int {
		return CompareNaturalNumberOrder(x.Employee, y.Employee)
	})
	return out
}

// EmployeeLeave is the approved leave of one employee.
type EmployeeLeave struct {
	Employee string
	Requests int
	Days     int
}

// ApprovedLeaveByEmployee sums approved leave days per employee.
func (b *Book) ApprovedLeaveByEmployee() []EmployeeLeave {
	index := map[string]int{}
	var out []EmployeeLeave
	for _, r := range b.records[KindLeave] {
		l, ok := r.(*LeaveRequest)
		if !ok || l.Status != LeaveApproved {
			continue
		}
		i, seen := index[l.Employee]
		if !seen {
			i = len(out)
			index[l.Employee] = i
			out = append(out, EmployeeLeave{Employee: l.Employee})
		}
		out[i].Requests++
		out[i].Days += l.Days()
	}
	slices.SortFunc(out, func(x, y EmployeeLeave) int {
		return CompareNaturalNumberOrder(x.Employee, y.Employee)
	})
	return out
}
