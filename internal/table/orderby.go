package table

import (
	"fmt"
	"strings"
)

// Direction is the sort direction of an ORDER BY entry
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// OrderBy sorts by one field
type OrderBy struct {
	Field     string
	Direction Direction
}

// Asc sorts field ascending
func Asc(field string) OrderBy { return OrderBy{Field: field, Direction: Ascending} }

// Desc sorts field descending
func Desc(field string) OrderBy { return OrderBy{Field: field, Direction: Descending} }

func (o OrderBy) String() string {
	quoted := `"` + strings.ReplaceAll(o.Field, `"`, `""`) + `"`
	if o.Direction == Descending {
		return quoted + " DESC"
	}
	return quoted
}

// ParseOrderBy parses "Field", "Field asc" or "Field desc"
func ParseOrderBy(s string) (OrderBy, error) {
	parts := strings.Fields(s)
	switch len(parts) {
	case 1:
		return Asc(parts[0]), nil
	case 2:
		switch strings.ToLower(parts[1]) {
		case "asc":
			return Asc(parts[0]), nil
		case "desc":
			return Desc(parts[0]), nil
		}
	}
	return OrderBy{}, fmt.Errorf("invalid order by %q", s)
}

// Ordering is the ordered list of ORDER BY entries of a model. Every
// mutation notifies the owner once, which reloads the model.
type Ordering struct {
	entries  []OrderBy
	onChange func()
}

// NewOrdering creates a detached ordering
func NewOrdering(entries ...OrderBy) *Ordering {
	return &Ordering{entries: append([]OrderBy(nil), entries...)}
}

func (o *Ordering) changed() {
	if o.onChange != nil {
		o.onChange()
	}
}

// Len returns the number of entries
func (o *Ordering) Len() int { return len(o.entries) }

// At returns the entry at index i
func (o *Ordering) At(i int) OrderBy { return o.entries[i] }

// Entries returns a copy of the entries
func (o *Ordering) Entries() []OrderBy {
	return append([]OrderBy(nil), o.entries...)
}

// IndexOf returns the position of entry, or -1
func (o *Ordering) IndexOf(entry OrderBy) int {
	for i, e := range o.entries {
		if e == entry {
			return i
		}
	}
	return -1
}

// Contains reports whether entry is present
func (o *Ordering) Contains(entry OrderBy) bool { return o.IndexOf(entry) != -1 }

// Add appends an entry
func (o *Ordering) Add(entry OrderBy) {
	o.entries = append(o.entries, entry)
	o.changed()
}

// Insert places entry at index i
func (o *Ordering) Insert(i int, entry OrderBy) {
	if i < 0 || i > len(o.entries) {
		panic(fmt.Sprintf("table: ordering index %d out of range [0,%d]", i, len(o.entries)))
	}
	o.entries = append(o.entries, OrderBy{})
	copy(o.entries[i+1:], o.entries[i:])
	o.entries[i] = entry
	o.changed()
}

// Set replaces the entry at index i
func (o *Ordering) Set(i int, entry OrderBy) {
	o.entries[i] = entry
	o.changed()
}

// Remove deletes the first occurrence of entry. Nothing is notified when
// entry is absent.
func (o *Ordering) Remove(entry OrderBy) bool {
	i := o.IndexOf(entry)
	if i == -1 {
		return false
	}
	o.RemoveAt(i)
	return true
}

// RemoveAt deletes the entry at index i
func (o *Ordering) RemoveAt(i int) {
	o.entries = append(o.entries[:i], o.entries[i+1:]...)
	o.changed()
}

// Clear removes every entry
func (o *Ordering) Clear() {
	o.entries = nil
	o.changed()
}

// String renders the ORDER BY clause, or "" when empty
func (o *Ordering) String() string {
	if len(o.entries) == 0 {
		return ""
	}

	parts := make([]string, len(o.entries))
	for i, e := range o.entries {
		parts[i] = e.String()
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}
