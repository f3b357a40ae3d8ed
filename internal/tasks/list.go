package tasks

import "taskpad/internal/service"

// List is the locally rendered task set. Mutations apply the server's
// response for exactly one task; Replace swaps in a full refetch.
type List struct {
	items []service.Task
}

// NewList returns a list holding a copy of ts.
func NewList(ts []service.Task) *List {
	l := &List{}
	l.Replace(ts)
	return l
}

// Replace swaps the whole set, e.g. after a refetch.
func (l *List) Replace(ts []service.Task) {
	l.items = append(make([]service.Task, 0, len(ts)), ts...)
}

// Add appends a newly created task.
func (l *List) Add(t service.Task) {
	l.items = append(l.items, t)
}

// Update replaces the task with t.ID. It reports false when the id is not
// present.
func (l *List) Update(t service.Task) bool {
	for i := range l.items {
		if l.items[i].ID == t.ID {
			l.items[i] = t
			return true
		}
	}
	return false
}

// Remove drops the task with id.
func (l *List) Remove(id int) bool {
	for i := range l.items {
		if l.items[i].ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the task with id.
func (l *List) Get(id int) (service.Task, bool) {
	for _, t := range l.items {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// All returns a copy of the tasks in insertion order.
func (l *List) All() []service.Task {
	return append([]service.Task(nil), l.items...)
}

// Len returns the number of tasks.
func (l *List) Len() int {
	return len(l.items)
}

// View returns the filtered and sorted tasks.
func (l *List) View(f Filter, order SortOrder) []service.Task {
	return View(l.items, f, order)
}

// Stats computes stats over every task regardless of filter.
func (l *List) Stats() Stats {
	return ComputeStats(l.items)
}
