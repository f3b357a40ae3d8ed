package tasks

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"taskpad/internal/service"
)

// Filter selects which tasks are shown.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists filters in cycling order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter accepts a filter name. "pending" and "done" are accepted as
// aliases.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active", "pending":
		return FilterActive, nil
	case "completed", "done":
		return FilterCompleted, nil
	}
	return "", fmt.Errorf("invalid filter: %s (want all, active or completed)", s)
}

// Next returns the following filter in cycling order.
func (f Filter) Next() Filter {
	return next(Filters, f)
}

// Match reports whether t passes the filter.
func (f Filter) Match(t service.Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	}
	return true
}

// SortOrder orders displayed tasks.
type SortOrder string

const (
	SortCreated     SortOrder = "created"
	SortCreatedDesc SortOrder = "created-desc"
	SortTitle       SortOrder = "title"
	SortStatus      SortOrder = "status"
)

// SortOrders lists sort orders in cycling order.
var SortOrders = []SortOrder{SortCreated, SortCreatedDesc, SortTitle, SortStatus}

// ParseSort accepts a sort order name.
func ParseSort(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "created":
		return SortCreated, nil
	case "created-desc", "newest":
		return SortCreatedDesc, nil
	case "title":
		return SortTitle, nil
	case "status":
		return SortStatus, nil
	}
	return "", fmt.Errorf("invalid sort: %s (want created, created-desc, title or status)", s)
}

// Next returns the following sort order in cycling order.
func (s SortOrder) Next() SortOrder {
	return next(SortOrders, s)
}

func next[T comparable](all []T, cur T) T {
	for i, v := range all {
		if v == cur {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// View applies filter then sort and returns a new slice.
func View(all []service.Task, f Filter, order SortOrder) []service.Task {
	out := make([]service.Task, 0, len(all))
	for _, t := range all {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	Sort(out, order)
	return out
}

// Sort orders tasks in place. Ties fall back to id so output is stable
// across refetches.
func Sort(ts []service.Task, order SortOrder) {
	byCreated := func(a, b service.Task) int {
		switch {
		case a.CreatedAt.Before(b.CreatedAt.Time):
			return -1
		case a.CreatedAt.After(b.CreatedAt.Time):
			return 1
		}
		return a.ID - b.ID
	}

	sort.SliceStable(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
		switch order {
		case SortCreatedDesc:
			return byCreated(a, b) > 0
		case SortTitle:
			la, lb := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if la != lb {
				return la < lb
			}
			if a.Title != b.Title {
				return a.Title < b.Title
			}
			return a.ID < b.ID
		case SortStatus:
			if a.Completed != b.Completed {
				return !a.Completed
			}
			return byCreated(a, b) < 0
		}
		return byCreated(a, b) < 0
	})
}

// Stats summarizes completion.
type Stats struct {
	Total      int
	Completed  int
	Incomplete int
	Percentage int
}

// ComputeStats counts tasks. Percentage is rounded and 0 for an empty list.
func ComputeStats(ts []service.Task) Stats {
	s := Stats{Total: len(ts)}
	for _, t := range ts {
		if t.Completed {
			s.Completed++
		}
	}
	s.Incomplete = s.Total - s.Completed
	if s.Total > 0 {
		s.Percentage = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}
