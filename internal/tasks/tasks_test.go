package tasks_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"taskpad/internal/service"
	"taskpad/internal/tasks"
)

func task(id int, title string, completed bool, minute int) service.Task {
	ts := service.Timestamp{Time: time.Date(2025, 1, 1, 9, minute, 0, 0, time.UTC)}
	return service.Task{ID: id, Title: title, Completed: completed, CreatedAt: ts, UpdatedAt: ts}
}

func ids(ts []service.Task) []int {
	out := make([]int, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"empty", "", "Title is required"},
		{"whitespace", "   \t", "Title is required"},
		{"ok", "Buy milk", ""},
		{"max length", strings.Repeat("a", 200), ""},
		{"too long", strings.Repeat("a", 201), "Title must be 200 characters or less"},
		{"multibyte at limit", strings.Repeat("é", 200), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tasks.ValidateTitle(tt.title)
			if tt.want == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.want {
				t.Errorf("expected %q, got %v", tt.want, err)
			}
			var verr *tasks.ValidationError
			if !errors.As(err, &verr) || verr.Field != "title" {
				t.Errorf("expected *ValidationError for title, got %#v", err)
			}
		})
	}
}

func TestValidateOtherFields(t *testing.T) {
	if err := tasks.ValidateDescription(strings.Repeat("x", 1000)); err != nil {
		t.Errorf("1000 chars should pass: %v", err)
	}
	if err := tasks.ValidateDescription(strings.Repeat("x", 1001)); err == nil {
		t.Error("1001 chars should fail")
	}
	if err := tasks.ValidatePassword("short"); err == nil || err.Error() != "Password must be at least 8 characters" {
		t.Errorf("unexpected password error %v", err)
	}
	if err := tasks.ValidatePassword("longenough"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	for _, bad := range []string{"", "plain", "@example.com", "user@"} {
		if err := tasks.ValidateEmail(bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
	if err := tasks.ValidateEmail("user@example.com"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := tasks.ValidateChatMessage("  "); err == nil {
		t.Error("blank chat message should fail")
	}
	if err := tasks.ValidateChatMessage(strings.Repeat("m", 4001)); err == nil {
		t.Error("4001 chars should fail")
	}
}

func TestFilter(t *testing.T) {
	all := []service.Task{
		task(1, "a", false, 1),
		task(2, "b", true, 2),
		task(3, "c", false, 3),
	}

	if got := ids(tasks.View(all, tasks.FilterAll, tasks.SortCreated)); !equalIDs(got, []int{1, 2, 3}) {
		t.Errorf("all: got %v", got)
	}
	if got := ids(tasks.View(all, tasks.FilterActive, tasks.SortCreated)); !equalIDs(got, []int{1, 3}) {
		t.Errorf("active: got %v", got)
	}
	got := tasks.View(all, tasks.FilterCompleted, tasks.SortCreated)
	if !equalIDs(ids(got), []int{2}) {
		t.Errorf("completed: got %v", ids(got))
	}
	for _, tk := range got {
		if !tk.Completed {
			t.Errorf("completed filter returned incomplete task %d", tk.ID)
		}
	}
}

func TestSort(t *testing.T) {
	all := []service.Task{
		task(1, "banana", true, 3),
		task(2, "Apple", false, 1),
		task(3, "cherry", false, 2),
		task(4, "apple", true, 4),
	}

	cases := []struct {
		order tasks.SortOrder
		want  []int
	}{
		{tasks.SortCreated, []int{2, 3, 1, 4}},
		{tasks.SortCreatedDesc, []int{4, 1, 3, 2}},
		{tasks.SortTitle, []int{2, 4, 1, 3}},
		{tasks.SortStatus, []int{2, 3, 1, 4}},
	}
	for _, c := range cases {
		got := ids(tasks.View(all, tasks.FilterAll, c.order))
		if !equalIDs(got, c.want) {
			t.Errorf("%s: expected %v, got %v", c.order, c.want, got)
		}
	}

	// View must not reorder the input.
	if !equalIDs(ids(all), []int{1, 2, 3, 4}) {
		t.Errorf("input was mutated: %v", ids(all))
	}
}

func TestParseFilterAndSort(t *testing.T) {
	if f, err := tasks.ParseFilter("Done"); err != nil || f != tasks.FilterCompleted {
		t.Errorf("expected completed, got %v %v", f, err)
	}
	if _, err := tasks.ParseFilter("someday"); err == nil {
		t.Error("expected error for unknown filter")
	}
	if s, err := tasks.ParseSort(""); err != nil || s != tasks.SortCreated {
		t.Errorf("expected default created, got %v %v", s, err)
	}
	if _, err := tasks.ParseSort("priority"); err == nil {
		t.Error("expected error for unknown sort")
	}
	if tasks.FilterCompleted.Next() != tasks.FilterAll {
		t.Error("filter cycle should wrap")
	}
	if tasks.SortStatus.Next() != tasks.SortCreated {
		t.Error("sort cycle should wrap")
	}
}

func TestComputeStats(t *testing.T) {
	if got := tasks.ComputeStats(nil); got != (tasks.Stats{}) {
		t.Errorf("empty: got %+v", got)
	}

	all := []service.Task{
		task(1, "a", true, 1),
		task(2, "b", false, 2),
		task(3, "c", false, 3),
	}
	got := tasks.ComputeStats(all)
	want := tasks.Stats{Total: 3, Completed: 1, Incomplete: 2, Percentage: 33}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	all[1].Completed = true
	if p := tasks.ComputeStats(all).Percentage; p != 67 {
		t.Errorf("expected 67 (rounded), got %d", p)
	}
}

func TestList_MutationsTouchOneTask(t *testing.T) {
	l := tasks.NewList([]service.Task{
		task(1, "a", false, 1),
		task(2, "b", false, 2),
		task(3, "c", false, 3),
	})

	toggled := task(2, "b", true, 2)
	if !l.Update(toggled) {
		t.Fatal("expected update to find task 2")
	}
	for _, tk := range l.All() {
		if tk.ID == 2 && !tk.Completed {
			t.Error("task 2 should be completed")
		}
		if tk.ID != 2 && tk.Completed {
			t.Errorf("task %d should be untouched", tk.ID)
		}
	}

	if !l.Remove(1) {
		t.Fatal("expected remove to find task 1")
	}
	if got := ids(l.All()); !equalIDs(got, []int{2, 3}) {
		t.Errorf("after remove: got %v", got)
	}
	if l.Remove(1) {
		t.Error("second remove should report false")
	}
	if l.Update(task(9, "x", false, 9)) {
		t.Error("update of unknown id should report false")
	}

	l.Add(task(4, "d", false, 4))
	if l.Len() != 3 {
		t.Errorf("expected 3 tasks, got %d", l.Len())
	}
	if s := l.Stats(); s.Completed != 1 || s.Total != 3 {
		t.Errorf("unexpected stats %+v", s)
	}

	l.Replace(nil)
	if l.Len() != 0 {
		t.Error("replace should clear")
	}
}
