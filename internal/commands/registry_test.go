package commands_test

import (
	"testing"

	"taskpad/internal/commands"
)

func TestRegistry_FindByAlias(t *testing.T) {
	reg := commands.NewRegistry()
	if err := reg.Register(&commands.RmCmd{}); err != nil {
		t.Fatal(err)
	}

	cmd, ok := reg.Find("delete")
	if !ok || cmd.Name() != "rm" {
		t.Errorf("expected rm via alias, got %v %v", cmd, ok)
	}
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	reg := commands.NewRegistry()
	if err := reg.Register(&commands.ToggleCmd{}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(&commands.ToggleCmd{}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestRegistry_AllSortedAndUnique(t *testing.T) {
	reg := commands.NewRegistry()
	for _, c := range []commands.Command{&commands.VersionCmd{}, &commands.AddCmd{}, &commands.ListCmd{}} {
		if err := reg.Register(c); err != nil {
			t.Fatal(err)
		}
	}

	var names []string
	for _, c := range reg.All() {
		names = append(names, c.Name())
	}
	if len(names) != 3 || names[0] != "add" || names[1] != "list" || names[2] != "version" {
		t.Errorf("unexpected order %v", names)
	}
}

func TestRegistry_Suggest(t *testing.T) {
	tests := []struct {
		typed string
		want  string
	}{
		{"lisst", "list"},
		{"togle", "toggle"},
		{"chatt", "chat"},
		{"zzzzzzzz", ""},
	}
	for _, tt := range tests {
		if got := commands.DefaultRegistry.Suggest(tt.typed); got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.typed, got, tt.want)
		}
	}
}
