package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/output"
	"taskpad/internal/service"
	"taskpad/internal/tasks"
)

func init() {
	Register(&ListCmd{})
	Register(&StatsCmd{})
}

// ListCmd implements the list command.
// Handles both `taskpad` (no args) and `taskpad list`.
type ListCmd struct {
	filter string
	sort   string
	stats  bool
}

// SetFilter sets the filter name (for testing).
func (c *ListCmd) SetFilter(f string) { c.filter = f }

// SetSort sets the sort order name (for testing).
func (c *ListCmd) SetSort(s string) { c.sort = s }

// SetStats enables the stats footer (for testing).
func (c *ListCmd) SetStats(on bool) { c.stats = on }

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "taskpad list [--filter all|active|completed] [--sort created|created-desc|title|status] [--stats]"
}
func (c *ListCmd) NeedsAuth() bool    { return true }
func (c *ListCmd) NeedsBackend() bool { return false }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.filter, "filter", "f", "all", "show all, active or completed tasks")
	fs.StringVarP(&c.sort, "sort", "s", "created", "sort by created, created-desc, title or status")
	fs.BoolVar(&c.stats, "stats", false, "print counters after the list")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	filter, err := tasks.ParseFilter(c.filter)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	order, err := tasks.ParseSort(c.sort)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	all, err := svc.ListTasks(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	list := tasks.NewList(all)
	p := output.NewPrinter(out)
	view := list.View(filter, order)
	if len(view) > 0 || !cfg.Quiet {
		p.Tasks(view)
	}
	if c.stats {
		fmt.Fprintln(out)
		p.Stats(list.Stats())
	}
	return exitcode.Success
}

// StatsCmd prints completion counters.
type StatsCmd struct{}

func (c *StatsCmd) Name() string       { return "stats" }
func (c *StatsCmd) Aliases() []string  { return nil }
func (c *StatsCmd) Synopsis() string   { return "Show task counters and progress" }
func (c *StatsCmd) Usage() string      { return "taskpad stats [common flags]" }
func (c *StatsCmd) NeedsAuth() bool    { return true }
func (c *StatsCmd) NeedsBackend() bool { return false }

func (c *StatsCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	all, err := svc.ListTasks(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	output.NewPrinter(out).Stats(tasks.ComputeStats(all))
	return exitcode.Success
}
