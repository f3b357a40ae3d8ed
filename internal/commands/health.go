package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/output"
	"taskpad/internal/service"
)

func init() {
	Register(&HealthCmd{})
}

// HealthCmd reports whether the assistant backend is reachable.
type HealthCmd struct{}

func (c *HealthCmd) Name() string       { return "health" }
func (c *HealthCmd) Aliases() []string  { return nil }
func (c *HealthCmd) Synopsis() string   { return "Check the assistant backend" }
func (c *HealthCmd) Usage() string      { return "taskpad health [common flags]" }
func (c *HealthCmd) NeedsAuth() bool    { return false }
func (c *HealthCmd) NeedsBackend() bool { return true }

func (c *HealthCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HealthCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	h, err := svc.ChatHealth(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	output.NewPrinter(out).Health(h)
	return exitcode.Success
}
