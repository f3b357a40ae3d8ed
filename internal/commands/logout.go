package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/service"
	"taskpad/internal/session"
)

func init() {
	Register(&LogoutCmd{})
	Register(&WhoamiCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string       { return "logout" }
func (c *LogoutCmd) Aliases() []string  { return nil }
func (c *LogoutCmd) Synopsis() string   { return "Remove stored credentials" }
func (c *LogoutCmd) Usage() string      { return "taskpad logout [common flags]" }
func (c *LogoutCmd) NeedsAuth() bool    { return false }
func (c *LogoutCmd) NeedsBackend() bool { return false }

func (c *LogoutCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	store := session.NewStore(cfg.CredentialsPath())
	if !store.Exists() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if err := store.Clear(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove credentials: %v\n", err)
		return exitcode.AuthError
	}
	if err := cfg.SetLastConversation(0); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// WhoamiCmd prints the stored identity without calling the backend.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string       { return "whoami" }
func (c *WhoamiCmd) Aliases() []string  { return nil }
func (c *WhoamiCmd) Synopsis() string   { return "Show the logged in account" }
func (c *WhoamiCmd) Usage() string      { return "taskpad whoami [common flags]" }
func (c *WhoamiCmd) NeedsAuth() bool    { return false }
func (c *WhoamiCmd) NeedsBackend() bool { return false }

func (c *WhoamiCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	creds, err := session.NewStore(cfg.CredentialsPath()).Load()
	if err != nil {
		return reportError(errOut, service.ErrNotLoggedIn)
	}

	email := creds.Email
	if email == "" {
		email = "-"
	}
	expires := "-"
	if creds.Token != nil && !creds.Token.Expiry.IsZero() {
		expires = creds.Token.Expiry.Local().Format("2006-01-02 15:04")
		if !creds.Token.Valid() {
			expires += " (expired)"
		}
	}
	fmt.Fprintf(out, "user:    %s\n", creds.UserID)
	fmt.Fprintf(out, "email:   %s\n", email)
	fmt.Fprintf(out, "expires: %s\n", expires)
	return exitcode.Success
}
