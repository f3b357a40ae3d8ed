package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/service"
	"taskpad/internal/session"
	"taskpad/internal/tasks"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// accountFlags are shared by login and register.
type accountFlags struct {
	input
	email    string
	password string
}

// SetEmail sets the email (for testing).
func (a *accountFlags) SetEmail(email string) { a.email = email }

// SetPassword sets the password (for testing).
func (a *accountFlags) SetPassword(password string) { a.password = password }

func (a *accountFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&a.email, "email", "e", "", "account email")
	fs.StringVarP(&a.password, "password", "p", "", "account password")
}

// credentials fills missing values from the prompt reader.
func (a *accountFlags) credentials(errOut io.Writer) (service.Credentials, error) {
	email, password := strings.TrimSpace(a.email), a.password
	var err error
	if email == "" {
		if email, err = a.prompt(errOut, "email: "); err != nil && err != io.EOF {
			return service.Credentials{}, err
		}
	}
	if password == "" {
		if password, err = a.prompt(errOut, "password: "); err != nil && err != io.EOF {
			return service.Credentials{}, err
		}
	}
	return service.Credentials{Email: email, Password: password}, nil
}

// LoginCmd implements the login command.
type LoginCmd struct {
	accountFlags
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in and store the access token" }
func (c *LoginCmd) Usage() string {
	return "taskpad login [--email <email>] [--password <password>]"
}
func (c *LoginCmd) NeedsAuth() bool    { return false }
func (c *LoginCmd) NeedsBackend() bool { return true }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) { c.register(fs) }

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	creds, err := c.credentials(errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := tasks.ValidateEmail(creds.Email); err != nil {
		return reportError(errOut, err)
	}
	if creds.Password == "" {
		fmt.Fprintln(errOut, "error: Password is required")
		return exitcode.UserError
	}

	res, err := svc.Login(ctx, creds)
	if err != nil {
		return reportError(errOut, err)
	}
	return saveSession(cfg, res, creds.Email, out, errOut)
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	accountFlags
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and log in" }
func (c *RegisterCmd) Usage() string {
	return "taskpad register [--email <email>] [--password <password>]"
}
func (c *RegisterCmd) NeedsAuth() bool    { return false }
func (c *RegisterCmd) NeedsBackend() bool { return true }

func (c *RegisterCmd) RegisterFlags(fs *pflag.FlagSet) { c.register(fs) }

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	creds, err := c.credentials(errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := tasks.ValidateEmail(creds.Email); err != nil {
		return reportError(errOut, err)
	}
	if err := tasks.ValidatePassword(creds.Password); err != nil {
		return reportError(errOut, err)
	}

	res, err := svc.Register(ctx, creds)
	if err != nil {
		return reportError(errOut, err)
	}
	return saveSession(cfg, res, creds.Email, out, errOut)
}

func saveSession(cfg *config.Config, res service.AuthResult, email string, out, errOut io.Writer) int {
	store := session.NewStore(cfg.CredentialsPath())
	if err := store.Save(session.NewCredentials(res.AccessToken, res.TokenType, res.UserID, email)); err != nil {
		fmt.Fprintf(errOut, "error: failed to save credentials: %v\n", err)
		return exitcode.AuthError
	}
	// A new account never continues someone else's conversation.
	if err := cfg.SetLastConversation(0); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
