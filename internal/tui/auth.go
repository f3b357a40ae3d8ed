package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskpad/internal/service"
	"taskpad/internal/tasks"
)

const (
	authEmail = iota
	authPassword
)

// AuthForm is the login and registration screen.
type AuthForm struct {
	register bool
	inputs   []textinput.Model
	focus    int
	err      string
	notice   string
	busy     bool
	keys     KeyMap
	styles   Styles
}

// NewAuthForm creates a login form, or a registration form when register is
// true.
func NewAuthForm(register bool, keys KeyMap, styles Styles) AuthForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email:    "
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	return AuthForm{
		register: register,
		inputs:   []textinput.Model{email, password},
		keys:     keys,
		styles:   styles,
	}
}

// Screen reports which screen the form represents.
func (f AuthForm) Screen() Screen {
	if f.register {
		return ScreenRegister
	}
	return ScreenLogin
}

// WithNotice returns the form showing an informational line, e.g. after a
// session expired.
func (f AuthForm) WithNotice(notice string) AuthForm {
	f.notice = notice
	return f
}

// Email returns the entered email.
func (f AuthForm) Email() string {
	return strings.TrimSpace(f.inputs[authEmail].Value())
}

// Err returns the inline error.
func (f AuthForm) Err() string {
	return f.err
}

// Update handles key input. submit is called with validated credentials and
// must return the command that performs the call.
func (f AuthForm) Update(msg tea.Msg, submit func(register bool, creds service.Credentials) tea.Cmd) (AuthForm, tea.Cmd) {
	switch msg := msg.(type) {
	case AuthDoneMsg:
		f.busy = false
		if msg.Err != nil {
			f.err = msg.Err.Error()
		}
		return f, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, f.keys.NextField):
			f.focus = (f.focus + 1) % len(f.inputs)
			return f, f.focusInputs()
		case msg.String() == "enter":
			if f.focus == authEmail {
				f.focus = authPassword
				return f, f.focusInputs()
			}
			return f.submit(submit)
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f AuthForm) submit(submit func(bool, service.Credentials) tea.Cmd) (AuthForm, tea.Cmd) {
	if f.busy {
		return f, nil
	}
	creds := service.Credentials{
		Email:    f.Email(),
		Password: f.inputs[authPassword].Value(),
	}

	if err := tasks.ValidateEmail(creds.Email); err != nil {
		f.err = err.Error()
		return f, nil
	}
	if f.register {
		if err := tasks.ValidatePassword(creds.Password); err != nil {
			f.err = err.Error()
			return f, nil
		}
	} else if creds.Password == "" {
		f.err = "Password is required"
		return f, nil
	}

	f.err = ""
	f.notice = ""
	f.busy = true
	return f, submit(f.register, creds)
}

func (f *AuthForm) focusInputs() tea.Cmd {
	for i := range f.inputs {
		if i == f.focus {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return textinput.Blink
}

// View renders the form.
func (f AuthForm) View(width int) string {
	title, other := "Log in", "No account? ctrl+r to register"
	if f.register {
		title, other = "Create an account", "Have an account? ctrl+r to log in"
	}

	lines := []string{
		f.styles.Header.Render("taskpad"),
		f.styles.PanelTitle.Render(title),
		"",
		f.inputs[authEmail].View(),
		f.inputs[authPassword].View(),
		"",
	}
	switch {
	case f.busy:
		lines = append(lines, f.styles.Subtle.Render("Signing in…"))
	case f.err != "":
		lines = append(lines, f.styles.Error.Render(f.err))
	case f.notice != "":
		lines = append(lines, f.styles.Status.Render(f.notice))
	}
	lines = append(lines, f.styles.Subtle.Render("enter: submit   tab: next field   "+other+"   ctrl+c: quit"))

	box := f.styles.Modal.Render(strings.Join(lines, "\n"))
	if width <= 0 {
		return box
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}

// authCmd performs login or registration.
func authCmd(ctx context.Context, svc service.AuthService, register bool, creds service.Credentials) tea.Cmd {
	return func() tea.Msg {
		var res service.AuthResult
		var err error
		if register {
			res, err = svc.Register(ctx, creds)
		} else {
			res, err = svc.Login(ctx, creds)
		}
		return AuthDoneMsg{Result: res, Email: creds.Email, Err: err}
	}
}
