package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"taskpad/internal/chat"
	"taskpad/internal/config"
	"taskpad/internal/logging"
	"taskpad/internal/output"
	"taskpad/internal/service"
	"taskpad/internal/session"
	"taskpad/internal/tasks"
)

// Minimum width for the chat panel to sit beside the task list.
const sideBySideWidth = 100

// Model is the root dashboard model. It owns the screens, the task list and
// the chat panel; every backend call runs as a tea.Cmd and reports back with
// a message.
type Model struct {
	ctx    context.Context
	cfg    *config.Config
	svc    service.Service
	store  *session.Store
	keys   KeyMap
	styles Styles
	help   help.Model
	width  int
	height int

	screen Screen
	auth   AuthForm

	list    *tasks.List
	filter  tasks.Filter
	sort    tasks.SortOrder
	cursor  int
	loading bool

	form          *TaskForm
	confirmDelete int

	chat        ChatPanel
	chatOpen    bool
	chatFocused bool

	status   string
	errMsg   string
	showHelp bool
}

// NewModel creates the dashboard. It starts on the task list when stored
// credentials are present and unexpired, otherwise on the login screen.
func NewModel(ctx context.Context, cfg *config.Config, svc service.Service) Model {
	keys := DefaultKeyMap()
	styles := DefaultStyles()
	store := session.NewStore(cfg.CredentialsPath())

	m := Model{
		ctx:    ctx,
		cfg:    cfg,
		svc:    svc,
		store:  store,
		keys:   keys,
		styles: styles,
		help:   help.New(),
		auth:   NewAuthForm(false, keys, styles),
		list:   tasks.NewList(nil),
		filter: tasks.FilterAll,
		sort:   tasks.SortCreated,
		chat:   NewChatPanel(svc, chat.NewSession(svc), keys, styles),
	}

	m.screen = ScreenLogin
	if _, err := store.Token(); err == nil {
		m.screen = ScreenDashboard
	} else if errors.Is(err, session.ErrExpired) {
		m.auth = m.auth.WithNotice("Session expired, please log in again")
	}
	return m
}

// Screen returns the active screen.
func (m Model) Screen() Screen {
	return m.screen
}

// Init starts loading tasks when already logged in.
func (m Model) Init() tea.Cmd {
	if m.screen != ScreenDashboard {
		return textinput.Blink
	}
	return m.enterDashboard()
}

func (m *Model) enterDashboard() tea.Cmd {
	m.loading = true
	cmds := []tea.Cmd{loadTasksCmd(m.ctx, m.svc)}
	if id := m.cfg.LastConversation(); id != 0 {
		cmds = append(cmds, loadConversationCmd(m.ctx, m.chat.Session(), id))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case AuthDoneMsg:
		if msg.Err != nil {
			m.auth, _ = m.auth.Update(msg, nil)
			return m, nil
		}
		creds := session.NewCredentials(msg.Result.AccessToken, msg.Result.TokenType, msg.Result.UserID, msg.Email)
		if err := m.store.Save(creds); err != nil {
			m.auth, _ = m.auth.Update(AuthDoneMsg{Err: err}, nil)
			return m, nil
		}
		m.screen = ScreenDashboard
		m.status = "Logged in as " + msg.Email
		m.errMsg = ""
		return m, m.enterDashboard()

	case TasksLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		m.list.Replace(msg.Tasks)
		m.clampCursor()
		return m, nil

	case TaskCreatedMsg:
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		m.list.Add(msg.Task)
		m.status = "Task added"
		return m, nil

	case TaskUpdatedMsg:
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		m.list.Update(msg.Task)
		m.clampCursor()
		return m, nil

	case TaskDeletedMsg:
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		m.list.Remove(msg.TaskID)
		m.clampCursor()
		m.status = "Task deleted"
		return m, nil

	case ChatReplyMsg:
		_, toolsUsed, err := m.chat.Session().Complete(msg.Pending, msg.Response, msg.Err)
		m.chat, _ = m.chat.Update(m.ctx, msg)
		if err != nil {
			if isAuthError(err) {
				return m.toLogin("Session expired, please log in again")
			}
			return m, nil
		}
		if id := m.chat.Session().ConversationID(); id != 0 {
			if err := m.cfg.SetLastConversation(id); err != nil {
				logging.Logger().Debug("failed to remember conversation", "error", err)
			}
		}
		if toolsUsed {
			m.loading = true
			return m, loadTasksCmd(m.ctx, m.svc)
		}
		return m, nil

	case ConversationLoadedMsg:
		if msg.Err != nil {
			if isAuthError(msg.Err) {
				return m.toLogin("Session expired, please log in again")
			}
			logging.Logger().Debug("could not restore conversation", "conversation", msg.ID, "error", msg.Err)
			if errors.Is(msg.Err, service.ErrNotFound) {
				_ = m.cfg.SetLastConversation(0)
			}
			return m, nil
		}
		m.chat, _ = m.chat.Update(m.ctx, msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(m.ctx, msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.screen != ScreenDashboard {
			return m.updateAuth(msg)
		}
		return m.updateDashboard(msg)
	}

	// Cursor blink and other component messages
	var cmd tea.Cmd
	switch {
	case m.screen != ScreenDashboard:
		m.auth, cmd = m.auth.Update(msg, nil)
	case m.form != nil:
		var f TaskForm
		f, _, _, cmd = m.form.Update(msg)
		m.form = &f
	case m.chatFocused:
		m.chat, cmd = m.chat.Update(m.ctx, msg)
	}
	return m, cmd
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.SwitchAuth) {
		m.auth = NewAuthForm(m.screen == ScreenLogin, m.keys, m.styles)
		m.screen = m.auth.Screen()
		return m, textinput.Blink
	}
	var cmd tea.Cmd
	m.auth, cmd = m.auth.Update(msg, func(register bool, creds service.Credentials) tea.Cmd {
		return authCmd(m.ctx, m.svc, register, creds)
	})
	return m, cmd
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any keypress clears the previous status line
	m.status = ""
	m.errMsg = ""

	if m.form != nil {
		f, res, done, cmd := m.form.Update(msg)
		m.form = &f
		if !done {
			return m, cmd
		}
		m.form = nil
		if res == nil {
			return m, nil
		}
		return m, m.saveTask(*res)
	}

	if m.confirmDelete != 0 {
		id := m.confirmDelete
		m.confirmDelete = 0
		if key.Matches(msg, m.keys.Confirm) {
			return m, deleteTaskCmd(m.ctx, m.svc, id)
		}
		m.status = "Delete cancelled"
		return m, nil
	}

	if m.chatFocused {
		if key.Matches(msg, m.keys.Cancel) {
			m.chatFocused = false
			m.chat = m.chat.Blur()
			return m, nil
		}
		if key.Matches(msg, m.keys.NewConversation) {
			if err := m.cfg.SetLastConversation(0); err != nil {
				logging.Logger().Debug("failed to forget conversation", "error", err)
			}
		}
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(m.ctx, msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Add):
		f := NewTaskForm(m.keys, m.styles).SetWidth(m.formWidth())
		m.form = &f
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selected(); ok {
			f := EditTaskForm(t, m.keys, m.styles).SetWidth(m.formWidth())
			m.form = &f
			return m, textinput.Blink
		}

	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			return m, toggleTaskCmd(m.ctx, m.svc, t.ID)
		}

	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			m.confirmDelete = t.ID
		}

	case key.Matches(msg, m.keys.Filter):
		m.filter = m.filter.Next()
		m.clampCursor()

	case key.Matches(msg, m.keys.Sort):
		m.sort = m.sort.Next()
		m.clampCursor()

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, loadTasksCmd(m.ctx, m.svc)

	case key.Matches(msg, m.keys.Chat):
		m.chatOpen, m.chatFocused = true, true
		m.layout()
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Cancel) && m.chatOpen:
		m.chatOpen = false
		m.layout()

	case key.Matches(msg, m.keys.Logout):
		if err := m.store.Clear(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		if err := m.cfg.SetLastConversation(0); err != nil {
			logging.Logger().Debug("failed to forget conversation", "error", err)
		}
		return m.toLogin("Logged out")

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}
	return m, nil
}

func (m Model) saveTask(res FormResult) tea.Cmd {
	if res.TaskID == 0 {
		req := service.CreateTaskRequest{Title: res.Title}
		if res.Description != "" {
			req.Description = &res.Description
		}
		return createTaskCmd(m.ctx, m.svc, req)
	}
	return updateTaskCmd(m.ctx, m.svc, res.TaskID, service.UpdateTaskRequest{
		Title:       &res.Title,
		Description: &res.Description,
	})
}

// fail reports err in the status bar, or returns to login when the session
// is gone.
func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	if isAuthError(err) {
		return m.toLogin("Session expired, please log in again")
	}
	m.errMsg = err.Error()
	return m, nil
}

func (m Model) toLogin(notice string) (tea.Model, tea.Cmd) {
	m.screen = ScreenLogin
	m.auth = NewAuthForm(false, m.keys, m.styles).WithNotice(notice)
	m.list.Replace(nil)
	m.cursor = 0
	m.form = nil
	m.confirmDelete = 0
	m.chatOpen, m.chatFocused = false, false
	m.chat.Session().NewConversation()
	m.chat = m.chat.Blur()
	m.status, m.errMsg = "", ""
	return m, textinput.Blink
}

func isAuthError(err error) bool {
	return errors.Is(err, service.ErrUnauthorized) || errors.Is(err, service.ErrNotLoggedIn)
}

func (m Model) visible() []service.Task {
	return m.list.View(m.filter, m.sort)
}

func (m Model) selected() (service.Task, bool) {
	v := m.visible()
	if m.cursor < 0 || m.cursor >= len(v) {
		return service.Task{}, false
	}
	return v[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) listWidth() int {
	if m.width == 0 {
		return 80
	}
	if m.chatOpen && m.width >= sideBySideWidth {
		return m.width * 55 / 100
	}
	return m.width
}

func (m Model) formWidth() int {
	return min(m.listWidth()-10, 70)
}

func (m *Model) layout() {
	if !m.chatOpen {
		return
	}
	w, h := m.width, m.height/2
	if m.width >= sideBySideWidth {
		w = m.width - m.listWidth()
		h = m.height - 2
	}
	m.chat = m.chat.SetSize(w, h)
}

// View renders the UI.
func (m Model) View() string {
	if m.screen != ScreenDashboard {
		return m.auth.View(m.width)
	}

	var main string
	if m.form != nil {
		main = m.form.View()
		if m.width > 0 {
			main = lipgloss.PlaceHorizontal(m.listWidth(), lipgloss.Center, main)
		}
	} else {
		main = m.renderTasks()
	}

	if m.chatOpen {
		panel := m.chat.View(m.chatFocused)
		if m.width >= sideBySideWidth {
			main = lipgloss.JoinHorizontal(lipgloss.Top, main, panel)
		} else {
			main = lipgloss.JoinVertical(lipgloss.Left, main, panel)
		}
	}

	sections := []string{m.renderHeader(), main, m.renderFooter()}
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	s := m.list.Stats()
	stats := fmt.Sprintf("%d tasks · %d completed · %d active  %s %d%%",
		s.Total, s.Completed, s.Incomplete,
		m.styles.Progress.Render(output.ProgressBar(s.Percentage, 20)), s.Percentage)
	view := m.styles.Subtle.Render(fmt.Sprintf("filter: %s · sort: %s", m.filter, m.sort))
	return m.styles.Header.Render("taskpad") + "  " + stats + "\n" + view
}

func (m Model) renderTasks() string {
	width := m.listWidth()
	if m.loading && m.list.Len() == 0 {
		return m.styles.Subtle.Render("Loading tasks…")
	}
	if m.list.Len() == 0 {
		return m.styles.Subtle.Render("No tasks yet. Press a to add one.")
	}
	v := m.visible()
	if len(v) == 0 {
		return m.styles.Subtle.Render("No tasks match this filter.")
	}

	rows := len(v)
	if m.height > 0 {
		rows = max(m.height-6, 1)
		if m.chatOpen && m.width < sideBySideWidth {
			rows = max(m.height/2-6, 1)
		}
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(start+rows, len(v))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderTask(v[i], i == m.cursor, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTask(t service.Task, selected bool, width int) string {
	cursor, mark := "  ", "[ ]"
	if selected {
		cursor = "> "
	}
	if t.Completed {
		mark = "[x]"
	}
	title := strings.ReplaceAll(t.Title, "\n", " ")
	if strings.TrimSpace(t.Description) != "" {
		title += " …"
	}
	title = ansi.Truncate(title, max(width-8, 10), "…")

	style := m.styles.TaskNormal
	switch {
	case selected:
		style = m.styles.TaskSelected
	case t.Completed:
		style = m.styles.TaskDone
	}
	return cursor + mark + " " + style.Render(title)
}

func (m Model) renderFooter() string {
	var line string
	switch {
	case m.confirmDelete != 0:
		title := ""
		if t, ok := m.list.Get(m.confirmDelete); ok {
			title = t.Title
		}
		line = m.styles.Error.Render(fmt.Sprintf("Delete %q? (y/n)", title))
	case m.errMsg != "":
		line = m.styles.Error.Render(m.errMsg)
	case m.status != "":
		line = m.styles.Status.Render(m.status)
	}
	return line + "\n" + m.help.View(m.keys)
}
