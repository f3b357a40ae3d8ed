package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"taskpad/internal/chat"
	"taskpad/internal/service"
	"taskpad/internal/tasks"
)

// ChatPanel is the assistant side panel: transcript viewport, input line and
// a spinner while a send is in flight.
type ChatPanel struct {
	session  *chat.Session
	svc      service.ChatService
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
	keys     KeyMap
	styles   Styles
	render   func(md string, width int) string
}

// NewChatPanel creates a panel over a fresh session.
func NewChatPanel(svc service.ChatService, session *chat.Session, keys KeyMap, styles Styles) ChatPanel {
	in := textinput.New()
	in.Placeholder = "Ask the assistant… (e.g. add buy milk)"
	in.Prompt = "> "
	in.CharLimit = tasks.MaxChatMessageLength + 100

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	p := ChatPanel{
		session:  session,
		svc:      svc,
		input:    in,
		viewport: viewport.New(40, 10),
		spinner:  sp,
		keys:     keys,
		styles:   styles,
		render:   renderMarkdown,
	}
	p.refresh()
	return p
}

// Session returns the chat session.
func (p ChatPanel) Session() *chat.Session {
	return p.session
}

// Focus gives the input line keyboard focus.
func (p ChatPanel) Focus() (ChatPanel, tea.Cmd) {
	return p, p.input.Focus()
}

// Blur removes keyboard focus.
func (p ChatPanel) Blur() ChatPanel {
	p.input.Blur()
	return p
}

// Focused reports whether the input line has focus.
func (p ChatPanel) Focused() bool {
	return p.input.Focused()
}

// Input returns the current input text.
func (p ChatPanel) Input() string {
	return p.input.Value()
}

// SetSize sets the outer panel size.
func (p ChatPanel) SetSize(width, height int) ChatPanel {
	p.width, p.height = width, height
	inner := max(width-4, 10)
	p.input.Width = inner - 3
	p.viewport.Width = inner
	// title, input, status line and borders
	p.viewport.Height = max(height-6, 3)
	p.refresh()
	return p
}

// Update handles keys while focused and the replies of sends.
func (p ChatPanel) Update(ctx context.Context, msg tea.Msg) (ChatPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case ChatReplyMsg:
		// tools used is reported to the root model, which owns the task list
		p.refresh()
		return p, nil

	case ConversationLoadedMsg:
		p.refresh()
		return p, nil

	case spinner.TickMsg:
		if !p.session.Sending() {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		p.refresh()
		return p, cmd

	case tea.KeyMsg:
		if !p.Focused() {
			return p, nil
		}
		switch {
		case key.Matches(msg, p.keys.NewConversation):
			p.session.NewConversation()
			p.input.Reset()
			p.refresh()
			return p, nil
		case key.Matches(msg, p.keys.Send):
			return p.send(ctx)
		case msg.String() == "pgup", msg.String() == "pgdown":
			var cmd tea.Cmd
			p.viewport, cmd = p.viewport.Update(msg)
			return p, cmd
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// send starts a send. Validation and throttle errors never reach the network
// and are shown inline.
func (p ChatPanel) send(ctx context.Context) (ChatPanel, tea.Cmd) {
	pending, err := p.session.Begin(p.input.Value())
	if err != nil {
		p.refreshWithError(err.Error())
		return p, nil
	}
	p.input.Reset()
	p.refresh()
	return p, tea.Batch(sendCmd(ctx, p.svc, pending), p.spinner.Tick)
}

func sendCmd(ctx context.Context, svc service.ChatService, pending chat.Pending) tea.Cmd {
	return func() tea.Msg {
		resp, err := svc.SendMessage(ctx, pending.Request)
		return ChatReplyMsg{Pending: pending, Response: resp, Err: err}
	}
}

func loadConversationCmd(ctx context.Context, session *chat.Session, id int) tea.Cmd {
	return func() tea.Msg {
		return ConversationLoadedMsg{ID: id, Err: session.Load(ctx, id)}
	}
}

func (p *ChatPanel) refresh() {
	p.refreshWithError(p.session.Err())
}

func (p *ChatPanel) refreshWithError(errText string) {
	p.viewport.SetContent(p.transcript(errText))
	p.viewport.GotoBottom()
}

// transcript renders the messages, the in-flight indicator and the inline
// error banner.
func (p ChatPanel) transcript(errText string) string {
	width := max(p.viewport.Width, 10)
	msgs := p.session.Messages()

	var b strings.Builder
	if len(msgs) == 0 {
		b.WriteString(p.styles.Subtle.Render("Ask me to add, complete, update or delete tasks."))
		b.WriteString("\n")
	}
	for _, m := range msgs {
		if m.Role == service.RoleUser {
			line := p.styles.UserMessage.Render("You: ") + m.Content
			if m.Pending {
				line = p.styles.Pending.Render("You: " + m.Content)
			}
			b.WriteString(line + "\n")
			continue
		}
		b.WriteString(p.styles.Label.Render("Assistant:") + "\n")
		b.WriteString(p.render(m.Content, width) + "\n")
		if len(m.ToolCalls) > 0 {
			b.WriteString(p.styles.Subtle.Render("Actions performed:") + "\n")
			for _, tc := range m.ToolCalls {
				b.WriteString(p.styles.ToolCall.Render("  • "+chat.ToolSummary(tc)) + "\n")
			}
		}
		b.WriteString("\n")
	}
	if p.session.Sending() {
		b.WriteString(p.spinner.View() + " thinking…\n")
	}
	if errText != "" {
		b.WriteString(p.styles.Error.Render("Error: "+errText) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// View renders the panel.
func (p ChatPanel) View(focused bool) string {
	title := "Assistant"
	if id := p.session.ConversationID(); id != 0 {
		title = fmt.Sprintf("Assistant · conversation %d", id)
	}
	hint := "c: focus chat   esc: close chat"
	if focused {
		hint = "enter: send   ctrl+n: new chat   esc: back to tasks"
	}
	body := strings.Join([]string{
		p.styles.PanelTitle.Render(title),
		p.viewport.View(),
		p.input.View(),
		p.styles.Subtle.Render(hint),
	}, "\n")

	style := p.styles.Panel
	if focused {
		style = p.styles.PanelFocused
	}
	if p.width > 0 {
		style = style.Width(p.width - 2)
	}
	return style.Render(body)
}
