// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"taskpad/internal/chat"
	"taskpad/internal/service"
	"taskpad/internal/tasks"
)

const (
	// TitleWidth is the display width task titles are cut to in lists.
	TitleWidth = 72

	// ProgressWidth is the number of cells in the stats progress bar.
	ProgressWidth = 20

	timeLayout = "2006-01-02 15:04"
)

// Printer writes formatted output. Styling is applied only when the writer
// is a color terminal.
type Printer struct {
	w   io.Writer
	out *termenv.Output
}

// NewPrinter creates a printer for w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, out: termenv.NewOutput(w)}
}

// Task prints a task line: "{ID:>4}  [x] {TITLE}".
// Completed titles are struck through on color terminals.
func (p *Printer) Task(t service.Task) {
	mark := "[ ]"
	title := ansi.Truncate(normalizeTitle(t.Title), TitleWidth, "…")
	if t.Completed {
		mark = "[x]"
		title = p.out.String(title).CrossOut().Faint().String()
	}
	fmt.Fprintf(p.w, "%4d  %s %s\n", t.ID, mark, title)
}

// Tasks prints task lines, or "no tasks found" when empty.
func (p *Printer) Tasks(ts []service.Task) {
	if len(ts) == 0 {
		fmt.Fprintln(p.w, "no tasks found")
		return
	}
	for _, t := range ts {
		p.Task(t)
	}
}

// TaskDetail prints every field of a task.
func (p *Printer) TaskDetail(t service.Task) {
	status := "active"
	if t.Completed {
		status = "completed"
	}
	fmt.Fprintf(p.w, "id:          %d\n", t.ID)
	fmt.Fprintf(p.w, "title:       %s\n", normalizeTitle(t.Title))
	if d := strings.TrimSpace(t.Description); d != "" {
		lines := strings.Split(d, "\n")
		fmt.Fprintf(p.w, "description: %s\n", lines[0])
		for _, l := range lines[1:] {
			fmt.Fprintf(p.w, "             %s\n", l)
		}
	}
	fmt.Fprintf(p.w, "status:      %s\n", status)
	fmt.Fprintf(p.w, "created:     %s\n", formatTime(t.CreatedAt.Time))
	fmt.Fprintf(p.w, "updated:     %s\n", formatTime(t.UpdatedAt.Time))
}

// Stats prints the counters and a progress bar.
func (p *Printer) Stats(s tasks.Stats) {
	fmt.Fprintf(p.w, "total:       %d\n", s.Total)
	fmt.Fprintf(p.w, "completed:   %d\n", s.Completed)
	fmt.Fprintf(p.w, "incomplete:  %d\n", s.Incomplete)
	fmt.Fprintf(p.w, "progress:    %s %d%%\n", ProgressBar(s.Percentage, ProgressWidth), s.Percentage)
}

// ProgressBar renders pct (0-100) as a bar of width cells.
func ProgressBar(pct, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// Conversations prints one line per conversation.
func (p *Printer) Conversations(list service.ConversationList) {
	if len(list.Conversations) == 0 {
		fmt.Fprintln(p.w, "no conversations found")
		return
	}
	for _, c := range list.Conversations {
		title := ansi.Truncate(normalizeTitle(c.Title), TitleWidth/2, "…")
		detail := "updated " + formatTime(c.UpdatedAt.Time)
		if c.MessageCount != nil {
			detail = fmt.Sprintf("%d messages, %s", *c.MessageCount, detail)
		}
		fmt.Fprintf(p.w, "%4d  %s  (%s)\n", c.ID, title, detail)
	}
}

// Message prints one transcript entry with its tool actions.
func (p *Printer) Message(role, content string, calls []service.ToolCall) {
	who := "you"
	if role == service.RoleAssistant {
		who = "assistant"
	}
	fmt.Fprintf(p.w, "%s: %s\n", who, strings.TrimSpace(content))
	p.ToolCalls(calls)
}

// Transcript prints a stored conversation.
func (p *Printer) Transcript(h service.ConversationHistory) {
	fmt.Fprintf(p.w, "conversation %d: %s\n", h.ConversationID, normalizeTitle(h.Title))
	for _, m := range h.Messages {
		p.Message(m.Role, m.Content, m.ToolCalls)
	}
}

// ToolCalls prints the actions the assistant performed.
func (p *Printer) ToolCalls(calls []service.ToolCall) {
	if len(calls) == 0 {
		return
	}
	fmt.Fprintln(p.w, "  actions performed:")
	for _, tc := range calls {
		fmt.Fprintf(p.w, "    - %s\n", chat.ToolSummary(tc))
	}
}

// Health prints the assistant health check.
func (p *Printer) Health(h service.Health) {
	fmt.Fprintf(p.w, "status:  %s\n", h.Status)
	fmt.Fprintf(p.w, "model:   %s\n", h.Model)
	fmt.Fprintf(p.w, "gemini:  %t\n", h.GeminiConfigured)
	fmt.Fprintf(p.w, "openai:  %t\n", h.OpenAIConfigured)
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}
