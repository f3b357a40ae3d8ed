package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskpad/internal/service"
	"taskpad/internal/tasks"
)

const (
	fieldTitle = iota
	fieldDescription
)

// TaskForm is the add form and the edit modal.
type TaskForm struct {
	taskID      int // 0 when adding
	title       textinput.Model
	description textarea.Model
	focus       int
	err         string
	keys        KeyMap
	styles      Styles
}

// FormResult is what a submitted form asks for.
type FormResult struct {
	TaskID      int
	Title       string
	Description string
}

// NewTaskForm creates an empty add form.
func NewTaskForm(keys KeyMap, styles Styles) TaskForm {
	ti := textinput.New()
	ti.Placeholder = "What needs doing?"
	ti.Prompt = ""
	ti.CharLimit = tasks.MaxTitleLength + 50
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "Description (optional)"
	ta.ShowLineNumbers = false
	ta.CharLimit = tasks.MaxDescriptionLength + 50
	ta.SetHeight(4)
	ta.Blur()

	return TaskForm{title: ti, description: ta, keys: keys, styles: styles}
}

// EditTaskForm creates an edit modal prefilled from t.
func EditTaskForm(t service.Task, keys KeyMap, styles Styles) TaskForm {
	f := NewTaskForm(keys, styles)
	f.taskID = t.ID
	f.title.SetValue(t.Title)
	f.description.SetValue(t.Description)
	return f
}

// Editing reports whether the form edits an existing task.
func (f TaskForm) Editing() bool {
	return f.taskID != 0
}

// Err returns the inline validation error.
func (f TaskForm) Err() string {
	return f.err
}

// SetWidth sizes the inputs.
func (f TaskForm) SetWidth(w int) TaskForm {
	if w < 20 {
		w = 20
	}
	f.title.Width = w
	f.description.SetWidth(w)
	return f
}

// Update handles input. done is true with a non-nil result when the form was
// submitted and valid; done with a nil result means cancelled.
func (f TaskForm) Update(msg tea.Msg) (TaskForm, *FormResult, bool, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, f.keys.Cancel):
			return f, nil, true, nil
		case key.Matches(km, f.keys.Submit):
			return f.submit()
		case key.Matches(km, f.keys.NextField):
			return f.switchField(), nil, false, nil
		case km.String() == "enter" && f.focus == fieldTitle:
			return f.submit()
		}
	}

	var cmd tea.Cmd
	if f.focus == fieldTitle {
		f.title, cmd = f.title.Update(msg)
	} else {
		f.description, cmd = f.description.Update(msg)
	}
	return f, nil, false, cmd
}

func (f TaskForm) switchField() TaskForm {
	if f.focus == fieldTitle {
		f.focus = fieldDescription
		f.title.Blur()
		f.description.Focus()
	} else {
		f.focus = fieldTitle
		f.description.Blur()
		f.title.Focus()
	}
	return f
}

func (f TaskForm) submit() (TaskForm, *FormResult, bool, tea.Cmd) {
	title := strings.TrimSpace(f.title.Value())
	desc := strings.TrimSpace(f.description.Value())
	if err := tasks.ValidateTitle(title); err != nil {
		f.err = err.Error()
		return f, nil, false, nil
	}
	if err := tasks.ValidateDescription(desc); err != nil {
		f.err = err.Error()
		return f, nil, false, nil
	}
	f.err = ""
	return f, &FormResult{TaskID: f.taskID, Title: title, Description: desc}, true, nil
}

// View renders the form as a modal.
func (f TaskForm) View() string {
	heading := "New task"
	if f.Editing() {
		heading = "Edit task"
	}
	lines := []string{
		f.styles.PanelTitle.Render(heading),
		"",
		f.styles.Label.Render("Title"),
		f.title.View(),
		"",
		f.styles.Label.Render("Description"),
		f.description.View(),
		"",
	}
	if f.err != "" {
		lines = append(lines, f.styles.Error.Render(f.err))
	}
	lines = append(lines, f.styles.Subtle.Render("enter/ctrl+s: save   tab: next field   esc: cancel"))
	return f.styles.Modal.Render(strings.Join(lines, "\n"))
}
