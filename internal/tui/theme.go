package tui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F2"}
	colorSubtle  = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#3A3A3A"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#1F883D", Dark: "#3FB950"}
	colorError   = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"}
	colorInfo    = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#58A6FF"}
)

// Styles holds the dashboard styles.
type Styles struct {
	Header       lipgloss.Style
	Subtle       lipgloss.Style
	Panel        lipgloss.Style
	PanelFocused lipgloss.Style
	PanelTitle   lipgloss.Style
	TaskNormal   lipgloss.Style
	TaskSelected lipgloss.Style
	TaskDone     lipgloss.Style
	Error        lipgloss.Style
	Status       lipgloss.Style
	Label        lipgloss.Style
	UserMessage  lipgloss.Style
	Pending      lipgloss.Style
	ToolCall     lipgloss.Style
	Modal        lipgloss.Style
	Progress     lipgloss.Style
}

// DefaultStyles returns the styles used by the dashboard.
func DefaultStyles() Styles {
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	return Styles{
		Header:       lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Subtle:       lipgloss.NewStyle().Foreground(colorSubtle),
		Panel:        panel,
		PanelFocused: panel.BorderForeground(colorPrimary),
		PanelTitle:   lipgloss.NewStyle().Bold(true),
		TaskNormal:   lipgloss.NewStyle(),
		TaskSelected: lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		TaskDone:     lipgloss.NewStyle().Strikethrough(true).Foreground(colorSubtle),
		Error:        lipgloss.NewStyle().Foreground(colorError),
		Status:       lipgloss.NewStyle().Foreground(colorInfo),
		Label:        lipgloss.NewStyle().Bold(true),
		UserMessage:  lipgloss.NewStyle().Bold(true),
		Pending:      lipgloss.NewStyle().Faint(true),
		ToolCall:     lipgloss.NewStyle().Foreground(colorSuccess),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2),
		Progress: lipgloss.NewStyle().Foreground(colorSuccess),
	}
}
