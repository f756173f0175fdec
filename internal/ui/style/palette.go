package style

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Cyan    = lipgloss.Color("#00E5FF") // Primary highlight
	Magenta = lipgloss.Color("#FF1B6B") // Accent
	Yellow  = lipgloss.Color("#FFB500") // Warnings
	Green   = lipgloss.Color("#2AFFAA") // Positive change / success
	Red     = lipgloss.Color("#FF5555") // Negative change / errors
	Blue    = lipgloss.Color("#3B82F6") // Info

	Base03 = lipgloss.Color("#1B1D23") // Background
	Base01 = lipgloss.Color("#6C7280") // Muted text
	Base2  = lipgloss.Color("#ECEFF4") // Primary text
	Base1  = lipgloss.Color("#B4BCC8") // Secondary text
)

// Palette provides a centralized color management
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Background    lipgloss.Color
	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Primary:   Cyan,
		Secondary: Magenta,
		Success:   Green,
		Error:     Red,
		Warning:   Yellow,
		Info:      Blue,

		Background:    Base03,
		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,
	}
}

// Styles used by the watch view
type Styles struct {
	Title    lipgloss.Style
	Badge    lipgloss.Style
	Banner   lipgloss.Style
	Positive lipgloss.Style
	Negative lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles builds Styles from the default palette
func DefaultStyles() Styles {
	p := DefaultPalette()
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true),
		Badge: lipgloss.NewStyle().
			Foreground(p.Background).
			Background(p.Success).
			Padding(0, 1),
		Banner: lipgloss.NewStyle().
			Foreground(p.Warning).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Warning).
			Padding(0, 1),
		Positive: lipgloss.NewStyle().Foreground(p.Success),
		Negative: lipgloss.NewStyle().Foreground(p.Error),
		Muted:    lipgloss.NewStyle().Foreground(p.TextMuted),
		Error:    lipgloss.NewStyle().Foreground(p.Error).Bold(true),
	}
}

// SourceBadge returns the badge style for a data source
func (s Styles) SourceBadge(live bool) lipgloss.Style {
	if live {
		return s.Badge
	}
	return s.Badge.Background(Yellow)
}
