// Package ui provides the visual styling for the GraphChat terminal
// session, with light/dark mode support.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Light mode colors (default)
	lightForeground = lipgloss.Color("#1a2332")
	lightPrimary    = lipgloss.Color("#2563eb") // blue
	lightAccent     = lipgloss.Color("#7c3aed") // violet
	lightSecondary  = lipgloss.Color("#e1e4e8")
	lightMuted      = lipgloss.Color("#6b7280")
	lightBorder     = lipgloss.Color("#d1d5db")

	// Dark mode colors
	darkForeground = lipgloss.Color("#e5e7eb")
	darkPrimary    = lipgloss.Color("#60a5fa")
	darkAccent     = lipgloss.Color("#a78bfa")
	darkSecondary  = lipgloss.Color("#1e2a3d")
	darkMuted      = lipgloss.Color("#9ca3af")
	darkBorder     = lipgloss.Color("#374151")

	// Semantic colors, same in both modes
	errorRed = lipgloss.Color("#e53935")
	okGreen  = lipgloss.Color("#4caf50")
)

// Theme holds the current color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Foreground: lightForeground,
		Primary:    lightPrimary,
		Accent:     lightAccent,
		Secondary:  lightSecondary,
		Muted:      lightMuted,
		Border:     lightBorder,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Foreground: darkForeground,
		Primary:    darkPrimary,
		Accent:     darkAccent,
		Secondary:  darkSecondary,
		Muted:      darkMuted,
		Border:     darkBorder,
		IsDark:     true,
	}
}

// ThemeByName resolves a configured theme name. "auto" falls back to
// terminal detection; unknown names get the light theme.
func ThemeByName(name string) Theme {
	switch name {
	case "dark":
		return DarkTheme()
	case "light":
		return LightTheme()
	default:
		return DetectTheme()
	}
}

// DetectTheme guesses the terminal background from COLORFGBG. The
// format is "foreground;background" with ANSI indices; low background
// indices mean a dark terminal.
func DetectTheme() Theme {
	if fgbg := os.Getenv("COLORFGBG"); fgbg != "" {
		parts := strings.Split(fgbg, ";")
		if len(parts) == 2 {
			if bg, err := strconv.Atoi(parts[1]); err == nil {
				if (bg >= 0 && bg <= 6) || bg == 8 {
					return DarkTheme()
				}
			}
		}
	}
	if os.Getenv("GRAPHCHAT_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds the styled components used by the chat view.
type Styles struct {
	Theme Theme

	// Layout
	Header lipgloss.Style
	Footer lipgloss.Style

	// Text
	Title lipgloss.Style
	Body  lipgloss.Style
	Muted lipgloss.Style

	// Conversation turns
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserText       lipgloss.Style
	AssistantText  lipgloss.Style
	ErrorText      lipgloss.Style

	// Metadata under an answer
	EntityBadge lipgloss.Style
	FactCaption lipgloss.Style

	// Status
	StatsBadge lipgloss.Style
	Spinner    lipgloss.Style
	Healthy    lipgloss.Style
	Unhealthy  lipgloss.Style

	Divider lipgloss.Style
}

// NewStyles builds the style set for a theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		UserLabel: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		AssistantLabel: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		UserText: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		AssistantText: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Primary),

		ErrorText: lipgloss.NewStyle().
			Foreground(errorRed).
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(errorRed),

		EntityBadge: lipgloss.NewStyle().
			Background(theme.Secondary).
			Foreground(theme.Accent).
			Padding(0, 1),

		FactCaption: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		StatsBadge: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Healthy: lipgloss.NewStyle().
			Foreground(okGreen).
			Bold(true),

		Unhealthy: lipgloss.NewStyle().
			Foreground(errorRed).
			Bold(true),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),
	}
}

// DefaultStyles returns styles with the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider returns a horizontal rule of the given width.
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
