// Package themes holds the color schemes of the dashboard.
package themes

import (
	"github.com/Veraticus/lensline/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	BorderedBox   lipgloss.Style
	Selected      lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	StatusInfo    lipgloss.Style
	Faint         lipgloss.Style
	Name          string
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Success       lipgloss.Color
	Warning       lipgloss.Color
	Error         lipgloss.Color
	Info          lipgloss.Color
	Foreground    lipgloss.Color
	Border        lipgloss.Color
	Muted         lipgloss.Color
}

type palette struct {
	name, primary, secondary, success, warning, errorC, info, fg, subtle, border, muted, selectedBg string
}

func build(p palette) Theme {
	fg := lipgloss.Color(p.fg)
	return Theme{
		Name:       p.name,
		Primary:    lipgloss.Color(p.primary),
		Secondary:  lipgloss.Color(p.secondary),
		Success:    lipgloss.Color(p.success),
		Warning:    lipgloss.Color(p.warning),
		Error:      lipgloss.Color(p.errorC),
		Info:       lipgloss.Color(p.info),
		Foreground: fg,
		Border:     lipgloss.Color(p.border),
		Muted:      lipgloss.Color(p.muted),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.primary)),
		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.subtle)),
		Normal: lipgloss.NewStyle().
			Foreground(fg),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(fg),
		Faint: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.muted)),
		BorderedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.border)).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(p.selectedBg)).
			Foreground(fg).
			Bold(true),
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color(p.success)),
		StatusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color(p.warning)),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.errorC)),
		StatusInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.info)),
	}
}

// Dark is the default theme.
var Dark = build(palette{
	name:       "dark",
	primary:    "#8b5cf6",
	secondary:  "#a78bfa",
	success:    "#22c55e",
	warning:    "#eab308",
	errorC:     "#ef4444",
	info:       "#38bdf8",
	fg:         "#fafafa",
	subtle:     "#a3a3a3",
	border:     "#404040",
	muted:      "#737373",
	selectedBg: "#4c1d95",
})

// Light suits light terminal backgrounds.
var Light = build(palette{
	name:       "light",
	primary:    "#6d28d9",
	secondary:  "#7c3aed",
	success:    "#15803d",
	warning:    "#a16207",
	errorC:     "#b91c1c",
	info:       "#0369a1",
	fg:         "#171717",
	subtle:     "#525252",
	border:     "#d4d4d4",
	muted:      "#737373",
	selectedBg: "#ddd6fe",
})

// ByName returns the theme for an appearance preference. "system" and
// unknown names pick by the terminal background.
func ByName(name string) Theme {
	switch name {
	case "dark":
		return Dark
	case "light":
		return Light
	default:
		if lipgloss.HasDarkBackground() {
			return Dark
		}
		return Light
	}
}

// Verdict returns the style a verdict is rendered in.
func (t Theme) Verdict(v model.Verdict) lipgloss.Style {
	switch v {
	case model.VerdictAuthentic:
		return t.StatusSuccess
	case model.VerdictSuspicious:
		return t.StatusWarning
	case model.VerdictFake:
		return t.StatusError
	default:
		return t.Faint
	}
}

// VerdictColor returns the color of a verdict.
func (t Theme) VerdictColor(v model.Verdict) lipgloss.Color {
	switch v {
	case model.VerdictAuthentic:
		return t.Success
	case model.VerdictSuspicious:
		return t.Warning
	case model.VerdictFake:
		return t.Error
	default:
		return t.Muted
	}
}
