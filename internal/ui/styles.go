package ui

import "github.com/charmbracelet/lipgloss"

// Color palette for the styled renderer: a single accent plus the
// usual status colors.
const (
	colorAccent    = "39" // Primary accent (cyan)
	colorAccentDim = "31"
	colorWhite     = "255"
	colorGray      = "245"
	colorDarkGray  = "238"
	colorRed       = "196"
	colorYellow    = "220"
)

// styles holds the lipgloss styles used by the styled renderer.
type styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
	Stage   lipgloss.Style
	Label   lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorWhite)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorDarkGray)),
		Stage:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccentDim)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
	}
}

func noColorStyles() styles {
	return styles{
		Header:  lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
		Stage:   lipgloss.NewStyle(),
		Label:   lipgloss.NewStyle(),
	}
}

func getStyles(noColor bool) styles {
	if noColor {
		return noColorStyles()
	}
	return defaultStyles()
}
