package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Brand accent for the banner.
const brandCoral = "#FF6B6B"

// ADCRAFT ASCII art (filled block style).
var adcraftArt = []string{
	"  █████╗ ██████╗  ██████╗██████╗  █████╗ ███████╗████████╗",
	" ██╔══██╗██╔══██╗██╔════╝██╔══██╗██╔══██╗██╔════╝╚══██╔══╝",
	" ███████║██║  ██║██║     ██████╔╝███████║█████╗     ██║   ",
	" ██╔══██║██║  ██║██║     ██╔══██╗██╔══██║██╔══╝     ██║   ",
	" ██║  ██║██████╔╝╚██████╗██║  ██║██║  ██║██║        ██║   ",
	" ╚═╝  ╚═╝╚═════╝  ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝        ╚═╝   ",
}

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	Banner    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	Tips      lipgloss.Style
	Error     lipgloss.Style
	Prompt    lipgloss.Style
	Separator lipgloss.Style
	StatusBar lipgloss.Style

	// Stage panel styles
	PanelTitle  lipgloss.Style
	PanelBorder lipgloss.Style
	FieldLabel  lipgloss.Style
	Price       lipgloss.Style

	// Compliance severity styles
	SeverityError   lipgloss.Style
	SeverityWarning lipgloss.Style
	SeverityInfo    lipgloss.Style
	Approved        lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Banner:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(brandCoral)),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		System:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Tips:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),

		PanelTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(brandCoral)),
		PanelBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		FieldLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250")),
		Price:      lipgloss.NewStyle().Foreground(lipgloss.Color("114")),

		SeverityError:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Approved:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
	}
}

// RenderBanner returns the ADCRAFT ASCII art banner as a styled string.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range adcraftArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// welcomeTips contains getting started tips displayed under the banner.
var welcomeTips = []string{
	"Tips for getting started:",
	"  • Describe your campaign in plain language - AdCraft drafts a brief",
	"  • /confirm the brief, then pick products: \"add the sage green paint\"",
	"  • /generate produces copy and imagery with a compliance review",
	"  • Use /help to see all commands",
}

// RenderWelcomeTips returns styled welcome tips.
func (s Styles) RenderWelcomeTips() string {
	var b strings.Builder
	for _, tip := range welcomeTips {
		_, _ = b.WriteString(s.Tips.Render(tip))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// RenderSwatch renders a two-cell color swatch for a product hex value.
// Invalid or empty hex values render nothing.
func (s Styles) RenderSwatch(hex string) string {
	if len(hex) != 7 || hex[0] != '#' {
		return ""
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██") + " "
}
