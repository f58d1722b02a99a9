// Package tui provides the sketch2story terminal UI built on Charm libraries
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Crayon box palette
var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#C4B5FD"} // grape
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#0369A1", Dark: "#7DD3FC"} // sky
	ColorAccent    = lipgloss.AdaptiveColor{Light: "#CA8A04", Dark: "#FDE047"} // sunshine
	ColorCrayon    = lipgloss.AdaptiveColor{Light: "#EA580C", Dark: "#FB923C"} // header, spinner

	ColorSuccess = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#95E1A3"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FCD34D"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#FF6B6B"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#4338CA", Dark: "#A5B4FC"}

	ColorText   = lipgloss.AdaptiveColor{Light: "#292524", Dark: "#FAFAF9"}
	ColorSubtle = lipgloss.AdaptiveColor{Light: "#78716C", Dark: "#A8A29E"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#A8A29E", Dark: "#78716C"}
	ColorBorder = lipgloss.AdaptiveColor{Light: "#D6D3D1", Dark: "#44403C"}
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	BodyStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2).
			MarginTop(1)

	FocusedBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2).
			MarginTop(1)

	BadgeStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Background(ColorPrimary).
			Foreground(lipgloss.Color("#FFFFFF"))

	BadgeSuccessStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(ColorSuccess).
				Foreground(lipgloss.Color("#FFFFFF"))

	BadgeWarningStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(ColorWarning).
				Foreground(lipgloss.Color("#000000"))
)

// Header art
var HeaderASCII = `
  ___ _  _____ _____ ___ _  _ ___ ___ _____ ___  _____   __
 / __| |/ / __|_   _/ __| || |_  ) __|_   _/ _ \| _ \ \ / /
 \__ \ ' <| _|  | || (__| __ |/ /\__ \ | || (_) |   /\ V /
 |___/_|\_\___| |_| \___|_||_/___|___/ |_| \___/|_|_\ |_|
`

// GetHeader returns the styled header
func GetHeader() string {
	return lipgloss.NewStyle().
		Foreground(ColorCrayon).
		Bold(true).
		Render(HeaderASCII)
}

// StepStatus represents the status of a wizard step
type StepStatus int

const (
	StepPending StepStatus = iota
	StepActive
	StepCompleted
	StepError
)

// WizardStep is one entry of the step indicator
type WizardStep struct {
	Title  string
	Status StepStatus
}

// StepIndicator renders the wizard steps joined by connectors
func StepIndicator(steps []WizardStep) string {
	var parts []string
	for i, step := range steps {
		var icon string
		var style lipgloss.Style

		switch step.Status {
		case StepCompleted:
			icon = "[x]"
			style = lipgloss.NewStyle().Foreground(ColorSuccess)
		case StepActive:
			icon = "[>]"
			style = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
		case StepError:
			icon = "[!]"
			style = lipgloss.NewStyle().Foreground(ColorError)
		default:
			icon = "[ ]"
			style = lipgloss.NewStyle().Foreground(ColorMuted)
		}

		parts = append(parts, style.Render(icon+" "+step.Title))

		if i < len(steps)-1 {
			connector := lipgloss.NewStyle().Foreground(ColorBorder)
			if step.Status == StepCompleted {
				connector = lipgloss.NewStyle().Foreground(ColorSuccess)
			}
			parts = append(parts, connector.Render(" --- "))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

// Card renders a bordered card with a title
func Card(title, content string, width int) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		MarginBottom(1)

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)
	if width > 0 {
		cardStyle = cardStyle.Width(width)
	}

	return cardStyle.Render(titleStyle.Render(title) + "\n" + BodyStyle.Render(content))
}

// Tabs renders a tab bar with the active tab highlighted
func Tabs(labels []string, active int) string {
	activeStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(ColorPrimary).
		Padding(0, 2)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(ColorSubtle).
		Padding(0, 2)

	var parts []string
	for i, label := range labels {
		if i == active {
			parts = append(parts, activeStyle.Render(label))
		} else {
			parts = append(parts, inactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// KeyHelp renders key/description pairs in order
func KeyHelp(pairs ...string) string {
	helpStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	keyStyle := lipgloss.NewStyle().Foreground(ColorSubtle).Bold(true)

	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, keyStyle.Render(pairs[i])+" "+helpStyle.Render(pairs[i+1]))
	}
	return helpStyle.Render(strings.Join(parts, "  |  "))
}
