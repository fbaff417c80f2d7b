// Package common provides shared styles and utilities for the UI.
package common

import "github.com/charmbracelet/lipgloss"

// Icon constants
const (
	HostIcon         = "👑"
	ImpostorIcon     = "🕵️"
	InvestigatorIcon = "🔎"
	TurnIcon         = "👉"
	VotedIcon        = "🗳️"
)

// Lipgloss Styles
var (
	DocStyle       = lipgloss.NewStyle().Margin(1, 2)
	TitleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	BoxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	ActiveBoxStyle = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("212")).Padding(0, 1)
	PromptStyle    = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	MutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	HighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	SecretStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#5A56E0")).Bold(true).Padding(0, 1)
	ImpostorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#CD0000")).Bold(true).Padding(0, 1)
	SuccessStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)
