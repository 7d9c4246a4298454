// Package ui provides terminal rendering helpers for the CLI.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// RenderPass renders success markers.
func RenderPass(s string) string { return passStyle.Render(s) }

// RenderWarn renders warning markers.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderError renders failure markers.
func RenderError(s string) string { return errorStyle.Render(s) }

// RenderAccent renders informational accents.
func RenderAccent(s string) string { return accentStyle.Render(s) }

// RenderDim renders de-emphasized detail text.
func RenderDim(s string) string { return dimStyle.Render(s) }
