package main

import (
	"errors"

	"github.com/charmbracelet/lipgloss"
	"github.com/openmined/cdnsync/internal/cdn"
)

var (
	// https://github.com/muesli/termenv/blob/master/ansicolors.go
	red       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	green     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	cyan      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	gray      = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	lightGray = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
)

// errorPrefix picks the console label for a failed command
func errorPrefix(err error) string {
	switch {
	case errors.Is(err, cdn.ErrConnectivity):
		return "Connection error: "
	case errors.Is(err, cdn.ErrTransfer):
		return "Upload error: "
	case errors.Is(err, cdn.ErrPurge):
		return "Deletion error: "
	case errors.Is(err, cdn.ErrConfiguration):
		return "Configuration error: "
	default:
		return "Error: "
	}
}
