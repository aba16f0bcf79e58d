// Package ui holds the console output helpers shared by the commands: the
// structured progress logger and the lipgloss palette used for result lines.
package ui
