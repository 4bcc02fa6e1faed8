// Package ui renders user-facing terminal output: status lines with coloured
// prefixes and bordered tables.
//
// Colours are dropped automatically when stdout is not a terminal, so piped
// output and tests see plain text.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	boldStyle    = lipgloss.NewStyle().Bold(true)
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	greenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	magentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	grayStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func Bold(s string) string    { return boldStyle.Render(s) }
func Red(s string) string     { return redStyle.Render(s) }
func Green(s string) string   { return greenStyle.Render(s) }
func Yellow(s string) string  { return yellowStyle.Render(s) }
func Magenta(s string) string { return magentaStyle.Render(s) }
func Cyan(s string) string    { return cyanStyle.Render(s) }
func Gray(s string) string    { return grayStyle.Render(s) }

// Prefixes used in front of status lines and prompts.
func SuccessPrefix() string { return greenStyle.Render("✔") }
func ErrorPrefix() string   { return redStyle.Render("✘") }
func WarnPrefix() string    { return yellowStyle.Render("!") }
func PromptPrefix() string  { return yellowStyle.Render("?") }
func Divider() string       { return grayStyle.Render("·") }

// Success writes "✔ part · part ..." to w.
func Success(w io.Writer, parts ...string) {
	line(w, SuccessPrefix(), parts)
}

// Warn writes "! part · part ..." to w.
func Warn(w io.Writer, parts ...string) {
	line(w, WarnPrefix(), parts)
}

// Error writes "✘ part · part ..." to w.
func Error(w io.Writer, parts ...string) {
	line(w, ErrorPrefix(), parts)
}

func line(w io.Writer, prefix string, parts []string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", prefix, strings.Join(parts, " "+Divider()+" "))
}
