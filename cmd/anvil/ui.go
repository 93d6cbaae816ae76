package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// theme holds the styles used for terminal output. Styles collapse to
// plain text when stdout is not a terminal.
type theme struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Dim     lipgloss.Style
}

var ui = newTheme()

func newTheme() *theme {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		plain := lipgloss.NewStyle()
		return &theme{Header: plain, Success: plain, Error: plain, Warning: plain, Dim: plain}
	}
	return &theme{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func printHeader(text string) {
	fmt.Println(ui.Header.Render(text))
}

func printSuccess(format string, args ...any) {
	fmt.Println(ui.Success.Render("✓ " + fmt.Sprintf(format, args...)))
}

func printWarning(format string, args ...any) {
	fmt.Println(ui.Warning.Render("! " + fmt.Sprintf(format, args...)))
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, ui.Error.Render("✗ "+err.Error()))
}

func dim(text string) string {
	return ui.Dim.Render(text)
}
