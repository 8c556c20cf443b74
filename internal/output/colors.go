package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// colorsEnabled honors NO_COLOR and non-TTY stdout
func colorsEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

func colored(text string, color lipgloss.Color) string {
	if !colorsEnabled() {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

// ColorVersion highlights a version string
func ColorVersion(text string) string {
	return colored(text, lipgloss.Color("6"))
}

// ColorSuccess colors text green
func ColorSuccess(text string) string {
	return colored(text, lipgloss.Color("2"))
}

// ColorWarning colors text yellow
func ColorWarning(text string) string {
	return colored(text, lipgloss.Color("3"))
}

// ColorFailure colors text red
func ColorFailure(text string) string {
	return colored(text, lipgloss.Color("1"))
}

// ColorDim makes text dim/gray
func ColorDim(text string) string {
	return colored(text, lipgloss.Color("8"))
}

// ColorModule highlights a module path
func ColorModule(text string) string {
	return colored(text, lipgloss.Color("12"))
}
