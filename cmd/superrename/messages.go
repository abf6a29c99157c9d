package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	appErrors "superrename/internal/errors"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
)

// reportFailure prints err for the user and returns the process exit status.
// A missing external tool is reported on stdout; everything else goes to stderr.
func reportFailure(stdout, stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if appErrors.IsCode(err, appErrors.CodeToolNotFound) {
		_, _ = fmt.Fprint(stdout, formatToolNotFoundMessage(err))
		return 1
	}
	_, _ = fmt.Fprintf(stderr, "%s %s\n", errorStyle.Render("Error:"), strings.TrimSpace(err.Error()))
	if appErrors.IsCode(err, appErrors.CodeParseFailed) {
		_, _ = fmt.Fprintln(stderr, dimStyle.Render("  Fix or delete the file above and run the command again."))
	}
	return 1
}

func formatToolNotFoundMessage(err error) string {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = "A required tool was not found"
	}
	return msg + "\n"
}
