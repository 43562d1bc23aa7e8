package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"book-catalog/library"

	"github.com/fatih/color"
)

// isTTY returns true if stdout is a terminal.
func isTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// initColor configures color output based on flags and terminal detection.
func initColor(noColor bool) {
	if noColor || !isTTY() {
		color.NoColor = true
	}
}

// ok prints a green success line.
func ok(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// fail prints a red error line without exiting.
func fail(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.RedString("✗"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.CyanString(fmt.Sprintf(format, a...)))
}

func printBooks(w io.Writer, books []library.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books in library.")
		return
	}
	header(w, "%-5s %-30s %-25s %-10s", "ID", "Title", "Author", "Available")
	fmt.Fprintln(w, strings.Repeat("-", 73))
	for _, b := range books {
		fmt.Fprintln(w, library.PrettyBook(b))
	}
}
