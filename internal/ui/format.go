package ui

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"
)

var (
	// Check if output supports colors
	supportsColor = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	// Color functions
	ColorSuccess  = colorFunc(ansi.Green)
	ColorError    = colorFunc(ansi.Red)
	ColorWarning  = colorFunc(ansi.Yellow)
	ColorInfo     = colorFunc(ansi.Cyan)
	ColorProgress = colorFunc(ansi.Blue)
	ColorBold     = colorFunc("default+b")
	ColorDim      = colorFunc("default+h")
)

// colorFunc returns a function that colors text if supported
func colorFunc(color string) func(string) string {
	return func(text string) string {
		if supportsColor {
			return ansi.Color(text, color)
		}
		return text
	}
}

// ShowHeader displays a formatted header
func ShowHeader(title string) {
	width := 50
	padding := (width - len(title) - 2) / 2

	fmt.Println("\n+" + strings.Repeat("-", width-2) + "+")
	fmt.Printf("|%s%s%s|\n",
		strings.Repeat(" ", padding),
		ColorBold(title),
		strings.Repeat(" ", width-2-padding-len(title)),
	)
	fmt.Println("+" + strings.Repeat("-", width-2) + "+")
}

// ShowError displays a formatted error message
func ShowError(err error) {
	fmt.Printf("\n%s\n", ColorError("ERROR:"))

	message := err.Error()
	lines := strings.Split(message, "\n")

	for i, line := range lines {
		if i == 0 {
			fmt.Printf("  %s\n", line)
		} else {
			fmt.Printf("  %s\n", ColorDim(line))
		}
	}

	if suggestion := getSuggestion(message); suggestion != "" {
		fmt.Printf("\n  %s %s\n", ColorInfo("TIP:"), ColorInfo(suggestion))
	}
}

// ShowSuccess displays a success message
func ShowSuccess(message string) {
	fmt.Printf("%s %s\n", ColorSuccess("SUCCESS:"), message)
}

// ShowWarning displays a warning message
func ShowWarning(message string) {
	fmt.Printf("%s %s\n", ColorWarning("WARNING:"), ColorWarning(message))
}

// ShowInfo displays an info message
func ShowInfo(message string) {
	fmt.Printf("%s %s\n", ColorInfo("INFO:"), message)
}

// Table creates a formatted table
type Table struct {
	writer *tabwriter.Writer
}

// NewTable creates a new table
func NewTable() *Table {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	return &Table{writer: w}
}

// AddHeader adds a header row to the table
func (t *Table) AddHeader(columns ...string) {
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = ColorBold(col)
	}
	fmt.Fprintln(t.writer, strings.Join(headers, "\t"))

	// Add separator
	separators := make([]string, len(columns))
	for i := range columns {
		separators[i] = strings.Repeat("-", len(columns[i]))
	}
	fmt.Fprintln(t.writer, strings.Join(separators, "\t"))
}

// AddRow adds a data row to the table
func (t *Table) AddRow(values ...string) {
	fmt.Fprintln(t.writer, strings.Join(values, "\t"))
}

// Render displays the table
func (t *Table) Render() {
	t.writer.Flush()
}

// getSuggestion returns helpful suggestions based on error messages
func getSuggestion(error string) string {
	lower := strings.ToLower(error)

	switch {
	case strings.Contains(lower, "authentication failed"), strings.Contains(lower, "incorrect username or password"):
		return "Check your username and password in the configuration"
	case strings.Contains(lower, "connection refused"), strings.Contains(lower, "no such host"):
		return "Verify your Snowflake account URL and network connectivity"
	case strings.Contains(lower, "insufficient privileges"):
		return "Warehouse and account governance operations usually need ACCOUNTADMIN"
	case strings.Contains(lower, "unsupported feature"):
		return "Multi-cluster warehouses require Enterprise edition or above"
	case strings.Contains(lower, "invalid state"):
		return "The object is already in the requested state; this is usually safe to ignore"
	case strings.Contains(lower, "syntax error"):
		return "Review the SQL syntax in the affected statement"
	case strings.Contains(lower, "does not exist"):
		return "Verify the object exists or check your database/schema context"
	default:
		return ""
	}
}

// Confirm shows a confirmation prompt
func Confirm(message string, defaultValue bool) (bool, error) {
	suffix := " [Y/n]"
	if !defaultValue {
		suffix = " [y/N]"
	}

	fmt.Printf("%s%s ", message, suffix)

	var response string
	_, err := fmt.Scanln(&response)
	if err != nil && err.Error() != "unexpected newline" {
		return false, err
	}

	response = strings.ToLower(strings.TrimSpace(response))

	if response == "" {
		return defaultValue, nil
	}

	return response == "y" || response == "yes", nil
}
