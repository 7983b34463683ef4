// Package console provides styled terminal output for the CLI: message
// formatting helpers, a summary table renderer and a spinner for
// long-running migration phases.
//
// All styling is TTY-aware: when stdout is a pipe or redirect the helpers
// return plain text, so command output stays grep-able.
package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kontent-tools/kontent-migrate/pkg/logger"
	"github.com/kontent-tools/kontent-migrate/pkg/styles"
	"github.com/kontent-tools/kontent-migrate/pkg/tty"
)

var consoleLog = logger.New("console:console")

const (
	ansiCarriageReturn = "\r"
	ansiClearLine      = "\x1b[2K"
)

// isTTY checks if stdout is a terminal
func isTTY() bool {
	return tty.IsStdoutTerminal()
}

// applyStyle conditionally applies styling based on TTY status
func applyStyle(style lipgloss.Style, text string) string {
	if isTTY() {
		return style.Render(text)
	}
	return text
}

// FormatSuccessMessage formats a success message with styling
func FormatSuccessMessage(message string) string {
	return applyStyle(styles.Success, "✓ ") + message
}

// FormatInfoMessage formats an informational message
func FormatInfoMessage(message string) string {
	return applyStyle(styles.Info, "ℹ ") + message
}

// FormatWarningMessage formats a warning message
func FormatWarningMessage(message string) string {
	return applyStyle(styles.Warning, "⚠ ") + message
}

// FormatErrorMessage formats a simple error message (for stderr output)
func FormatErrorMessage(message string) string {
	return applyStyle(styles.Error, "✗ ") + message
}

// FormatProgressMessage formats a progress/activity message
func FormatProgressMessage(message string) string {
	return applyStyle(styles.Progress, "🔨 ") + message
}

// FormatCodename styles an entity codename for inline use in messages
func FormatCodename(codename string) string {
	return applyStyle(styles.Codename, codename)
}

// FormatMutedMessage formats secondary details such as ids and counts
func FormatMutedMessage(message string) string {
	return applyStyle(styles.Muted, message)
}

// FormatListHeader formats a section header for lists
func FormatListHeader(header string) string {
	return applyStyle(styles.TableTitle, header)
}

// FormatListItem formats an item in a list
func FormatListItem(item string) string {
	return applyStyle(styles.TableCell, "  • "+item)
}

// TableConfig describes a summary table to render.
type TableConfig struct {
	Title    string
	Headers  []string
	Rows     [][]string
	TotalRow []string
}

// RenderTable renders a formatted table using the lipgloss table package.
// Used for the per-run migration summary (created/updated/skipped/failed).
func RenderTable(config TableConfig) string {
	if len(config.Headers) == 0 {
		consoleLog.Print("No headers provided for table rendering")
		return ""
	}

	consoleLog.Printf("Rendering table: title=%s, columns=%d, rows=%d", config.Title, len(config.Headers), len(config.Rows))
	var output strings.Builder

	if config.Title != "" {
		output.WriteString(applyStyle(styles.TableTitle, config.Title))
		output.WriteString("\n")
	}

	allRows := config.Rows
	if len(config.TotalRow) > 0 {
		allRows = append(allRows, config.TotalRow)
	}

	dataRowCount := len(config.Rows)

	styleFunc := func(row, col int) lipgloss.Style {
		if !isTTY() {
			return lipgloss.NewStyle()
		}
		if row == table.HeaderRow {
			return styles.TableHeader.PaddingLeft(1).PaddingRight(1)
		}
		if len(config.TotalRow) > 0 && row == dataRowCount {
			return styles.TableTitle.PaddingLeft(1).PaddingRight(1)
		}
		if row%2 == 0 {
			return styles.TableCell.PaddingLeft(1).PaddingRight(1)
		}
		return lipgloss.NewStyle().
			Foreground(styles.ColorForeground).
			Background(styles.ColorTableAltRow).
			PaddingLeft(1).
			PaddingRight(1)
	}

	t := table.New().
		Headers(config.Headers...).
		Rows(allRows...).
		Border(styles.RoundedBorder).
		BorderStyle(styles.TableBorder).
		StyleFunc(styleFunc)

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}

// FormatPercentagePrefix renders the "[ 42%]" prefix the processing
// harness prepends to per-item progress messages.
func FormatPercentagePrefix(percent int) string {
	return applyStyle(styles.Muted, fmt.Sprintf("[%3d%%]", percent))
}
