// Package styles provides centralized style and color definitions for
// terminal output.
//
// Colors use lipgloss.AdaptiveColor so output stays readable on both light
// and dark terminal backgrounds: light variants are darker and more
// saturated, dark variants follow the Dracula palette
// (https://draculatheme.com/).
package styles

import "github.com/charmbracelet/lipgloss"

// Adaptive colors shared by all CLI output.
var (
	// ColorError is used for error messages and failed migration entries.
	ColorError = lipgloss.AdaptiveColor{
		Light: "#D73737",
		Dark:  "#FF5555",
	}

	// ColorWarning is used for warnings and skipped entries.
	ColorWarning = lipgloss.AdaptiveColor{
		Light: "#E67E22",
		Dark:  "#FFB86C",
	}

	// ColorSuccess is used for success messages and completed entries.
	ColorSuccess = lipgloss.AdaptiveColor{
		Light: "#27AE60",
		Dark:  "#50FA7B",
	}

	// ColorInfo is used for informational messages.
	ColorInfo = lipgloss.AdaptiveColor{
		Light: "#2980B9",
		Dark:  "#8BE9FD",
	}

	// ColorPurple is used for codenames, file paths and highlights.
	ColorPurple = lipgloss.AdaptiveColor{
		Light: "#8E44AD",
		Dark:  "#BD93F9",
	}

	// ColorYellow is used for progress and activity messages.
	ColorYellow = lipgloss.AdaptiveColor{
		Light: "#B7950B",
		Dark:  "#F1FA8C",
	}

	// ColorComment is used for secondary, muted information.
	ColorComment = lipgloss.AdaptiveColor{
		Light: "#6C7A89",
		Dark:  "#6272A4",
	}

	// ColorForeground is used for primary text content.
	ColorForeground = lipgloss.AdaptiveColor{
		Light: "#2C3E50",
		Dark:  "#F8F8F2",
	}

	// ColorBorder is used for table borders and dividers.
	ColorBorder = lipgloss.AdaptiveColor{
		Light: "#BDC3C7",
		Dark:  "#44475A",
	}

	// ColorTableAltRow is used for zebra striping in summary tables.
	ColorTableAltRow = lipgloss.AdaptiveColor{
		Light: "#F5F5F5",
		Dark:  "#1A1A1A",
	}
)

// RoundedBorder is the border style for summary tables.
var RoundedBorder = lipgloss.RoundedBorder()

// Pre-configured styles for common use cases.

// Error style for error messages - bold red.
var Error = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorError)

// Warning style for warning messages - bold orange.
var Warning = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWarning)

// Success style for success messages - bold green.
var Success = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorSuccess)

// Info style for informational messages - bold cyan.
var Info = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorInfo)

// Codename style for entity codenames and file paths - bold purple.
var Codename = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorPurple)

// Progress style for progress and activity messages - yellow.
var Progress = lipgloss.NewStyle().
	Foreground(ColorYellow)

// Muted style for secondary details such as ids and counts.
var Muted = lipgloss.NewStyle().
	Foreground(ColorComment)

// TableHeader style for summary table headers.
var TableHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorInfo)

// TableCell style for summary table cells.
var TableCell = lipgloss.NewStyle().
	Foreground(ColorForeground)

// TableBorder style for summary table borders.
var TableBorder = lipgloss.NewStyle().
	Foreground(ColorBorder)

// TableTitle style for summary table titles.
var TableTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorPurple)
