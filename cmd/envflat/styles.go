// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Color palette shared by help text and log output.
const (
	// ColorPrimary is purple - used for titles and the log prefix.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - used for subtitles and secondary text.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorError is red - used for errors.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber - used for warnings.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorVerbose is light gray - used for debug output.
	ColorVerbose = lipgloss.Color("#9CA3AF")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// newLogger returns the logger used by a run. Nothing below Warn is shown
// unless verbose is set, so standard error carries only diagnostics by default.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(w, log.Options{
		Prefix: "envflat",
		Level:  level,
	})

	styles := log.DefaultStyles()
	styles.Prefix = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	styles.Levels[log.DebugLevel] = styles.Levels[log.DebugLevel].Foreground(ColorVerbose)
	styles.Levels[log.WarnLevel] = styles.Levels[log.WarnLevel].Foreground(ColorWarning)
	styles.Levels[log.ErrorLevel] = styles.Levels[log.ErrorLevel].Foreground(ColorError)
	logger.SetStyles(styles)

	return logger
}
