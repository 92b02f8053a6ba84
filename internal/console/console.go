// Package console writes human readable command output
package console

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// Level represents the level of console output
type Level int

const (
	LevelSilent Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelVerbose
)

// Console provides structured, user-friendly output
type Console struct {
	level    Level
	output   io.Writer
	errorOut io.Writer
}

// New creates a console writing to output and errorOut
func New(output, errorOut io.Writer, level Level) *Console {
	return &Console{level: level, output: output, errorOut: errorOut}
}

var (
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgBlue)
	successColor = color.New(color.FgGreen)
	headerColor  = color.New(color.FgCyan, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

// Error outputs error messages (always shown unless silent)
func (c *Console) Error(format string, args ...any) {
	if c.level >= LevelError {
		c.writeMessage(c.errorOut, "ERROR", errorColor, format, args...)
	}
}

// Warn outputs warning messages
func (c *Console) Warn(format string, args ...any) {
	if c.level >= LevelWarn {
		c.writeMessage(c.output, "WARN", warnColor, format, args...)
	}
}

// Info outputs informational messages
func (c *Console) Info(format string, args ...any) {
	if c.level >= LevelInfo {
		c.writeMessage(c.output, "INFO", infoColor, format, args...)
	}
}

// Success outputs success messages with emphasis
func (c *Console) Success(format string, args ...any) {
	if c.level >= LevelInfo {
		c.writeMessage(c.output, "SUCCESS", successColor, format, args...)
	}
}

// Verbose outputs detailed messages (verbose mode only)
func (c *Console) Verbose(format string, args ...any) {
	if c.level >= LevelVerbose {
		c.writeMessage(c.output, "VERBOSE", dimColor, format, args...)
	}
}

// Section creates a prominent section header
func (c *Console) Section(title string) {
	if c.level >= LevelInfo {
		headerColor.Fprintf(c.output, "%s\n", title)
	}
}

// Table writes rows under a dimmed header with aligned columns
func (c *Console) Table(header []string, rows [][]string) {
	if c.level < LevelInfo {
		return
	}
	w := tabwriter.NewWriter(c.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, dimColor.Sprint(strings.Join(header, "\t")))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

// Raw writes s unchanged
func (c *Console) Raw(s string) {
	fmt.Fprint(c.output, s)
}

func (c *Console) writeMessage(w io.Writer, level string, levelColor *color.Color, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", levelColor.Sprintf("[%s]", level), fmt.Sprintf(format, args...))
}
