package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Level represents the verbosity of logger output
type Level int

const (
	LevelSilent Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelVerbose
	LevelDebug
)

// String returns the level name
func (l Level) String() string {
	switch l {
	case LevelSilent:
		return "silent"
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// Logger provides leveled, optionally colored progress output. All output
// goes to a single writer (stderr by default) so stdout stays reserved for
// generated definitions.
type Logger struct {
	level     Level
	useColors bool
	showTime  bool
	out       io.Writer
	indent    int
}

// NewLogger creates a logger writing to stderr at the given level
func NewLogger(level Level) *Logger {
	return &Logger{
		level:     level,
		useColors: shouldUseColors(),
		showTime:  level >= LevelVerbose,
		out:       os.Stderr,
	}
}

// NewTestLogger creates a silent logger, handy as a default in tests
func NewTestLogger() *Logger {
	return NewLogger(LevelSilent)
}

// SetOutput redirects the logger
func (l *Logger) SetOutput(w io.Writer) {
	l.out = w
}

// SetColors forces colors on or off
func (l *Logger) SetColors(enabled bool) {
	l.useColors = enabled
}

// SetShowTime toggles the timestamp prefix
func (l *Logger) SetShowTime(enabled bool) {
	l.showTime = enabled
}

// Level returns the current level
func (l *Logger) Level() Level {
	return l.level
}

// Error outputs error messages (always shown unless silent)
func (l *Logger) Error(format string, args ...interface{}) {
	if l.level >= LevelError {
		l.writeMessage("ERROR", color.FgRed, format, args...)
	}
}

// Warn outputs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level >= LevelWarn {
		l.writeMessage("WARN", color.FgYellow, format, args...)
	}
}

// Info outputs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level >= LevelInfo {
		l.writeMessage("INFO", color.FgBlue, format, args...)
	}
}

// Success outputs success messages with emphasis
func (l *Logger) Success(format string, args ...interface{}) {
	if l.level >= LevelInfo {
		l.writeMessage("SUCCESS", color.FgGreen, format, args...)
	}
}

// Verbose outputs detailed messages (verbose mode only)
func (l *Logger) Verbose(format string, args ...interface{}) {
	if l.level >= LevelVerbose {
		l.writeMessage("VERBOSE", color.FgHiBlack, format, args...)
	}
}

// Debug outputs debug messages (highest verbosity)
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level >= LevelDebug {
		l.writeMessage("DEBUG", color.FgMagenta, format, args...)
	}
}

// Section prints a bold section header
func (l *Logger) Section(title string) {
	if l.level < LevelInfo {
		return
	}
	if l.useColors {
		bold := color.New(color.FgCyan, color.Bold)
		bold.EnableColor()
		bold.Fprintf(l.out, "%s\n", title)
		return
	}
	fmt.Fprintf(l.out, "%s\n", title)
}

// Item prints a checkmarked line under the current section
func (l *Logger) Item(format string, args ...interface{}) {
	if l.level < LevelInfo {
		return
	}
	message := fmt.Sprintf(format, args...)
	if l.useColors {
		green := color.New(color.FgGreen)
		green.EnableColor()
		fmt.Fprint(l.out, l.getIndent())
		green.Fprint(l.out, "✓ ")
		fmt.Fprintf(l.out, "%s\n", message)
		return
	}
	fmt.Fprintf(l.out, "%s✓ %s\n", l.getIndent(), message)
}

// Indent increases the indentation level
func (l *Logger) Indent() {
	l.indent++
}

// Unindent decreases the indentation level
func (l *Logger) Unindent() {
	if l.indent > 0 {
		l.indent--
	}
}

// Summary prints a title followed by key/value statistics in the given order
func (l *Logger) Summary(title string, keys []string, stats map[string]interface{}) {
	if l.level < LevelInfo {
		return
	}
	fmt.Fprintf(l.out, "\n%s\n", title)
	for _, key := range keys {
		if value, ok := stats[key]; ok {
			fmt.Fprintf(l.out, "   %s: %v\n", key, value)
		}
	}
}

func (l *Logger) writeMessage(level string, attr color.Attribute, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	var output strings.Builder
	output.WriteString(l.getIndent())

	if l.showTime {
		output.WriteString(time.Now().Format("15:04:05 "))
	}

	tag := fmt.Sprintf("[%s]", level)
	if l.useColors {
		c := color.New(attr)
		c.EnableColor()
		tag = c.Sprint(tag)
	}
	output.WriteString(tag)
	output.WriteString(" ")
	output.WriteString(message)
	output.WriteString("\n")

	fmt.Fprint(l.out, output.String())
}

func (l *Logger) getIndent() string {
	return strings.Repeat("  ", l.indent)
}

// shouldUseColors determines if colors should be used
func shouldUseColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}

// UseColors resolves a color mode of "always", "never" or "auto". Auto
// follows NO_COLOR, FORCE_COLOR and TERM.
func UseColors(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return shouldUseColors()
	}
}
