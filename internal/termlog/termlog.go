// Package termlog prints leveled, optionally colored progress messages.
package termlog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	debugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Logger writes leveled messages to a sink. Zero value is unusable;
// construct with New.
type Logger struct {
	out     io.Writer
	noColor bool
	verbose bool
	debug   bool

	// runID prefixes debug lines so interleaved runs are attributable.
	runID string
}

func New(out io.Writer, noColor, verbose, debug bool, runID string) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{out: out, noColor: noColor, verbose: verbose, debug: debug, runID: runID}
}

func (l *Logger) render(style lipgloss.Style, tag, msg string) string {
	line := tag + " " + msg
	if l.noColor {
		return line
	}
	return style.Render(line)
}

func (l *Logger) Info(format string, args ...any) {
	fmt.Fprintln(l.out, l.render(infoStyle, "[info]", fmt.Sprintf(format, args...)))
}

func (l *Logger) Success(format string, args ...any) {
	fmt.Fprintln(l.out, l.render(successStyle, "[ok]", fmt.Sprintf(format, args...)))
}

func (l *Logger) Warn(format string, args ...any) {
	fmt.Fprintln(l.out, l.render(warnStyle, "[warn]", fmt.Sprintf(format, args...)))
}

func (l *Logger) Error(format string, args ...any) {
	fmt.Fprintln(l.out, l.render(errorStyle, "[error]", fmt.Sprintf(format, args...)))
}

// Detail prints only when -v or -d is set.
func (l *Logger) Detail(format string, args ...any) {
	if !l.verbose && !l.debug {
		return
	}
	fmt.Fprintln(l.out, l.render(infoStyle, "[info]", fmt.Sprintf(format, args...)))
}

// Debug prints only under -d.
func (l *Logger) Debug(format string, args ...any) {
	if !l.debug {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(l.out, l.render(debugStyle, "[debug "+l.runID+"]", msg))
}

// Command echoes an external invocation with its output and exit code.
// Only emitted under -d.
func (l *Logger) Command(name string, args []string, output string, exitCode int) {
	if !l.debug {
		return
	}
	l.Debug("exec: %s %s (exit %d)", name, strings.Join(args, " "), exitCode)
	if out := strings.TrimSpace(output); out != "" {
		for _, line := range strings.Split(out, "\n") {
			l.Debug("  | %s", line)
		}
	}
}

// DebugEnabled reports whether command echo is on. Callers use this to
// avoid leaking secrets into default-verbosity output.
func (l *Logger) DebugEnabled() bool { return l.debug }
