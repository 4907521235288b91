package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/sarjann/tiptap-cli/internal/model"
)

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	blue   = color.New(color.FgBlue).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// Highlight formats a path or name for inline display.
func Highlight(s string) string {
	return blue(s)
}

// Reporter writes user-facing progress to out and diagnostics through logrus.
type Reporter struct {
	out    io.Writer
	log    *logrus.Logger
	silent bool
}

func New(out, diag io.Writer, level logrus.Level) *Reporter {
	logger := logrus.New()
	logger.SetOutput(diag)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return &Reporter{out: out, log: logger}
}

// Discard returns a reporter that prints nothing. Useful in tests.
func Discard() *Reporter {
	return New(io.Discard, io.Discard, logrus.PanicLevel)
}

// ParseLevel reads LOG_LEVEL, defaulting to warn.
func ParseLevel(verbose bool) logrus.Level {
	if verbose {
		return logrus.DebugLevel
	}
	raw := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if raw == "" {
		return logrus.WarnLevel
	}
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		return logrus.WarnLevel
	}
	return level
}

func (r *Reporter) Logger() *logrus.Logger {
	return r.log
}

// Silenced returns a copy of r whose step output is suppressed.
func (r *Reporter) Silenced(silent bool) *Reporter {
	cp := *r
	cp.silent = silent
	return &cp
}

func (r *Reporter) Log(format string, args ...any) {
	if r.silent {
		return
	}
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *Reporter) Info(format string, args ...any) {
	r.Log("%s %s", blue("ℹ"), fmt.Sprintf(format, args...))
}

func (r *Reporter) Success(format string, args ...any) {
	r.Log("%s %s", cyan("✔"), fmt.Sprintf(format, args...))
}

func (r *Reporter) Warn(format string, args ...any) {
	r.Log("%s %s", yellow("⚠"), fmt.Sprintf(format, args...))
}

// Error is never silenced.
func (r *Reporter) Error(format string, args ...any) {
	fmt.Fprintln(r.out, red(fmt.Sprintf(format, args...)))
}

func (r *Reporter) Fail(format string, args ...any) {
	if r.silent {
		return
	}
	fmt.Fprintf(r.out, "%s %s\n", red("✖"), fmt.Sprintf(format, args...))
}

func (r *Reporter) Break() {
	r.Log("")
}

func (r *Reporter) Debugf(format string, args ...any) {
	r.log.Debugf(format, args...)
}

// Files prints the outcome of a file-writing pass.
func (r *Reporter) Files(res model.FileOperationResult) {
	if res.Empty() {
		r.Info("No files updated.")
		return
	}
	if n := len(res.Created); n > 0 {
		r.Success("%s", bold(fmt.Sprintf("Created %d %s:", n, plural(n))))
		r.list(res.Created)
	}
	if n := len(res.Updated); n > 0 {
		r.Info("Updated %d %s:", n, plural(n))
		r.list(res.Updated)
	}
	if n := len(res.Skipped); n > 0 {
		r.Info("Skipped %d %s: (use --overwrite to overwrite)", n, plural(n))
		r.list(res.Skipped)
	}
	if n := len(res.Errors); n > 0 {
		r.Fail("Failed to process %d %s:", n, plural(n))
		for _, e := range res.Errors {
			r.Error("  - %s: %s", e.File, e.Error)
		}
	}
}

func (r *Reporter) list(files []string) {
	for _, f := range files {
		r.Log("  - %s", f)
	}
}

func plural(n int) string {
	if n == 1 {
		return "file"
	}
	return "files"
}
