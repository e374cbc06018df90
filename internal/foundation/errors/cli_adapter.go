package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitUsage      = 2
	ExitNotFound   = 3
	ExitConfig     = 7
	ExitInternal   = 10
	ExitProcessing = 11
	ExitIO         = 12
)

// CLIErrorAdapter turns a command error into a log record, a one-line
// message on stderr and a process exit code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
	exit    func(int)
}

func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, out: os.Stderr, exit: os.Exit}
}

// ExitCodeFor maps err to an exit code by its category.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	ce, ok := AsClassified(err)
	if !ok {
		return ExitFailure
	}
	if ce.category.PassThrough() {
		return ExitProcessing
	}
	switch ce.category {
	case CategoryValidation:
		return ExitUsage
	case CategoryNotFound:
		return ExitNotFound
	case CategoryConfig:
		return ExitConfig
	case CategoryFileSystem, CategoryLedger:
		return ExitIO
	case CategoryInternal:
		return ExitInternal
	default:
		return ExitFailure
	}
}

// FormatError renders err for the terminal. Without verbose output the
// cause is omitted and only the path attribute, if any, is appended.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	ce, ok := AsClassified(err)
	if !ok || a.verbose {
		return fmt.Sprintf("Error: %v", err)
	}
	if path, ok := ce.context.GetString("path"); ok {
		return fmt.Sprintf("Error: %s (%s)", ce.message, path)
	}
	return "Error: " + ce.message
}

// HandleError reports err and terminates the process.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	a.logError(err)
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}

func (a *CLIErrorAdapter) logError(err error) {
	ce, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Command failed", "error", err)
		return
	}

	keys := make([]string, 0, len(ce.context))
	for k := range ce.context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys)+2)
	attrs = append(attrs, slog.String("category", string(ce.category)))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, ce.context[k]))
	}
	if ce.cause != nil {
		attrs = append(attrs, slog.String("error", ce.cause.Error()))
	}

	level := slog.LevelError
	if ce.severity == SeverityWarning {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, ce.message, attrs...)
}
