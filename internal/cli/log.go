package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// logFormats maps --log-format values to formatters. serve usually runs
// with json or logfmt so that request logs can be shipped.
var logFormats = map[string]log.Formatter{
	"text":   log.TextFormatter,
	"json":   log.JSONFormatter,
	"logfmt": log.LogfmtFormatter,
}

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// configureLogger applies the global --verbose and --log-format flags.
func configureLogger(l *log.Logger, verbose bool, format string) error {
	f, ok := logFormats[format]
	if !ok {
		names := make([]string, 0, len(logFormats))
		for name := range logFormats {
			names = append(names, name)
		}
		slices.Sort(names)
		return fmt.Errorf("invalid log format %q (must be one of: %s)", format, strings.Join(names, ", "))
	}
	l.SetFormatter(f)
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	return nil
}

// commandLogger prefixes l with the command path below the root, e.g.
// "cache prune". The root itself logs without a prefix.
func commandLogger(l *log.Logger, cmd *cobra.Command) *log.Logger {
	if !cmd.HasParent() {
		return l
	}
	return l.WithPrefix(strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" "))
}

// stageTimer logs the completion of a pipeline stage with its duration.
type stageTimer struct {
	logger *log.Logger
	stage  string
	start  time.Time
}

func startStage(l *log.Logger, stage string) *stageTimer {
	return &stageTimer{logger: l, stage: stage, start: time.Now()}
}

// done logs msg at info level, e.g. "rendered stage=render cells=4 elapsed=12ms".
func (s *stageTimer) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "stage", s.stage, "elapsed", time.Since(s.start).Round(time.Millisecond))
	s.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
