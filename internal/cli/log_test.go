package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("hidden")
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("output = %q", out)
	}
}

func TestStageTimer(t *testing.T) {
	var buf bytes.Buffer
	startStage(newLogger(&buf, log.InfoLevel), "render").done("rendered", "cells", 4)
	out := buf.String()
	for _, want := range []string{"rendered", "cells=4", "stage=render", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestConfigureLogger(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		format  string
		want    string
		wantErr bool
	}{
		{"text", false, "text", "hello", false},
		{"json", false, "json", `"msg":"hello"`, false},
		{"logfmt verbose", true, "logfmt", "level=debug", false},
		{"unknown", false, "xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := newLogger(&buf, log.InfoLevel)
			err := configureLogger(l, tt.verbose, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.verbose {
				l.Debug("hello")
			} else {
				l.Info("hello")
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q missing %q", buf.String(), tt.want)
			}
		})
	}
}

func TestCommandLogger(t *testing.T) {
	root := &cobra.Command{Use: "linevis"}
	cacheCmd := &cobra.Command{Use: "cache"}
	prune := &cobra.Command{Use: "prune"}
	root.AddCommand(cacheCmd)
	cacheCmd.AddCommand(prune)

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	if commandLogger(l, root) != l {
		t.Error("the root command should log without a prefix")
	}
	commandLogger(l, prune).Info("swept")
	if !strings.Contains(buf.String(), "cache prune") {
		t.Errorf("output %q should carry the command prefix", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("empty context should yield the default logger")
	}
	custom := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if loggerFromContext(withLogger(context.Background(), custom)) != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}
