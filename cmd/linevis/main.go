// Command linevis lays out, renders and interactively selects small-multiple
// line charts.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/linevis/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root := cli.New(os.Stderr, cli.LogInfo).RootCommand()
	code := cli.ReportError(root.ExecuteContext(ctx))
	cancel()
	os.Exit(code)
}
