// Command flowviz renders n8n workflow files as diagrams and provides
// tooling for validating, searching, and serving workflow template
// corpora.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gejjech/flowviz/internal/cli"
	"github.com/gejjech/flowviz/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		if ctx.Err() != nil {
			// Interrupted; conventional exit code for SIGINT.
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", errors.UserMessage(err))
		os.Exit(1)
	}
}
