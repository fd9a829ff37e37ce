// Command recon submits period spreadsheets to the reconciliation service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/recon/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
