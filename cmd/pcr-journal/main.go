// Command pcr-journal suggests PCR-based option trades and journals them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"pcr-journal/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := &cli.App{Logger: zerolog.Nop()}
	err := cli.NewRootCmd(app).ExecuteContext(ctx)

	if cerr := app.Close(); cerr != nil {
		app.Logger.Error().Err(cerr).Msg("Failed to close store")
	}
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}
