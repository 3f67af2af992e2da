package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/specialistvlad/nmgraph/internal/app"
	"github.com/specialistvlad/nmgraph/internal/cli"
	"github.com/specialistvlad/nmgraph/internal/hcl_adapter"
	"github.com/specialistvlad/nmgraph/internal/localsession"
)

// main is the entrypoint for the nmgraph application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	nmApp, err := app.NewApp(outW, appConfig, hcl_adapter.NewLoader(), &localsession.SessionFactory{})
	if err != nil {
		return fmt.Errorf("application startup failed: %w", err)
	}
	return nmApp.Run(ctx)
}
