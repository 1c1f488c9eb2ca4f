package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/kimaideck/internal/app"
)

const version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand(app.Run).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "kimaideck: %v\n", err)
		return 1
	}
	return 0
}

type runFunc func(ctx context.Context, opts app.Options) error

func newRootCommand(runApp runFunc) *cobra.Command {
	var opts app.Options
	root := &cobra.Command{
		Use:           "kimaideck <config>",
		Short:         "Drive Kimai time tracking from a grid of image keys",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			opts.ConfigPath = args[0]
			return runApp(cmd.Context(), opts)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.Driver, "driver", "", "device driver: terminal or evdev (overrides device.driver)")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn or error (overrides log.level)")
	flags.StringVar(&opts.LogFile, "log-file", "", "write logs to this file (overrides log.file)")
	flags.StringVar(&opts.Preview, "preview", "", "serve a tile preview on this address, e.g. :8081 (overrides preview.listen)")
	return root
}
