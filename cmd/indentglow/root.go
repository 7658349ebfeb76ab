package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/indentglow/internal/app"
	"github.com/dshills/indentglow/internal/logging"
	"github.com/dshills/indentglow/internal/plugin/lua"
	"github.com/dshills/indentglow/internal/renderer/backend"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	lua.Version = version

	root := &cobra.Command{
		Use:   "indentglow [file]",
		Short: "Terminal editor with rainbow indentation",
		Long: `indentglow opens a file in a small terminal editor that colours each
level of leading indentation, cycling through seven translucent colours.

Keys: arrows move, Ctrl-S saves, Ctrl-Q quits.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.logLevel == "" {
				return nil
			}
			if _, ok := logging.ParseLevel(flags.logLevel); !ok {
				return fmt.Errorf("invalid log level %q (use debug, info, warn or error)", flags.logLevel)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.Options{
				ConfigPath: flags.configPath,
				LogLevel:   flags.logLevel,
				Watch:      true,
			}
			if len(args) == 1 {
				opts.File = args[0]
			}
			return runEditor(opts)
		},
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "",
		"config file (default: $XDG_CONFIG_HOME/indentglow/config.toml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	root.AddCommand(newScanCmd(flags), newVersionCmd())
	return root
}

func runEditor(opts app.Options) error {
	application, err := app.New(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer application.Close()

	term, err := backend.NewTerminal()
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}
	if err := application.SetBackend(term); err != nil {
		return fmt.Errorf("failed to set backend: %w", err)
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		if _, ok := <-signals; ok {
			application.Shutdown()
		}
	}()

	return application.Run()
}
