package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recera/nodeflow/cmd/nodeflow/internal/ui"
	"github.com/recera/nodeflow/pkg/editor"
)

func newTUICommand(root *rootOptions) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the editor in the terminal",
		Long: `Runs the editor full screen in the terminal. Drag node headers with the
mouse, drag from an output port to an input to wire them, double-click an
input to disconnect it and press n to add a node. Press ? for all keys.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			// the screen belongs to the UI, so logs go to a file or nowhere
			log := zap.NewNop()
			if logFile != "" {
				if log, err = newLogger(cfg.Log, logFile); err != nil {
					return err
				}
				defer log.Sync()
			}

			opts := cfg.EditorOptions()
			opts.Logger = log.Named("editor")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()
			return ui.Run(ctx, editor.New(&opts), log)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
	return cmd
}
