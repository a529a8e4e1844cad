package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spoom/pkg/errors"
	"github.com/matzehuels/spoom/pkg/watch"
)

// watchCommand creates the command that syncs on every metadata change.
func (c *CLI) watchCommand() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run sync whenever composer.json, installed.json or spoom.toml changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			ws, err := c.openWorkspace()
			if err != nil {
				return err
			}
			tables, err := c.openCache(ctx, ws.config)
			if err != nil {
				return err
			}
			defer tables.Close()

			if err := ws.sync(ctx, tables, logger, true); err != nil {
				return err
			}

			w, err := watch.New(watch.Config{
				Files:    ws.watchedFiles(),
				Debounce: debounce,
				Logger:   logger,
				OnChange: func(ctx context.Context, changed []string) error {
					logger.Info("Metadata changed", "files", changed)
					// Reload: the vendor directory or staging directory may
					// have moved.
					next, err := c.openWorkspace()
					if err != nil {
						logger.Error("Reload failed", "err", errors.UserMessage(err))
						return nil
					}
					return next.sync(ctx, tables, logger, true)
				},
			})
			if err != nil {
				return err
			}

			printInfo("Watching for changes (Ctrl+C to stop)")
			for _, f := range ws.watchedFiles() {
				printFile(f)
			}
			return w.Run(ctx)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before a sync starts")
	return cmd
}
