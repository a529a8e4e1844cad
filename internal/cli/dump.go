package cli

import (
	"github.com/spf13/cobra"
)

// dumpCommand creates the command that regenerates the autoload index.
func (c *CLI) dumpCommand() *cobra.Command {
	var noPHP bool

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Regenerate the autoload index",
		Long: `Collect the PSR-4 declarations of the root package and every installed
package of a recognized type and write a fresh index. The previous index is
replaced, and its cached copy is invalidated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			ws, err := c.openWorkspace()
			if err != nil {
				return err
			}
			if noPHP {
				ws.config.Autoload.PHP = false
			}

			tables, err := c.openCache(ctx, ws.config)
			if err != nil {
				return err
			}
			defer tables.Close()

			prog := newProgress(logger)
			table, err := ws.dump(ctx, tables, logger)
			if err != nil {
				return err
			}
			prog.done("Index generated")

			printSuccess("Generated autoload index with %d namespaces", table.Len())
			printFile(ws.indexPath())
			if ws.config.Autoload.PHP {
				printFile(ws.phpIndexPath())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noPHP, "no-php", false, "skip the PHP array artifact")
	return cmd
}
