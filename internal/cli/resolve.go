package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spoom/pkg/autoload"
	"github.com/matzehuels/spoom/pkg/source"
)

// resolveCommand creates the command that resolves symbols against the
// index.
func (c *CLI) resolveCommand() *cobra.Command {
	var explain bool

	cmd := &cobra.Command{
		Use:   "resolve SYMBOL...",
		Short: "Resolve class names against the autoload index",
		Long: `Resolve each fully qualified class, interface, trait or enum name the way
the runtime autoloader would, and print the file that declares it.

Files are scanned, never executed. Symbols resolved earlier in the same run
are reported without scanning again.`,
		Example: `  spoom resolve 'Acme\Shop\Cart'
  spoom resolve --explain 'Acme\Shop\LegacyCart_Item'`,
		Args: cobra.MinimumNArgs(1),
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

			rt := source.NewRuntime(logger)
			chain := autoload.NewChain()
			opts := append(ws.resolverOptions(tables, logger), autoload.WithChain(chain))
			r, err := autoload.Open(ctx, ws.indexPath(), rt, rt, opts...)
			if err != nil {
				return err
			}
			r.Attach(false)
			defer r.Detach()

			missed := 0
			for _, symbol := range args {
				ok, err := chain.Resolve(symbol)
				if err != nil {
					return err
				}
				if ok {
					origin, _ := rt.Origin(symbol)
					printSuccess("%s", StyleHighlight.Render(symbol))
					printFile(origin)
				} else {
					missed++
					printWarning("%s not found", symbol)
				}
				if explain {
					for _, attempt := range r.Attempts(symbol) {
						printDetail("%s", attempt)
					}
				}
			}

			if missed > 0 {
				return fmt.Errorf("%d of %d symbols unresolved", missed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&explain, "explain", "x", false, "list every file the resolver tries")
	return cmd
}
