package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spoom/pkg/autoload"
)

// indexCommand creates the command that lists the current index.
func (c *CLI) indexCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "List the entries of the autoload index",
		Long:  `Print the index entries in lookup order: longest prefix first.`,
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

			table, err := autoload.ReadTable(ctx, ws.indexPath(), tables, ws.config.Cache.TTL.Duration, logger)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(table.Entries)
			}
			printIndex(table)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}

// printIndex prints one aligned line per entry.
func printIndex(t *autoload.Table) {
	if t.Len() == 0 {
		printInfo("Index is empty")
		printNextStep("Generate it with", appName+" dump")
		return
	}

	width := 0
	for _, e := range t.Entries {
		width = max(width, lipgloss.Width(e.Prefix))
	}
	prefixStyle := StyleHighlight.Width(width + 2)

	fmt.Println(StyleTitle.Render(fmt.Sprintf("%d namespaces", t.Len())))
	for _, e := range t.Entries {
		fmt.Println(prefixStyle.Render(e.Prefix) + StyleDim.Render("depth "+strconv.Itoa(e.Depth)+"  ") + StyleValue.Render(e.Directory))
	}
}
