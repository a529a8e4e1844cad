package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/spoom/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The CLI's logger is attached to the command context before any
// subcommand runs and is available through loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Spoom builds and serves a namespace-prefix autoload index",
		Long: `Spoom reads the PSR-4 declarations of a Composer project and its installed
packages, writes a namespace-prefix index next to the vendor directory and
resolves class names against it. It also stages the public files that
spoom packages declare.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVarP(&c.projectDir, "project", "C", "", "project root containing composer.json (default: current directory)")
	flags.StringVar(&c.vendorDir, "vendor-dir", "", "vendor directory (default: composer.json config.vendor-dir, else vendor)")
	flags.BoolVar(&c.noCache, "no-cache", false, "bypass the index table cache")

	root.AddCommand(c.dumpCommand())
	root.AddCommand(c.indexCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.syncCommand())
	root.AddCommand(c.installCommand())
	root.AddCommand(c.uninstallCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// versionCommand prints the build information.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(buildinfo.String())
		},
	}
}
