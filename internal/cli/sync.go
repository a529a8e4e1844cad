package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spoom/pkg/cache"
	"github.com/matzehuels/spoom/pkg/errors"
	"github.com/matzehuels/spoom/pkg/staging"
)

// syncCommand creates the command that reconciles staged files with the
// installed packages.
func (c *CLI) syncCommand() *cobra.Command {
	var noDump bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Stage public files of installed packages and regenerate the index",
		Long: `Compare the installed packages with the packages staged by the previous
run. New packages are installed, packages whose version or public map
changed are updated and packages that are gone are uninstalled. The
autoload index is regenerated afterwards unless --no-dump is given.`,
		Args: cobra.NoArgs,
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

			return ws.sync(ctx, tables, logger, !noDump)
		},
	}

	cmd.Flags().BoolVar(&noDump, "no-dump", false, "skip index regeneration")
	return cmd
}

// sync runs one staging reconciliation and optionally regenerates the
// index.
func (w *workspace) sync(ctx context.Context, tables cache.Cache, logger *log.Logger, dump bool) error {
	state, err := staging.LoadState(w.statePath())
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	spin := newSpinner(ctx, "Staging public files")
	spin.Start()
	sum, err := staging.Sync(ctx, w.project, w.installer(logger), state)
	spin.Stop()
	if err != nil {
		return err
	}
	if err := state.Save(w.statePath()); err != nil {
		return err
	}

	if sum.Changed() {
		prog.done("Staging synced")
		printSuccess("Synced staging directory")
		printKeyValue("directory", w.stagingDir())
		printStats(
			statCount{len(sum.Installed), "installed"},
			statCount{len(sum.Updated), "updated"},
			statCount{len(sum.Uninstalled), "uninstalled"},
			statCount{sum.Report.Copied, "copied"},
			statCount{sum.Report.Removed, "removed"},
			statCount{sum.Report.Failed, "failed"},
		)
	} else {
		printInfo("Staging directory is up to date")
	}

	if !dump {
		return nil
	}
	table, err := w.dump(ctx, tables, logger)
	if err != nil {
		return err
	}
	printSuccess("Generated autoload index with %d namespaces", table.Len())
	return nil
}

// installCommand creates the command that stages one installed package.
func (c *CLI) installCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install PACKAGE",
		Short: "Stage the public files of one installed package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			ws, err := c.openWorkspace()
			if err != nil {
				return err
			}
			name := args[0]
			pkg, ok := ws.project.Find(name)
			if !ok {
				return errors.New(errors.ErrCodeInvalidPackage, "package %s is not installed", name)
			}
			inst := ws.installer(logger)
			if !inst.Supports(pkg.Type) {
				return errors.New(errors.ErrCodeUnsupported, "package %s has type %q, which spoom does not stage", name, pkg.Type)
			}

			state, err := staging.LoadState(ws.statePath())
			if err != nil {
				return err
			}

			var res staging.Result
			if prev, ok := state.Packages[name]; ok {
				res = inst.Update(prev.Package(name), pkg, prev.Files)
			} else {
				res = inst.Install(pkg)
			}
			state.Packages[name] = staging.StagedPackage{
				Version: pkg.Version,
				Type:    pkg.Type,
				Public:  pkg.Extra.Spoom.Public,
				Files:   res.Staged,
			}
			if err := state.Save(ws.statePath()); err != nil {
				return err
			}

			printSuccess("Staged %s", name)
			printStats(
				statCount{res.Report.Copied, "copied"},
				statCount{res.Report.Skipped, "skipped"},
				statCount{res.Report.Removed, "removed"},
				statCount{res.Report.Failed, "failed"},
			)
			return nil
		},
	}
}

// uninstallCommand creates the command that unstages one package.
func (c *CLI) uninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall PACKAGE",
		Short: "Remove the staged files of one package",
		Long: `Remove the files staged for a package. The package does not need to be
installed anymore: the files recorded when it was staged are removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			ws, err := c.openWorkspace()
			if err != nil {
				return err
			}
			state, err := staging.LoadState(ws.statePath())
			if err != nil {
				return err
			}

			name := args[0]
			prev, ok := state.Packages[name]
			if !ok {
				printInfo("%s is not staged", name)
				return nil
			}

			res := ws.installer(logger).Uninstall(prev.Package(name), prev.Files)
			delete(state.Packages, name)
			if err := state.Save(ws.statePath()); err != nil {
				return err
			}

			printSuccess("Removed staged files of %s", name)
			printStats(
				statCount{res.Report.Removed, "removed"},
				statCount{res.Report.Failed, "failed"},
			)
			return nil
		},
	}
}
