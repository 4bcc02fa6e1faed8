package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/iasql/cli/internal/api"
	"github.com/iasql/cli/internal/app"
	"github.com/iasql/cli/internal/prompt"
	"github.com/iasql/cli/internal/ui"
)

// errNothingToChange signals that no module can be installed or removed.
var errNothingToChange = errors.New("nothing to change")

func modsCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "mods",
		Aliases:   []string{"modules"},
		Usage:     "List all modules or list the modules installed in a given hosted db",
		ArgsUsage: "[db]",
		Action: r.action(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
			if err := a.Login(ctx, cmd.Bool("noninteractive")); err != nil {
				return err
			}

			var (
				mods []api.Module
				err  error
			)
			if db := cmd.Args().First(); db != "" {
				mods, err = a.API.InstalledModules(ctx, db)
			} else {
				mods, err = a.API.ListModules(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to list modules: %w", err)
			}

			rows := make([][]string, 0, len(mods))
			for _, m := range mods {
				rows = append(rows, []string{m.Name, m.Version, strings.Join(m.Dependencies, ", ")})
			}
			ui.WriteTable(a.Out, []string{"Module Name", "Version", "Dependencies"}, rows)
			return nil
		}),
	}
}

func moduleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "db",
			Usage: "hosted db to change",
		},
	}
}

func installCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "install",
		Usage:     "Install mods in a given hosted db",
		ArgsUsage: "[modules...]",
		Flags:     moduleFlags(),
		Action: r.action(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
			nonInteractive := a.NonInteractive(cmd.Bool("noninteractive"))
			if err := a.Login(ctx, nonInteractive); err != nil {
				return err
			}
			db, err := resolveDB(ctx, a, cmd.String("db"), nonInteractive)
			if err != nil {
				return ignoreNoDBs(err)
			}
			mods, err := modsToInstall(ctx, a, db, cmd.Args().Slice(), nonInteractive)
			if err != nil {
				return ignoreNothingToChange(err)
			}
			return installModules(ctx, a, db, mods, nonInteractive)
		}),
	}
}

func uninstallCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "uninstall",
		Usage:     "Uninstall mods from a given hosted db",
		ArgsUsage: "[modules...]",
		Flags:     moduleFlags(),
		Action: r.action(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
			nonInteractive := a.NonInteractive(cmd.Bool("noninteractive"))
			if err := a.Login(ctx, nonInteractive); err != nil {
				return err
			}
			db, err := resolveDB(ctx, a, cmd.String("db"), nonInteractive)
			if err != nil {
				return ignoreNoDBs(err)
			}
			mods, err := modsToRemove(ctx, a, db, cmd.Args().Slice(), nonInteractive)
			if err != nil {
				return ignoreNothingToChange(err)
			}

			ok, err := confirm(a, nonInteractive, "Press enter to confirm uninstall", "Did not uninstall modules from db", db)
			if err != nil || !ok {
				return err
			}
			if err := a.API.UninstallModules(ctx, db, mods); err != nil {
				return fmt.Errorf("failed to uninstall modules from db %s: %w", db, err)
			}
			ui.Success(a.Out, ui.Bold("Done"))
			return nil
		}),
	}
}

// modsToInstall returns given, or lets the user pick from the modules not yet
// installed in db.
func modsToInstall(ctx context.Context, a *app.App, db string, given []string, nonInteractive bool) ([]string, error) {
	if len(given) > 0 {
		return given, nil
	}
	if nonInteractive {
		return nil, errors.New("modules to install must be given in non-interactive mode")
	}
	all, installed, err := a.API.ModuleState(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to get modules: %w", err)
	}
	candidates := api.NotInstalled(all, installed)
	if len(candidates) == 0 {
		ui.Warn(a.Out, ui.Bold("All modules are already installed"), ui.Yellow(db))
		return nil, errNothingToChange
	}
	return pickModules(a, "Pick modules to install", candidates)
}

// modsToRemove returns given, or lets the user pick from the modules
// installed in db.
func modsToRemove(ctx context.Context, a *app.App, db string, given []string, nonInteractive bool) ([]string, error) {
	if len(given) > 0 {
		return given, nil
	}
	if nonInteractive {
		return nil, errors.New("modules to uninstall must be given in non-interactive mode")
	}
	installed, err := a.API.InstalledModules(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to get modules: %w", err)
	}
	if len(installed) == 0 {
		ui.Warn(a.Out, ui.Bold("No modules installed"), ui.Yellow(db))
		return nil, errNothingToChange
	}
	names := make([]string, 0, len(installed))
	for _, m := range installed {
		names = append(names, m.Name)
	}
	return pickModules(a, "Pick modules to uninstall", names)
}

func pickModules(a *app.App, message string, names []string) ([]string, error) {
	picked, err := a.Prompter.MultiSelect(message, names)
	if errors.Is(err, prompt.ErrNoSelection) {
		return nil, errNothingToChange
	}
	if err != nil {
		return nil, fmt.Errorf("selecting modules: %w", err)
	}
	mods := make([]string, 0, len(picked))
	for _, i := range picked {
		mods = append(mods, names[i])
	}
	return mods, nil
}

func installModules(ctx context.Context, a *app.App, db string, mods []string, nonInteractive bool) error {
	ok, err := confirm(a, nonInteractive, "Press enter to confirm install", "Did not install modules in db", db)
	if err != nil || !ok {
		return err
	}
	if err := a.API.InstallModules(ctx, db, mods); err != nil {
		return fmt.Errorf("failed to install modules in db %s: %w", db, err)
	}
	ui.Success(a.Out, ui.Bold("Done"))
	return nil
}

func ignoreNothingToChange(err error) error {
	if errors.Is(err, errNothingToChange) {
		return nil
	}
	return err
}
