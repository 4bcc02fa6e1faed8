package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/iasql/cli/internal/api"
	"github.com/iasql/cli/internal/app"
	"github.com/iasql/cli/internal/ui"
)

func dbsCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:    "dbs",
		Aliases: []string{"databases"},
		Usage:   "List all hosted dbs",
		Action: r.action(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
			if err := a.Login(ctx, cmd.Bool("noninteractive")); err != nil {
				return err
			}
			dbs, err := a.API.ListDBs(ctx)
			if err != nil {
				return fmt.Errorf("failed to get all hosted dbs: %w", err)
			}
			if len(dbs) == 0 {
				ui.Warn(a.Out, ui.Bold("No hosted db to manage a cloud account has been created"))
				return nil
			}
			rows := make([][]string, 0, len(dbs))
			for _, db := range dbs {
				rows = append(rows, []string{db})
			}
			ui.WriteTable(a.Out, []string{"Hosted Database Name"}, rows)
			return nil
		}),
	}
}

func newCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Connect a hosted db to a cloud account",
		ArgsUsage: "[db]",
		Flags:     awsFlags(),
		Action: r.action(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
			nonInteractive := a.NonInteractive(cmd.Bool("noninteractive"))
			if err := a.Login(ctx, nonInteractive); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(a.Out, ui.Bold("Connect a cloud account to a hosted IaSQL DB...")+"\n")
			acct, err := awsCredentials(cmd, a, nonInteractive)
			if err != nil {
				return err
			}
			name, err := newDBName(ctx, a, cmd.Args().First(), nonInteractive)
			if err != nil {
				return err
			}

			db, err := a.API.NewDB(ctx, api.NewDBRequest{
				DBAlias:            name,
				AWSRegion:          acct.region,
				AWSAccessKeyID:     acct.accessKeyID,
				AWSSecretAccessKey: acct.secretAccessKey,
			})
			if err != nil {
				return fmt.Errorf("failed to add new db %s: %w", name, err)
			}

			if db.Alias == name {
				ui.Success(a.Out, ui.Bold("Done provisioning hosted db"))
			} else {
				ui.Success(a.Out, ui.Bold("Done provisioning hosted db"), ui.Green(db.Alias))
			}
			printNewDB(a, db)

			if nonInteractive {
				return nil
			}
			mods, err := modsToInstall(ctx, a, db.Alias, nil, nonInteractive)
			if err != nil {
				return ignoreNothingToChange(err)
			}
			return installModules(ctx, a, db.Alias, mods, nonInteractive)
		}),
	}
}

func importCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Create a hosted db from a dump file",
		ArgsUsage: "[db] [dump_file]",
		Flags:     awsFlags(),
		Action: r.action(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
			nonInteractive := a.NonInteractive(cmd.Bool("noninteractive"))
			if err := a.Login(ctx, nonInteractive); err != nil {
				return err
			}

			name, err := newDBName(ctx, a, cmd.Args().Get(0), nonInteractive)
			if err != nil {
				return err
			}
			dumpFile, err := argOrInput(a, cmd.Args().Get(1), "Dump file", nonInteractive)
			if err != nil {
				return err
			}
			dump, err := os.ReadFile(dumpFile)
			if err != nil {
				return fmt.Errorf("failed to parse dump file %s: %w", dumpFile, err)
			}
			acct, err := awsCredentials(cmd, a, nonInteractive)
			if err != nil {
				return err
			}

			db, err := a.API.ImportDB(ctx, api.ImportRequest{
				NewDBRequest: api.NewDBRequest{
					DBAlias:            name,
					AWSRegion:          acct.region,
					AWSAccessKeyID:     acct.accessKeyID,
					AWSSecretAccessKey: acct.secretAccessKey,
				},
				Dump: string(dump),
			})
			if err != nil {
				return fmt.Errorf("failed to import db %s: %w", name, err)
			}
			ui.Success(a.Out, ui.Bold("Done"))
			printNewDB(a, db)
			return nil
		}),
	}
}

func removeCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "Remove a hosted db to stop managing the connected cloud account",
		ArgsUsage: "[db]",
		Action: r.action(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
			nonInteractive := a.NonInteractive(cmd.Bool("noninteractive"))
			if err := a.Login(ctx, nonInteractive); err != nil {
				return err
			}
			db, err := resolveDB(ctx, a, cmd.Args().First(), nonInteractive)
			if err != nil {
				return ignoreNoDBs(err)
			}
			ok, err := confirm(a, nonInteractive, "Press enter to confirm removal", "Did not remove db", db)
			if err != nil || !ok {
				return err
			}
			if err := a.API.RemoveDB(ctx, db); err != nil {
				return fmt.Errorf("failed to remove db %s: %w", db, err)
			}
			ui.Success(a.Out, ui.Bold("Done"))
			return nil
		}),
	}
}

func applyCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "apply",
		Usage:     "Create, delete or update the cloud resources in a hosted db",
		ArgsUsage: "[db]",
		Action: r.action(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
			return runPlan(ctx, cmd, a, "apply", func(ctx context.Context, db string) (*api.Plan, error) {
				return a.API.Apply(ctx, db, false)
			})
		}),
	}
}

func planCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "Display a preview of the resources in a db to be modified on the next `apply`",
		ArgsUsage: "[db]",
		Action: r.action(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
			return runPlan(ctx, cmd, a, "plan", func(ctx context.Context, db string) (*api.Plan, error) {
				return a.API.Apply(ctx, db, true)
			})
		}),
	}
}

func syncCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Synchronize a hosted db with the current state of the cloud account",
		ArgsUsage: "[db]",
		Action: r.action(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
			return runPlan(ctx, cmd, a, "sync", a.API.Sync)
		}),
	}
}

// runPlan resolves the db, confirms and prints the plan returned by run.
func runPlan(ctx context.Context, cmd *cli.Command, a *app.App, verb string, run func(context.Context, string) (*api.Plan, error)) error {
	nonInteractive := a.NonInteractive(cmd.Bool("noninteractive"))
	if err := a.Login(ctx, nonInteractive); err != nil {
		return err
	}
	db, err := resolveDB(ctx, a, cmd.Args().First(), nonInteractive)
	if err != nil {
		return ignoreNoDBs(err)
	}
	ok, err := confirm(a, nonInteractive, "Press enter to confirm "+verb, "Did not run "+verb+" on db", db)
	if err != nil || !ok {
		return err
	}

	plan, err := run(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to run %s on db %s: %w", verb, db, err)
	}
	printPlan(a.Out, plan)
	if verb != "plan" {
		ui.Success(a.Out, ui.Bold("Done"))
	}
	return nil
}

func exportCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Dump a hosted db to backup the infrastructure in the connected account",
		ArgsUsage: "[db] [dump_file]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "data-only",
				Usage: "dump only the data, not the schema",
			},
		},
		Action: r.action(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
			nonInteractive := a.NonInteractive(cmd.Bool("noninteractive"))
			if err := a.Login(ctx, nonInteractive); err != nil {
				return err
			}
			db, err := resolveDB(ctx, a, cmd.Args().Get(0), nonInteractive)
			if err != nil {
				return ignoreNoDBs(err)
			}
			dumpFile, err := argOrInput(a, cmd.Args().Get(1), "Dump file", nonInteractive)
			if err != nil {
				return err
			}
			if !strings.HasSuffix(dumpFile, ".sql") {
				dumpFile += ".sql"
			}

			dump, err := a.API.Export(ctx, db, cmd.Bool("data-only"))
			if err != nil {
				return fmt.Errorf("failed to export hosted db %s: %w", db, err)
			}
			if err := os.WriteFile(dumpFile, []byte(dump), 0o600); err != nil {
				return fmt.Errorf("failed to export hosted db %s: %w", db, err)
			}
			ui.Success(a.Out, ui.Bold("Done"), dumpFile)
			return nil
		}),
	}
}

// argOrInput returns arg, or asks for a required value.
func argOrInput(a *app.App, arg, title string, nonInteractive bool) (string, error) {
	if arg != "" {
		return arg, nil
	}
	if nonInteractive {
		return "", fmt.Errorf("%s argument required in non-interactive mode", strings.ToLower(title))
	}
	value, err := a.Prompter.Input(title, false)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(title), err)
	}
	return value, nil
}

// printNewDB shows the connection details of a freshly provisioned db.
func printNewDB(a *app.App, db *api.DB) {
	server := a.Config.DBServer()
	ui.WriteTable(a.Out,
		[]string{"Database Server", "Database Name", "Username", "Password"},
		[][]string{{server, db.ID, db.User, db.Password}},
	)
	connStr := fmt.Sprintf("postgres://%s:%s@%s/%s", db.User, db.Password, server, db.ID)
	ui.Success(a.Out, ui.Bold("As a PG connection string"), ui.Bold(connStr))
	ui.Warn(a.Out, ui.Bold("This is the only time we will show you these credentials, be sure to save them."))
}
