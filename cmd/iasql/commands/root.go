package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/iasql/cli/internal/app"
	"github.com/iasql/cli/internal/observability"
)

// runner builds the App for each command invocation.
type runner struct {
	environ func() []string
	opts    []app.Option
}

type actionFunc func(ctx context.Context, cmd *cli.Command, a *app.App) error

// Execute runs the root command with the given context and arguments. Options
// are applied to the App created for the invoked command.
func Execute(ctx context.Context, args []string, opts ...app.Option) error {
	r := &runner{environ: os.Environ, opts: opts}

	cmd := &cli.Command{
		Name:  "iasql",
		Usage: "Manage cloud infrastructure through hosted IaSQL dbs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file (default ~/.iasql/config.toml when present)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: string(app.DefaultConfigLogLevel),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: string(app.DefaultConfigLogFormat),
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "IaSQL environment (local|production)",
				Value: string(app.DefaultConfigEnv),
			},
			&cli.BoolFlag{
				Name:  "noninteractive",
				Usage: "never prompt; fail when input is missing",
			},
			&cli.StringFlag{
				Name:  "auth--storage",
				Usage: "token storage (file|keyring)",
				Value: string(app.DefaultConfigAuthStorage),
			},
			&cli.StringFlag{
				Name:  "auth--file",
				Usage: "token file path (default ~/.iasql/.token)",
			},
			&cli.BoolFlag{
				Name:  "auth--show-qr",
				Usage: "show the verification URL as a QR code during login",
			},
			&cli.DurationFlag{
				Name:  "auth--poll-timeout",
				Usage: "give up waiting for browser authorization after this long (0 waits indefinitely)",
			},
			&cli.StringFlag{
				Name:  "api--base-url",
				Usage: "IaSQL API base URL (default derived from --env)",
			},
			&cli.StringFlag{
				Name:  "telemetry--exporter",
				Usage: "log exporter (none|stdout|otlp-http|otlp-grpc)",
				Value: observability.ExporterNone,
			},
		},
		Commands: []*cli.Command{
			newCommand(r),
			importCommand(r),
			removeCommand(r),
			dbsCommand(r),
			applyCommand(r),
			planCommand(r),
			syncCommand(r),
			installCommand(r),
			uninstallCommand(r),
			modsCommand(r),
			exportCommand(r),
			loginCommand(r),
			logoutCommand(r),
		},
	}

	return cmd.Run(ctx, args)
}

// action loads the config, sets up logging and creates the App before
// running fn.
func (r *runner) action(fn actionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		configPath := cmd.String("config")
		if configPath == "" {
			configPath = defaultConfigPath()
		}
		cfg, err := loadConfig(configPath, cmd, r.environ)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Set up observability before creating app
		shutdown, err := observability.Instrument(ctx, observability.Options{
			Level:    string(cfg.LogLevel),
			Format:   string(cfg.LogFormat),
			Exporter: cfg.Telemetry.Exporter,
		})
		if err != nil {
			return fmt.Errorf("failed to set up observability layer: %w", err)
		}
		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				slog.WarnContext(ctx, "flushing logs failed", "error", err)
			}
		}()

		application, err := app.New(cfg, r.opts...)
		if err != nil {
			return fmt.Errorf("failed to create app: %w", err)
		}

		slog.DebugContext(ctx, "running command", "command", cmd.Name, "env", cfg.Env, "api", cfg.APIBaseURL())
		err = fn(ctx, cmd, application)
		if errors.Is(err, app.ErrNotLoggedIn) {
			slog.DebugContext(ctx, "login declined", "command", cmd.Name)
			return nil
		}
		return err
	}
}
