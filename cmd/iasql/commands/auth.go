package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/iasql/cli/internal/app"
	"github.com/iasql/cli/internal/auth"
)

func loginCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Obtain and save credentials for the hosted IaSQL engine",
		Action: r.action(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
			return a.Auth.Login(ctx, auth.LoginOptions{
				PromptReauth:   true,
				NonInteractive: a.NonInteractive(cmd.Bool("noninteractive")),
			})
		}),
	}
}

func logoutCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Remove locally-stored credentials for the hosted IaSQL engine",
		Action: r.action(func(ctx context.Context, cmd *cli.Command, a *app.App) error {
			return a.Auth.Logout(ctx, a.NonInteractive(cmd.Bool("noninteractive")))
		}),
	}
}
