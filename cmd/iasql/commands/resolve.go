package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/iasql/cli/internal/app"
	"github.com/iasql/cli/internal/ui"
)

// errNoDBs signals that the user has no hosted db. Commands report it as a
// warning and exit successfully.
var errNoDBs = errors.New("no hosted db")

// resolveDB returns name when it is one of the user's hosted dbs. Without a
// name the only db is picked, or the user selects one.
func resolveDB(ctx context.Context, a *app.App, name string, nonInteractive bool) (string, error) {
	dbs, err := a.API.ListDBs(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get all hosted dbs: %w", err)
	}
	if len(dbs) == 0 {
		ui.Warn(a.Out, ui.Bold("No hosted db to manage a cloud account has been created"))
		return "", errNoDBs
	}

	if name != "" {
		if !slices.Contains(dbs, name) {
			return "", fmt.Errorf("nonexistent hosted db %q", name)
		}
		return name, nil
	}

	if len(dbs) == 1 {
		ui.Success(a.Out, ui.Bold("IaSQL db"), ui.Green(dbs[0]))
		return dbs[0], nil
	}
	if nonInteractive {
		return "", errors.New("several hosted dbs exist; name one in non-interactive mode")
	}
	i, err := a.Prompter.Select("Pick hosted IaSQL db", dbs, 0)
	if err != nil {
		return "", fmt.Errorf("selecting hosted db: %w", err)
	}
	return dbs[i], nil
}

// newDBName returns name, or asks for an optional one, and checks that no
// hosted db uses it yet.
func newDBName(ctx context.Context, a *app.App, name string, nonInteractive bool) (string, error) {
	if name == "" && !nonInteractive {
		var err error
		name, err = a.Prompter.Input("Optional db name", true)
		if err != nil {
			return "", fmt.Errorf("reading db name: %w", err)
		}
	}

	dbs, err := a.API.ListDBs(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get all hosted dbs: %w", err)
	}
	if name != "" && slices.Contains(dbs, name) {
		return "", fmt.Errorf("name already in use by another hosted db: %s", name)
	}
	return name, nil
}

// confirm asks message unless nonInteractive. A declined confirmation prints
// declined with the db name.
func confirm(a *app.App, nonInteractive bool, message, declined, db string) (bool, error) {
	if nonInteractive {
		return true, nil
	}
	ok, err := a.Prompter.Confirm(message, true)
	if err != nil {
		return false, err
	}
	if !ok {
		ui.Warn(a.Out, ui.Bold(declined), ui.Yellow(db))
	}
	return ok, nil
}

// ignoreNoDBs turns errNoDBs into success.
func ignoreNoDBs(err error) error {
	if errors.Is(err, errNoDBs) {
		return nil
	}
	return err
}
