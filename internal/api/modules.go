package api

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"
)

type moduleChange struct {
	List    []string `json:"list"`
	DBAlias string   `json:"dbAlias"`
}

// ListModules returns every module the engine offers.
func (c *Client) ListModules(ctx context.Context) ([]Module, error) {
	var mods []Module
	if err := c.get(ctx, "mod/list", nil, &mods); err != nil {
		return nil, err
	}
	return mods, nil
}

// InstalledModules returns the modules installed in db.
func (c *Client) InstalledModules(ctx context.Context, db string) ([]Module, error) {
	var mods []Module
	if err := c.get(ctx, "mod/list", url.Values{"dbAlias": {db}}, &mods); err != nil {
		return nil, err
	}
	return mods, nil
}

// InstallModules installs the named modules in db.
func (c *Client) InstallModules(ctx context.Context, db string, names []string) error {
	return c.post(ctx, "mod/install", moduleChange{List: names, DBAlias: db}, nil)
}

// UninstallModules removes the named modules from db.
func (c *Client) UninstallModules(ctx context.Context, db string, names []string) error {
	return c.post(ctx, "mod/remove", moduleChange{List: names, DBAlias: db}, nil)
}

// ModuleState fetches the module catalogue and the modules installed in db
// concurrently.
func (c *Client) ModuleState(ctx context.Context, db string) (all, installed []Module, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mods, err := c.ListModules(gctx)
		if err != nil {
			return fmt.Errorf("listing modules: %w", err)
		}
		all = mods
		return nil
	})
	g.Go(func() error {
		mods, err := c.InstalledModules(gctx, db)
		if err != nil {
			return fmt.Errorf("listing modules installed in %s: %w", db, err)
		}
		installed = mods
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return all, installed, nil
}

// NotInstalled returns the names of modules in all that are missing from installed.
func NotInstalled(all, installed []Module) []string {
	have := make(map[string]bool, len(installed))
	for _, m := range installed {
		have[m.Name] = true
	}
	var names []string
	for _, m := range all {
		if !have[m.Name] {
			names = append(names, m.Name)
		}
	}
	return names
}
