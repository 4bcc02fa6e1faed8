package api

import (
	"context"
	"net/url"
)

// ListDBs returns the aliases of the user's hosted dbs.
func (c *Client) ListDBs(ctx context.Context) ([]string, error) {
	var dbs []string
	if err := c.get(ctx, "db/list", nil, &dbs); err != nil {
		return nil, err
	}
	return dbs, nil
}

// NewDB provisions a hosted db.
func (c *Client) NewDB(ctx context.Context, req NewDBRequest) (*DB, error) {
	var db DB
	if err := c.post(ctx, "db/new", req, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// ImportDB provisions a hosted db from a SQL dump.
func (c *Client) ImportDB(ctx context.Context, req ImportRequest) (*DB, error) {
	var db DB
	if err := c.post(ctx, "db/import", req, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// RemoveDB deletes a hosted db.
func (c *Client) RemoveDB(ctx context.Context, db string) error {
	return c.get(ctx, "db/remove/"+url.PathEscape(db), nil, nil)
}

// Apply pushes the hosted db state to the cloud account. With dryRun the
// plan is computed but nothing changes.
func (c *Client) Apply(ctx context.Context, db string, dryRun bool) (*Plan, error) {
	body := map[string]any{"dbAlias": db}
	if dryRun {
		body["dryRun"] = true
	}
	var plan Plan
	if err := c.post(ctx, "db/apply/", body, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Sync pulls the cloud account state into the hosted db.
func (c *Client) Sync(ctx context.Context, db string) (*Plan, error) {
	var plan Plan
	if err := c.post(ctx, "db/sync/", map[string]any{"dbAlias": db}, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Export returns a SQL dump of the hosted db.
func (c *Client) Export(ctx context.Context, db string, dataOnly bool) (string, error) {
	var dump string
	if err := c.post(ctx, "db/export/", map[string]any{"dbAlias": db, "dataOnly": dataOnly}, &dump); err != nil {
		return "", err
	}
	return dump, nil
}
