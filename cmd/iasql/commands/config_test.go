package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/iasql/cli/internal/app"
)

// loadWithArgs runs a command carrying the root flags and loads the config
// inside its action.
func loadWithArgs(t *testing.T, configPath string, environ []string, args ...string) (*app.Config, error) {
	t.Helper()
	var (
		cfg     *app.Config
		loadErr error
	)
	cmd := &cli.Command{
		Name: "iasql",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level"},
			&cli.StringFlag{Name: "env"},
			&cli.BoolFlag{Name: "noninteractive"},
			&cli.BoolFlag{Name: "auth--show-qr"},
			&cli.DurationFlag{Name: "auth--poll-timeout"},
			&cli.StringFlag{Name: "db"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, loadErr = loadConfig(configPath, cmd, func() []string { return environ })
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"iasql"}, args...)))
	return cfg, loadErr
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadWithArgs(t, "", nil)
	require.NoError(t, err)
	assert.Equal(t, app.EnvironmentProduction, cfg.Env)
	assert.Equal(t, app.LogLevelWarn, cfg.LogLevel)
	assert.False(t, cfg.NonInteractive)
	assert.Equal(t, "https://api.iasql.com/api/v1", cfg.APIBaseURL())
}

func TestLoadConfigPrecedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configPath := filepath.Join(home, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
log_level = "info"
env = "local"

[auth]
file = "~/custom/.token"
show_qr = true
poll_timeout = "2m"

[api]
retry_max = 4
`), 0o600))

	t.Run("file only", func(t *testing.T) {
		cfg, err := loadWithArgs(t, configPath, nil)
		require.NoError(t, err)
		assert.Equal(t, app.LogLevelInfo, cfg.LogLevel)
		assert.Equal(t, app.EnvironmentLocal, cfg.Env)
		assert.Equal(t, filepath.Join(home, "custom", ".token"), cfg.Auth.File)
		assert.True(t, cfg.Auth.ShowQR)
		assert.Equal(t, 2*time.Minute, cfg.Auth.PollTimeout)
		assert.Equal(t, 4, cfg.API.RetryMax)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		cfg, err := loadWithArgs(t, configPath, []string{
			"IASQL_ENV=production",
			"IASQL_NONINTERACTIVE=true",
			"IASQL_API__BASE_URL=http://127.0.0.1:9999/api/v1",
			"AUTH_TOKEN=ignored",
		})
		require.NoError(t, err)
		assert.Equal(t, app.EnvironmentProduction, cfg.Env)
		assert.True(t, cfg.NonInteractive)
		assert.Equal(t, "http://127.0.0.1:9999/api/v1", cfg.APIBaseURL())
		assert.Equal(t, app.LogLevelInfo, cfg.LogLevel)
	})

	t.Run("flags override environment", func(t *testing.T) {
		cfg, err := loadWithArgs(t, configPath, []string{"IASQL_LOG_LEVEL=error"},
			"--log-level", "debug", "--auth--poll-timeout", "30s", "--db", "alpha")
		require.NoError(t, err)
		assert.Equal(t, app.LogLevelDebug, cfg.LogLevel)
		assert.Equal(t, 30*time.Second, cfg.Auth.PollTimeout)
		assert.Equal(t, app.EnvironmentLocal, cfg.Env)
	})
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := loadWithArgs(t, "", []string{"IASQL_ENV=staging"})
	assert.Error(t, err)

	_, err = loadWithArgs(t, filepath.Join(t.TempDir(), "missing.toml"), nil)
	assert.Error(t, err)
}

func TestDefaultConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Empty(t, defaultConfigPath())

	path := filepath.Join(home, ".iasql", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(`env = "local"`), 0o600))
	assert.Equal(t, path, defaultConfigPath())
}
