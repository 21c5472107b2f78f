// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/navscribe/internal/config"
	"github.com/xkilldash9x/navscribe/internal/observability"
)

// execute runs a fresh command tree and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// createTempConfig writes a config file that keeps logs out of the working directory.
func createTempConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "logger:\n  level: fatal\n  log_file: " + filepath.Join(dir, "navscribe.log") + "\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRootCmd_VersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "navscribe version "+Version)
}

func TestRootCmd_NoArgs(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "captures the navigation elements you click")
	for _, sub := range []string{"serve", "record", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "navscribe "+Version)
}

func TestRecordCmd_TooManyArgs(t *testing.T) {
	_, err := execute(t, "record", "https://a.example", "https://b.example")
	assert.Error(t, err)
}

func TestConfigFlag(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		_, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "serve")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize configuration")
	})

	t.Run("InvalidValues", func(t *testing.T) {
		path := createTempConfig(t, "export:\n  format: pdf\n")
		_, err := execute(t, "--config", path, "serve")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load or validate config")
		assert.Contains(t, err.Error(), "export.format")
	})
}

func TestPersistentPreRun_LoadsConfig(t *testing.T) {
	path := createTempConfig(t, "capture:\n  poll_interval: 750ms\nexport:\n  format: json\n")
	t.Setenv("NAVSCRIBE_SERVER_LISTEN_ADDR", "127.0.0.1:6123")

	var loaded *config.Config
	root := NewRootCommand()
	root.AddCommand(&cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFromContext(cmd.Context())
			loaded = cfg
			return err
		},
	})
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)
	root.SetArgs([]string{"--config", path, "probe"})
	root.SetOut(&bytes.Buffer{})
	require.NoError(t, root.ExecuteContext(context.Background()))

	require.NotNil(t, loaded)
	assert.Equal(t, "750ms", loaded.Capture().PollInterval.String())
	assert.Equal(t, "json", loaded.Export().Format)
	assert.Equal(t, "127.0.0.1:6123", loaded.Server().ListenAddr)
	assert.Equal(t, "fatal", loaded.Logger().Level)
}

func TestConfigFromContext_Missing(t *testing.T) {
	_, err := configFromContext(context.Background())
	assert.EqualError(t, err, "configuration not loaded")
}
