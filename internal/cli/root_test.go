package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "masterylens", cmd.Use)
	assert.Contains(t, cmd.Long, "mastery")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"analyze", "import", "fights", "catalog", "test"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	db := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, db)
	assert.Equal(t, "masterylens.db", db.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestRoot_ConfigFile(t *testing.T) {
	dir := isolate(t)
	cfg := filepath.Join(dir, "lens.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("output:\n  format: json\narchive:\n  path: "+filepath.Join(dir, "cfg.db")+"\n"), 0644))

	out, _, err := execute(t, "fights", "--config", cfg)
	require.NoError(t, err)
	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "ok", resp.Status)

	_, err = os.Stat(filepath.Join(dir, "cfg.db"))
	assert.NoError(t, err)

	// --format on the command line wins.
	out, _, err = execute(t, "fights", "--config", cfg, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "No fights archived.")
}

func TestRoot_ConfigErrors(t *testing.T) {
	dir := isolate(t)
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("mastery:\n  rating_per_percent: 0\n"), 0644))

	_, _, err := execute(t, "fights", "--config", bad)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "rating_per_percent")

	_, _, err = execute(t, "fights", "--config", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRoot_DefaultsWithoutSetup(t *testing.T) {
	opts := &RootOptions{}
	assert.Equal(t, "masterylens.db", opts.database())
	assert.NotNil(t, opts.logger())
	assert.Equal(t, "text", opts.config().Output.Format)
}
