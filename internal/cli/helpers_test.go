package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/masterylens/internal/combatlog"
	"github.com/roach88/masterylens/internal/testutil"
)

const (
	healer     combatlog.ActorID = 1
	chainHeal  combatlog.SpellID = 1064
	cloudburst combatlog.SpellID = 157503
)

// isolate keeps config discovery and env overrides out of CLI tests.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	t.Setenv("MASTERYLENS_OUTPUT_COLOR", "false")
	return dir
}

// fightEvents reports a 1333 mastery rating, then one Chain Heal at 40%
// health (11 mastery healing at rating 0, 16 at 1333),
// a Cloudburst heal, and a heal from another player.
func fightEvents() []combatlog.Event {
	ci := testutil.CombatantInfo(healer, 1333)
	return []combatlog.Event{
		ci,
		testutil.SimpleHeal(healer, chainHeal, 100, 400, 1000),
		testutil.SimpleHeal(healer, cloudburst, 300, 500, 1000),
		testutil.SimpleHeal(2, chainHeal, 500, 0, 1000),
	}
}

func writeEvents(t *testing.T, dir, name string, events []combatlog.Event) string {
	t.Helper()
	data, err := json.Marshal(events)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}
}
