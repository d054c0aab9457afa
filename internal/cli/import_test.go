package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/masterylens/internal/combatlog"
	"github.com/roach88/masterylens/internal/store"
	"github.com/roach88/masterylens/internal/testutil"
)

func TestImport_ThenReimport(t *testing.T) {
	dir := isolate(t)
	path := writeEvents(t, dir, "fight.json", fightEvents())

	out, _, err := execute(t, "import", "--fight", "raid-3", "--name", "Raid 3", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 4 events into raid-3 (4 new, 0 already archived)")

	out, _, err = execute(t, "import", "--fight", "raid-3", path, "--format", "json")
	require.NoError(t, err)

	var result store.ImportResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 4, result.Duplicate)
	assert.NotEmpty(t, result.ImportID)
}

func TestImport_ConflictAndAppend(t *testing.T) {
	dir := isolate(t)
	first := writeEvents(t, dir, "page1.json", fightEvents())
	second := writeEvents(t, dir, "page2.json", []combatlog.Event{
		testutil.SimpleHeal(healer, chainHeal, 250, 100, 1000),
	})

	_, _, err := execute(t, "import", "--fight", "raid-3", first)
	require.NoError(t, err)

	_, _, err = execute(t, "import", "--fight", "raid-3", second)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, store.ErrFightConflict)

	out, _, err := execute(t, "import", "--fight", "raid-3", "--append", second, "--format", "json")
	require.NoError(t, err)
	var result store.ImportResult
	decodeResponse(t, out, &result)
	assert.Equal(t, int64(5), result.FirstSeq)
	assert.Equal(t, 1, result.Inserted)
}

func TestImport_Errors(t *testing.T) {
	dir := isolate(t)

	_, _, err := execute(t, "import", filepath.Join(dir, "fight.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "fight" not set`)

	_, _, err = execute(t, "import", "--fight", "x", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to read events")
}

func TestFights_List(t *testing.T) {
	dir := isolate(t)

	out, _, err := execute(t, "fights")
	require.NoError(t, err)
	assert.Contains(t, out, "No fights archived.")

	path := writeEvents(t, dir, "fight.json", fightEvents())
	_, _, err = execute(t, "import", "--fight", "raid-3", "--name", "Raid 3", path)
	require.NoError(t, err)
	_, _, err = execute(t, "import", "--fight", "dungeon-1", path)
	require.NoError(t, err)

	out, _, err = execute(t, "fights")
	require.NoError(t, err)
	assert.Contains(t, out, "raid-3")
	assert.Contains(t, out, "Raid 3")

	out, _, err = execute(t, "fights", "--format", "json")
	require.NoError(t, err)
	var result FightsResult
	decodeResponse(t, out, &result)
	require.Equal(t, 2, result.Total)
	assert.Equal(t, "dungeon-1", result.Fights[0].Key)
	assert.Equal(t, "raid-3", result.Fights[1].Key)
	assert.Equal(t, 4, result.Fights[1].Events)
}

func TestFights_ConfiguredArchive(t *testing.T) {
	dir := isolate(t)
	path := writeEvents(t, dir, "fight.json", fightEvents())
	t.Setenv("MASTERYLENS_ARCHIVE_PATH", filepath.Join(dir, "env.db"))

	_, _, err := execute(t, "import", "--fight", "raid-3", path)
	require.NoError(t, err)

	// --db wins over the environment.
	out, _, err := execute(t, "fights", "--db", filepath.Join(dir, "other.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "No fights archived.")

	out, _, err = execute(t, "fights")
	require.NoError(t, err)
	assert.Contains(t, out, "raid-3")
}
