package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/masterylens/internal/catalog"
)

func TestCatalog_Default(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "Catalog restoration-shaman")
	assert.Contains(t, out, "Chain Heal")
	assert.Contains(t, out, "157503")
	assert.Contains(t, out, "Ascendance")
}

func TestCatalog_FileJSON(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "druid.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
name: "druid"
mastery_boosted: [{id: 774, name: "Rejuvenation"}]
buffs: [{id: 33891, name: "Incarnation"}]
`), 0644))

	out, _, err := execute(t, "catalog", path, "--format", "json")
	require.NoError(t, err)

	var file catalog.File
	resp := decodeResponse(t, out, &file)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "druid", file.Name)
	require.Len(t, file.MasteryBoosted, 1)
	assert.Equal(t, "Rejuvenation", file.MasteryBoosted[0].Name)
	assert.Empty(t, file.IndirectlyBoosted)
	require.Len(t, file.Buffs, 1)
}

func TestCatalog_Invalid(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mastery_boosted: [{id: 5}, {id: 5}]\n"), 0644))

	_, _, err := execute(t, "catalog", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, catalog.IsConfigError(err))
}
