package gpio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSysfsTree(t *testing.T, pins ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{"export", "unexport"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0644))
	}
	for _, pin := range pins {
		dir := filepath.Join(root, pin)
		require.NoError(t, os.Mkdir(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "direction"), []byte("in"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "value"), []byte("0"), 0644))
	}
	return root
}

func TestSysfsOutputs(t *testing.T) {
	root := newSysfsTree(t, "gpio17", "gpio27")
	s, err := OpenSysfs(root)
	require.NoError(t, err)

	require.NoError(t, s.SetOutputs(Bits(17, 27)))
	direction, err := os.ReadFile(filepath.Join(root, "gpio17", "direction"))
	require.NoError(t, err)
	assert.Equal(t, "low", string(direction))

	s.SetBits(Bits(17))
	value, err := os.ReadFile(filepath.Join(root, "gpio17", "value"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(value))
	assert.Equal(t, Bits(17), s.Levels())

	s.ClearBits(Bits(17))
	s.SetBits(Bits(27))
	assert.Equal(t, Bits(27), s.Levels())
	assert.NoError(t, s.Err())

	require.NoError(t, s.Close())
	unexported, err := os.ReadFile(filepath.Join(root, "unexport"))
	require.NoError(t, err)
	assert.Empty(t, unexported, "pins exported by someone else stay exported")
}

func TestSysfsExport(t *testing.T) {
	root := newSysfsTree(t)
	s, err := OpenSysfs(root)
	require.NoError(t, err)
	s.delay = 0

	// The fake tree never grows the pin directory, so setting the direction fails.
	err = s.SetInputs(Bits(5))
	assert.Error(t, err)
	exported, err := os.ReadFile(filepath.Join(root, "export"))
	require.NoError(t, err)
	assert.Equal(t, "5", string(exported))
	assert.Equal(t, Bits(5), s.exported)
}

func TestOpenSysfsMissing(t *testing.T) {
	_, err := OpenSysfs(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
