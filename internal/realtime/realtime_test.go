package realtime

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, path, content string) {
	t.Helper()
	full := filepath.Join(root, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func TestModuleLoaded(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, modulesPath,
		"snd_bcm2835 24576 1 - Live 0x0000000000000000\n"+
			"w1_gpio_extra 16384 0 - Live 0x0000000000000000\n")
	h := Host{Root: root}

	assert.True(t, h.ModuleLoaded("snd_bcm2835"))
	assert.False(t, h.ModuleLoaded("w1_gpio"), "prefix of another module")
	assert.False(t, h.ModuleLoaded("i2c_dev"))

	assert.False(t, Host{Root: t.TempDir()}.ModuleLoaded("snd_bcm2835"), "missing list")
}

func TestParseCPUList(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "3", want: []int{3}},
		{in: "1,3", want: []int{1, 3}},
		{in: "0-2,5", want: []int{0, 1, 2, 5}},
		{in: "12-13", want: []int{12, 13}},
		{in: "x", wantErr: true},
		{in: "1-x", wantErr: true},
		{in: "3-1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCPUList(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCPUIsolated(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, isolatedPath, "2-3\n")
	h := Host{Root: root}
	assert.True(t, h.CPUIsolated(3))
	assert.True(t, h.CPUIsolated(2))
	assert.False(t, h.CPUIsolated(1))
	assert.False(t, h.CPUIsolated(13))

	writeFile(t, root, isolatedPath, "\n")
	assert.False(t, h.CPUIsolated(3))
}

func TestSetupWritesTunables(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, rtRuntimePath, "950000")
	writeFile(t, root, "/sys/devices/system/cpu/cpu0/cpufreq/scaling_governor", "ondemand")

	Host{Root: root}.Setup(zerolog.Nop(), 0, 4)

	data, err := os.ReadFile(filepath.Join(root, rtRuntimePath))
	require.NoError(t, err)
	assert.Equal(t, rtRuntime, string(data))
	data, err = os.ReadFile(filepath.Join(root, "/sys/devices/system/cpu/cpu0/cpufreq/scaling_governor"))
	require.NoError(t, err)
	assert.Equal(t, "performance", string(data))
}

func TestSetupSingleCoreLeavesTunables(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, rtRuntimePath, "950000")

	Host{Root: root}.Setup(zerolog.Nop(), 0, 1)

	data, err := os.ReadFile(filepath.Join(root, rtRuntimePath))
	require.NoError(t, err)
	assert.Equal(t, "950000", string(data))
}
