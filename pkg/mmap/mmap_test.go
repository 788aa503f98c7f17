//go:build linux

package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnonymousReadWrite(t *testing.T) {
	m, err := Anonymous(64)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 64, m.Size())
	assert.Equal(t, uint32(0), m.Read32(0x1C))

	m.Write32(0x1C, 0xDEADBEEF)
	assert.Equal(t, uint32(0xDEADBEEF), m.Read32(0x1C))

	m.Write32(0x04, 0x00000002)
	m.Write32(0x08, 0x00000001)
	assert.Equal(t, uint64(0x1_00000002), m.Read64(0x04))
}

func TestRegisterOutOfRange(t *testing.T) {
	m, err := Anonymous(16)
	require.NoError(t, err)
	defer m.Close()

	assert.Panics(t, func() { m.Register(uintptr(os.Getpagesize())) })
	assert.Panics(t, func() { m.Register(2) })
}

func TestDeviceMapFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regs")
	require.NoError(t, os.WriteFile(path, make([]byte, os.Getpagesize()), 0o600))

	m, err := NewDeviceMap(path, 0, 32)
	require.NoError(t, err)
	m.Write32(0x10, 42)
	require.NoError(t, m.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte(42), data[0x10])
}

func TestDeviceMapErrors(t *testing.T) {
	_, err := NewDeviceMap("/nonexistent/device", 0, 32)
	assert.Error(t, err)

	_, err = NewDeviceMap("/dev/null", 3, 32)
	assert.True(t, errors.Is(err, ErrUnaligned))
}
