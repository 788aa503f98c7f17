//go:build !linux

package mmap

// MemoryMap represents a memory mapped register block.
type MemoryMap struct{}

// NewMemoryMap always fails outside Linux.
func NewMemoryMap(addr uintptr, size int) (*MemoryMap, error) {
	return nil, ErrUnsupported
}

// NewDeviceMap always fails outside Linux.
func NewDeviceMap(device string, addr uintptr, size int) (*MemoryMap, error) {
	return nil, ErrUnsupported
}

// Anonymous always fails outside Linux.
func Anonymous(size int) (*MemoryMap, error) {
	return nil, ErrUnsupported
}

func (m *MemoryMap) Close() error { return nil }
func (m *MemoryMap) Addr() uintptr { return 0 }
func (m *MemoryMap) Size() int { return 0 }
func (m *MemoryMap) Register(offset uintptr) *uint32 { panic(ErrUnsupported) }
func (m *MemoryMap) Read32(offset uintptr) uint32 { panic(ErrUnsupported) }
func (m *MemoryMap) Write32(offset uintptr, value uint32) { panic(ErrUnsupported) }
func (m *MemoryMap) Read64(offset uintptr) uint64 { panic(ErrUnsupported) }
