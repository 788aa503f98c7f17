//go:build linux

package mmap

import (
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// MemoryMap represents a memory mapped register block.
type MemoryMap struct {
	addr   uintptr
	size   int
	region []byte
}

// NewMemoryMap maps size bytes of physical memory starting at addr through /dev/mem.
func NewMemoryMap(addr uintptr, size int) (*MemoryMap, error) {
	return NewDeviceMap("/dev/mem", addr, size)
}

// NewDeviceMap maps size bytes at offset addr of the given device or file.
// addr must be page aligned.
func NewDeviceMap(device string, addr uintptr, size int) (*MemoryMap, error) {
	if addr%uintptr(os.Getpagesize()) != 0 {
		return nil, errors.Wrapf(ErrUnaligned, "address %#x", addr)
	}

	f, err := os.OpenFile(device, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", device)
	}
	defer f.Close()

	region, err := unix.Mmap(
		int(f.Fd()),
		int64(addr),
		pageRound(size),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to mmap %s at %#x", device, addr)
	}

	return &MemoryMap{
		addr:   addr,
		size:   size,
		region: region,
	}, nil
}

// Anonymous returns a zeroed, page aligned mapping not backed by any device.
// Register code uses it as a stand-in for peripheral memory in tests.
func Anonymous(size int) (*MemoryMap, error) {
	region, err := unix.Mmap(-1, 0, pageRound(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrap(err, "failed to mmap anonymous region")
	}
	return &MemoryMap{size: size, region: region}, nil
}

// Close unmaps the memory region.
func (m *MemoryMap) Close() error {
	if m.region == nil {
		return nil
	}
	err := unix.Munmap(m.region)
	m.region = nil
	return err
}

// Addr returns the physical address the map starts at.
func (m *MemoryMap) Addr() uintptr {
	return m.addr
}

// Size returns the requested size of the mapping in bytes.
func (m *MemoryMap) Size() int {
	return m.size
}

// Register returns a pointer to the 32-bit register at the byte offset.
func (m *MemoryMap) Register(offset uintptr) *uint32 {
	if offset%4 != 0 || int(offset)+4 > len(m.region) {
		panic(errors.Errorf("mmap: register offset %#x outside mapping", offset))
	}
	return (*uint32)(unsafe.Pointer(&m.region[offset]))
}

// Read32 reads a 32-bit value from the memory region.
func (m *MemoryMap) Read32(offset uintptr) uint32 {
	return atomic.LoadUint32(m.Register(offset))
}

// Write32 writes a 32-bit value to the memory region.
func (m *MemoryMap) Write32(offset uintptr, value uint32) {
	atomic.StoreUint32(m.Register(offset), value)
}

// Read64 reads two adjacent 32-bit registers, low word first.
func (m *MemoryMap) Read64(offset uintptr) uint64 {
	lo := m.Read32(offset)
	hi := m.Read32(offset + 4)
	return uint64(hi)<<32 | uint64(lo)
}

func pageRound(size int) int {
	page := os.Getpagesize()
	return (size + page - 1) / page * page
}
