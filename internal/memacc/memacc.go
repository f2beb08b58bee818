// Package memacc provides the simulator's flat, byte-addressable memory image.
package memacc

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// DefaultSize is the memory image size used when none is configured.
const DefaultSize = 1 << 20

// MaxSize is the largest supported image. The stack pointer starts at the
// image size and must hold it as a 32-bit address.
const MaxSize = 1 << 31

// Common errors
var (
	ErrOutOfRange = errors.New("address out of range")
	ErrBadWidth   = errors.New("unsupported access width")
)

// Image is a flat little-endian memory starting at address 0.
type Image struct {
	data []byte
}

// NewImage allocates a zero-filled image of size bytes.
func NewImage(size int) *Image {
	return &Image{data: make([]byte, size)}
}

// Len returns the image size in bytes.
func (m *Image) Len() int { return len(m.data) }

// Bytes exposes the backing store.
func (m *Image) Bytes() []byte { return m.data }

// Clear zeroes the whole image.
func (m *Image) Clear() {
	clear(m.data)
}

// InRange reports whether all n bytes starting at addr lie inside the image.
func (m *Image) InRange(addr uint32, n int) bool {
	return uint64(addr)+uint64(n) <= uint64(len(m.data))
}

func (m *Image) check(addr uint32, n int) error {
	if n != 1 && n != 2 && n != 4 {
		return fmt.Errorf("%w: %d", ErrBadWidth, n)
	}
	if !m.InRange(addr, n) {
		return fmt.Errorf("%w: 0x%08x+%d (size 0x%x)", ErrOutOfRange, addr, n, len(m.data))
	}
	return nil
}

// Read returns the n-byte (1, 2 or 4) little-endian value at addr,
// zero-extended to 32 bits.
func (m *Image) Read(addr uint32, n int) (uint32, error) {
	if err := m.check(addr, n); err != nil {
		return 0, err
	}
	b := m.data[int(addr) : int(addr)+n]
	switch n {
	case 1:
		return uint32(b[0]), nil
	case 2:
		return uint32(binary.LittleEndian.Uint16(b)), nil
	default:
		return binary.LittleEndian.Uint32(b), nil
	}
}

// Write stores the low n bytes (1, 2 or 4) of v little-endian at addr.
// Nothing is written when any byte would fall outside the image.
func (m *Image) Write(addr uint32, n int, v uint32) error {
	if err := m.check(addr, n); err != nil {
		return err
	}
	b := m.data[int(addr) : int(addr)+n]
	switch n {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	default:
		binary.LittleEndian.PutUint32(b, v)
	}
	return nil
}

func (m *Image) String() string {
	return fmt.Sprintf("Image; Range::0x0:0x%x", len(m.data))
}
