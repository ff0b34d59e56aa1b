package wasm

import (
	"unsafe"
)

// buffer holds a byte slice shared with the host. The host reads and writes
// the slice's backing array directly through the module's linear memory, so
// the pointer of the first element is what crosses the boundary.
type buffer []byte

func newBuffer(size int) *buffer {
	b := make(buffer, size)
	return &b
}

// Grow resizes the buffer to size and allocates more memory if needed. It
// reports whether new memory was allocated, in which case the pointer of the
// buffer changed.
func (b *buffer) Grow(size int) bool {
	allocated := false

	if cap(*b) < size {
		// This append logic preserves existing data when growing.
		// We append to the end of the slice after expanding it to the full capacity.
		*b = append((*b)[:cap(*b)], make([]byte, size-cap(*b))...)
		allocated = true
	}
	// Reslice to the new size if we had enough capacity.
	// This does not shrink the buffer if size < len(*b).
	if len(*b) < size {
		*b = (*b)[:size]
	}

	return allocated
}

// Pointer returns a pointer to the buffer's data, or 0 for an empty buffer.
func (b *buffer) Pointer() uintptr {
	if len(*b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&(*b)[0]))
}

// PointerAndSize returns the pointer and size in a single uint64.
// The higher 32 bits are the pointer, and the lower 32 bits are the size.
func (b *buffer) PointerAndSize() uint64 {
	return (uint64(uint32(b.Pointer())) << 32) | uint64(uint32(len(*b)))
}
