//go:build wasm

package wasm

import (
	"unsafe"
)

// allocations keeps every buffer handed out to the host reachable, keyed by
// its pointer, so the garbage collector does not move or free it.
var allocations = make(map[uintptr]*buffer)

// response keeps the last response reachable until the host read it, which
// happens before the next command.
var response buffer

//go:wasmexport refimpl-v1-malloc
func malloc(ptr uintptr, size uint32) uintptr {
	b, ok := allocations[ptr]
	if !ok {
		// New allocation
		b = newBuffer(int(size))
		ptr = b.Pointer()
		allocations[ptr] = b
		return ptr
	}

	if b.Grow(int(size)) {
		delete(allocations, ptr)
		ptr = b.Pointer()
		allocations[ptr] = b
	}

	return ptr
}

//go:wasmexport refimpl-v1-command
func command(ptr uintptr, methodSize, bufferSize uint32) uint64 {
	input := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), bufferSize)

	method := input[:methodSize]
	req := input[methodSize:]

	response = handler.Handle(string(method), req)
	return response.PointerAndSize()
}
