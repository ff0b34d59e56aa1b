// Package grpctest provides an in-memory stand-in for a plugin Wasm module,
// so host code built on grpc.ClientConn can be tested without compiling a
// plugin.
package grpctest

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
)

// Handler processes a request the same way the plugin side does, e.g.
// *grpc.Server.
type Handler interface {
	Handle(method string, req []byte) []byte
}

const (
	mallocName  = "refimpl-v1-malloc"
	commandName = "refimpl-v1-command"
)

// Module implements api.Module with the exports expected by grpc.NewClient.
// Requests written to its memory are passed to the handler, like the exports
// of a real plugin do.
type Module struct {
	api.Module

	handler Handler

	mu     sync.Mutex // guards following fields
	memory []byte
	next   uint32
	closed bool

	Mallocs  int
	Commands int
}

var _ api.Module = (*Module)(nil)

// NewModule returns a module that dispatches commands to h.
func NewModule(h Handler) *Module {
	return &Module{
		handler: h,
		memory:  make([]byte, 1<<20),
		next:    8, // keep 0 as the "no allocation" pointer
	}
}

func (m *Module) Name() string { return "grpctest" }

func (m *Module) ExportedFunction(name string) api.Function {
	switch name {
	case mallocName:
		return &function{
			def:  &definition{name: name, params: []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, results: []api.ValueType{api.ValueTypeI32}},
			call: m.malloc,
		}
	case commandName:
		return &function{
			def:  &definition{name: name, params: []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}, results: []api.ValueType{api.ValueTypeI64}},
			call: m.command,
		}
	}
	return nil
}

func (m *Module) Memory() api.Memory { return &memory{m: m} }

func (m *Module) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Module) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// alloc reserves size bytes and returns their offset. Memory is never freed.
func (m *Module) alloc(size uint32) uint32 {
	ptr := m.next
	m.next += size
	if int(m.next) > len(m.memory) {
		m.memory = append(m.memory, make([]byte, int(m.next)-len(m.memory))...)
	}
	return ptr
}

func (m *Module) malloc(_ context.Context, params ...uint64) ([]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mallocs++
	size := api.DecodeU32(params[1])
	return []uint64{api.EncodeU32(m.alloc(size))}, nil
}

func (m *Module) command(_ context.Context, params ...uint64) ([]uint64, error) {
	ptr := api.DecodeU32(params[0])
	methodSize := api.DecodeU32(params[1])
	bufferSize := api.DecodeU32(params[2])

	m.mu.Lock()
	m.Commands++
	input := append([]byte(nil), m.memory[ptr:ptr+bufferSize]...)
	m.mu.Unlock()

	out := m.handler.Handle(string(input[:methodSize]), input[methodSize:])

	m.mu.Lock()
	defer m.mu.Unlock()
	outPtr := m.alloc(uint32(len(out)))
	copy(m.memory[outPtr:], out)
	return []uint64{uint64(outPtr)<<32 | uint64(len(out))}, nil
}

type function struct {
	api.Function

	def  *definition
	call func(ctx context.Context, params ...uint64) ([]uint64, error)
}

func (f *function) Definition() api.FunctionDefinition { return f.def }

func (f *function) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	return f.call(ctx, params...)
}

type definition struct {
	api.FunctionDefinition

	name    string
	params  []api.ValueType
	results []api.ValueType
}

func (d *definition) Name() string                 { return d.name }
func (d *definition) ParamTypes() []api.ValueType  { return d.params }
func (d *definition) ResultTypes() []api.ValueType { return d.results }

type memory struct {
	api.Memory

	m *Module
}

func (mem *memory) Read(offset, byteCount uint32) ([]byte, bool) {
	mem.m.mu.Lock()
	defer mem.m.mu.Unlock()
	if uint64(offset)+uint64(byteCount) > uint64(len(mem.m.memory)) {
		return nil, false
	}
	return mem.m.memory[offset : offset+byteCount], true
}

func (mem *memory) Write(offset uint32, v []byte) bool {
	mem.m.mu.Lock()
	defer mem.m.mu.Unlock()
	if uint64(offset)+uint64(len(v)) > uint64(len(mem.m.memory)) {
		return false
	}
	copy(mem.m.memory[offset:], v)
	return true
}
