package grpc

import (
	"fmt"
	"strings"

	"github.com/tetratelabs/wazero/api"
)

// Names of the functions a plugin module exports. The version is part of the
// name so the ABI can change without confusing older hosts.
const (
	MallocFunctionName  = "refimpl-v1-malloc"
	CommandFunctionName = "refimpl-v1-command"
)

type functionDefinition struct {
	name        string
	paramTypes  []api.ValueType // parameter types
	resultTypes []api.ValueType // result types
}

var (
	mallocFunctionDefinition = functionDefinition{
		name: MallocFunctionName,
		paramTypes: []api.ValueType{
			api.ValueTypeI32, // u32 (pointer to the buffer)
			api.ValueTypeI32, // i32 (size of the buffer)
		},
		resultTypes: []api.ValueType{api.ValueTypeI32}, // u32 (pointer to the allocated buffer)
	}
	commandFunctionDefinition = functionDefinition{
		name: CommandFunctionName,
		paramTypes: []api.ValueType{
			api.ValueTypeI32, // u32 (pointer to the buffer)
			api.ValueTypeI32, // u32 (method size)
			api.ValueTypeI32, // u32 (buffer size)
		},
		resultTypes: []api.ValueType{api.ValueTypeI64}, // u64 (pointer and size of the buffer packed in a single u64)
	}
)

// getExportedFunction retrieves an exported function from the given module
// and checks if it matches the expected function definition. It returns an
// error if the function does not exist or has a different signature.
func getExportedFunction(module api.Module, wantFn functionDefinition) (api.Function, error) {
	fn := module.ExportedFunction(wantFn.name)
	if fn == nil {
		return nil, fmt.Errorf("exported function %q does not exist", wantFn.name)
	}

	def := fn.Definition()
	if !isValidFunctionDefinition(wantFn, def) {
		return nil, newFunctionDefinitionError(wantFn, def.ParamTypes(), def.ResultTypes())
	}

	return fn, nil
}

func isValidFunctionDefinition(want functionDefinition, got api.FunctionDefinition) bool {
	return equalValueTypes(want.paramTypes, got.ParamTypes()) &&
		equalValueTypes(want.resultTypes, got.ResultTypes())
}

func equalValueTypes(want, got []api.ValueType) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

type functionDefinitionError struct {
	expected       functionDefinition
	gotParamTypes  []api.ValueType // parameter types
	gotResultTypes []api.ValueType // result types
}

func newFunctionDefinitionError(expected functionDefinition, gotParamTypes, gotResultTypes []api.ValueType) *functionDefinitionError {
	return &functionDefinitionError{
		expected:       expected,
		gotParamTypes:  gotParamTypes,
		gotResultTypes: gotResultTypes,
	}
}

func (e *functionDefinitionError) Error() string {
	return fmt.Sprintf(
		"exported Wasm function definition mismatch, expected %s, got %s",
		e.formatFunctionDefinition(e.expected.paramTypes, e.expected.resultTypes),
		e.formatFunctionDefinition(e.gotParamTypes, e.gotResultTypes),
	)
}

func (e *functionDefinitionError) formatFunctionDefinition(params []api.ValueType, results []api.ValueType) string {
	var out strings.Builder
	out.WriteString(e.expected.name + "(")
	out.WriteString(formatValueTypes(params))
	out.WriteString(")")

	if len(results) > 0 {
		out.WriteString(" -> (")
		out.WriteString(formatValueTypes(results))
		out.WriteString(")")
	}

	return out.String()
}

func formatValueTypes(types []api.ValueType) string {
	names := make([]string, len(types))
	for i, typ := range types {
		names[i] = api.ValueTypeName(typ)
	}
	return strings.Join(names, ", ")
}
