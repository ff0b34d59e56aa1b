// Package sdk connects a reference.Provider running in a Wasm plugin to the
// host. The plugin registers its provider with RegisterRefImpl; the host
// loads the plugin with InitializeModuleAndRefImpl and uses the returned
// Remote like any other provider.
package sdk

import (
	"context"
	"fmt"
	"log/slog"

	wgrpc "github.com/lovromazgon/refimpl/grpc"
	"github.com/lovromazgon/refimpl/reference"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// InitializeModuleAndRefImpl instantiates the plugin in source and returns a
// provider that runs its callbacks on loop. The caller closes the module.
func InitializeModuleAndRefImpl(
	ctx context.Context,
	runtime wazero.Runtime,
	source []byte,
	loop *reference.Loop,
	logger *slog.Logger,
	opts ...wgrpc.ClientOption,
) (api.Module, *Remote, error) {
	module, client, err := wgrpc.InstantiateModuleAndClient(ctx, runtime, source, NewRefImplPluginClient, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to instantiate Wasm module: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return module, &Remote{client: client, loop: loop, logger: logger}, nil
}
