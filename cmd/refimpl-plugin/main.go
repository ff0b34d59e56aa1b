//go:build wasm

package main

import (
	"context"
	"log/slog"
	"os"

	wgrpc "github.com/lovromazgon/refimpl/grpc"
	"github.com/lovromazgon/refimpl/reference"
	"github.com/lovromazgon/refimpl/sdk"
	"github.com/lovromazgon/refimpl/wasm"
)

func main() {
	// The main function is required by the compiler, but will never actually
	// be called, so it can stay empty.
}

func init() {
	// The plugin is initialized in init.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	loop := reference.NewLoop(reference.WithLogger(logger))
	go func() {
		if err := loop.Run(context.Background()); err != nil {
			logger.Error("loop stopped", "error", err)
		}
	}()

	// The mock platform must not sleep, the plugin only runs while the host
	// is inside a call.
	manager := reference.NewManager(loop,
		reference.WithLogger(logger),
		reference.WithPlatform(reference.NewMockPlatform(0)),
	)

	srv := wgrpc.NewServer(wgrpc.WithLogger(logger))
	sdk.RegisterRefImpl(srv, manager)
	wasm.Init(srv)
}
