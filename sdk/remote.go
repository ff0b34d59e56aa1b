package sdk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lovromazgon/refimpl/reference"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Remote is a reference.Provider backed by a plugin. The plugin resolves the
// deferred outcome before it responds; Remote then hands the outcome to the
// callbacks through the host loop, so callers observe the same two failure
// channels as with a local reference.Manager.
type Remote struct {
	client *RefImplPluginClient
	loop   *reference.Loop
	logger *slog.Logger
}

var _ reference.Provider = (*Remote)(nil)

// NewRemote returns a provider that calls the plugin behind cc and runs
// callbacks on loop.
func NewRemote(cc grpc.ClientConnInterface, loop *reference.Loop, logger *slog.Logger) *Remote {
	if logger == nil {
		logger = slog.Default()
	}
	return &Remote{
		client: NewRefImplPluginClient(cc),
		loop:   loop,
		logger: logger,
	}
}

func (r *Remote) SyncToSync(ctx context.Context, a, b int64) (int64, error) {
	out, err := r.client.SyncToSync(ctx, NewOperandsRequest(a, b))
	if err != nil {
		return 0, fromStatus(err)
	}
	return out.GetValue(), nil
}

func (r *Remote) SyncToAsync(ctx context.Context, a, b int64, onSuccess reference.SuccessCallback, onError reference.ErrorCallback) error {
	return r.async(ctx, "syncToAsync", r.client.SyncToAsync, a, b, onSuccess, onError)
}

func (r *Remote) AsyncToAsync(ctx context.Context, a, b int64, onSuccess reference.SuccessCallback, onError reference.ErrorCallback) error {
	return r.async(ctx, "asyncToAsync", r.client.AsyncToAsync, a, b, onSuccess, onError)
}

type remoteCall func(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error)

func (r *Remote) async(
	ctx context.Context,
	operation string,
	call remoteCall,
	a, b int64,
	onSuccess reference.SuccessCallback,
	onError reference.ErrorCallback,
) error {
	if onSuccess == nil {
		return fmt.Errorf("success callback is required: %w", reference.ErrTypeMismatch)
	}

	out, err := call(ctx, NewOperandsRequest(a, b))
	if err != nil {
		err = fromStatus(err)
		if !errors.Is(err, reference.ErrIO) {
			// The operation was not started.
			return err
		}
	}

	logger := r.logger.With("operation", operation, "a", a, "b", b)
	ok := r.loop.Post(func() {
		if err != nil {
			if onError == nil {
				logger.DebugContext(ctx, "no error callback, dropping error", "error", err)
				return
			}
			onError(err)
			return
		}
		onSuccess(out.GetValue())
	})
	if !ok {
		logger.WarnContext(ctx, "loop is closed, dropping outcome")
	}
	return nil
}
