package sdk

import (
	"context"

	"github.com/lovromazgon/refimpl/reference"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RegisterRefImpl registers the provider on the grpc service registrar. Use
// this function when initializing the plugin.
func RegisterRefImpl(srv grpc.ServiceRegistrar, provider reference.Provider) {
	srv.RegisterService(&RefImplPluginServiceDesc, &refImplServer{impl: provider})
}

// refImplServer is an adapter that wraps a reference.Provider and exposes it
// as a RefImplPluginServer.
type refImplServer struct {
	impl reference.Provider
}

var _ RefImplPluginServer = (*refImplServer)(nil)

func (s *refImplServer) SyncToSync(ctx context.Context, req *dynamicpb.Message) (*wrapperspb.Int64Value, error) {
	a, b := Operands(req)
	out, err := s.impl.SyncToSync(ctx, a, b)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Int64(out), nil
}

func (s *refImplServer) SyncToAsync(ctx context.Context, req *dynamicpb.Message) (*wrapperspb.Int64Value, error) {
	return s.await(ctx, req, s.impl.SyncToAsync)
}

func (s *refImplServer) AsyncToAsync(ctx context.Context, req *dynamicpb.Message) (*wrapperspb.Int64Value, error) {
	return s.await(ctx, req, s.impl.AsyncToAsync)
}

type asyncCall func(ctx context.Context, a, b int64, onSuccess reference.SuccessCallback, onError reference.ErrorCallback) error

// await starts the call and blocks until one of its callbacks ran, so the
// deferred outcome can be sent back in the response.
func (s *refImplServer) await(ctx context.Context, req *dynamicpb.Message, call asyncCall) (*wrapperspb.Int64Value, error) {
	type outcome struct {
		result int64
		err    error
	}
	out := make(chan outcome, 1)

	a, b := Operands(req)
	err := call(ctx, a, b,
		func(result int64) { out <- outcome{result: result} },
		func(err error) { out <- outcome{err: err} },
	)
	if err != nil {
		return nil, toStatus(err)
	}

	select {
	case o := <-out:
		if o.err != nil {
			return nil, toStatus(o.err)
		}
		return wrapperspb.Int64(o.result), nil
	case <-ctx.Done():
		return nil, status.FromContextError(ctx.Err()).Err()
	}
}
