package sdk

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "refimpl.v1.RefImplPlugin"

	SyncToSyncMethod   = "/" + ServiceName + "/SyncToSync"
	SyncToAsyncMethod  = "/" + ServiceName + "/SyncToAsync"
	AsyncToAsyncMethod = "/" + ServiceName + "/AsyncToAsync"
)

// RefImplPluginServer is the server API of the refimpl.v1.RefImplPlugin
// service. The async methods respond once the deferred outcome is known.
type RefImplPluginServer interface {
	SyncToSync(context.Context, *dynamicpb.Message) (*wrapperspb.Int64Value, error)
	SyncToAsync(context.Context, *dynamicpb.Message) (*wrapperspb.Int64Value, error)
	AsyncToAsync(context.Context, *dynamicpb.Message) (*wrapperspb.Int64Value, error)
}

// RefImplPluginServiceDesc describes the refimpl.v1.RefImplPlugin service.
var RefImplPluginServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RefImplPluginServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SyncToSync", Handler: unaryHandler(RefImplPluginServer.SyncToSync)},
		{MethodName: "SyncToAsync", Handler: unaryHandler(RefImplPluginServer.SyncToAsync)},
		{MethodName: "AsyncToAsync", Handler: unaryHandler(RefImplPluginServer.AsyncToAsync)},
	},
	Metadata: "refimpl/v1/refimpl.proto",
}

func unaryHandler(
	call func(RefImplPluginServer, context.Context, *dynamicpb.Message) (*wrapperspb.Int64Value, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := dynamicpb.NewMessage(operandsDescriptor)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RefImplPluginServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(RefImplPluginServer), ctx, req.(*dynamicpb.Message))
		})
	}
}

// RefImplPluginClient is the client API of the refimpl.v1.RefImplPlugin
// service.
type RefImplPluginClient struct {
	cc grpc.ClientConnInterface
}

func NewRefImplPluginClient(cc grpc.ClientConnInterface) *RefImplPluginClient {
	return &RefImplPluginClient{cc: cc}
}

func (c *RefImplPluginClient) SyncToSync(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	return c.invoke(ctx, SyncToSyncMethod, in, opts...)
}

func (c *RefImplPluginClient) SyncToAsync(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	return c.invoke(ctx, SyncToAsyncMethod, in, opts...)
}

func (c *RefImplPluginClient) AsyncToAsync(ctx context.Context, in *dynamicpb.Message, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	return c.invoke(ctx, AsyncToAsyncMethod, in, opts...)
}

func (c *RefImplPluginClient) invoke(ctx context.Context, method string, in *dynamicpb.Message, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
