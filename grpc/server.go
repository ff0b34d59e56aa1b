package grpc

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// serviceInfo wraps information about a service. It is very similar to
// grpc.ServiceDesc and is constructed from it for internal purposes.
type serviceInfo struct {
	// Contains the implementation for the methods in this service.
	serviceImpl any
	methods     map[string]*grpc.MethodDesc
}

var _ grpc.ServiceRegistrar = (*Server)(nil)

// Server dispatches requests received by a plugin to the registered gRPC
// services. It runs inside the Wasm module, see wasm.Init.
type Server struct {
	opts serverOptions

	mu       sync.RWMutex // guards following fields
	services map[string]*serviceInfo
}

func NewServer(opt ...ServerOption) *Server {
	opts := defaultServerOptions
	for _, o := range opt {
		o.applyServer(&opts)
	}

	return &Server{
		opts:     opts,
		services: make(map[string]*serviceInfo),
	}
}

// RegisterService registers a service and its implementation. Like the
// regular gRPC server it panics if ss does not implement the handler type or
// the service was registered before.
func (s *Server) RegisterService(sd *grpc.ServiceDesc, ss any) {
	if ss != nil {
		ht := reflect.TypeOf(sd.HandlerType).Elem()
		st := reflect.TypeOf(ss)
		if !st.Implements(ht) {
			s.opts.logger.Error("grpc: Server.RegisterService found an incompatible handler type", "want", ht, "got", st)
			panic(fmt.Sprintf("grpc: Server.RegisterService found the handler of type %v that does not satisfy %v", st, ht))
		}
	}
	s.register(sd, ss)
}

func (s *Server) register(sd *grpc.ServiceDesc, ss any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.logger.Debug("registering service", "service", sd.ServiceName)
	if _, ok := s.services[sd.ServiceName]; ok {
		s.opts.logger.Error("grpc: Server.RegisterService found duplicate service registration", "service", sd.ServiceName)
		panic(fmt.Sprintf("grpc: Server.RegisterService found duplicate service registration for %q", sd.ServiceName))
	}
	if len(sd.Streams) > 0 {
		s.opts.logger.Warn("grpc: Server.RegisterService found stream service, streams are not supported in Wasm plugins", "service", sd.ServiceName)
	}
	info := &serviceInfo{
		serviceImpl: ss,
		methods:     make(map[string]*grpc.MethodDesc),
	}
	for i := range sd.Methods {
		d := &sd.Methods[i]
		info.methods[d.MethodName] = d
	}
	s.services[sd.ServiceName] = info
}

// Handle implements the wasm.Handler interface and processes the bytes sent to
// the plugin as a gRPC request. fn is the full method name in the form
// "/package.Service/Method". The returned bytes are a framed response, see
// decodeResponse.
func (s *Server) Handle(fn string, reqBytes []byte) []byte {
	// Start a new context for each request.
	ctx := context.Background()

	pos := strings.LastIndex(fn, "/")
	if pos == -1 {
		return s.handleError(
			status.New(codes.Unimplemented, "malformed method name"),
			"method", fn,
		)
	}

	service := strings.TrimPrefix(fn[:pos], "/")
	method := fn[pos+1:]

	s.mu.RLock()
	srv, ok := s.services[service]
	s.mu.RUnlock()
	if !ok {
		return s.handleError(
			status.New(codes.Unimplemented, "unknown service"),
			"service", service,
		)
	}
	sd, ok := srv.methods[method]
	if !ok {
		return s.handleError(
			status.New(codes.Unimplemented, "unknown method"),
			"service", service, "method", method,
		)
	}

	decFn := func(v any) error {
		return protoUnmarshal(reqBytes, v)
	}

	resp, err := sd.Handler(srv.serviceImpl, ctx, decFn, nil)
	if err != nil {
		st, ok := status.FromError(err)
		if !ok {
			st = status.FromContextError(err)
		}
		return s.handleError(st, "service", service, "method", method, "error", err)
	}

	respBytes, err := encodeResponse(resp)
	if err != nil {
		return s.handleError(
			status.New(codes.Internal, "error marshalling response"),
			"service", service, "method", method, "error", err,
		)
	}

	return respBytes
}

func (s *Server) handleError(st *status.Status, args ...any) []byte {
	s.opts.logger.Debug(fmt.Sprintf("grpc: Server.Handle %s", st.Message()), args...)

	out, err := encodeStatus(st)
	if err != nil {
		panic(err)
	}

	return out
}
