package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "tabpp.v1.Status"

const (
	getStatusMethod       = "/" + ServiceName + "/GetStatus"
	listTransitionsMethod = "/" + ServiceName + "/ListTransitions"
)

// StatusServer is the server API for the Status service.
// Messages are protobuf well-known types, so no generated code is needed.
type StatusServer interface {
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListTransitions(context.Context, *wrapperspb.Int64Value) (*structpb.ListValue, error)
}

// RegisterStatusServer registers srv on s
func RegisterStatusServer(s grpc.ServiceRegistrar, srv StatusServer) {
	s.RegisterService(&StatusServiceDesc, srv)
}

// StatusServiceDesc describes the Status service for grpc.Server
var StatusServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StatusServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetStatus", Handler: getStatusHandler},
		{MethodName: "ListTransitions", Handler: listTransitionsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tabpp/v1/status.proto",
}

func getStatusHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatusServer).GetStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getStatusMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StatusServer).GetStatus(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func listTransitionsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatusServer).ListTransitions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listTransitionsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StatusServer).ListTransitions(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

// StatusClient calls the Status service
type StatusClient struct {
	cc grpc.ClientConnInterface
}

// NewStatusClient creates a client over an established connection
func NewStatusClient(cc grpc.ClientConnInterface) *StatusClient {
	return &StatusClient{cc: cc}
}

// GetStatus fetches the daemon snapshot
func (c *StatusClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getStatusMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTransitions fetches transitions from the last window; zero means all
func (c *StatusClient) ListTransitions(ctx context.Context, window time.Duration, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	in := wrapperspb.Int64(int64(window / time.Second))
	if err := c.cc.Invoke(ctx, listTransitionsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
