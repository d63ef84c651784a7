package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "narodmon.v1.Aggregator"

	updateMethod       = "/narodmon.v1.Aggregator/Update"
	updateSingleMethod = "/narodmon.v1.Aggregator/UpdateSingle"
	removeAllMethod    = "/narodmon.v1.Aggregator/RemoveAll"
	historyMethod      = "/narodmon.v1.Aggregator/History"
)

// AggregatorServer is the server API for the narodmon.v1.Aggregator service.
// Messages are protobuf well-known types so no generated code is needed.
type AggregatorServer interface {
	// Update runs a cycle; a zero or absent type requests every known type.
	Update(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	// UpdateSingle runs a cycle for one positive type-id.
	UpdateSingle(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	// RemoveAll deletes every published entity and returns how many went away.
	RemoveAll(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	// History returns bucketed aggregate history of one type.
	History(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterAggregatorServer(s grpc.ServiceRegistrar, srv AggregatorServer) {
	s.RegisterService(&aggregatorServiceDesc, srv)
}

var aggregatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AggregatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Update", Handler: updateHandler},
		{MethodName: "UpdateSingle", Handler: updateSingleHandler},
		{MethodName: "RemoveAll", Handler: removeAllHandler},
		{MethodName: "History", Handler: historyHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "narodmon/v1/aggregator.proto",
}

func updateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AggregatorServer).Update(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: updateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AggregatorServer).Update(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func updateSingleHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AggregatorServer).UpdateSingle(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: updateSingleMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AggregatorServer).UpdateSingle(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func removeAllHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AggregatorServer).RemoveAll(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: removeAllMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AggregatorServer).RemoveAll(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func historyHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AggregatorServer).History(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: historyMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AggregatorServer).History(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
