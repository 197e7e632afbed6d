package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// SafetyServer is the handler type of the hand-written service descriptor
type SafetyServer interface {
	Scan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckMisinformation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Encrypt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Hash(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Summarize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Rephrase(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SaveLog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListLogs(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var _ SafetyServer = (*Server)(nil)

type unaryMethod func(SafetyServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unary adapts a method to grpc's method handler shape, honouring interceptors
func unary(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SafetyServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(SafetyServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SafetyServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Scan", SafetyServer.Scan),
		unary("CheckMisinformation", SafetyServer.CheckMisinformation),
		unary("Encrypt", SafetyServer.Encrypt),
		unary("Hash", SafetyServer.Hash),
		unary("Summarize", SafetyServer.Summarize),
		unary("Rephrase", SafetyServer.Rephrase),
		unary("SaveLog", SafetyServer.SaveLog),
		unary("ListLogs", SafetyServer.ListLogs),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "safetyhub/v1/safety.proto",
}
