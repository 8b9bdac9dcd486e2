package lookup

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "alarmchat.lookup.v1.AlarmLookupService"
	// lookupMethod is the full method name of Lookup.
	lookupMethod = "/" + ServiceName + "/Lookup"

	// requestAlarmID is the request field carrying the alarm number.
	requestAlarmID = "alarm_id"
	// requestElement is the request field carrying the element name.
	requestElement = "element"
)

// lookupServer is the handler type registered with gRPC.
type lookupServer interface {
	Lookup(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes AlarmLookupService for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // gRPC service descriptors are package-level by convention.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*lookupServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Lookup",
			Handler:    lookupHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "alarmchat/lookup/v1/lookup.proto",
}

// RegisterServer registers srv on registrar.
func RegisterServer(registrar grpc.ServiceRegistrar, srv *Server) {
	registrar.RegisterService(&ServiceDesc, srv)
}

func lookupHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(lookupServer).Lookup(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: lookupMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(lookupServer).Lookup(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}
