package admin_service_api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "travel.admin.v1.AdminService"

// AdminServiceServer is the administrator API. Requests and responses are
// JSON-shaped google.protobuf.Struct messages.
type AdminServiceServer interface {
	ListPackages(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreatePackage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdatePackage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetCapacity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetVisibility(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeletePackage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListWaitlist(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListBookings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TriggerSweep(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(AdminServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

var calls = map[string]unaryCall{
	"ListPackages":  AdminServiceServer.ListPackages,
	"CreatePackage": AdminServiceServer.CreatePackage,
	"UpdatePackage": AdminServiceServer.UpdatePackage,
	"SetCapacity":   AdminServiceServer.SetCapacity,
	"SetVisibility": AdminServiceServer.SetVisibility,
	"DeletePackage": AdminServiceServer.DeletePackage,
	"ListWaitlist":  AdminServiceServer.ListWaitlist,
	"ListBookings":  AdminServiceServer.ListBookings,
	"TriggerSweep":  AdminServiceServer.TriggerSweep,
}

func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unaryHandler(name string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AdminServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AdminServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc is registered by hand; there is no generated stub for this service.
var ServiceDesc = func() grpc.ServiceDesc {
	desc := grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*AdminServiceServer)(nil),
		Streams:     []grpc.StreamDesc{},
		Metadata:    "travel/admin/v1/admin.proto",
	}
	for _, name := range methodNames() {
		desc.Methods = append(desc.Methods, grpc.MethodDesc{
			MethodName: name,
			Handler:    unaryHandler(name, calls[name]),
		})
	}
	return desc
}()

func methodNames() []string {
	return []string{
		"ListPackages",
		"CreatePackage",
		"UpdatePackage",
		"SetCapacity",
		"SetVisibility",
		"DeletePackage",
		"ListWaitlist",
		"ListBookings",
		"TriggerSweep",
	}
}

func RegisterAdminServiceServer(s grpc.ServiceRegistrar, srv AdminServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
