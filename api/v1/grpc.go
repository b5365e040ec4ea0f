package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// EnrollmentServiceName is the gRPC service name.
const EnrollmentServiceName = "courselane.v1.EnrollmentService"

// EnrollmentStatusGRPCServer answers enrollment status lookups over gRPC.
// Request: {"courseId": string, "userId": string}. Reply: {"userId", "courseId", "isEnrolled"}.
type EnrollmentStatusGRPCServer interface {
	GetEnrollmentStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterEnrollmentStatusGRPCServer registers srv on s.
func RegisterEnrollmentStatusGRPCServer(s grpc.ServiceRegistrar, srv EnrollmentStatusGRPCServer) {
	s.RegisterService(&EnrollmentService_ServiceDesc, srv)
}

func _EnrollmentService_GetEnrollmentStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EnrollmentStatusGRPCServer).GetEnrollmentStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: OperationEnrollmentServiceGetEnrollmentStatus,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EnrollmentStatusGRPCServer).GetEnrollmentStatus(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// EnrollmentService_ServiceDesc is the grpc.ServiceDesc for the enrollment status service.
var EnrollmentService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: EnrollmentServiceName,
	HandlerType: (*EnrollmentStatusGRPCServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetEnrollmentStatus",
			Handler:    _EnrollmentService_GetEnrollmentStatus_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "courselane/v1/enrollment.proto",
}

// EnrollmentStatusGRPCClient calls the enrollment status service.
type EnrollmentStatusGRPCClient struct {
	cc grpc.ClientConnInterface
}

// NewEnrollmentStatusGRPCClient creates a client on cc.
func NewEnrollmentStatusGRPCClient(cc grpc.ClientConnInterface) *EnrollmentStatusGRPCClient {
	return &EnrollmentStatusGRPCClient{cc: cc}
}

// GetEnrollmentStatus invokes the remote method.
func (c *EnrollmentStatusGRPCClient) GetEnrollmentStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, OperationEnrollmentServiceGetEnrollmentStatus, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
