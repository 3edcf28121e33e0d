package remote

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// PipelineStatusServer is the hand-written equivalent of a protoc-gen-go-grpc
// server interface for a two-method service: a unary Stats snapshot and a
// server-streaming feed of confirmed touch events.
type PipelineStatusServer interface {
	Stats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	StreamEvents(*emptypb.Empty, PipelineStatus_StreamEventsServer) error
}

// PipelineStatus_StreamEventsServer is the server-side handle for the
// StreamEvents RPC, named to match what protoc-gen-go-grpc would generate.
type PipelineStatus_StreamEventsServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type pipelineStatusStreamEventsServer struct {
	grpc.ServerStream
}

func (s *pipelineStatusStreamEventsServer) Send(m *structpb.Struct) error {
	return s.ServerStream.SendMsg(m)
}

func _PipelineStatus_Stats_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PipelineStatusServer).Stats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/touchcore.remote.PipelineStatus/Stats"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PipelineStatusServer).Stats(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _PipelineStatus_StreamEvents_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(PipelineStatusServer).StreamEvents(m, &pipelineStatusStreamEventsServer{stream})
}

// ServiceDesc is the registration descriptor passed to
// (*grpc.Server).RegisterService, the same shape protoc-gen-go-grpc emits.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "touchcore.remote.PipelineStatus",
	HandlerType: (*PipelineStatusServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Stats", Handler: _PipelineStatus_Stats_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "StreamEvents", Handler: _PipelineStatus_StreamEvents_Handler, ServerStreams: true},
	},
	Metadata: "internal/touch/remote/pipeline_status.proto",
}

// RegisterPipelineStatusServer registers srv with s, mirroring the generated
// RegisterXxxServer helper.
func RegisterPipelineStatusServer(s *grpc.Server, srv PipelineStatusServer) {
	s.RegisterService(&ServiceDesc, srv)
}
