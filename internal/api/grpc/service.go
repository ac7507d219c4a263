package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "measures.v1.MeasureService"

	latestMeasuresMethod       = "/" + ServiceName + "/LatestMeasures"
	measuresByCollectionMethod = "/" + ServiceName + "/MeasuresByCollection"
)

// MeasureServiceServer is the server API for measures.v1.MeasureService.
// Requests carry the same fields as the HTTP query string; responses hold one
// struct per measure with the HTTP JSON field names.
type MeasureServiceServer interface {
	LatestMeasures(context.Context, *structpb.Struct) (*structpb.ListValue, error)
	MeasuresByCollection(context.Context, *structpb.Struct) (*structpb.ListValue, error)
}

// RegisterMeasureServiceServer registers srv on s.
func RegisterMeasureServiceServer(s grpc.ServiceRegistrar, srv MeasureServiceServer) {
	s.RegisterService(&measureServiceDesc, srv)
}

var measureServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MeasureServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "LatestMeasures", Handler: latestMeasuresHandler},
		{MethodName: "MeasuresByCollection", Handler: measuresByCollectionHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "measures/v1/measures.proto",
}

func latestMeasuresHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MeasureServiceServer).LatestMeasures(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: latestMeasuresMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MeasureServiceServer).LatestMeasures(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func measuresByCollectionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MeasureServiceServer).MeasuresByCollection(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: measuresByCollectionMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MeasureServiceServer).MeasuresByCollection(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls measures.v1.MeasureService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) LatestMeasures(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, latestMeasuresMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MeasuresByCollection(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, measuresByCollectionMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
