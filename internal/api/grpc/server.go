package grpcapi

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"measures-service/internal/domain"
	"measures-service/internal/infra"
	"measures-service/internal/pkg/isotime"
)

const (
	fieldStart     = "start"
	fieldEnd       = "end"
	fieldCollected = "collected"
)

// NewServer constructs a gRPC server exposing measures.v1.MeasureService and
// the standard health service.
func NewServer(service domain.MeasureService, logger *infra.Logger) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{
		loggingInterceptor(logger),
		infra.GRPCUnaryInterceptor(),
	}

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(interceptors...),
	)
	RegisterMeasureServiceServer(server, &measureServer{service: service, logger: logger})

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	return server
}

type measureServer struct {
	service domain.MeasureService
	logger  *infra.Logger
}

func (s *measureServer) LatestMeasures(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request must not be nil")
	}

	start, err := timeField(req, fieldStart)
	if err != nil {
		return nil, s.translateServiceError(ctx, err)
	}
	end, err := timeField(req, fieldEnd)
	if err != nil {
		return nil, s.translateServiceError(ctx, err)
	}

	views, err := s.service.LatestMeasures(ctx, start, end)
	if err != nil {
		return nil, s.translateServiceError(ctx, err)
	}
	return toProtoList(views), nil
}

func (s *measureServer) MeasuresByCollection(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request must not be nil")
	}

	start, err := timeField(req, fieldStart)
	if err != nil {
		return nil, s.translateServiceError(ctx, err)
	}
	end, err := timeField(req, fieldEnd)
	if err != nil {
		return nil, s.translateServiceError(ctx, err)
	}
	collected, err := timeField(req, fieldCollected)
	if err != nil {
		return nil, s.translateServiceError(ctx, err)
	}

	views, err := s.service.MeasuresAsOf(ctx, start, end, collected)
	if err != nil {
		return nil, s.translateServiceError(ctx, err)
	}
	return toProtoList(views), nil
}

func timeField(req *structpb.Struct, name string) (time.Time, error) {
	value, ok := req.GetFields()[name]
	if !ok || value.GetStringValue() == "" {
		return time.Time{}, domain.InvalidArgumentf("missing required field %q", name)
	}
	parsed, err := isotime.Parse(value.GetStringValue())
	if err != nil {
		return time.Time{}, domain.InvalidArgumentf("invalid %q timestamp", name)
	}
	return parsed, nil
}

func toProtoList(views []domain.MeasureView) *structpb.ListValue {
	values := make([]*structpb.Value, len(views))
	for i, view := range views {
		values[i] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"node_id":      structpb.NewNumberValue(float64(view.NodeID)),
			"node_name":    structpb.NewStringValue(view.NodeName),
			"region_name":  structpb.NewStringValue(view.RegionName),
			"grid_name":    structpb.NewStringValue(view.GridName),
			"timestamp":    structpb.NewStringValue(isotime.FormatTime(view.Timestamp)),
			"value":        structpb.NewNumberValue(view.Value),
			"collected_at": structpb.NewStringValue(isotime.FormatTime(view.CollectedAt)),
		}})
	}
	return &structpb.ListValue{Values: values}
}

func (s *measureServer) translateServiceError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request cancelled")
	case errors.Is(err, domain.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, "measurement store unavailable")
	default:
		s.logger.Errorf(ctx, err, "measurement query failed")
		return status.Error(codes.Internal, "internal server error")
	}
}

func loggingInterceptor(logger *infra.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		duration := time.Since(start)
		if err != nil {
			logger.Printf(ctx, "gRPC %s failed in %s: %v", info.FullMethod, duration, err)
		} else {
			logger.Printf(ctx, "gRPC %s completed in %s", info.FullMethod, duration)
		}
		return resp, err
	}
}

var _ MeasureServiceServer = (*measureServer)(nil)

