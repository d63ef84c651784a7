//go:generate go run github.com/golang/mock/mockgen -destination=./mocks/service.go -package=mocks . Service,HistoryReader

package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tejusbharadwaj/narodmon-avg/internal/aggregator"
	middleware "github.com/tejusbharadwaj/narodmon-avg/internal/grpc/middlewares"
	"github.com/tejusbharadwaj/narodmon-avg/internal/models"
)

// ServerConfig holds configuration options for the gRPC server
type ServerConfig struct {
	RateLimit      float64 // Requests per second
	RateLimitBurst int     // Maximum burst size for rate limiting
}

// DefaultServerConfig returns a ServerConfig with sensible defaults
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		RateLimit:      5.0,
		RateLimitBurst: 10,
	}
}

// Service is the aggregator behaviour exposed over gRPC.
type Service interface {
	UpdateAll(ctx context.Context, typeID int) (*models.CycleReport, error)
	UpdateSingle(ctx context.Context, typeID int) (*models.CycleReport, error)
	RemoveAll(ctx context.Context) (int, error)
}

// HistoryReader answers bucketed history queries.
type HistoryReader interface {
	Query(ctx context.Context, typeID int, start, end time.Time, window string, aggregation string) ([]models.TimeSeriesData, error)
}

// AggregatorService implements AggregatorServer on top of a Service.
type AggregatorService struct {
	service   Service
	history   HistoryReader
	validator *RequestValidator
}

// NewAggregatorService creates the gRPC facade. history may be nil, in which
// case History answers Unimplemented.
func NewAggregatorService(svc Service, history HistoryReader) *AggregatorService {
	return &AggregatorService{
		service:   svc,
		history:   history,
		validator: NewRequestValidator(),
	}
}

func (s *AggregatorService) Update(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	typeID := req.GetValue()
	if err := s.validator.ValidateTypeID(typeID, true); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	report, err := s.service.UpdateAll(ctx, int(typeID))
	if err != nil {
		return nil, toStatus(err)
	}
	return ReportStruct(report)
}

func (s *AggregatorService) UpdateSingle(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	typeID := req.GetValue()
	if err := s.validator.ValidateTypeID(typeID, false); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	report, err := s.service.UpdateSingle(ctx, int(typeID))
	if err != nil {
		return nil, toStatus(err)
	}
	return ReportStruct(report)
}

func (s *AggregatorService) RemoveAll(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	removed, err := s.service.RemoveAll(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Int64(int64(removed)), nil
}

// History expects the fields type_id, start, end (RFC 3339), window and
// aggregation.
func (s *AggregatorService) History(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.history == nil {
		return nil, status.Error(codes.Unimplemented, "no history backend configured")
	}

	fields := req.AsMap()
	typeID, err := cast.ToInt64E(fields["type_id"])
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid type id: %v", fields["type_id"])
	}
	if err := s.validator.ValidateTypeID(typeID, false); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	start, err := timeField(fields, "start")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	end, err := timeField(fields, "end")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	window := cast.ToString(fields["window"])
	aggregation := cast.ToString(fields["aggregation"])

	if err := s.validator.Validate(start, end, window, aggregation); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	points, err := s.history.Query(ctx, int(typeID), start, end, window, aggregation)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "query failed: %v", err)
	}
	return HistoryStruct(points)
}

// timeField leaves an absent field zero so the validator reports it missing.
func timeField(fields map[string]interface{}, name string) (time.Time, error) {
	v, ok := fields[name]
	if !ok || v == nil {
		return time.Time{}, nil
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %v", name, v)
	}
	return t, nil
}

// ReportStruct converts a cycle report to its wire form.
func ReportStruct(report *models.CycleReport) (*structpb.Struct, error) {
	aggregates := make([]interface{}, 0, len(report.Aggregates))
	for _, agg := range report.Aggregates {
		aggregates = append(aggregates, map[string]interface{}{
			"entity_id": aggregator.EntityID(agg.TypeID),
			"type_id":   agg.TypeID,
			"type_name": agg.Type.Name,
			"unit":      agg.Type.Unit,
			"state":     aggregator.StateValue(agg),
			"count":     agg.Count,
			"devices":   agg.Devices,
		})
	}

	out, err := structpb.NewStruct(map[string]interface{}{
		"types_requested": report.TypesRequested,
		"devices":         report.Devices,
		"published":       report.Published,
		"catalog_source":  string(report.CatalogSource),
		"aggregates":      aggregates,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode report: %v", err)
	}
	return out, nil
}

// HistoryStruct converts history points to {"points": [{time, value}]}.
func HistoryStruct(points []models.TimeSeriesData) (*structpb.Struct, error) {
	list := make([]interface{}, 0, len(points))
	for _, p := range points {
		list = append(list, map[string]interface{}{
			"time":  p.Time.UTC().Format(time.RFC3339),
			"value": p.Value,
		})
	}
	out, err := structpb.NewStruct(map[string]interface{}{"points": list})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode history: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, aggregator.ErrInvalidType):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, aggregator.ErrMissingAPIKey):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, aggregator.ErrCoordinates):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// SetupServer initializes and configures the gRPC server with all middleware
func SetupServer(
	svc Service,
	history HistoryReader,
	config ServerConfig,
	reg prometheus.Registerer,
	logger *logrus.Logger,
) (*grpc.Server, *HealthChecker) {
	metrics := middleware.NewServerMetrics(reg)

	server := grpc.NewServer(
		grpc.UnaryInterceptor(
			chainUnaryInterceptors(
				middleware.ContextMiddleware, // Add request ID first
				middleware.NewRateLimitingInterceptor(config.RateLimit, config.RateLimitBurst),
				middleware.NewLoggingInterceptor(logger),
				middleware.NewMetricsInterceptor(metrics),
			),
		),
	)

	RegisterAggregatorServer(server, NewAggregatorService(svc, history))

	health := NewHealthChecker()
	grpc_health_v1.RegisterHealthServer(server, health)

	return server, health
}

// chainUnaryInterceptors creates a single interceptor from multiple interceptors
func chainUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			interceptor := interceptors[i]
			chainedInterceptor := chain
			chain = func(currentCtx context.Context, currentReq interface{}) (interface{}, error) {
				return interceptor(currentCtx, currentReq, info, chainedInterceptor)
			}
		}
		return chain(ctx, req)
	}
}
