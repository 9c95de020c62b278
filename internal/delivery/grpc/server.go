package grpc

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServiceName is the name health clients use to ask about the storefront itself.
const ServiceName = "storefront"

// Checker runs the dependency checks. The HTTP health handler implements it.
type Checker interface {
	Run(ctx context.Context) (map[string]string, bool)
}

// Server exposes the standard gRPC health service backed by the same checks
// as GET /healthz, plus reflection for grpcurl.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	checker    Checker
	log        *logrus.Logger

	mu      sync.Mutex
	serving bool
}

func NewServer(checker Checker, logger *logrus.Logger) *Server {
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(UnaryLoggingInterceptor(logger)))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	logger.Info("gRPC Server: health and reflection services registered")

	s := &Server{
		grpcServer: grpcServer,
		health:     healthServer,
		checker:    checker,
		log:        logger,
	}
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

func (s *Server) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Refresh runs the checks once and publishes the result.
func (s *Server) Refresh(ctx context.Context) bool {
	results, healthy := s.checker.Run(ctx)

	s.mu.Lock()
	changed := healthy != s.serving
	s.serving = healthy
	s.mu.Unlock()

	if healthy {
		s.setStatus(healthpb.HealthCheckResponse_SERVING)
	} else {
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	}
	if changed {
		s.log.WithField("checks", results).Infof("gRPC Server: health changed, serving=%t", healthy)
	}
	return healthy
}

// Watch refreshes the health status every interval until ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

func (s *Server) Serve(lis net.Listener) error {
	s.log.Infof("gRPC Server: listening on %s", lis.Addr())
	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

// UnaryLoggingInterceptor logs every call and converts domain errors to
// gRPC status errors.
func UnaryLoggingInterceptor(logger *logrus.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		entry := logger.WithFields(logrus.Fields{
			"method":     info.FullMethod,
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if err != nil {
			err = mapDomainErrorToGrpcStatus(err)
			entry.WithField("code", status.Code(err)).Warnf("gRPC Handler: call failed: %v", err)
			return nil, err
		}
		entry.Debug("gRPC Handler: call completed")
		return resp, nil
	}
}

func mapDomainErrorToGrpcStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotAuthenticated):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, domain.ErrBackendUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Errorf(codes.Internal, "Internal server error: %v", err)
	}
}
