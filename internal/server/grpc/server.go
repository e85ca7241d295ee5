// Package grpc exposes the authentication flows as a gRPC service. Messages
// are plain Go structs carried by a JSON codec.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/sidhilynx/internal/logging"
	"github.com/dmitrijs2005/sidhilynx/internal/server/metrics"
	"github.com/dmitrijs2005/sidhilynx/internal/server/services"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
)

// Authenticator is the subset of services.Authenticator the transport needs.
type Authenticator interface {
	Login(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error)
	Refresh(ctx context.Context, req services.RefreshRequest) (*services.RefreshResult, error)
	Logout(ctx context.Context, req services.RefreshRequest) error
	VerifyAccess(ctx context.Context, bearer string, p services.ClientProof, path string) (*services.Principal, error)
}

type GRPCServer struct {
	address    string
	auth       Authenticator
	metrics    *metrics.Metrics
	logger     logging.Logger
	trustProxy bool
}

func NewGRPCServer(a string, l logging.Logger, auth Authenticator, m *metrics.Metrics, trustProxy bool) *GRPCServer {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		auth:       auth,
		metrics:    m,
		trustProxy: trustProxy,
	}
}

// newServer builds the grpc.Server with tracing, the client-bound
// interceptor and AuthService registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.clientBoundInterceptor),
	)
	srv.RegisterService(&AuthServiceDesc, &authService{s})
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
