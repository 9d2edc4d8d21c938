package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/grpc"
)

// AuthService is the business API served over gRPC.
type AuthService interface {
	Register(ctx context.Context, email, name, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, int64, error)
	Logout(ctx context.Context, ownerID int64) error
	GetPrivate(ctx context.Context, callerID, targetID int64) (*models.User, error)
	DeleteAccount(ctx context.Context, callerID, targetID int64) error
	ResolveCaller(ctx context.Context, bearer string) (*models.User, error)
}

type GRPCServer struct {
	address string
	auth    AuthService
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, auth AuthService) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		auth:    auth,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	api.RegisterAuthServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
