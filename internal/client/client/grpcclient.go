package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.AuthServiceClient

	mu          sync.RWMutex
	accessToken string
	userID      int64
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}

	err := invoker(ctx, method, req, reply, cc, opts...)

	// The session was superseded by another login or revoked.
	if status.Code(err) == codes.Unauthenticated && method != api.MethodLogin {
		s.setSession("", 0)
	}
	return err
}

// NewGRPCClient creates a lazily connecting client for endpointURL.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = api.NewAuthServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) setSession(token string, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
	s.userID = userID
}

func (s *GRPCClient) session() (string, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.userID
}

func (s *GRPCClient) LoggedIn() bool {
	return s.token() != ""
}

func (s *GRPCClient) Register(ctx context.Context, email, name, password string) (*api.User, error) {
	req := &api.RegisterRequest{Email: email, Name: name, Password: password}

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) error {
	req := &api.LoginRequest{Email: email, Password: password}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return s.mapError(err)
	}

	s.setSession(resp.AccessToken, resp.UserID)
	return nil
}

func (s *GRPCClient) Logout(ctx context.Context) error {
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}

	_, err := s.client.Logout(ctx, &api.LogoutRequest{})
	s.setSession("", 0)
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Me(ctx context.Context) (*api.User, error) {
	token, id := s.session()
	if token == "" {
		return nil, ErrNotLoggedIn
	}

	resp, err := s.client.GetUser(ctx, &api.GetUserRequest{ID: id})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) DeleteAccount(ctx context.Context) error {
	token, id := s.session()
	if token == "" {
		return ErrNotLoggedIn
	}

	if _, err := s.client.DeleteUser(ctx, &api.DeleteUserRequest{ID: id}); err != nil {
		return s.mapError(err)
	}
	s.setSession("", 0)
	return nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
