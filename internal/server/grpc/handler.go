package grpc

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to gRPC status codes. Unknown errors are
// logged and reported as a bare internal error.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, common.ErrorUnauthenticated):
		return status.Error(codes.Unauthenticated, "unauthenticated")
	}
	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func validateRegister(req *api.RegisterRequest) error {
	var problems []string
	if _, err := mail.ParseAddress(req.Email); err != nil || strings.ContainsAny(req.Email, "<> ") {
		problems = append(problems, "email is not valid")
	}
	if strings.TrimSpace(req.Name) == "" {
		problems = append(problems, "name must not be blank")
	}
	if strings.TrimSpace(req.Password) == "" {
		problems = append(problems, "password must not be blank")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrorValidation, strings.Join(problems, "; "))
	}
	return nil
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{ID: u.ID, Name: u.Name, Email: u.Email, Password: u.Password}
}

func (s *GRPCServer) caller(ctx context.Context) (*models.User, error) {
	u, ok := CallerFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return u, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	if err := validateRegister(req); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	user, err := s.auth.Register(ctx, req.Email, req.Name, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &api.RegisterResponse{User: toAPIUser(user)}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	token, userID, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.LoginResponse{AccessToken: token, UserID: userID}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *api.LogoutRequest) (*api.LogoutResponse, error) {
	u, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Logout(ctx, u.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.LogoutResponse{}, nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *api.GetUserRequest) (*api.GetUserResponse, error) {
	u, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.auth.GetPrivate(ctx, u.ID, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.GetUserResponse{User: toAPIUser(user)}, nil
}

func (s *GRPCServer) DeleteUser(ctx context.Context, req *api.DeleteUserRequest) (*api.DeleteUserResponse, error) {
	u, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.auth.DeleteAccount(ctx, u.ID, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.DeleteUserResponse{}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}
