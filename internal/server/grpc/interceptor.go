package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const callerKey ctxKey = "caller"

// protectedMethods require a live access token.
var protectedMethods = map[string]bool{
	api.MethodLogout:     true,
	api.MethodGetUser:    true,
	api.MethodDeleteUser: true,
}

// CallerFromContext returns the account resolved by the access-token
// interceptor.
func CallerFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(callerKey).(*models.User)
	return u, ok && u != nil
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	user, err := s.auth.ResolveCaller(ctx, accessToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	ctx = context.WithValue(ctx, callerKey, user)
	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	log := s.logger.With("request_id", uuid.NewString(), "method", info.FullMethod)

	resp, err := handler(ctx, req)

	log.Info(ctx, "request handled",
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
