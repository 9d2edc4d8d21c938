package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestInterceptor_PublicMethodSkipsToken(t *testing.T) {
	s := newTestServer(&fakeAuth{resolveErr: common.ErrorUnauthenticated})

	for _, m := range []string{api.MethodRegister, api.MethodLogin, api.MethodPing} {
		called := false
		h := func(ctx context.Context, req interface{}) (interface{}, error) {
			called = true
			return "ok", nil
		}
		resp, err := s.accessTokenInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: m}, h)
		require.NoError(t, err, m)
		assert.True(t, called, m)
		assert.Equal(t, "ok", resp)
	}
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer(&fakeAuth{})
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: api.MethodGetUser}, h)
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Unauthenticated, st.Code())
	assert.Equal(t, "missing token", st.Message())
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer(&fakeAuth{resolveErr: common.ErrorUnauthenticated})
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, "bad"))
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called for invalid token")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: api.MethodLogout}, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_ValidTokenSetsCaller(t *testing.T) {
	s := newTestServer(&fakeAuth{resolveUser: &models.User{ID: 1234567}})
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, "good"))

	var got *models.User
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		got, _ = CallerFromContext(ctx)
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: api.MethodDeleteUser}, h)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1234567), got.ID)
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := newTestServer(&fakeAuth{})
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "x")
	}

	_, err := s.loggingInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: api.MethodPing}, h)
	assert.Equal(t, codes.NotFound, status.Code(err))
}
