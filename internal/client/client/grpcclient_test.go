package client

import (
	"context"
	"io"
	"net"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/idgen"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	servergrpc "github.com/dmitrijs2005/gophauth/internal/server/grpc"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func newTestClient(t *testing.T) (*GRPCClient, func() *GRPCClient) {
	t.Helper()

	log := logging.NewJSON(io.Discard, 0)
	ids := idgen.New()
	store := tokens.NewStore(sessions.NewMemoryRepository(), tokens.PlainCodec{}, ids, 12, log, nil)
	svc := services.NewAuthService(users.NewMemoryRepository(), store, ids, 6, log, nil)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- servergrpc.NewGRPCServer("bufnet", log, svc).Serve(ctx, lis) }()

	var clients []*GRPCClient
	dial := func() *GRPCClient {
		c, err := NewGRPCClient("passthrough:///bufnet",
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}))
		require.NoError(t, err)
		clients = append(clients, c)
		return c
	}

	t.Cleanup(func() {
		for _, c := range clients {
			_ = c.Close()
		}
		cancel()
		<-done
	})
	return dial(), dial
}

func TestGRPCClient_Flow(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	u, err := c.Register(ctx, "stu@fudan.edu.cn", "user1", "1234")
	require.NoError(t, err)
	assert.Equal(t, "stu@fudan.edu.cn", u.Email)

	_, err = c.Register(ctx, "stu@fudan.edu.cn", "user1", "1234")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = c.Register(ctx, "bad", "user1", "1234")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = c.Me(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	err = c.Login(ctx, "stu@fudan.edu.cn", "nope")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, c.LoggedIn())

	require.NoError(t, c.Login(ctx, "stu@fudan.edu.cn", "1234"))
	assert.True(t, c.LoggedIn())

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)
	assert.Equal(t, "user1", me.Name)

	require.NoError(t, c.Logout(ctx))
	assert.False(t, c.LoggedIn())
	assert.ErrorIs(t, c.Logout(ctx), ErrNotLoggedIn)
}

func TestGRPCClient_SupersededSessionIsDropped(t *testing.T) {
	first, dial := newTestClient(t)
	second := dial()
	ctx := context.Background()

	_, err := first.Register(ctx, "a@b.c", "a", "p")
	require.NoError(t, err)

	require.NoError(t, first.Login(ctx, "a@b.c", "p"))
	require.NoError(t, second.Login(ctx, "a@b.c", "p"))

	_, err = first.Me(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, first.LoggedIn())

	_, err = second.Me(ctx)
	assert.NoError(t, err)
}

func TestGRPCClient_DeleteAccount(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.Register(ctx, "a@b.c", "a", "p")
	require.NoError(t, err)
	require.NoError(t, c.Login(ctx, "a@b.c", "p"))

	require.NoError(t, c.DeleteAccount(ctx))
	assert.False(t, c.LoggedIn())

	err = c.Login(ctx, "a@b.c", "p")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	tests := []struct {
		code codes.Code
		want error
	}{
		{codes.Unauthenticated, ErrUnauthorized},
		{codes.PermissionDenied, ErrUnauthorized},
		{codes.Unavailable, ErrUnavailable},
		{codes.DeadlineExceeded, ErrUnavailable},
		{codes.NotFound, ErrNotFound},
		{codes.AlreadyExists, ErrAlreadyExists},
		{codes.InvalidArgument, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.ErrorIs(t, c.mapError(status.Error(tt.code, "x")), tt.want)
		})
	}

	assert.NoError(t, c.mapError(nil))
	assert.Error(t, c.mapError(status.Error(codes.Internal, "boom")))
}
