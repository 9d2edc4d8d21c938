package client

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/api"
)

type Client interface {
	Close() error
	Register(ctx context.Context, email, name, password string) (*api.User, error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*api.User, error)
	DeleteAccount(ctx context.Context) error
	Ping(ctx context.Context) error
	LoggedIn() bool
}
