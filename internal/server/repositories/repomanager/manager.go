// Package repomanager wires the account and session repositories for the
// configured backends and owns their lifecycle.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Sessions() sessions.Repository
	RunMigrations(ctx context.Context) error
	Close() error
}
