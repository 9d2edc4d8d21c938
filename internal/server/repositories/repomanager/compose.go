package repomanager

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// Override replaces parts of a base manager: a different session backend
// (e.g. Redis) or a decorated account repository (e.g. the lookup cache).
// Closers are closed before the base manager.
type Override struct {
	base     RepositoryManager
	users    users.Repository
	sessions sessions.Repository
	closers  []io.Closer
}

func NewOverride(base RepositoryManager) *Override {
	return &Override{base: base}
}

func (o *Override) WithUsers(r users.Repository, closer io.Closer) *Override {
	o.users = r
	if closer != nil {
		o.closers = append(o.closers, closer)
	}
	return o
}

func (o *Override) WithSessions(r sessions.Repository, closer io.Closer) *Override {
	o.sessions = r
	if closer != nil {
		o.closers = append(o.closers, closer)
	}
	return o
}

func (o *Override) Users() users.Repository {
	if o.users != nil {
		return o.users
	}
	return o.base.Users()
}

func (o *Override) Sessions() sessions.Repository {
	if o.sessions != nil {
		return o.sessions
	}
	return o.base.Sessions()
}

func (o *Override) RunMigrations(ctx context.Context) error {
	return o.base.RunMigrations(ctx)
}

func (o *Override) Close() error {
	var errs []error
	for _, c := range o.closers {
		errs = append(errs, c.Close())
	}
	errs = append(errs, o.base.Close())
	return errors.Join(errs...)
}
