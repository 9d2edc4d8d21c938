// Package users stores account records keyed by identifier with a unique,
// lower-cased email.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository is the account store used by the authentication service.
//
// Lookups return common.ErrorNotFound for missing records. Save is
// insert-only and atomic: it fails with common.ErrorAlreadyExists when the
// email is taken and with common.ErrIdentifierTaken when the id is.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Save(ctx context.Context, user *models.User) (*models.User, error)
	DeleteByID(ctx context.Context, id int64) error
}
