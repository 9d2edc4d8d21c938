// Package sessions persists the single live token of every account.
//
// The store holds at most one entry per owner and every token value belongs
// to at most one owner. Replace installs a new entry and drops the old one in
// a single atomic step, so a concurrent reader never observes two live tokens
// for the same owner.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	// Replace makes entry the owner's only live token and returns the entry
	// it superseded, or nil. It fails with common.ErrorAlreadyExists when
	// entry.Value is already live for a different owner.
	Replace(ctx context.Context, entry *models.TokenEntry) (*models.TokenEntry, error)
	// Get returns the owner's live entry or common.ErrorNotFound.
	Get(ctx context.Context, ownerID int64) (*models.TokenEntry, error)
	// Delete drops the owner's live entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, ownerID int64) error
	// ValueExists reports whether value is live for any owner.
	ValueExists(ctx context.Context, value int64) (bool, error)
}
