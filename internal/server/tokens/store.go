// Package tokens issues, validates and revokes bearer tokens. Each account
// has at most one live token; issuing a new one supersedes the old.
package tokens

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/idgen"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/sessions"
)

var (
	// ErrMalformedToken means the bearer string could not be decoded.
	ErrMalformedToken = errors.New("malformed token")
	// ErrTokenNotLive means the bearer decoded but is not the owner's live
	// token: never issued, superseded or logged out.
	ErrTokenNotLive = errors.New("token is not live")
)

const reserveAttempts = 8

type Store struct {
	repo    sessions.Repository
	codec   Codec
	ids     *idgen.Generator
	digits  int
	logger  logging.Logger
	metrics *metrics.Metrics
}

// NewStore returns a token store drawing values with digits+1 decimal digits.
// m may be nil.
func NewStore(repo sessions.Repository, codec Codec, ids *idgen.Generator, digits int, logger logging.Logger, m *metrics.Metrics) *Store {
	return &Store{
		repo:    repo,
		codec:   codec,
		ids:     ids,
		digits:  digits,
		logger:  logger.With("module", "tokens"),
		metrics: m,
	}
}

// Issue creates a new live token for ownerID, superseding any previous one.
func (s *Store) Issue(ctx context.Context, ownerID int64) (string, error) {
	for attempt := 1; attempt <= reserveAttempts; attempt++ {
		value, err := s.ids.Generate(ctx, s.digits, s.repo.ValueExists)
		if err != nil {
			return "", fmt.Errorf("error generating token value: %w", err)
		}

		entry := &models.TokenEntry{OwnerID: ownerID, Value: value}
		prev, err := s.repo.Replace(ctx, entry)
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.logger.Debug(ctx, "token value claimed concurrently, regenerating", "attempt", attempt)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("error storing token: %w", err)
		}

		if prev != nil {
			s.metrics.Superseded()
			s.logger.Info(ctx, "previous token superseded", "owner_id", ownerID)
		}

		bearer, err := s.codec.Encode(*entry)
		if err != nil {
			return "", fmt.Errorf("error encoding token: %w", err)
		}
		return bearer, nil
	}

	return "", fmt.Errorf("%w: no free token value after %d attempts", common.ErrorInternal, reserveAttempts)
}

// Invalidate drops the owner's live token. It is a no-op when there is none.
func (s *Store) Invalidate(ctx context.Context, ownerID int64) error {
	if err := s.repo.Delete(ctx, ownerID); err != nil {
		return fmt.Errorf("error invalidating token: %w", err)
	}
	return nil
}

// ResolveOwner decodes bearer and checks it against the owner's live entry.
func (s *Store) ResolveOwner(ctx context.Context, bearer string) (*models.TokenEntry, error) {
	entry, err := s.codec.Decode(bearer)
	if err != nil {
		return nil, err
	}

	live, err := s.repo.Get(ctx, entry.OwnerID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrTokenNotLive
	}
	if err != nil {
		return nil, fmt.Errorf("error loading token: %w", err)
	}
	if live.Value != entry.Value {
		return nil, ErrTokenNotLive
	}
	return live, nil
}

// Validate is ResolveOwner for request authentication: every rejection
// matches common.ErrorUnauthenticated as well as its cause. Backend failures
// are returned unchanged.
func (s *Store) Validate(ctx context.Context, bearer string) (*models.TokenEntry, error) {
	entry, err := s.ResolveOwner(ctx, bearer)
	switch {
	case err == nil:
		s.metrics.TokenValidation(metrics.StatusOK)
		return entry, nil
	case errors.Is(err, ErrMalformedToken), errors.Is(err, ErrTokenNotLive):
		s.metrics.TokenValidation(metrics.StatusInvalid)
		s.logger.Debug(ctx, "token rejected", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthenticated, err)
	default:
		s.metrics.TokenValidation(metrics.StatusError)
		return nil, err
	}
}
