// Package services contains server-side business logic. AuthService handles
// registration, login, logout and account access for authenticated callers.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/idgen"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

const registerAttempts = 8

// TokenStore is the part of tokens.Store used by the service.
type TokenStore interface {
	Issue(ctx context.Context, ownerID int64) (string, error)
	Invalidate(ctx context.Context, ownerID int64) error
	Validate(ctx context.Context, bearer string) (*models.TokenEntry, error)
}

type AuthService struct {
	users    users.Repository
	tokens   TokenStore
	ids      *idgen.Generator
	idDigits int
	logger   logging.Logger
	metrics  *metrics.Metrics
}

// NewAuthService builds the service. idDigits is the generator length for
// account identifiers; m may be nil.
func NewAuthService(repo users.Repository, tokens TokenStore, ids *idgen.Generator, idDigits int, logger logging.Logger, m *metrics.Metrics) *AuthService {
	return &AuthService{
		users:    repo,
		tokens:   tokens,
		ids:      ids,
		idDigits: idDigits,
		logger:   logger.With("module", "auth"),
		metrics:  m,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(email)
}

func (s *AuthService) internal(ctx context.Context, msg string, err error) error {
	s.logger.Error(ctx, msg, "error", err)
	return fmt.Errorf("%w: %s: %w", common.ErrorInternal, msg, err)
}

// Register creates an account with a fresh identifier. Emails are compared
// case-insensitively; a duplicate yields common.ErrorAlreadyExists.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	email = normalizeEmail(email)

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		s.metrics.Registration(metrics.StatusConflict)
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		s.metrics.Registration(metrics.StatusError)
		return nil, s.internal(ctx, "error looking up email", err)
	}

	for attempt := 1; attempt <= registerAttempts; attempt++ {
		id, err := s.ids.Generate(ctx, s.idDigits, s.users.ExistsByID)
		if err != nil {
			s.metrics.Registration(metrics.StatusError)
			return nil, s.internal(ctx, "error generating user id", err)
		}

		user, err := s.users.Save(ctx, &models.User{ID: id, Name: name, Password: password, Email: email})
		switch {
		case err == nil:
			s.metrics.Registration(metrics.StatusOK)
			s.logger.Info(ctx, "user registered", "user_id", user.ID)
			return user, nil
		case errors.Is(err, common.ErrIdentifierTaken):
			s.logger.Debug(ctx, "user id taken concurrently, regenerating", "attempt", attempt)
			continue
		case errors.Is(err, common.ErrorAlreadyExists):
			s.metrics.Registration(metrics.StatusConflict)
			return nil, common.ErrorAlreadyExists
		default:
			s.metrics.Registration(metrics.StatusError)
			return nil, s.internal(ctx, "error saving user", err)
		}
	}

	s.metrics.Registration(metrics.StatusError)
	return nil, s.internal(ctx, "error saving user", idgen.ErrExhausted)
}

// Login checks credentials and issues a new token, superseding any previous
// session of the account. It returns the bearer string and the account id.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, int64, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.Login(metrics.StatusNotFound)
			return "", 0, common.ErrorNotFound
		}
		s.metrics.Login(metrics.StatusError)
		return "", 0, s.internal(ctx, "error looking up email", err)
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		s.metrics.Login(metrics.StatusInvalid)
		return "", 0, common.ErrorInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		s.metrics.Login(metrics.StatusError)
		return "", 0, s.internal(ctx, "error issuing token", err)
	}

	s.metrics.Login(metrics.StatusOK)
	return token, user.ID, nil
}

func (s *AuthService) Logout(ctx context.Context, ownerID int64) error {
	if err := s.tokens.Invalidate(ctx, ownerID); err != nil {
		return s.internal(ctx, "error invalidating token", err)
	}
	return nil
}

// GetPrivate returns the caller's own record. Asking for any other account
// is common.ErrorForbidden whether or not it exists.
func (s *AuthService) GetPrivate(ctx context.Context, callerID, targetID int64) (*models.User, error) {
	if callerID != targetID {
		return nil, common.ErrorForbidden
	}

	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "error loading user", err)
	}
	return user, nil
}

// DeleteAccount removes the caller's own account after revoking its session.
func (s *AuthService) DeleteAccount(ctx context.Context, callerID, targetID int64) error {
	if callerID != targetID {
		return common.ErrorForbidden
	}

	if err := s.tokens.Invalidate(ctx, targetID); err != nil {
		return s.internal(ctx, "error invalidating token", err)
	}
	if err := s.users.DeleteByID(ctx, targetID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return s.internal(ctx, "error deleting user", err)
	}

	s.logger.Info(ctx, "user deleted", "user_id", targetID)
	return nil
}

// ResolveCaller maps a bearer string to the account it authenticates.
// Rejected tokens and tokens of deleted accounts are
// common.ErrorUnauthenticated.
func (s *AuthService) ResolveCaller(ctx context.Context, bearer string) (*models.User, error) {
	entry, err := s.tokens.Validate(ctx, bearer)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthenticated) {
			return nil, err
		}
		return nil, s.internal(ctx, "error validating token", err)
	}

	user, err := s.users.FindByID(ctx, entry.OwnerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", common.ErrorUnauthenticated)
		}
		return nil, s.internal(ctx, "error loading user", err)
	}
	return user, nil
}
