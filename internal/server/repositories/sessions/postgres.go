package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

const valueConstraint = "sessions_token_value_key"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Replace locks the owner's row, if any, and upserts the new value in the
// same transaction.
func (r *PostgresRepository) Replace(ctx context.Context, entry *models.TokenEntry) (*models.TokenEntry, error) {
	var prev *models.TokenEntry

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		selectQuery :=
			`SELECT token_value FROM sessions
			 WHERE owner_id = $1
			 FOR UPDATE
			 `
		var value int64
		err := tx.QueryRowContext(ctx, selectQuery, entry.OwnerID).Scan(&value)
		switch {
		case err == nil:
			prev = &models.TokenEntry{OwnerID: entry.OwnerID, Value: value}
		case errors.Is(err, sql.ErrNoRows):
		default:
			return fmt.Errorf("db error: %w", err)
		}

		upsertQuery :=
			`INSERT INTO sessions (owner_id, token_value)
			 VALUES ($1, $2)
			 ON CONFLICT (owner_id) DO UPDATE
			 SET token_value = EXCLUDED.token_value, issued_at = now()
			 `
		if _, err := tx.ExecContext(ctx, upsertQuery, entry.OwnerID, entry.Value); err != nil {
			if constraint, ok := dbx.UniqueViolation(err); ok && constraint == valueConstraint {
				return common.ErrorAlreadyExists
			}
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return prev, nil
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID int64) (*models.TokenEntry, error) {
	query :=
		`SELECT owner_id, token_value FROM sessions
		 WHERE owner_id = $1
		 `
	entry := &models.TokenEntry{}
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&entry.OwnerID, &entry.Value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID int64) error {
	query := `DELETE FROM sessions WHERE owner_id = $1`
	if _, err := r.db.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ValueExists(ctx context.Context, value int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM sessions WHERE token_value = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}
