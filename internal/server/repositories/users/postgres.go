package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

const emailConstraint = "users_email_key"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, name, password, email FROM users
		 WHERE email = $1
		 `
	return r.findOne(ctx, query, email)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT id, name, password, email FROM users
		 WHERE id = $1
		 `
	return r.findOne(ctx, query, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Name, &user.Password, &user.Email)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Save(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, name, password, email)
		 VALUES ($1, $2, $3, $4)
		 `

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Password, user.Email)
	if err != nil {
		if constraint, ok := dbx.UniqueViolation(err); ok {
			if constraint == emailConstraint {
				return nil, common.ErrorAlreadyExists
			}
			return nil, common.ErrIdentifierTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// DeleteByID removes the account. Deleting an unknown id returns
// common.ErrorNotFound.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
