// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/lensfolio/internal/platform/apperr"
	"github.com/taibuivan/lensfolio/internal/platform/database/schema"
	"github.com/taibuivan/lensfolio/internal/platform/dberr"
	"github.com/taibuivan/lensfolio/internal/platform/sec"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

var postgresUserColumns = strings.Join(schema.UsersAccount.Columns(), ", ")

/*
Create persists a new user record into the account table.

Returns:
  - error: apperr.Conflict("User already exists") on a taken email
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	account := schema.UsersAccount
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		account.Table, postgresUserColumns,
	)

	stampCreated(user, time.Now().UTC())

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.Phone,
		user.Experience,
		user.City,
		user.Language,
		user.ProfileImage,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return wrapUserWrite(err, "postgres_user_repo_create_failed")
	}

	return nil
}

/*
FindByID retrieves a user record by primary key.
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	account := schema.UsersAccount
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, postgresUserColumns, account.Table, account.ID)

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, wrapUserRead(err, "postgres_user_repo_find_by_id_failed")
	}
	return user, nil
}

/*
FindByEmail retrieves a user record by email, ignoring case.
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	account := schema.UsersAccount
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(%s) = lower($1)`, postgresUserColumns, account.Table, account.Email)

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		return nil, wrapUserRead(err, "postgres_user_repo_find_by_email_failed")
	}
	return user, nil
}

/*
Update overwrites the mutable profile columns and bumps updatedat.
*/
func (repository *PostgresUserRepository) Update(context context.Context, user *User) error {
	account := schema.UsersAccount
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9
		WHERE %s = $1`,
		account.Table,
		account.Name, account.Email, account.Phone, account.Experience,
		account.City, account.Language, account.ProfileImage, account.UpdatedAt,
		account.ID,
	)

	user.UpdatedAt = time.Now().UTC()

	tag, err := repository.pool.Exec(context, query,
		user.ID,
		user.Name,
		user.Email,
		user.Phone,
		user.Experience,
		user.City,
		user.Language,
		user.ProfileImage,
		user.UpdatedAt,
	)
	if err != nil {
		return wrapUserWrite(err, "postgres_user_repo_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
ListByRole returns all accounts with the given role ordered by creation.
*/
func (repository *PostgresUserRepository) ListByRole(context context.Context, role sec.UserRole) ([]*User, error) {
	account := schema.UsersAccount
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s, %s`,
		postgresUserColumns, account.Table, account.Role, account.CreatedAt, account.ID,
	)

	rows, err := repository.pool.Query(context, query, string(role))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_user_repo_list_by_role_failed")
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "postgres_user_repo_list_by_role_scan_failed")
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "postgres_user_repo_list_by_role_failed")
	}

	return users, nil
}

// # Shared Row Mapping

// rowScanner is satisfied by pgx rows and database/sql rows alike.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser hydrates a User from a row selected with [schema.UsersAccountTable.Columns].
func scanUser(row rowScanner) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Phone,
		&user.Experience,
		&user.City,
		&user.Language,
		&user.ProfileImage,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func stampCreated(user *User, now time.Time) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
}

func wrapUserRead(err error, action string) error {
	if dberr.IsNoRows(err) {
		return apperr.NotFound("User")
	}
	return dberr.Wrap(err, action)
}

func wrapUserWrite(err error, action string) error {
	if dberr.IsUniqueViolation(err) {
		conflict := apperr.Conflict("User already exists")
		conflict.Cause = fmt.Errorf("%s: %w", action, err)
		return conflict
	}
	return dberr.Wrap(err, action)
}
