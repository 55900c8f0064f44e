// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/taibuivan/lensfolio/internal/platform/apperr"
	"github.com/taibuivan/lensfolio/internal/platform/database/schema"
	"github.com/taibuivan/lensfolio/internal/platform/dberr"
	"github.com/taibuivan/lensfolio/internal/platform/sec"
)

// SQLiteUserRepository implements the UserRepository interface on database/sql.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a SQLite implementation of the UserRepository.
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

var sqliteUserColumns = strings.Join(schema.UsersAccount.Columns(), ", ")

// Create inserts a new account row.
func (repository *SQLiteUserRepository) Create(context context.Context, user *User) error {
	account := schema.UsersAccount
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.Table, sqliteUserColumns,
	)

	stampCreated(user, time.Now().UTC())

	_, err := repository.db.ExecContext(context, query,
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
		return wrapUserWrite(err, "sqlite_user_repo_create_failed")
	}
	return nil
}

// FindByID retrieves an account by primary key.
func (repository *SQLiteUserRepository) FindByID(context context.Context, id string) (*User, error) {
	account := schema.UsersAccount
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`, sqliteUserColumns, account.Table, account.ID)

	user, err := scanUser(repository.db.QueryRowContext(context, query, id))
	if err != nil {
		return nil, wrapUserRead(err, "sqlite_user_repo_find_by_id_failed")
	}
	return user, nil
}

// FindByEmail retrieves an account by email. The column collates NOCASE.
func (repository *SQLiteUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	account := schema.UsersAccount
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`, sqliteUserColumns, account.Table, account.Email)

	user, err := scanUser(repository.db.QueryRowContext(context, query, email))
	if err != nil {
		return nil, wrapUserRead(err, "sqlite_user_repo_find_by_email_failed")
	}
	return user, nil
}

// Update overwrites the mutable profile columns.
func (repository *SQLiteUserRepository) Update(context context.Context, user *User) error {
	account := schema.UsersAccount
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ?
		WHERE %s = ?`,
		account.Table,
		account.Name, account.Email, account.Phone, account.Experience,
		account.City, account.Language, account.ProfileImage, account.UpdatedAt,
		account.ID,
	)

	user.UpdatedAt = time.Now().UTC()

	result, err := repository.db.ExecContext(context, query,
		user.Name,
		user.Email,
		user.Phone,
		user.Experience,
		user.City,
		user.Language,
		user.ProfileImage,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return wrapUserWrite(err, "sqlite_user_repo_update_failed")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return dberr.Wrap(err, "sqlite_user_repo_update_failed")
	}
	if affected == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// ListByRole returns all accounts with the given role ordered by creation.
func (repository *SQLiteUserRepository) ListByRole(context context.Context, role sec.UserRole) ([]*User, error) {
	account := schema.UsersAccount
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? ORDER BY %s, %s`,
		sqliteUserColumns, account.Table, account.Role, account.CreatedAt, account.ID,
	)

	rows, err := repository.db.QueryContext(context, query, string(role))
	if err != nil {
		return nil, dberr.Wrap(err, "sqlite_user_repo_list_by_role_failed")
	}
	defer func() { _ = rows.Close() }()

	users := []*User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "sqlite_user_repo_list_by_role_scan_failed")
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "sqlite_user_repo_list_by_role_failed")
	}
	return users, nil
}
