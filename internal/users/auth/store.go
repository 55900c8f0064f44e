// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/taibuivan/lensfolio/internal/platform/sec"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound("User") when absent, storage failures otherwise
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email, compared case-insensitively.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound("User") when absent, storage failures otherwise
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new account.

		Returns:
		  - error: apperr.Conflict when the email is taken, storage failures otherwise
	*/
	Create(context context.Context, user *User) error

	/*
		Update persists changes to the mutable profile fields.

		Returns:
		  - error: apperr.NotFound, apperr.Conflict on a taken email, storage failures
	*/
	Update(context context.Context, user *User) error

	/*
		ListByRole returns every account holding role, oldest first.
	*/
	ListByRole(context context.Context, role sec.UserRole) ([]*User, error)
}

// # Volatile Data Access

// RevocationStore remembers access tokens that were logged out before expiry.
type RevocationStore interface {

	/*
		Revoke records tokenID as revoked for ttl. After ttl the token has
		expired anyway and the entry may be forgotten.
	*/
	Revoke(context context.Context, tokenID string, ttl time.Duration) error

	/*
		IsRevoked reports whether tokenID was revoked and has not yet expired.
	*/
	IsRevoked(context context.Context, tokenID string) (bool, error)
}
