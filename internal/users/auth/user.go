// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the Identity Directory: customer and photographer
accounts, credentials and access tokens.

# Architecture

The directory is a leaf. The catalog reads accounts through [UserRepository]
to check that a photographer exists and holds the photographer role; nothing
here knows about catalogs.
*/
package auth

import (
	"time"

	"github.com/taibuivan/lensfolio/internal/platform/sec"
)

// # Domain Entities

// User represents a registered customer or photographer.
//
// Phone, Experience and City are mandatory for photographers only.
type User struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.UserRole `json:"role"`
	Phone        string       `json:"phone,omitempty"`
	Experience   string       `json:"experience,omitempty"`
	City         string       `json:"city,omitempty"`
	Language     string       `json:"language,omitempty"`
	ProfileImage string       `json:"profile_image,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// IsPhotographer reports whether the account may own a catalog.
func (user *User) IsPhotographer() bool {
	return user.Role == sec.RolePhotographer
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

// # Authentication Constraints

const (
	// MinPasswordLength is the shortest password accepted at signup.
	MinPasswordLength = 8

	// MaxNameLength bounds display names.
	MaxNameLength = 120

	// TokenType is the scheme clients send back in the Authorization header.
	TokenType = "Bearer"

	// ProfileImageCategory groups profile pictures in the file store.
	ProfileImageCategory = "profiles"
)

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
	FieldPhone           = "phone"
	FieldExperience      = "experience"
	FieldCity            = "city"
	FieldLanguage        = "language"
	FieldProfile         = "profile"
)
