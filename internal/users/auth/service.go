// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taibuivan/lensfolio/internal/platform/apperr"
	"github.com/taibuivan/lensfolio/internal/platform/sec"
	"github.com/taibuivan/lensfolio/pkg/pointer"
	"github.com/taibuivan/lensfolio/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing and checking access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID, email, role string, timeToLive time.Duration) (string, error)

	// VerifyToken checks signature, issuer and expiry and returns the claims.
	VerifyToken(token string) (*sec.AuthClaims, error)
}

// Service implements the identity use cases: signup, login, logout, profile.
type Service struct {
	userRepository  UserRepository
	revocationStore RevocationStore
	tokenProvider   TokenProvider
	tokenTTL        time.Duration
	now             func() time.Time
}

// NewService constructs a new [Service] with its dependencies.
func NewService(userRepo UserRepository, revocations RevocationStore, tokens TokenProvider, tokenTTL time.Duration) *Service {
	return &Service{
		userRepository:  userRepo,
		revocationStore: revocations,
		tokenProvider:   tokens,
		tokenTTL:        tokenTTL,
		now:             time.Now,
	}
}

// # Registration Flow

// CustomerSignupInput holds the data required to enroll a customer.
type CustomerSignupInput struct {
	Name     string
	Email    string
	Password string
}

// PhotographerSignupInput holds the data required to enroll a photographer.
type PhotographerSignupInput struct {
	Name       string
	Email      string
	Password   string
	Phone      string
	City       string
	Language   string
	Experience string
}

/*
SignupCustomer creates a customer account.

Returns:
  - *User: Created entity
  - error: apperr.Conflict("User already exists") or storage errors
*/
func (service *Service) SignupCustomer(context context.Context, input CustomerSignupInput) (*User, error) {
	return service.register(context, &User{
		Name:  strings.TrimSpace(input.Name),
		Email: normalizeEmail(input.Email),
		Role:  sec.RoleCustomer,
	}, input.Password)
}

/*
SignupPhotographer creates a photographer account with its public profile.

Returns:
  - *User: Created entity
  - error: apperr.Conflict("User already exists") or storage errors
*/
func (service *Service) SignupPhotographer(context context.Context, input PhotographerSignupInput) (*User, error) {
	return service.register(context, &User{
		Name:       strings.TrimSpace(input.Name),
		Email:      normalizeEmail(input.Email),
		Role:       sec.RolePhotographer,
		Phone:      strings.TrimSpace(input.Phone),
		City:       strings.TrimSpace(input.City),
		Language:   strings.TrimSpace(input.Language),
		Experience: strings.TrimSpace(input.Experience),
	}, input.Password)
}

func (service *Service) register(context context.Context, user *User, password string) (*User, error) {

	// Early uniqueness check for a friendly error; the unique index still decides races.
	if _, err := service.userRepository.FindByEmail(context, user.Email); err == nil {
		return nil, apperr.Conflict("User already exists")
	} else if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	hashedPassword, err := sec.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user.ID = uuid.New()
	user.PasswordHash = hashedPassword

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return user, nil
}

// # Authentication Flow

/*
Login validates credentials and issues an access token.

Returns:
  - *Session: Token and account
  - error: apperr.Unauthorized for unknown email or wrong password alike
*/
func (service *Service) Login(context context.Context, email, password string) (*Session, error) {
	user, err := service.userRepository.FindByEmail(context, normalizeEmail(email))
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized("Invalid login credentials")
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// Constant-time comparison inside bcrypt
	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email, string(user.Role), service.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_failed: %w", err)
	}

	return &Session{
		AccessToken: accessToken,
		TokenType:   TokenType,
		ExpiresIn:   int64(service.tokenTTL.Seconds()),
		ExpiresAt:   service.now().Add(service.tokenTTL).UTC(),
		User:        user,
	}, nil
}

/*
Logout revokes the presented token until it expires.
*/
func (service *Service) Logout(context context.Context, claims *sec.AuthClaims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(service.now())
	if err := service.revocationStore.Revoke(context, claims.ID, ttl); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

/*
VerifyToken checks a bearer token and rejects revoked ones. It satisfies the
middleware's TokenVerifier.
*/
func (service *Service) VerifyToken(context context.Context, token string) (*sec.AuthClaims, error) {
	claims, err := service.tokenProvider.VerifyToken(token)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	if claims.ID != "" {
		revoked, err := service.revocationStore.IsRevoked(context, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("auth_service_revocation_check_failed: %w", err)
		}
		if revoked {
			return nil, apperr.Unauthorized("Token has been revoked")
		}
	}

	return claims, nil
}

// # Profile

/*
GetProfile returns the account of userID.
*/
func (service *Service) GetProfile(context context.Context, userID string) (*User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_get_profile_failed: %w", err)
	}
	return user, nil
}

// UpdateProfileInput carries the fields a user may change. Nil fields keep
// their current value.
type UpdateProfileInput struct {
	Name         *string
	Email        *string
	Phone        *string
	City         *string
	Language     *string
	Experience   *string
	ProfileImage *string
}

/*
UpdateProfile applies input to the account of userID.

Returns:
  - *User: Updated entity
  - string: The previous profile image reference when it was replaced, else ""
  - error: apperr.NotFound, apperr.Conflict on a taken email, validation errors
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*User, string, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, "", fmt.Errorf("auth_service_update_profile_failed: %w", err)
	}

	// Email changes must not collide with another account.
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email != user.Email {
			existing, err := service.userRepository.FindByEmail(context, email)
			if err == nil && existing.ID != user.ID {
				return nil, "", apperr.Conflict("Email is already registered")
			}
			if err != nil && !apperr.HasCode(err, apperr.CodeNotFound) {
				return nil, "", fmt.Errorf("auth_service_update_profile_failed: %w", err)
			}
		}
		input.Email = &email
	}

	previousImage := user.ProfileImage

	user.Name = strings.TrimSpace(pointer.Fallback(input.Name, user.Name))
	user.Email = pointer.Fallback(input.Email, user.Email)
	user.Phone = strings.TrimSpace(pointer.Fallback(input.Phone, user.Phone))
	user.City = strings.TrimSpace(pointer.Fallback(input.City, user.City))
	user.Language = strings.TrimSpace(pointer.Fallback(input.Language, user.Language))
	user.Experience = strings.TrimSpace(pointer.Fallback(input.Experience, user.Experience))
	user.ProfileImage = pointer.Fallback(input.ProfileImage, user.ProfileImage)

	if user.Name == "" {
		return nil, "", apperr.ValidationError("Validation failed", apperr.FieldError{Field: FieldName, Message: "This field is required"})
	}
	if user.IsPhotographer() {
		if err := requirePhotographerFields(user); err != nil {
			return nil, "", err
		}
	}

	if err := service.userRepository.Update(context, user); err != nil {
		return nil, "", fmt.Errorf("auth_service_update_profile_failed: %w", err)
	}

	replaced := ""
	if previousImage != "" && previousImage != user.ProfileImage {
		replaced = previousImage
	}
	return user, replaced, nil
}

// requirePhotographerFields keeps the mandatory photographer profile fields non-empty.
func requirePhotographerFields(user *User) error {
	var details []apperr.FieldError
	for _, required := range []struct{ field, value string }{
		{FieldPhone, user.Phone},
		{FieldCity, user.City},
		{FieldExperience, user.Experience},
	} {
		if required.value == "" {
			details = append(details, apperr.FieldError{Field: required.field, Message: "This field is required for photographers"})
		}
	}

	if len(details) > 0 {
		return apperr.ValidationError("Validation failed", details...)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
