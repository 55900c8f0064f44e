// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lensfolio/internal/platform/apperr"
	"github.com/taibuivan/lensfolio/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "category", "Wedding", false},
		{"empty_string", "category", "", true},
		{"whitespace_only", "category", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "ana@example.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "ana@", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Phone checks the loose phone number rule.
*/
func TestValidator_Phone(t *testing.T) {
	tests := []struct {
		phone   string
		isValid bool
	}{
		{"+84 912 345 678", true},
		{"(028) 3823-4567", true},
		{"12345", false},
		{"call me", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			v := &validate.Validator{}
			v.Phone("phone", tt.phone)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestIsUUID accepts canonical UUIDs in either case.
*/
func TestIsUUID(t *testing.T) {
	assert.True(t, validate.IsUUID("0192f4a0-7b7e-7cc1-9d55-2f1e1f0c8a10"))
	assert.True(t, validate.IsUUID("0192F4A0-7B7E-7CC1-9D55-2F1E1F0C8A10"))
	assert.False(t, validate.IsUUID("42"))
	assert.False(t, validate.IsUUID(""))
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("name", "Ana").
		MinLen("name", "Ana", 2).
		MaxLen("name", "Ana", 10).
		Email("email", "ana@lensfolio.app").
		OneOf("view", "best", "best", "grouped").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("name", "").
		MinLen("password", "a", 6).
		Email("email", "not-an-email").
		Custom("confirm_password", true, "Passwords do not match").
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Len(t, ae.Details, 4)
}
