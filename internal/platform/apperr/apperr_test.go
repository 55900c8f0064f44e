// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lensfolio/internal/platform/apperr"
)

/*
TestConstructors_StatusMapping verifies every taxonomy constructor maps to its HTTP status.
*/
func TestConstructors_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		code   string
		status int
	}{
		{"not_found", apperr.NotFound("Image"), apperr.CodeNotFound, http.StatusNotFound},
		{"invalid_role", apperr.InvalidRole("User is not a photographer"), apperr.CodeInvalidRole, http.StatusBadRequest},
		{"validation", apperr.ValidationError("Validation failed"), apperr.CodeValidation, http.StatusBadRequest},
		{"conflict", apperr.Conflict("User already exists"), apperr.CodeConflict, http.StatusConflict},
		{"too_large", apperr.PayloadTooLarge("Image exceeds 5 MiB"), apperr.CodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"internal", apperr.Internal(errors.New("boom")), apperr.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

/*
TestInternal_HidesCause ensures the storage failure message never exposes the cause.
*/
func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: relation catalog_image does not exist")
	err := apperr.Internal(cause)

	assert.NotContains(t, err.Error(), "relation")
	assert.ErrorIs(t, err, cause)
}

/*
TestHasCode_WrappedChain verifies codes survive fmt.Errorf wrapping.
*/
func TestHasCode_WrappedChain(t *testing.T) {
	wrapped := fmt.Errorf("catalog_service_mark_failed: %w", apperr.NotFound("Image"))

	require.True(t, apperr.IsAppError(wrapped))
	assert.True(t, apperr.HasCode(wrapped, apperr.CodeNotFound))
	assert.False(t, apperr.HasCode(wrapped, apperr.CodeConflict))
	assert.False(t, apperr.HasCode(errors.New("plain"), apperr.CodeNotFound))
}
