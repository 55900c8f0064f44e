// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lensfolio/internal/platform/apperr"
	"github.com/taibuivan/lensfolio/internal/platform/ctxutil"
	"github.com/taibuivan/lensfolio/internal/platform/respond"
)

/*
TestError verifies status mapping, the echoed request id and that unknown
errors never leak their text.
*/
func TestError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"not found", apperr.NotFound("Image"), http.StatusNotFound, apperr.CodeNotFound, "Image not found"},
		{"wrapped business error", errors.Join(errors.New("outer"), apperr.InvalidRole("User is not a photographer")), http.StatusBadRequest, apperr.CodeInvalidRole, "User is not a photographer"},
		{"unknown error", errors.New("pq: relation catalog_image is locked"), http.StatusInternalServerError, apperr.CodeInternal, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request = request.WithContext(ctxutil.WithRequestID(request.Context(), "req-42"))
			recorder := httptest.NewRecorder()

			respond.Error(recorder, request, tt.err)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			var envelope respond.ErrorEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.Equal(t, tt.wantCode, envelope.Code)
			assert.Equal(t, tt.wantMessage, envelope.Error)
			assert.Equal(t, "req-42", envelope.RequestID)
			assert.NotContains(t, recorder.Body.String(), "locked")
		})
	}
}

func TestOK(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.OK(recorder, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"status":"ok"}}`, recorder.Body.String())
}
