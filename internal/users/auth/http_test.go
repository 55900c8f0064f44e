// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lensfolio/internal/platform/constants"
	"github.com/taibuivan/lensfolio/internal/platform/filestore"
	"github.com/taibuivan/lensfolio/internal/platform/middleware"
	"github.com/taibuivan/lensfolio/internal/platform/upload"
	"github.com/taibuivan/lensfolio/internal/users/auth"
)

func newTestRouter(t *testing.T) (http.Handler, fixture) {
	t.Helper()

	f := newFixture(t)
	files, err := filestore.NewLocalStore(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(f.service))
	router.Mount("/auth", auth.NewHandler(f.service, files, upload.DefaultLimits()).Routes())
	return router, f
}

func doJSON(t *testing.T, handler http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestHandler_CustomerSignup covers the legacy form aliases and password confirmation.
*/
func TestHandler_CustomerSignup(t *testing.T) {
	router, _ := newTestRouter(t)

	form := url.Values{
		"name":             {"Bo"},
		"user_email":       {"bo@example.com"},
		"user_password":    {"correct-horse"},
		"confirm_password": {"correct-horse"},
	}
	request := httptest.NewRequest(http.MethodPost, "/auth/customer/signup", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	assert.NotContains(t, recorder.Body.String(), "correct-horse")

	mismatch := `{"name":"Cy","email":"cy@example.com","password":"correct-horse","confirm_password":"other-horse"}`
	recorder = doJSON(t, router, http.MethodPost, "/auth/customer/signup", mismatch, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Passwords do not match")
}

/*
TestHandler_PhotographerLifecycle signs up, logs in, reads and edits the profile, then logs out.
*/
func TestHandler_PhotographerLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	missingCity := `{"name":"Ana","email":"ana@example.com","password":"correct-horse","phone":"+33 6 12 34 56 78","experience":"8 years"}`
	recorder := doJSON(t, router, http.MethodPost, "/auth/photographer/signup", missingCity, "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	signup := `{"name":"Ana","email":"ana@example.com","password":"correct-horse","phone":"+33 6 12 34 56 78","city":"Lyon","experience":"8 years"}`
	recorder = doJSON(t, router, http.MethodPost, "/auth/photographer/signup", signup, "")
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	recorder = doJSON(t, router, http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data auth.Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	token := envelope.Data.AccessToken
	require.NotEmpty(t, token)

	recorder = doJSON(t, router, http.MethodGet, "/auth/me", "", token)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"city":"Lyon"`)

	recorder = doJSON(t, router, http.MethodPut, "/auth/me", `{"city":"Paris"}`, token)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"city":"Paris"`)

	recorder = doJSON(t, router, http.MethodPost, "/auth/logout", "", token)
	require.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/auth/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestHandler_MeRequiresAuth rejects anonymous profile reads.
*/
func TestHandler_MeRequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
