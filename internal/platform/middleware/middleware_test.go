// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lensfolio/internal/platform/constants"
	"github.com/taibuivan/lensfolio/internal/platform/ctxutil"
	"github.com/taibuivan/lensfolio/internal/platform/middleware"
	"github.com/taibuivan/lensfolio/internal/platform/sec"
)

type stubVerifier struct {
	claims *sec.AuthClaims
}

func (verifier stubVerifier) VerifyToken(_ context.Context, token string) (*sec.AuthClaims, error) {
	if token != "good" {
		return nil, errors.New("rejected")
	}
	return verifier.claims, nil
}

type stubOrigins struct {
	development bool
	extra       []string
}

func (cfg stubOrigins) IsDevelopment() bool    { return cfg.development }
func (cfg stubOrigins) ExtraOrigins() []string { return cfg.extra }

func okHandler() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
}

/*
TestAuthenticate_Flow covers anonymous, malformed, rejected and accepted headers.
*/
func TestAuthenticate_Flow(t *testing.T) {
	photographer := &sec.AuthClaims{UserID: "p-1", Role: string(sec.RolePhotographer)}
	var seen *sec.AuthClaims

	handler := middleware.Authenticate(stubVerifier{claims: photographer})(
		http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			seen = ctxutil.GetAuthUser(request.Context())
			writer.WriteHeader(http.StatusOK)
		}),
	)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantClaims bool
	}{
		{"anonymous", "", http.StatusOK, false},
		{"malformed", "Token good", http.StatusUnauthorized, false},
		{"rejected", "Bearer bad", http.StatusUnauthorized, false},
		{"accepted", "Bearer good", http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantClaims, seen != nil)
		})
	}
}

/*
TestRequireRole_Membership verifies flat role membership and the anonymous case.
*/
func TestRequireRole_Membership(t *testing.T) {
	handler := middleware.RequireRole(sec.RolePhotographer)(okHandler())

	tests := []struct {
		name       string
		claims     *sec.AuthClaims
		wantStatus int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"customer", &sec.AuthClaims{UserID: "c-1", Role: string(sec.RoleCustomer)}, http.StatusForbidden},
		{"photographer", &sec.AuthClaims{UserID: "p-1", Role: string(sec.RolePhotographer)}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.claims != nil {
				request = request.WithContext(ctxutil.WithAuthUser(request.Context(), tt.claims))
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

/*
TestRequestID_Propagation checks a forwarded ID is reused and a missing one is generated.
*/
func TestRequestID_Propagation(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "trace-42")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, "trace-42", seen)
	assert.Equal(t, "trace-42", recorder.Header().Get(constants.HeaderXRequestID))

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.NotEqual(t, "trace-42", seen)
}

/*
TestCORS_Origins verifies first-party, configured and foreign origins outside development.
*/
func TestCORS_Origins(t *testing.T) {
	handler := middleware.CORS(stubOrigins{extra: []string{"https://studio.example.com"}})(okHandler())

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://www.lensfolio.app", true},
		{"https://studio.example.com", true},
		{"https://evil.example.org", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.Header.Set(constants.HeaderOrigin, tt.origin)
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			if tt.allowed {
				assert.Equal(t, tt.origin, recorder.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

/*
TestRateLimiter_Burst exhausts a tiny bucket for one client while another stays allowed.
*/
func TestRateLimiter_Burst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewRateLimiter(ctx, 0.001, 2)

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"))
}

/*
TestPanicRecovery_Returns500 ensures a panicking handler yields a JSON 500.
*/
func TestPanicRecovery_Returns500(t *testing.T) {
	handler := middleware.PanicRecovery(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}
