// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/lensfolio/internal/platform/constants"
	"github.com/taibuivan/lensfolio/internal/platform/respond"
)

// HealthCheck probes one dependency.
type HealthCheck func(context context.Context) error

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
type HealthDependencies struct {
	// CheckDatabase pings the active storage driver.
	CheckDatabase HealthCheck

	// CheckCache pings Redis when it is configured.
	CheckCache HealthCheck

	// CheckFiles verifies the upload file store.
	CheckFiles HealthCheck
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health (Liveness probe).
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
}

// readiness handles GET /ready (Readiness probe).
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	checks := []struct {
		name  string
		check HealthCheck
	}{
		{"database", handler.dependencies.CheckDatabase},
		{"cache", handler.dependencies.CheckCache},
		{"files", handler.dependencies.CheckFiles},
	}

	results := make([]checkResult, 0, len(checks))
	isSystemReady := true

	for _, dependency := range checks {
		if dependency.check == nil {
			continue
		}

		result := checkResult{Name: dependency.name, IsOK: true}
		if err := dependency.check(request.Context()); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			isSystemReady = false
			handler.logger.ErrorContext(request.Context(), "readiness_check_failed",
				slog.String("dependency", dependency.name),
				slog.Any("error", err),
			)
		}
		results = append(results, result)
	}

	payload := respond.SuccessEnvelope{Data: map[string]any{
		constants.FieldStatus: "ready",
		constants.FieldChecks: results,
	}}

	if !isSystemReady {
		payload.Data = map[string]any{
			constants.FieldStatus: "degraded",
			constants.FieldChecks: results,
		}
		respond.JSON(writer, http.StatusServiceUnavailable, payload)
		return
	}

	respond.JSON(writer, http.StatusOK, payload)
}
