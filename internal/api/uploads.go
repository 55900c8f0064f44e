// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/lensfolio/internal/platform/apperr"
	"github.com/taibuivan/lensfolio/internal/platform/ctxutil"
	"github.com/taibuivan/lensfolio/internal/platform/filestore"
	"github.com/taibuivan/lensfolio/internal/platform/respond"
)

// NewUploadsHandler streams stored files for GET /uploads/*.
//
// Files are served through the [filestore.Store], so the route works the same
// for the local and the S3 backend.
func NewUploadsHandler(files filestore.Store) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		key, err := filestore.CleanKey(chi.URLParam(request, "*"))
		if err != nil {
			respond.Error(writer, request, apperr.NotFound("File"))
			return
		}

		object, err := files.Open(request.Context(), key)
		if err != nil {
			if errors.Is(err, filestore.ErrNotFound) || errors.Is(err, filestore.ErrInvalidKey) {
				respond.Error(writer, request, apperr.NotFound("File"))
				return
			}
			respond.Error(writer, request, apperr.Internal(err))
			return
		}
		defer func() { _ = object.Body.Close() }()

		header := writer.Header()
		header.Set("Content-Type", object.ContentType)
		header.Set("X-Content-Type-Options", "nosniff")
		header.Set("Cache-Control", "public, max-age=86400")
		if object.Size > 0 {
			header.Set("Content-Length", strconv.FormatInt(object.Size, 10))
		}
		writer.WriteHeader(http.StatusOK)

		if _, err := io.Copy(writer, object.Body); err != nil {
			ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "upload_stream_interrupted",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
	}
}
