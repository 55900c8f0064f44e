// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package upload enforces the image upload boundary.

A file that leaves this package is at most the configured size, has been
sniffed as JPEG, PNG, GIF or WebP, and is durably stored in a
[filestore.Store] before any catalog metadata refers to it.
*/
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/taibuivan/lensfolio/internal/platform/apperr"
	"github.com/taibuivan/lensfolio/internal/platform/constants"
	"github.com/taibuivan/lensfolio/internal/platform/filestore"
)

// Multipart field names.
const (
	FieldImage   = "image"
	FieldProfile = "profile"
)

// maxFormMemory is the part of a multipart body kept in memory before spilling to disk.
const maxFormMemory = 1 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Image is a validated upload held in memory.
type Image struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Limits bounds a single upload.
type Limits struct {
	MaxBytes int64
}

// DefaultLimits applies the 5 MiB cap.
func DefaultLimits() Limits {
	return Limits{MaxBytes: constants.MaxUploadBytes}
}

// # Reading

// Read parses the multipart body and returns the file in field.
//
// It returns (nil, nil) when the field is absent and not required. Oversized
// bodies yield [apperr.PayloadTooLarge]; anything that is not an image yields
// a validation error.
func Read(writer http.ResponseWriter, request *http.Request, field string, limits Limits, required bool) (*Image, error) {
	request.Body = http.MaxBytesReader(writer, request.Body, limits.MaxBytes+constants.MultipartOverheadBytes)

	if err := request.ParseMultipartForm(maxFormMemory); err != nil {
		if isTooLarge(err) {
			return nil, tooLarge(limits)
		}
		return nil, apperr.ValidationError("Invalid multipart payload")
	}

	file, header, err := request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			if required {
				return nil, apperr.ValidationError("Validation failed", apperr.FieldError{Field: field, Message: "An image file is required"})
			}
			return nil, nil
		}
		return nil, apperr.ValidationError("Invalid multipart payload")
	}
	defer closeWithLog(file, request)

	if header.Size > limits.MaxBytes {
		return nil, tooLarge(limits)
	}

	data, err := io.ReadAll(io.LimitReader(file, limits.MaxBytes+1))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("upload: read file: %w", err))
	}
	if int64(len(data)) > limits.MaxBytes {
		return nil, tooLarge(limits)
	}

	contentType, ok := allowedImageMIME(data)
	if !ok {
		return nil, apperr.ValidationError("Only images are allowed", apperr.FieldError{Field: field, Message: "Only images are allowed"})
	}

	return &Image{Data: data, ContentType: contentType, Filename: header.Filename}, nil
}

// Cleanup removes temporary files created while parsing a multipart body.
func Cleanup(request *http.Request, logger *slog.Logger) {
	if request.MultipartForm == nil {
		return
	}
	if err := request.MultipartForm.RemoveAll(); err != nil {
		logger.WarnContext(request.Context(), "upload_form_cleanup_failed", slog.Any("error", err))
	}
}

// # Storing

// Store writes image under a fresh key derived from category and returns the
// client reference and the key.
func Store(context context.Context, store filestore.Store, category string, image *Image) (ref string, key string, err error) {
	key = filestore.NewKey(category, image.ContentType)

	if err := store.Save(context, key, image.ContentType, bytes.NewReader(image.Data)); err != nil {
		return "", "", apperr.Internal(fmt.Errorf("upload: store file: %w", err))
	}

	return filestore.Ref(key), key, nil
}

// Discard removes a stored file whose metadata was never written. Failures
// are logged only.
func Discard(context context.Context, store filestore.Store, key string, logger *slog.Logger) {
	if err := store.Delete(context, key); err != nil && !errors.Is(err, filestore.ErrNotFound) {
		logger.WarnContext(context, "upload_orphan_cleanup_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

// # Sniffing

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

func isTooLarge(err error) bool {
	var maxBytesError *http.MaxBytesError
	return errors.As(err, &maxBytesError) || errors.Is(err, multipart.ErrMessageTooLarge)
}

func tooLarge(limits Limits) *apperr.AppError {
	if limits.MaxBytes >= 1<<20 && limits.MaxBytes%(1<<20) == 0 {
		return apperr.PayloadTooLarge(fmt.Sprintf("Image exceeds the %d MiB limit", limits.MaxBytes>>20))
	}
	return apperr.PayloadTooLarge(fmt.Sprintf("Image exceeds the %d byte limit", limits.MaxBytes))
}

func closeWithLog(file multipart.File, request *http.Request) {
	if err := file.Close(); err != nil {
		slog.WarnContext(request.Context(), "upload_file_close_failed", slog.Any("error", err))
	}
}
