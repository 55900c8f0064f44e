// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package filestore persists uploaded image binaries.

Two backends implement [Store]: a local directory and an S3-compatible bucket.
Callers only ever see opaque references of the form "uploads/<key>"; the key
itself is "<category-slug>/<uuidv7><ext>".
*/
package filestore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/taibuivan/lensfolio/internal/platform/constants"
	"github.com/taibuivan/lensfolio/pkg/slug"
	"github.com/taibuivan/lensfolio/pkg/uuid"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("filestore: object not found")

// ErrInvalidKey is returned for keys that escape the store or are empty.
var ErrInvalidKey = errors.New("filestore: invalid key")

// defaultSegment groups files whose category produces an empty slug.
const defaultSegment = "uncategorized"

// Object is an opened stored file. The caller must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Store is the contract shared by every storage backend.
type Store interface {
	/*
		Save writes body under key. An existing object is overwritten.
	*/
	Save(context context.Context, key, contentType string, body io.Reader) error

	/*
		Open returns the object stored under key, or [ErrNotFound].
	*/
	Open(context context.Context, key string) (*Object, error)

	/*
		Delete removes the object stored under key, or returns [ErrNotFound].
	*/
	Delete(context context.Context, key string) error

	/*
		Ping checks that the backend is reachable and writable.
	*/
	Ping(context context.Context) error
}

// # Keys & References

// NewKey builds a fresh storage key for a file in the given category.
func NewKey(category, contentType string) string {
	return slug.OrDefault(category, defaultSegment) + "/" + uuid.New() + ExtensionFor(contentType)
}

// Ref converts a storage key into the reference handed to clients.
func Ref(key string) string {
	return constants.UploadRefPrefix + key
}

// KeyFromRef recovers the storage key from a client reference.
// It reports false for references this service never issued.
func KeyFromRef(ref string) (string, bool) {
	key, found := strings.CutPrefix(strings.TrimPrefix(ref, "/"), constants.UploadRefPrefix)
	if !found {
		return "", false
	}

	key, err := CleanKey(key)
	if err != nil {
		return "", false
	}
	return key, true
}

// CleanKey normalises key and rejects empty or escaping keys.
func CleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")

	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

// # Content Types

// ExtensionFor maps an accepted image MIME type to its file extension.
func ExtensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// ContentTypeFor maps a key's extension back to its MIME type.
func ContentTypeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
