// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps files below a base directory.
type LocalStore struct {
	basePath string
	logger   *slog.Logger
}

// NewLocalStore creates basePath if needed and returns a store rooted there.
func NewLocalStore(basePath string, logger *slog.Logger) (*LocalStore, error) {
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("filestore: invalid base path: %w", err)
	}

	if err := os.MkdirAll(absBase, 0o750); err != nil {
		return nil, fmt.Errorf("filestore: create upload directory: %w", err)
	}

	return &LocalStore{basePath: absBase, logger: logger}, nil
}

// Save writes body to a temporary file and renames it into place, so readers
// never observe a partially written image.
func (store *LocalStore) Save(context context.Context, key, _ string, body io.Reader) error {
	target, err := store.safeJoin(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("filestore: create directory: %w", err)
	}

	file, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("filestore: create file: %w", err)
	}
	tempName := file.Name()

	if _, err := io.Copy(file, contextReader{context: context, reader: body}); err != nil {
		store.discard(file, tempName)
		return fmt.Errorf("filestore: write file: %w", err)
	}

	if err := file.Close(); err != nil {
		store.remove(tempName)
		return fmt.Errorf("filestore: close file: %w", err)
	}

	if err := os.Rename(tempName, target); err != nil {
		store.remove(tempName)
		return fmt.Errorf("filestore: move file into place: %w", err)
	}

	return nil
}

// Open returns the stored file for streaming.
func (store *LocalStore) Open(_ context.Context, key string) (*Object, error) {
	target, err := store.safeJoin(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("filestore: open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("filestore: stat file: %w", err)
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, ErrNotFound
	}

	return &Object{Body: file, ContentType: ContentTypeFor(key), Size: info.Size()}, nil
}

// Delete unlinks the stored file.
func (store *LocalStore) Delete(_ context.Context, key string) error {
	target, err := store.safeJoin(key)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("filestore: delete file: %w", err)
	}
	return nil
}

// Ping verifies the base directory exists and accepts writes.
func (store *LocalStore) Ping(_ context.Context) error {
	probe, err := os.CreateTemp(store.basePath, ".ping-*")
	if err != nil {
		return fmt.Errorf("filestore: upload directory not writable: %w", err)
	}
	store.discard(probe, probe.Name())
	return nil
}

// safeJoin resolves key relative to basePath and rejects directory traversal.
func (store *LocalStore) safeJoin(key string) (string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}

	target := filepath.Join(store.basePath, filepath.FromSlash(cleaned))
	if !strings.HasPrefix(target, store.basePath+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return target, nil
}

func (store *LocalStore) discard(file *os.File, name string) {
	if err := file.Close(); err != nil {
		store.logger.Error("filestore_close_failed", slog.String("file", name), slog.Any("error", err))
	}
	store.remove(name)
}

func (store *LocalStore) remove(name string) {
	if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		store.logger.Error("filestore_remove_failed", slog.String("file", name), slog.Any("error", err))
	}
}

// contextReader stops a copy once the request is cancelled.
type contextReader struct {
	context context.Context
	reader  io.Reader
}

func (r contextReader) Read(p []byte) (int, error) {
	if err := r.context.Err(); err != nil {
		return 0, err
	}
	return r.reader.Read(p)
}
