// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/lensfolio/internal/platform/apperr"
	"github.com/taibuivan/lensfolio/internal/platform/constants"
	"github.com/taibuivan/lensfolio/internal/platform/filestore"
	"github.com/taibuivan/lensfolio/internal/platform/validate"
	"github.com/taibuivan/lensfolio/internal/users/auth"
	"github.com/taibuivan/lensfolio/pkg/uuid"
)

// # Definitions & Constructors

// Service implements the catalog mutation and query engines.
//
// Every operation first resolves the photographer through the [Directory],
// so role checks never depend on storage constraints.
type Service struct {
	repository Repository
	directory  Directory
	fileStore  filestore.Store
	logger     *slog.Logger
	now        func() time.Time

	// cleanups tracks file deletions still running after DeleteImage returned.
	cleanups sync.WaitGroup
}

// NewService constructs a new [Service]. files may be nil, in which case
// deleted images keep their backing file.
func NewService(repository Repository, directory Directory, files filestore.Store, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		directory:  directory,
		fileStore:  files,
		logger:     logger,
		now:        time.Now,
	}
}

// Wait blocks until every pending file cleanup has finished.
func (service *Service) Wait() {
	service.cleanups.Wait()
}

// # Mutation Engine

/*
AttachImage files a stored upload under category in the photographer's catalog.

Description: The catalog is created on the first upload. The new entry gets a
fresh UUIDv7, the current time and an unset best flag.

Parameters:
  - context: context.Context
  - photographerID: string (UUID)
  - category: string (free-form, case-sensitive)
  - imageURL: string (file store reference)

Returns:
  - *Image: The new entry
  - error: NotFound, InvalidRole, validation or storage failures
*/
func (service *Service) AttachImage(context context.Context, photographerID, category, imageURL string) (*Image, error) {
	category = strings.TrimSpace(category)

	validator := &validate.Validator{}
	validator.Required(FieldCategory, category).
		MaxLen(FieldCategory, category, MaxCategoryLength).
		Required(FieldImageURL, imageURL)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.photographer(context, photographerID); err != nil {
		return nil, err
	}

	image := &Image{
		ID:         uuid.New(),
		ImageURL:   imageURL,
		Category:   category,
		BestImage:  BestUnset,
		UploadedAt: service.now().UTC(),
	}

	if err := service.repository.Attach(context, photographerID, image); err != nil {
		return nil, fmt.Errorf("catalog_service_attach_failed: %w", err)
	}

	service.logger.InfoContext(context, "catalog_image_attached",
		slog.String("photographer_id", photographerID),
		slog.String("image_id", image.ID),
		slog.String("category", category),
	)

	return image, nil
}

/*
MarkBest adds an image to the photographer's best-images set. Marking an
already marked image succeeds and changes nothing.

Returns:
  - *Image: The entry after the update
  - error: NotFound("Image") when no entry matches the triple, InvalidRole
*/
func (service *Service) MarkBest(context context.Context, photographerID, imageID, category string) (*Image, error) {
	return service.setBest(context, photographerID, imageID, category, BestMarked)
}

/*
UnmarkBest removes an image from the best-images set. It is the exact
counterpart of [Service.MarkBest] and equally idempotent.
*/
func (service *Service) UnmarkBest(context context.Context, photographerID, imageID, category string) (*Image, error) {
	return service.setBest(context, photographerID, imageID, category, BestUnmarked)
}

func (service *Service) setBest(context context.Context, photographerID, imageID, category string, flag BestFlag) (*Image, error) {
	if _, err := service.photographer(context, photographerID); err != nil {
		return nil, err
	}

	// Image ids are UUIDs; anything else cannot match.
	if !uuid.Valid(imageID) {
		return nil, apperr.NotFound("Image")
	}

	image, err := service.repository.SetBest(context, photographerID, imageID, category, flag)
	if err != nil {
		return nil, fmt.Errorf("catalog_service_set_best_failed: %w", err)
	}

	service.logger.InfoContext(context, "catalog_best_flag_set",
		slog.String("photographer_id", photographerID),
		slog.String("image_id", imageID),
		slog.String("best_image", string(flag)),
	)

	return image, nil
}

/*
DeleteImage removes an entry from the catalog, then releases its file.

Description: The metadata removal is durable before the file is touched. The
file is deleted on a tracked background goroutine; failures there are logged
and never reach the caller.

Returns:
  - *Image: The removed entry
  - error: NotFound("Image") when no entry matches the triple, InvalidRole
*/
func (service *Service) DeleteImage(context context.Context, photographerID, imageID, category string) (*Image, error) {
	if _, err := service.photographer(context, photographerID); err != nil {
		return nil, err
	}

	if !uuid.Valid(imageID) {
		return nil, apperr.NotFound("Image")
	}

	image, err := service.repository.Delete(context, photographerID, imageID, category)
	if err != nil {
		return nil, fmt.Errorf("catalog_service_delete_failed: %w", err)
	}

	service.logger.InfoContext(context, "catalog_image_deleted",
		slog.String("photographer_id", photographerID),
		slog.String("image_id", imageID),
	)

	service.releaseFile(context, image.ImageURL)
	return image, nil
}

// releaseFile deletes the file behind ref without blocking the caller.
func (service *Service) releaseFile(ctx context.Context, ref string) {
	if service.fileStore == nil {
		return
	}

	key, ok := filestore.KeyFromRef(ref)
	if !ok {
		service.logger.WarnContext(ctx, "catalog_file_cleanup_failed",
			slog.String("image_url", ref),
			slog.String("reason", "not a file store reference"),
		)
		return
	}

	// The request context is cancelled once the response is written.
	cleanupContext, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.FileCleanupTimeout)

	service.cleanups.Add(1)
	go func() {
		defer service.cleanups.Done()
		defer cancel()

		err := service.fileStore.Delete(cleanupContext, key)
		if err == nil {
			return
		}

		level := slog.LevelError
		if errors.Is(err, filestore.ErrNotFound) {
			level = slog.LevelWarn
		}
		service.logger.Log(cleanupContext, level, "catalog_file_cleanup_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}()
}

// # Identity Checks

// photographer resolves id to an identity whose role allows owning a catalog.
func (service *Service) photographer(context context.Context, id string) (*auth.User, error) {
	if !uuid.Valid(id) {
		return nil, apperr.NotFound("Photographer")
	}

	user, err := service.directory.FindByID(context, id)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.NotFound("Photographer")
		}
		return nil, fmt.Errorf("catalog_service_identity_failed: %w", err)
	}

	if !user.IsPhotographer() {
		return nil, apperr.InvalidRole("User is not a photographer")
	}

	return user, nil
}
