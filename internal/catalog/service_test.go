// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lensfolio/internal/catalog"
	"github.com/taibuivan/lensfolio/internal/platform/apperr"
	"github.com/taibuivan/lensfolio/internal/platform/filestore"
	"github.com/taibuivan/lensfolio/internal/platform/migration"
	"github.com/taibuivan/lensfolio/internal/platform/sec"
	"github.com/taibuivan/lensfolio/internal/platform/sqlite"
	"github.com/taibuivan/lensfolio/internal/users/auth"
	"github.com/taibuivan/lensfolio/pkg/uuid"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type fixture struct {
	service    *catalog.Service
	repository *catalog.SQLiteRepository
	users      *auth.SQLiteUserRepository
	files      *filestore.LocalStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migration.RunSQLite(db, logger))

	files, err := filestore.NewLocalStore(t.TempDir(), logger)
	require.NoError(t, err)

	users := auth.NewSQLiteUserRepository(db)
	repository := catalog.NewSQLiteRepository(db)
	service := catalog.NewService(repository, users, files, logger)
	t.Cleanup(service.Wait)

	return fixture{service: service, repository: repository, users: users, files: files}
}

func (f fixture) createUser(t *testing.T, name string, role sec.UserRole) *auth.User {
	t.Helper()

	user := &auth.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        uuid.New() + "@example.com",
		PasswordHash: "not-a-real-hash",
		Role:         role,
		City:         "Lyon",
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

// storeFile writes a tiny PNG and returns its client reference.
func (f fixture) storeFile(t *testing.T, category string) (ref string, key string) {
	t.Helper()

	key = filestore.NewKey(category, "image/png")
	require.NoError(t, f.files.Save(context.Background(), key, "image/png", bytes.NewReader(pngHeader)))
	return filestore.Ref(key), key
}

/*
TestAttachImage_ConcurrentFirstUploads verifies that racing first uploads converge
on a single catalog holding every entry.
*/
func TestAttachImage_ConcurrentFirstUploads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	photographer := f.createUser(t, "Ana", sec.RolePhotographer)

	const uploads = 12

	var wg sync.WaitGroup
	errs := make(chan error, uploads)
	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.AttachImage(ctx, photographer.ID, "weddings", "uploads/weddings/"+uuid.New()+".png")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	catalogs, err := f.repository.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, catalogs, 1)
	assert.Equal(t, photographer.ID, catalogs[0].PhotographerID)
	assert.Len(t, catalogs[0].Images, uploads)
}

/*
TestAttachImage_NewEntryDefaults checks the fresh id, unset flag and upload order.
*/
func TestAttachImage_NewEntryDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	photographer := f.createUser(t, "Ana", sec.RolePhotographer)

	first, err := f.service.AttachImage(ctx, photographer.ID, "portraits", "uploads/portraits/a.png")
	require.NoError(t, err)
	second, err := f.service.AttachImage(ctx, photographer.ID, "  landscapes ", "uploads/landscapes/b.png")
	require.NoError(t, err)

	assert.True(t, uuid.Valid(first.ID))
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, catalog.BestUnset, first.BestImage)
	assert.Equal(t, "landscapes", second.Category)
	assert.False(t, first.UploadedAt.IsZero())

	portfolio, err := f.service.GetCatalog(ctx, photographer.ID)
	require.NoError(t, err)
	require.Len(t, portfolio.Images, 2)
	assert.Equal(t, first.ID, portfolio.Images[0].ID)
	assert.Equal(t, second.ID, portfolio.Images[1].ID)
	assert.Equal(t, catalog.BestUnset, portfolio.Images[0].BestImage)
}

/*
TestAttachImage_Rejections covers identity, role and input failures.
*/
func TestAttachImage_Rejections(t *testing.T) {
	f := newFixture(t)
	photographer := f.createUser(t, "Ana", sec.RolePhotographer)
	customer := f.createUser(t, "Cleo", sec.RoleCustomer)

	tests := []struct {
		name           string
		photographerID string
		category       string
		imageURL       string
		code           string
		message        string
	}{
		{"customer", customer.ID, "weddings", "uploads/x.png", apperr.CodeInvalidRole, "User is not a photographer"},
		{"unknown_identity", uuid.New(), "weddings", "uploads/x.png", apperr.CodeNotFound, "Photographer not found"},
		{"malformed_identity", "not-a-uuid", "weddings", "uploads/x.png", apperr.CodeNotFound, "Photographer not found"},
		{"empty_category", photographer.ID, "   ", "uploads/x.png", apperr.CodeValidation, "Validation failed"},
		{"empty_url", photographer.ID, "weddings", "", apperr.CodeValidation, "Validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.AttachImage(context.Background(), tt.photographerID, tt.category, tt.imageURL)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, tt.code))
			assert.Equal(t, tt.message, apperr.As(err).Message)
		})
	}

	// Nothing was written for the rejected calls.
	catalogs, err := f.repository.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, catalogs)
}

/*
TestMarkBest_Idempotent verifies marking twice equals marking once and that
unmark is symmetric.
*/
func TestMarkBest_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	photographer := f.createUser(t, "Ana", sec.RolePhotographer)

	image, err := f.service.AttachImage(ctx, photographer.ID, "weddings", "uploads/weddings/a.png")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		marked, err := f.service.MarkBest(ctx, photographer.ID, image.ID, "weddings")
		require.NoError(t, err)
		assert.Equal(t, catalog.BestMarked, marked.BestImage)
	}

	portfolio, err := f.service.GetCatalog(ctx, photographer.ID)
	require.NoError(t, err)
	require.Len(t, portfolio.Images, 1)
	assert.Equal(t, catalog.BestMarked, portfolio.Images[0].BestImage)

	for i := 0; i < 2; i++ {
		unmarked, err := f.service.UnmarkBest(ctx, photographer.ID, image.ID, "weddings")
		require.NoError(t, err)
		assert.Equal(t, catalog.BestUnmarked, unmarked.BestImage)
	}
}

/*
TestMarkBest_TripleMismatch ensures the (photographer, image, category) triple must
match exactly.
*/
func TestMarkBest_TripleMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "Ana", sec.RolePhotographer)
	other := f.createUser(t, "Ben", sec.RolePhotographer)

	image, err := f.service.AttachImage(ctx, owner.ID, "Weddings", "uploads/weddings/a.png")
	require.NoError(t, err)

	tests := []struct {
		name           string
		photographerID string
		imageID        string
		category       string
	}{
		{"wrong_category", owner.ID, image.ID, "portraits"},
		{"category_case", owner.ID, image.ID, "weddings"},
		{"other_photographer", other.ID, image.ID, "Weddings"},
		{"unknown_image", owner.ID, uuid.New(), "Weddings"},
		{"malformed_image", owner.ID, "42", "Weddings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.MarkBest(ctx, tt.photographerID, tt.imageID, tt.category)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
			assert.Equal(t, "Image not found", apperr.As(err).Message)
		})
	}

	portfolio, err := f.service.GetCatalog(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.BestUnset, portfolio.Images[0].BestImage)
}

/*
TestGetImagesByCategory_RoundTrip verifies attach then lookup returns the same URL,
and that missing categories report NotFound.
*/
func TestGetImagesByCategory_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	photographer := f.createUser(t, "Ana", sec.RolePhotographer)

	// No catalog yet
	_, err := f.service.GetImagesByCategory(ctx, photographer.ID, "weddings")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	ref, _ := f.storeFile(t, "weddings")
	_, err = f.service.AttachImage(ctx, photographer.ID, "weddings", ref)
	require.NoError(t, err)
	_, err = f.service.AttachImage(ctx, photographer.ID, "portraits", "uploads/portraits/b.png")
	require.NoError(t, err)

	images, err := f.service.GetImagesByCategory(ctx, photographer.ID, "weddings")
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, ref, images[0].ImageURL)

	_, err = f.service.GetImagesByCategory(ctx, photographer.ID, "Weddings")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	assert.Equal(t, "Category not found", apperr.As(err).Message)
}

/*
TestDeleteImage_RemovesEntryAndFile verifies the entry disappears and the file is
released once pending cleanups finish.
*/
func TestDeleteImage_RemovesEntryAndFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	photographer := f.createUser(t, "Ana", sec.RolePhotographer)

	ref, key := f.storeFile(t, "weddings")
	image, err := f.service.AttachImage(ctx, photographer.ID, "weddings", ref)
	require.NoError(t, err)

	// Wrong category leaves everything in place.
	_, err = f.service.DeleteImage(ctx, photographer.ID, image.ID, "portraits")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	removed, err := f.service.DeleteImage(ctx, photographer.ID, image.ID, "weddings")
	require.NoError(t, err)
	assert.Equal(t, ref, removed.ImageURL)

	f.service.Wait()

	_, err = f.files.Open(ctx, key)
	assert.ErrorIs(t, err, filestore.ErrNotFound)

	_, err = f.service.GetImagesByCategory(ctx, photographer.ID, "weddings")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	// A second delete finds nothing.
	_, err = f.service.DeleteImage(ctx, photographer.ID, image.ID, "weddings")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

type failingStore struct {
	filestore.Store
	deletes chan string
}

func (store failingStore) Delete(_ context.Context, key string) error {
	store.deletes <- key
	return errors.New("disk unavailable")
}

/*
TestDeleteImage_FileFailureNotPropagated ensures an unlink failure never reaches
the caller and never restores the entry.
*/
func TestDeleteImage_FileFailureNotPropagated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	photographer := f.createUser(t, "Ana", sec.RolePhotographer)

	store := failingStore{Store: f.files, deletes: make(chan string, 1)}
	service := catalog.NewService(f.repository, f.users, store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	image, err := service.AttachImage(ctx, photographer.ID, "weddings", "uploads/weddings/a.png")
	require.NoError(t, err)

	_, err = service.DeleteImage(ctx, photographer.ID, image.ID, "weddings")
	require.NoError(t, err)

	service.Wait()
	assert.Equal(t, "weddings/a.png", <-store.deletes)

	portfolio, err := service.GetCatalog(ctx, photographer.ID)
	require.NoError(t, err)
	assert.Empty(t, portfolio.Images)
}

/*
TestScenario_AttachMarkDelete walks the full curation lifecycle.
*/
func TestScenario_AttachMarkDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	photographer := f.createUser(t, "Ana", sec.RolePhotographer)

	// Before any upload the catalog is empty, not missing.
	portfolio, err := f.service.GetCatalog(ctx, photographer.ID)
	require.NoError(t, err)
	assert.Empty(t, portfolio.Images)
	assert.Equal(t, "Ana", portfolio.Profile.Name)

	ref, _ := f.storeFile(t, "weddings")
	image, err := f.service.AttachImage(ctx, photographer.ID, "weddings", ref)
	require.NoError(t, err)

	_, err = f.service.MarkBest(ctx, photographer.ID, image.ID, "weddings")
	require.NoError(t, err)

	portfolio, err = f.service.GetCatalog(ctx, photographer.ID)
	require.NoError(t, err)
	require.Len(t, portfolio.Images, 1)
	assert.True(t, portfolio.Images[0].BestImage.IsMarked())

	_, err = f.service.DeleteImage(ctx, photographer.ID, image.ID, "weddings")
	require.NoError(t, err)

	portfolio, err = f.service.GetCatalog(ctx, photographer.ID)
	require.NoError(t, err)
	assert.Empty(t, portfolio.Images)
}

/*
TestGetCatalog_Customer verifies queries also enforce the photographer role.
*/
func TestGetCatalog_Customer(t *testing.T) {
	f := newFixture(t)
	customer := f.createUser(t, "Cleo", sec.RoleCustomer)

	_, err := f.service.GetCatalog(context.Background(), customer.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidRole))

	_, err = f.service.MarkBest(context.Background(), customer.ID, uuid.New(), "weddings")
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidRole))
}

/*
TestListAllPhotographers_Views checks both projections and the empty view for
photographers without a catalog.
*/
func TestListAllPhotographers_Views(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ana := f.createUser(t, "Ana", sec.RolePhotographer)
	ben := f.createUser(t, "Ben", sec.RolePhotographer)
	f.createUser(t, "Cleo", sec.RoleCustomer)

	first, err := f.service.AttachImage(ctx, ana.ID, "weddings", "uploads/weddings/a.png")
	require.NoError(t, err)
	_, err = f.service.AttachImage(ctx, ana.ID, "weddings", "uploads/weddings/b.png")
	require.NoError(t, err)
	third, err := f.service.AttachImage(ctx, ana.ID, "portraits", "uploads/portraits/c.png")
	require.NoError(t, err)

	_, err = f.service.MarkBest(ctx, ana.ID, first.ID, "weddings")
	require.NoError(t, err)
	_, err = f.service.MarkBest(ctx, ana.ID, third.ID, "portraits")
	require.NoError(t, err)

	t.Run("best", func(t *testing.T) {
		listings, err := f.service.ListAllPhotographers(ctx, catalog.ViewBest)
		require.NoError(t, err)
		require.Len(t, listings, 2)

		byID := map[string]catalog.Listing{}
		for _, listing := range listings {
			byID[listing.Profile.ID] = listing
		}

		require.Len(t, byID[ana.ID].BestImages, 2)
		assert.Equal(t, first.ID, byID[ana.ID].BestImages[0].ID)
		assert.Equal(t, third.ID, byID[ana.ID].BestImages[1].ID)
		assert.Empty(t, byID[ben.ID].BestImages)
		assert.NotNil(t, byID[ben.ID].BestImages)
	})

	t.Run("grouped", func(t *testing.T) {
		listings, err := f.service.ListAllPhotographers(ctx, catalog.ViewGrouped)
		require.NoError(t, err)
		require.Len(t, listings, 2)

		for _, listing := range listings {
			if listing.Profile.ID == ana.ID {
				assert.Equal(t, []string{"uploads/weddings/a.png", "uploads/weddings/b.png"}, listing.Categories["weddings"])
				assert.Equal(t, []string{"uploads/portraits/c.png"}, listing.Categories["portraits"])
			} else {
				assert.Empty(t, listing.Categories)
			}
		}
	})

	t.Run("unknown_mode", func(t *testing.T) {
		_, err := f.service.ListAllPhotographers(ctx, catalog.ViewMode("recent"))
		assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	})
}

/*
TestListing_MarshalJSON verifies the profile fields sit next to the selected view.
*/
func TestListing_MarshalJSON(t *testing.T) {
	profile := catalog.Profile{ID: "p1", Name: "Ana", Email: "ana@example.com", City: "Lyon"}

	tests := []struct {
		name    string
		listing catalog.Listing
		present string
		absent  string
	}{
		{"best", catalog.Listing{Profile: profile, Mode: catalog.ViewBest}, "best_images", "categories"},
		{"grouped", catalog.Listing{Profile: profile, Mode: catalog.ViewGrouped}, "categories", "best_images"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := json.Marshal(tt.listing)
			require.NoError(t, err)

			document := map[string]any{}
			require.NoError(t, json.Unmarshal(encoded, &document))

			assert.Equal(t, "Ana", document["name"])
			assert.Equal(t, "Lyon", document["city"])
			assert.Contains(t, document, tt.present)
			assert.NotContains(t, document, tt.absent)
			assert.NotNil(t, document[tt.present])
		})
	}
}
