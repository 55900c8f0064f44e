// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"

	"github.com/taibuivan/lensfolio/internal/platform/sec"
	"github.com/taibuivan/lensfolio/internal/users/auth"
)

// # Catalog Data Access

// Repository defines the storage contract for photographer catalogs.
//
// Implementations must make Attach, SetBest and Delete atomic: each is a
// single conditional statement or a single transaction, never a read followed
// by a separate write.
type Repository interface {

	/*
		Attach appends image to the photographer's catalog, creating the catalog
		when it does not exist yet.

		Parameters:
		  - photographerID: string (UUID)
		  - image: *Image (ID, URL, category and upload time already set)

		Returns:
		  - error: apperr.Conflict on a duplicate image ID, storage failures otherwise
	*/
	Attach(context context.Context, photographerID string, image *Image) error

	/*
		SetBest sets the best flag of the entry matching all three keys.

		Returns:
		  - *Image: The updated entry
		  - error: apperr.NotFound("Image") when no entry matches
	*/
	SetBest(context context.Context, photographerID, imageID, category string, flag BestFlag) (*Image, error)

	/*
		Delete removes the entry matching all three keys and returns it, so the
		caller can release the backing file.

		Returns:
		  - *Image: The removed entry
		  - error: apperr.NotFound("Image") when no entry matches
	*/
	Delete(context context.Context, photographerID, imageID, category string) (*Image, error)

	/*
		FindByPhotographer returns the catalog with its images in upload order.

		Returns:
		  - error: apperr.NotFound("Catalog") when the photographer never uploaded
	*/
	FindByPhotographer(context context.Context, photographerID string) (*Catalog, error)

	/*
		FindByCategory returns the entries filed under category, compared exactly.
		An absent catalog and an unknown category both yield an empty slice.
	*/
	FindByCategory(context context.Context, photographerID, category string) ([]*Image, error)

	/*
		ListAll scans every catalog once, images in upload order.
	*/
	ListAll(context context.Context) ([]*Catalog, error)
}

// # Identity Lookup

// Directory is the read-only view of the identity store used to validate
// photographers. [auth.UserRepository] satisfies it.
type Directory interface {
	FindByID(context context.Context, id string) (*auth.User, error)
	ListByRole(context context.Context, role sec.UserRole) ([]*auth.User, error)
}
