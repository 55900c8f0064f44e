// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"fmt"

	"github.com/taibuivan/lensfolio/internal/platform/apperr"
	"github.com/taibuivan/lensfolio/internal/platform/sec"
	"github.com/taibuivan/lensfolio/internal/users/auth"
	"github.com/taibuivan/lensfolio/pkg/slice"
)

// # Query Engine

/*
GetCatalog returns the photographer's public profile and every image in
upload order. A photographer who never uploaded gets an empty image list.

Parameters:
  - context: context.Context
  - photographerID: string (UUID)

Returns:
  - *Portfolio: Profile and images
  - error: NotFound("Photographer"), InvalidRole or storage failures
*/
func (service *Service) GetCatalog(context context.Context, photographerID string) (*Portfolio, error) {
	user, err := service.photographer(context, photographerID)
	if err != nil {
		return nil, err
	}

	portfolio := &Portfolio{Profile: NewProfile(user), Images: []*Image{}}

	catalog, err := service.repository.FindByPhotographer(context, photographerID)
	switch {
	case apperr.HasCode(err, apperr.CodeNotFound):
		return portfolio, nil
	case err != nil:
		return nil, fmt.Errorf("catalog_service_get_failed: %w", err)
	}

	portfolio.Images = catalog.Images
	return portfolio, nil
}

/*
GetImagesByCategory returns the images filed under category, compared exactly.

Description: An absent catalog and a category without images are the same
outcome for the caller: NotFound("Category").

Returns:
  - []*Image: Non-empty list in upload order
  - error: NotFound, InvalidRole or storage failures
*/
func (service *Service) GetImagesByCategory(context context.Context, photographerID, category string) ([]*Image, error) {
	if _, err := service.photographer(context, photographerID); err != nil {
		return nil, err
	}

	images, err := service.repository.FindByCategory(context, photographerID, category)
	if err != nil {
		return nil, fmt.Errorf("catalog_service_by_category_failed: %w", err)
	}

	if len(images) == 0 {
		return nil, apperr.NotFound("Category")
	}
	return images, nil
}

/*
ListAllPhotographers returns every photographer with a projection of their
catalog selected by mode.

Description: Catalogs are read in one scan and joined in memory with the
photographer identities. Photographers without a catalog get an empty view.
Listings follow the directory order (oldest account first).

Parameters:
  - mode: ViewMode (ViewBest or ViewGrouped)

Returns:
  - []Listing: One entry per photographer
  - error: Validation error for an unknown mode, storage failures
*/
func (service *Service) ListAllPhotographers(context context.Context, mode ViewMode) ([]Listing, error) {
	mode, ok := ParseViewMode(string(mode))
	if !ok {
		return nil, apperr.ValidationError("Unknown view mode", apperr.FieldError{Field: "view", Message: "Must be one of: best, grouped"})
	}

	photographers, err := service.directory.ListByRole(context, sec.RolePhotographer)
	if err != nil {
		return nil, fmt.Errorf("catalog_service_list_photographers_failed: %w", err)
	}

	catalogs, err := service.repository.ListAll(context)
	if err != nil {
		return nil, fmt.Errorf("catalog_service_list_catalogs_failed: %w", err)
	}

	byOwner := make(map[string][]*Image, len(catalogs))
	for _, catalog := range catalogs {
		byOwner[catalog.PhotographerID] = catalog.Images
	}

	listings := slice.Map(photographers, func(photographer *auth.User) Listing {
		listing := Listing{Profile: NewProfile(photographer), Mode: mode}
		images := byOwner[photographer.ID]

		switch mode {
		case ViewGrouped:
			listing.Categories = groupByCategory(images)
		default:
			listing.BestImages = bestOf(images)
		}
		return listing
	})
	if listings == nil {
		listings = []Listing{}
	}

	return listings, nil
}

// bestOf keeps the marked images, preserving upload order.
func bestOf(images []*Image) []*Image {
	best := slice.Filter(images, func(image *Image) bool {
		return image.BestImage.IsMarked()
	})
	if best == nil {
		return []*Image{}
	}
	return best
}

// groupByCategory maps each category to its image URLs in upload order.
func groupByCategory(images []*Image) map[string][]string {
	groups := map[string][]string{}
	for _, image := range images {
		groups[image.Category] = append(groups[image.Category], image.ImageURL)
	}
	return groups
}
