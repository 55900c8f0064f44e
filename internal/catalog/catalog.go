// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog manages photographer portfolios: the images a photographer
uploads, the category each image is filed under, and the curated subset of
best images.

Every photographer owns at most one catalog. It is created lazily on the first
upload and keeps its images in upload order. Mutations always address an image
by the triple (photographer, image, category) and run as single conditional
statements, so concurrent requests never overwrite each other.

Architecture:

  - Entities: Image, Catalog and the read projections Portfolio and Listing.
  - Repository: Postgres and SQLite implementations of the storage contract.
  - Service: Mutation engine (attach, mark, unmark, delete) and query engine.
  - Handler: chi routes, including the legacy curation endpoints.
*/
package catalog

import (
	"encoding/json"
	"time"

	"github.com/taibuivan/lensfolio/internal/users/auth"
)

// # Best-Image Flag

// BestFlag records whether an image was curated into the best-images set.
//
// The zero value means the photographer never touched the flag. It is stored
// as NULL, while the explicit states are stored as 'Y' and 'N'.
type BestFlag string

const (
	// BestUnset is the state of every freshly uploaded image.
	BestUnset BestFlag = ""

	// BestMarked flags an image as one of the photographer's best.
	BestMarked BestFlag = "Y"

	// BestUnmarked flags an image that was explicitly removed from the best set.
	BestUnmarked BestFlag = "N"
)

// IsMarked reports whether the image belongs to the best-images set.
func (flag BestFlag) IsMarked() bool {
	return flag == BestMarked
}

// # Domain Entities

// Image is a single portfolio entry.
//
// ImageURL is an opaque reference into the file store (uploads/<key>). The ID
// is unique within its catalog only.
type Image struct {
	ID         string    `json:"id" yaml:"id"`
	ImageURL   string    `json:"image_url" yaml:"image_url"`
	Category   string    `json:"category" yaml:"category"`
	BestImage  BestFlag  `json:"best_image,omitempty" yaml:"best_image,omitempty"`
	UploadedAt time.Time `json:"uploaded_at" yaml:"uploaded_at"`
}

// Catalog is the per-photographer document holding images in upload order.
type Catalog struct {
	PhotographerID string    `json:"photographer_id"`
	Images         []*Image  `json:"images"`
	CreatedAt      time.Time `json:"created_at"`
}

// # Read Projections

// Profile is the public subset of a photographer identity.
type Profile struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Email        string `json:"email" yaml:"email"`
	Phone        string `json:"phone,omitempty" yaml:"phone,omitempty"`
	City         string `json:"city,omitempty" yaml:"city,omitempty"`
	Language     string `json:"language,omitempty" yaml:"language,omitempty"`
	Experience   string `json:"experience,omitempty" yaml:"experience,omitempty"`
	ProfileImage string `json:"profile_image,omitempty" yaml:"profile_image,omitempty"`
}

// NewProfile projects the public fields of user.
func NewProfile(user *auth.User) Profile {
	return Profile{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Phone:        user.Phone,
		City:         user.City,
		Language:     user.Language,
		Experience:   user.Experience,
		ProfileImage: user.ProfileImage,
	}
}

// Portfolio is the result of a catalog lookup: the owner plus every image.
type Portfolio struct {
	Profile Profile  `json:"profile" yaml:"profile"`
	Images  []*Image `json:"images" yaml:"images"`
}

// # Listing Views

// ViewMode selects the projection used when listing all photographers.
type ViewMode string

const (
	// ViewBest lists the images flagged as best for each photographer.
	ViewBest ViewMode = "best"

	// ViewGrouped lists every image URL grouped by category.
	ViewGrouped ViewMode = "grouped"
)

// ParseViewMode maps a query value onto a [ViewMode]. Empty selects ViewBest.
func ParseViewMode(value string) (ViewMode, bool) {
	switch ViewMode(value) {
	case "", ViewBest:
		return ViewBest, true
	case ViewGrouped:
		return ViewGrouped, true
	}
	return "", false
}

// Listing is one photographer in the directory listing.
//
// Only one of BestImages and Categories is populated, depending on Mode. Both
// JSON and YAML renderings flatten the profile fields next to the view.
type Listing struct {
	Profile    Profile
	Mode       ViewMode
	BestImages []*Image
	Categories map[string][]string
}

type bestListing struct {
	Profile    `yaml:",inline"`
	BestImages []*Image `json:"best_images" yaml:"best_images"`
}

type groupedListing struct {
	Profile    `yaml:",inline"`
	Categories map[string][]string `json:"categories" yaml:"categories"`
}

func (listing Listing) view() any {
	if listing.Mode == ViewGrouped {
		categories := listing.Categories
		if categories == nil {
			categories = map[string][]string{}
		}
		return groupedListing{Profile: listing.Profile, Categories: categories}
	}

	images := listing.BestImages
	if images == nil {
		images = []*Image{}
	}
	return bestListing{Profile: listing.Profile, BestImages: images}
}

// MarshalJSON renders the listing with the profile fields at the top level.
func (listing Listing) MarshalJSON() ([]byte, error) {
	return json.Marshal(listing.view())
}

// MarshalYAML renders the listing with the profile fields at the top level.
func (listing Listing) MarshalYAML() (any, error) {
	return listing.view(), nil
}

// # Validation Constraints

const (
	// MaxCategoryLength bounds the free-form category label.
	MaxCategoryLength = 100

	// Field names used in validation details.
	FieldCategory       = "category"
	FieldImageID        = "imageId"
	FieldPhotographerID = "photographerId"
	FieldImageURL       = "image_url"
)
