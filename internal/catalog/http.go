// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"cmp"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/lensfolio/internal/platform/apperr"
	"github.com/taibuivan/lensfolio/internal/platform/ctxutil"
	"github.com/taibuivan/lensfolio/internal/platform/filestore"
	"github.com/taibuivan/lensfolio/internal/platform/middleware"
	requestutil "github.com/taibuivan/lensfolio/internal/platform/request"
	"github.com/taibuivan/lensfolio/internal/platform/respond"
	"github.com/taibuivan/lensfolio/internal/platform/sec"
	"github.com/taibuivan/lensfolio/internal/platform/upload"
	"github.com/taibuivan/lensfolio/internal/platform/validate"
)

// URL parameters. chi allows a single name per path position, so item is the
// category on reads and the image id on mutations.
const (
	paramPhotographerID = "id"
	paramItem           = "item"
)

// # Definitions & Constructors

// Handler implements the catalog HTTP endpoints.
type Handler struct {
	catalogService *Service
	fileStore      filestore.Store
	limits         upload.Limits
}

// NewHandler constructs a new [Handler]. Uploaded images are written to files.
func NewHandler(service *Service, files filestore.Store, limits upload.Limits) *Handler {
	return &Handler{catalogService: service, fileStore: files, limits: limits}
}

// Routes returns a [chi.Router] for the /photographers resource.
//
// # Endpoints
//   - GET    /                         : Lists photographers (?view=best|grouped)
//   - GET    /{id}                     : Profile and full catalog
//   - GET    /{id}/images/{category}   : Images in one category
//   - POST   /{id}/images              : Uploads and attaches an image
//   - PUT    /{id}/images/{imageID}/best : Marks an image as best
//   - DELETE /{id}/images/{imageID}/best : Unmarks an image
//   - DELETE /{id}/images/{imageID}    : Deletes an image
//   - POST   /upload-image             : Legacy upload (photographerId in the form)
//   - DELETE /delete-image             : Legacy delete (ids in the body)
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public reads
	router.Get("/", handler.listPhotographers)
	router.Get("/{id}", handler.getCatalog)
	router.Get("/{id}/images/{item}", handler.getImagesByCategory)

	// Owner-only mutations
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RolePhotographer))

		r.Post("/{id}/images", handler.uploadImage)
		r.Put("/{id}/images/{item}/best", handler.markBest)
		r.Delete("/{id}/images/{item}/best", handler.unmarkBest)
		r.Delete("/{id}/images/{item}", handler.deleteImage)

		r.Post("/upload-image", handler.uploadImage)
		r.Delete("/delete-image", handler.deleteImage)
	})

	return router
}

// LegacyRoutes registers the root-level endpoints kept for older clients.
//
// # Endpoints
//   - GET  /all_photographers       : Same as GET /photographers
//   - POST /add_to_best_images
//   - PUT  /remove_from_best_images
func (handler *Handler) LegacyRoutes(router chi.Router) {
	router.Get("/all_photographers", handler.listPhotographers)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RolePhotographer))
		r.Post("/add_to_best_images", handler.markBest)
		r.Put("/remove_from_best_images", handler.unmarkBest)
	})
}

// # Request Payloads

// curationRequest is the normalised body of every curation call. userId wins
// over photographerId when both are sent.
type curationRequest struct {
	PhotographerID string `json:"photographerId"`
	UserID         string `json:"userId"`
	ImageID        string `json:"imageId"`
	Category       string `json:"category"`
}

func (input curationRequest) photographer() string {
	return cmp.Or(input.UserID, input.PhotographerID)
}

// curationTarget is a fully resolved (photographer, image, category) triple.
type curationTarget struct {
	photographerID string
	imageID        string
	category       string
}

// resolveCuration merges path parameters with the payload. Path values take
// precedence; the legacy routes carry everything in the payload.
func resolveCuration(request *http.Request) (curationTarget, error) {
	var input curationRequest
	if err := requestutil.DecodePayload(request, &input); err != nil {
		return curationTarget{}, err
	}

	target := curationTarget{
		photographerID: cmp.Or(requestutil.ID(request, paramPhotographerID), input.photographer()),
		imageID:        cmp.Or(requestutil.Param(request, paramItem), input.ImageID),
		category:       input.Category,
	}

	validator := &validate.Validator{}
	validator.Required(FieldPhotographerID, target.photographerID).
		Required(FieldImageID, target.imageID).
		Required(FieldCategory, target.category)
	if err := validator.Err(); err != nil {
		missing := apperr.As(err)
		missing.Message = "Missing userId/imageId/category"
		return curationTarget{}, missing
	}

	if err := requestutil.RequireSelf(request, target.photographerID); err != nil {
		return curationTarget{}, err
	}

	return target, nil
}

// # Query Handlers

/*
listPhotographers returns every photographer with a catalog projection.

GET /api/v1/photographers?view=best|grouped

Response:
  - 200: []Listing (best_images or categories next to the profile fields)
  - 400: Unknown view
*/
func (handler *Handler) listPhotographers(writer http.ResponseWriter, request *http.Request) {
	mode, ok := ParseViewMode(request.URL.Query().Get("view"))
	if !ok {
		respond.Error(writer, request, validate.RequiredError("view", "Must be one of: best, grouped"))
		return
	}

	listings, err := handler.catalogService.ListAllPhotographers(request.Context(), mode)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, listings)
}

/*
getCatalog returns a photographer's profile and images.

GET /api/v1/photographers/{id}

Response:
  - 200: Portfolio
  - 400: User is not a photographer
  - 404: Photographer not found
*/
func (handler *Handler) getCatalog(writer http.ResponseWriter, request *http.Request) {
	portfolio, err := handler.catalogService.GetCatalog(request.Context(), requestutil.ID(request, paramPhotographerID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, portfolio)
}

/*
getImagesByCategory returns the images of one category.

GET /api/v1/photographers/{id}/images/{category}

Response:
  - 200: []Image
  - 404: Photographer or category not found
*/
func (handler *Handler) getImagesByCategory(writer http.ResponseWriter, request *http.Request) {
	images, err := handler.catalogService.GetImagesByCategory(request.Context(),
		requestutil.ID(request, paramPhotographerID),
		requestutil.Param(request, paramItem),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, images)
}

// # Mutation Handlers

type uploadRequest struct {
	PhotographerID string `json:"photographerId"`
	UserID         string `json:"userId"`
	Category       string `json:"category"`
}

/*
uploadImage stores a multipart image and attaches it to the catalog.

POST /api/v1/photographers/{id}/images
POST /api/v1/photographers/upload-image

Description: Expects a multipart form with an "image" file and a "category"
field. The file is stored before the catalog entry is written; if the entry
cannot be written, the file is removed again.

Response:
  - 201: Image
  - 400: Missing fields, non-image file or not a photographer
  - 403: Not the caller's catalog
  - 413: File exceeds the upload limit
*/
func (handler *Handler) uploadImage(writer http.ResponseWriter, request *http.Request) {
	logger := ctxutil.GetLogger(request.Context())

	// 1. File
	image, err := upload.Read(writer, request, upload.FieldImage, handler.limits, true)
	defer upload.Cleanup(request, logger)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// 2. Fields
	var input uploadRequest
	if err := requestutil.DecodePayload(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	photographerID := cmp.Or(requestutil.ID(request, paramPhotographerID), input.UserID, input.PhotographerID)

	validator := &validate.Validator{}
	validator.Required(FieldPhotographerID, photographerID).
		Required(FieldCategory, input.Category).
		MaxLen(FieldCategory, input.Category, MaxCategoryLength)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := requestutil.RequireSelf(request, photographerID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// 3. Store the file, then attach the entry
	ref, key, err := upload.Store(request.Context(), handler.fileStore, input.Category, image)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.catalogService.AttachImage(request.Context(), photographerID, input.Category, ref)
	if err != nil {
		upload.Discard(request.Context(), handler.fileStore, key, logger)
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

/*
markBest adds an image to the best-images set.

PUT  /api/v1/photographers/{id}/images/{imageID}/best
POST /api/v1/add_to_best_images

Response:
  - 200: Image
  - 400: Missing userId/imageId/category
  - 404: Image not found
*/
func (handler *Handler) markBest(writer http.ResponseWriter, request *http.Request) {
	target, err := resolveCuration(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	image, err := handler.catalogService.MarkBest(request.Context(), target.photographerID, target.imageID, target.category)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, image)
}

/*
unmarkBest removes an image from the best-images set.

DELETE /api/v1/photographers/{id}/images/{imageID}/best
PUT    /api/v1/remove_from_best_images
*/
func (handler *Handler) unmarkBest(writer http.ResponseWriter, request *http.Request) {
	target, err := resolveCuration(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	image, err := handler.catalogService.UnmarkBest(request.Context(), target.photographerID, target.imageID, target.category)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, image)
}

/*
deleteImage removes an image from the catalog. The file is released in the
background.

DELETE /api/v1/photographers/{id}/images/{imageID}?category=...
DELETE /api/v1/photographers/delete-image

Response:
  - 200: The removed Image
  - 404: Photographer or image not found
*/
func (handler *Handler) deleteImage(writer http.ResponseWriter, request *http.Request) {
	target, err := resolveCuration(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	image, err := handler.catalogService.DeleteImage(request.Context(), target.photographerID, target.imageID, target.category)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, image)
}
