// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"cmp"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/lensfolio/internal/platform/ctxutil"
	"github.com/taibuivan/lensfolio/internal/platform/filestore"
	"github.com/taibuivan/lensfolio/internal/platform/middleware"
	requestutil "github.com/taibuivan/lensfolio/internal/platform/request"
	"github.com/taibuivan/lensfolio/internal/platform/respond"
	"github.com/taibuivan/lensfolio/internal/platform/upload"
	"github.com/taibuivan/lensfolio/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the identity HTTP endpoints.
type Handler struct {
	authService *Service
	fileStore   filestore.Store
	limits      upload.Limits
}

// NewHandler constructs a new [Handler]. The file store receives profile pictures.
func NewHandler(service *Service, files filestore.Store, limits upload.Limits) *Handler {
	return &Handler{authService: service, fileStore: files, limits: limits}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /customer/signup     : Creates a customer account.
//   - POST /photographer/signup : Creates a photographer account.
//   - POST /login               : Authenticates and returns a JWT.
//   - POST /logout              : Revokes the presented JWT.
//   - GET|PUT /me               : Reads or edits the caller's profile.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/customer/signup", handler.signupCustomer)
	router.Post("/photographer/signup", handler.signupPhotographer)
	router.Post("/login", handler.login)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Get("/me", handler.getProfile)
		r.Put("/me", handler.updateProfile)
	})

	return router
}

// # Request Payloads

// The user_* aliases keep older signup forms working.
type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	UserEmail       string `json:"user_email"`
	Password        string `json:"password"`
	UserPassword    string `json:"user_password"`
	ConfirmPassword string `json:"confirm_password"`
	Phone           string `json:"phone"`
	City            string `json:"city"`
	Language        string `json:"language"`
	Experience      string `json:"experience"`
}

func (input signupRequest) email() string    { return cmp.Or(input.Email, input.UserEmail) }
func (input signupRequest) password() string { return cmp.Or(input.Password, input.UserPassword) }

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	City       *string `json:"city"`
	Language   *string `json:"language"`
	Experience *string `json:"experience"`
}

/*
signupCustomer handles the creation of a customer account.

POST /api/v1/auth/customer/signup

Response:
  - 201: User
  - 400: Validation failure (including mismatched passwords)
  - 409: User already exists
*/
func (handler *Handler) signupCustomer(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest
	if err := requestutil.DecodePayload(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := validateCredentials(input)
	validator.Custom(FieldConfirmPassword, input.ConfirmPassword != input.password(), "Passwords do not match")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.SignupCustomer(request.Context(), CustomerSignupInput{
		Name:     input.Name,
		Email:    input.email(),
		Password: input.password(),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
signupPhotographer handles the creation of a photographer account.

POST /api/v1/auth/photographer/signup

Response:
  - 201: User
  - 400: Validation failure (phone, city and experience are mandatory)
  - 409: User already exists
*/
func (handler *Handler) signupPhotographer(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest
	if err := requestutil.DecodePayload(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := validateCredentials(input)
	if input.ConfirmPassword != "" {
		validator.Custom(FieldConfirmPassword, input.ConfirmPassword != input.password(), "Passwords do not match")
	}
	validator.Required(FieldPhone, input.Phone).
		Phone(FieldPhone, input.Phone).
		Required(FieldCity, input.City).
		Required(FieldExperience, input.Experience)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.SignupPhotographer(request.Context(), PhotographerSignupInput{
		Name:       input.Name,
		Email:      input.email(),
		Password:   input.password(),
		Phone:      input.Phone,
		City:       input.City,
		Language:   input.Language,
		Experience: input.Experience,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

func validateCredentials(input signupRequest) *validate.Validator {
	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, MaxNameLength).
		Required(FieldEmail, input.email()).
		Email(FieldEmail, input.email()).
		Required(FieldPassword, input.password()).
		MinLen(FieldPassword, input.password(), MinPasswordLength)
	return validator
}

/*
login authenticates a user.

POST /api/v1/auth/login

Response:
  - 200: Session: Access token and User profile
  - 401: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodePayload(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
logout revokes the caller's access token.

POST /api/v1/auth/logout

Response:
  - 204: No Content
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if err := handler.authService.Logout(request.Context(), requestutil.Claims(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
getProfile returns the caller's account.

GET /api/v1/auth/me
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
updateProfile edits the caller's account.

PUT /api/v1/auth/me

Description: Accepts JSON or a multipart form. A multipart "profile" file
replaces the profile picture; the previous picture is removed best-effort.

Response:
  - 200: User
  - 400: Validation failure or non-image file
  - 409: Email already registered
  - 413: File exceeds the upload limit
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	logger := ctxutil.GetLogger(request.Context())

	// 1. Optional profile picture
	var image *upload.Image
	if strings.HasPrefix(request.Header.Get("Content-Type"), "multipart/") {
		image, err = upload.Read(writer, request, upload.FieldProfile, handler.limits, false)
		defer upload.Cleanup(request, logger)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	// 2. Profile fields
	var payload updateProfileRequest
	if err := requestutil.DecodePayload(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if payload.Email != nil {
		validator.Email(FieldEmail, *payload.Email)
	}
	if payload.Phone != nil && *payload.Phone != "" {
		validator.Phone(FieldPhone, *payload.Phone)
	}
	if payload.Name != nil {
		validator.MaxLen(FieldName, *payload.Name, MaxNameLength)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := UpdateProfileInput{
		Name:       payload.Name,
		Email:      payload.Email,
		Phone:      payload.Phone,
		City:       payload.City,
		Language:   payload.Language,
		Experience: payload.Experience,
	}

	// 3. Store the picture before the metadata refers to it
	storedKey := ""
	if image != nil {
		ref, key, err := upload.Store(request.Context(), handler.fileStore, ProfileImageCategory, image)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		storedKey = key
		input.ProfileImage = &ref
	}

	user, replaced, err := handler.authService.UpdateProfile(request.Context(), userID, input)
	if err != nil {
		if storedKey != "" {
			upload.Discard(request.Context(), handler.fileStore, storedKey, logger)
		}
		respond.Error(writer, request, err)
		return
	}

	// 4. Drop the picture that was replaced
	if key, ok := filestore.KeyFromRef(replaced); ok {
		upload.Discard(request.Context(), handler.fileStore, key, logger)
		logger.InfoContext(request.Context(), "auth_profile_image_replaced", slog.String("user_id", user.ID))
	}

	respond.OK(writer, user)
}
