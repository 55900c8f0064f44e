// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"maps"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/lensfolio/internal/platform/apperr"
	"github.com/taibuivan/lensfolio/internal/platform/constants"
	"github.com/taibuivan/lensfolio/internal/platform/ctxutil"
	"github.com/taibuivan/lensfolio/internal/platform/sec"
	"github.com/taibuivan/lensfolio/internal/platform/validate"
)

// PayloadField is the form field that may carry a JSON document instead of plain fields.
const PayloadField = "data"

// maxFormMemory bounds the in-memory part of a parsed multipart curation form.
const maxFormMemory = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
DecodePayload normalises a request that may arrive in several shapes into target.

Sources are merged in increasing precedence:
 1. URL query parameters.
 2. Plain form fields (urlencoded or multipart).
 3. A JSON document in the "data" form field.
 4. A JSON request body.

Every source is flattened into one JSON object and decoded into target, so target
only needs json tags.

Returns:
  - error: validate.ErrInvalidJSON for malformed JSON, a validation error for
    unsupported content types, otherwise nil
*/
func DecodePayload(request *http.Request, target interface{}) error {
	fields := map[string]any{}

	for key, values := range request.URL.Query() {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}

	mediaType := ""
	if contentType := request.Header.Get("Content-Type"); contentType != "" {
		parsed, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return apperr.ValidationError("Invalid Content-Type header")
		}
		mediaType = parsed
	}

	switch mediaType {
	case "application/json":
		body := map[string]any{}
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return validate.ErrInvalidJSON
		}
		maps.Copy(fields, body)

	case "multipart/form-data", "application/x-www-form-urlencoded":
		if err := parseForm(request, mediaType); err != nil {
			return apperr.ValidationError("Invalid form payload")
		}

		for key, values := range request.PostForm {
			if key != PayloadField && len(values) > 0 {
				fields[key] = values[0]
			}
		}

		if raw := request.PostForm.Get(PayloadField); raw != "" {
			document := map[string]any{}
			if err := json.Unmarshal([]byte(raw), &document); err != nil {
				return validate.ErrInvalidJSON
			}
			maps.Copy(fields, document)
		}

	case "":
		// Body-less requests rely on the query string alone.

	default:
		return apperr.ValidationError("Unsupported Content-Type " + mediaType)
	}

	encoded, err := json.Marshal(fields)
	if err != nil {
		return validate.ErrInvalidJSON
	}

	if err := json.Unmarshal(encoded, target); err != nil {
		return validate.ErrInvalidJSON
	}

	return nil
}

// parseForm parses the body according to its media type.
func parseForm(request *http.Request, mediaType string) error {
	if mediaType == "multipart/form-data" {
		return request.ParseMultipartForm(maxFormMemory)
	}
	return request.ParseForm()
}

/*
ID retrieves a named URL parameter (UUID) from the request.
*/
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Param retrieves a named URL parameter from the request, percent-decoded.

chi matches on the raw path when the request carries an escaped slash, and the
captured segment is still escaped in that case.
*/
func Param(request *http.Request, name string) string {
	value := chi.URLParam(request, name)
	if request.URL.RawPath == "" {
		return value
	}

	decoded, err := url.PathUnescape(value)
	if err != nil {
		return value
	}
	return decoded
}

/*
Claims extracts the authenticated user claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - *sec.AuthClaims: The authenticated user claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

/*
RequiredUserID returns the User ID of the currently logged-in user.

Returns:
  - string: User UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

/*
RequireSelf ensures the authenticated caller is the owner of the targeted account.

Returns:
  - error: apperr.Unauthorized when anonymous, apperr.Forbidden for another account
*/
func RequireSelf(request *http.Request, ownerID string) error {
	userID, err := RequiredUserID(request)
	if err != nil {
		return err
	}
	if userID != ownerID {
		return apperr.Forbidden("You can only manage your own catalog")
	}
	return nil
}

// BearerToken extracts the raw token from the Authorization header, or "".
func BearerToken(request *http.Request) string {
	scheme, token, found := strings.Cut(request.Header.Get(constants.HeaderAuthorization), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
