// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides the time-ordered identifiers used for accounts, image
entries and stored file names.

Version 7 values sort by creation time, so file keys and image ids listed
lexically come back in upload order.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
func New() string {

	// entropy failure is an unrecoverable system-level error
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// Valid reports whether s is a syntactically valid UUID of any version.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
