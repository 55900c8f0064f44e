// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole is the account type chosen at signup. Roles are flat; a
// photographer is not a superset of a customer.
type UserRole string

const (
	// RoleCustomer browses portfolios.
	RoleCustomer UserRole = "customer"

	// RolePhotographer owns a catalog and curates its best images.
	RolePhotographer UserRole = "photographer"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	return r == RoleCustomer || r == RolePhotographer
}

// In reports whether r is contained in allowed.
func (r UserRole) In(allowed ...UserRole) bool {
	for _, candidate := range allowed {
		if r == candidate {
			return true
		}
	}
	return false
}
