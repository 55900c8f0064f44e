// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package schema names the tables and columns used by the SQL repositories.

Repositories build statements from these descriptors instead of string literals,
so a renamed column only needs to change here and in the migrations.
*/
package schema

// UsersAccountTable represents the 'account' table
type UsersAccountTable struct {
	Table        string
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Phone        string
	Experience   string
	City         string
	Language     string
	ProfileImage string
	CreatedAt    string
	UpdatedAt    string
}

// UsersAccount is the schema definition for account
var UsersAccount = UsersAccountTable{
	Table:        "account",
	ID:           "id",
	Name:         "name",
	Email:        "email",
	PasswordHash: "passwordhash",
	Role:         "role",
	Phone:        "phone",
	Experience:   "experience",
	City:         "city",
	Language:     "language",
	ProfileImage: "profileimage",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns lists every column in declaration order.
func (t UsersAccountTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Email, t.PasswordHash, t.Role, t.Phone, t.Experience,
		t.City, t.Language, t.ProfileImage, t.CreatedAt, t.UpdatedAt,
	}
}

// ProfileColumns lists the columns exposed to the catalog as a photographer profile.
func (t UsersAccountTable) ProfileColumns() []string {
	return []string{t.ID, t.Name, t.Email, t.Role, t.Phone, t.Experience, t.City, t.Language, t.ProfileImage}
}
