// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CatalogTable represents the 'catalog' table
type CatalogTable struct {
	Table          string
	PhotographerID string
	CreatedAt      string
}

// Catalog is the schema definition for catalog
var Catalog = CatalogTable{
	Table:          "catalog",
	PhotographerID: "photographerid",
	CreatedAt:      "createdat",
}

// CatalogImageTable represents the 'catalog_image' table
type CatalogImageTable struct {
	Table          string
	Seq            string
	ID             string
	PhotographerID string
	ImageURL       string
	Category       string
	BestImage      string
	UploadedAt     string
}

// CatalogImage is the schema definition for catalog_image.
//
// Seq orders entries by insertion. The SQLite flavour has no seq column and
// orders by rowid instead.
var CatalogImage = CatalogImageTable{
	Table:          "catalog_image",
	Seq:            "seq",
	ID:             "id",
	PhotographerID: "photographerid",
	ImageURL:       "imageurl",
	Category:       "category",
	BestImage:      "bestimage",
	UploadedAt:     "uploadedat",
}

// Columns lists the entry columns returned to callers.
func (t CatalogImageTable) Columns() []string {
	return []string{t.ID, t.ImageURL, t.Category, t.BestImage, t.UploadedAt}
}
