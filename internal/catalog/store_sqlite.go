// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/taibuivan/lensfolio/internal/platform/apperr"
	"github.com/taibuivan/lensfolio/internal/platform/database/schema"
	"github.com/taibuivan/lensfolio/internal/platform/dberr"
)

// SQLiteRepository implements [Repository] on database/sql.
//
// Entries are ordered by rowid. The pool holds a single connection, so no
// query may run against the pool while a transaction is open.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite implementation of the catalog Repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var sqliteImageColumns = strings.Join(schema.CatalogImage.Columns(), ", ")

// Attach inserts the catalog row if absent and appends the image in one transaction.
func (repository *SQLiteRepository) Attach(context context.Context, photographerID string, image *Image) error {
	catalog, images := schema.Catalog, schema.CatalogImage

	transaction, err := repository.db.BeginTx(context, nil)
	if err != nil {
		return dberr.Wrap(err, "sqlite_catalog_repo_begin_failed")
	}
	defer func() { _ = transaction.Rollback() }()

	upsert := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES (?, ?) ON CONFLICT (%s) DO NOTHING`,
		catalog.Table, catalog.PhotographerID, catalog.CreatedAt, catalog.PhotographerID,
	)
	if _, err := transaction.ExecContext(context, upsert, photographerID, image.UploadedAt); err != nil {
		return dberr.Wrap(err, "sqlite_catalog_repo_upsert_failed")
	}

	insert := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, NULL, ?)`,
		images.Table,
		images.ID, images.PhotographerID, images.ImageURL, images.Category, images.BestImage, images.UploadedAt,
	)
	_, err = transaction.ExecContext(context, insert,
		image.ID,
		photographerID,
		image.ImageURL,
		image.Category,
		image.UploadedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "sqlite_catalog_repo_attach_failed")
	}

	if err := transaction.Commit(); err != nil {
		return dberr.Wrap(err, "sqlite_catalog_repo_commit_failed")
	}
	return nil
}

// SetBest flips the flag with one conditional UPDATE ... RETURNING.
func (repository *SQLiteRepository) SetBest(context context.Context, photographerID, imageID, category string, flag BestFlag) (*Image, error) {
	images := schema.CatalogImage
	query := fmt.Sprintf(`UPDATE %s SET %s = ? WHERE %s = ? AND %s = ? AND %s = ? RETURNING %s`,
		images.Table,
		images.BestImage,
		images.PhotographerID, images.ID, images.Category,
		sqliteImageColumns,
	)

	image, err := scanImage(repository.db.QueryRowContext(context, query, string(flag), photographerID, imageID, category))
	if err != nil {
		return nil, wrapImageRead(err, "sqlite_catalog_repo_set_best_failed")
	}
	return image, nil
}

// Delete removes the matching entry with DELETE ... RETURNING.
func (repository *SQLiteRepository) Delete(context context.Context, photographerID, imageID, category string) (*Image, error) {
	images := schema.CatalogImage
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND %s = ? AND %s = ? RETURNING %s`,
		images.Table,
		images.PhotographerID, images.ID, images.Category,
		sqliteImageColumns,
	)

	image, err := scanImage(repository.db.QueryRowContext(context, query, photographerID, imageID, category))
	if err != nil {
		return nil, wrapImageRead(err, "sqlite_catalog_repo_delete_failed")
	}
	return image, nil
}

// FindByPhotographer loads the catalog row, then its images in rowid order.
func (repository *SQLiteRepository) FindByPhotographer(context context.Context, photographerID string) (*Catalog, error) {
	catalogTable, images := schema.Catalog, schema.CatalogImage

	result := &Catalog{PhotographerID: photographerID}
	head := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		catalogTable.CreatedAt, catalogTable.Table, catalogTable.PhotographerID,
	)
	if err := repository.db.QueryRowContext(context, head, photographerID).Scan(&result.CreatedAt); err != nil {
		if dberr.IsNoRows(err) {
			return nil, apperr.NotFound("Catalog")
		}
		return nil, dberr.Wrap(err, "sqlite_catalog_repo_find_failed")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? ORDER BY rowid`,
		sqliteImageColumns, images.Table, images.PhotographerID,
	)
	entries, err := repository.queryImages(context, query, photographerID)
	if err != nil {
		return nil, err
	}

	result.Images = entries
	return result, nil
}

// FindByCategory returns the entries with an exactly matching category.
func (repository *SQLiteRepository) FindByCategory(context context.Context, photographerID, category string) ([]*Image, error) {
	images := schema.CatalogImage
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? AND %s = ? ORDER BY rowid`,
		sqliteImageColumns, images.Table, images.PhotographerID, images.Category,
	)
	return repository.queryImages(context, query, photographerID, category)
}

// ListAll reads every catalog with its images in a single LEFT JOIN scan.
func (repository *SQLiteRepository) ListAll(context context.Context) ([]*Catalog, error) {
	catalogTable, images := schema.Catalog, schema.CatalogImage
	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, i.%s, i.%s, i.%s, i.%s, i.%s
		FROM %s c
		LEFT JOIN %s i ON i.%s = c.%s
		ORDER BY c.%s, c.%s, i.rowid`,
		catalogTable.PhotographerID, catalogTable.CreatedAt,
		images.ID, images.ImageURL, images.Category, images.BestImage, images.UploadedAt,
		catalogTable.Table,
		images.Table, images.PhotographerID, catalogTable.PhotographerID,
		catalogTable.CreatedAt, catalogTable.PhotographerID,
	)

	rows, err := repository.db.QueryContext(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "sqlite_catalog_repo_list_failed")
	}
	defer func() { _ = rows.Close() }()

	catalogs, err := collectCatalogs(rows)
	if err != nil {
		return nil, dberr.Wrap(err, "sqlite_catalog_repo_list_scan_failed")
	}
	return catalogs, nil
}

func (repository *SQLiteRepository) queryImages(context context.Context, query string, args ...any) ([]*Image, error) {
	rows, err := repository.db.QueryContext(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "sqlite_catalog_repo_query_failed")
	}
	defer func() { _ = rows.Close() }()

	entries := []*Image{}
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "sqlite_catalog_repo_scan_failed")
		}
		entries = append(entries, image)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "sqlite_catalog_repo_query_failed")
	}
	return entries, nil
}
