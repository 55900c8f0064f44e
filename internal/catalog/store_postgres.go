// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/lensfolio/internal/platform/apperr"
	"github.com/taibuivan/lensfolio/internal/platform/database/schema"
	"github.com/taibuivan/lensfolio/internal/platform/dberr"
	"github.com/taibuivan/lensfolio/pkg/pointer"
)

// # PostgreSQL Repository

// PostgresRepository implements [Repository] using pgx.
//
// Entries are ordered by the identity column seq, which grows with every
// insert and therefore mirrors upload order.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a PostgreSQL implementation of the catalog Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var postgresImageColumns = strings.Join(schema.CatalogImage.Columns(), ", ")

/*
Attach inserts the catalog row if absent and appends the image.

Description: Both statements share one transaction. ON CONFLICT DO NOTHING makes
concurrent first uploads converge on a single catalog row: the losing
transaction waits on the primary key and then skips the insert.
*/
func (repository *PostgresRepository) Attach(context context.Context, photographerID string, image *Image) error {
	catalog, images := schema.Catalog, schema.CatalogImage

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "postgres_catalog_repo_begin_failed")
	}
	defer func() { _ = transaction.Rollback(context) }()

	upsert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		VALUES ($1, $2)
		ON CONFLICT (%s) DO NOTHING`,
		catalog.Table, catalog.PhotographerID, catalog.CreatedAt,
		catalog.PhotographerID,
	)
	if _, err := transaction.Exec(context, upsert, photographerID, image.UploadedAt); err != nil {
		return dberr.Wrap(err, "postgres_catalog_repo_upsert_failed")
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NULL, $5)`,
		images.Table,
		images.ID, images.PhotographerID, images.ImageURL, images.Category, images.BestImage, images.UploadedAt,
	)
	_, err = transaction.Exec(context, insert,
		image.ID,
		photographerID,
		image.ImageURL,
		image.Category,
		image.UploadedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "postgres_catalog_repo_attach_failed")
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "postgres_catalog_repo_commit_failed")
	}
	return nil
}

/*
SetBest flips the flag with one conditional UPDATE ... RETURNING.
*/
func (repository *PostgresRepository) SetBest(context context.Context, photographerID, imageID, category string, flag BestFlag) (*Image, error) {
	images := schema.CatalogImage
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $4
		WHERE %s = $1 AND %s = $2 AND %s = $3
		RETURNING %s`,
		images.Table,
		images.BestImage,
		images.PhotographerID, images.ID, images.Category,
		postgresImageColumns,
	)

	image, err := scanImage(repository.pool.QueryRow(context, query, photographerID, imageID, category, string(flag)))
	if err != nil {
		return nil, wrapImageRead(err, "postgres_catalog_repo_set_best_failed")
	}
	return image, nil
}

/*
Delete removes the matching entry with DELETE ... RETURNING.
*/
func (repository *PostgresRepository) Delete(context context.Context, photographerID, imageID, category string) (*Image, error) {
	images := schema.CatalogImage
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = $1 AND %s = $2 AND %s = $3
		RETURNING %s`,
		images.Table,
		images.PhotographerID, images.ID, images.Category,
		postgresImageColumns,
	)

	image, err := scanImage(repository.pool.QueryRow(context, query, photographerID, imageID, category))
	if err != nil {
		return nil, wrapImageRead(err, "postgres_catalog_repo_delete_failed")
	}
	return image, nil
}

/*
FindByPhotographer loads the catalog row, then its images ordered by seq.
*/
func (repository *PostgresRepository) FindByPhotographer(context context.Context, photographerID string) (*Catalog, error) {
	catalogTable, images := schema.Catalog, schema.CatalogImage

	result := &Catalog{PhotographerID: photographerID}
	head := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		catalogTable.CreatedAt, catalogTable.Table, catalogTable.PhotographerID,
	)
	if err := repository.pool.QueryRow(context, head, photographerID).Scan(&result.CreatedAt); err != nil {
		if dberr.IsNoRows(err) {
			return nil, apperr.NotFound("Catalog")
		}
		return nil, dberr.Wrap(err, "postgres_catalog_repo_find_failed")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s`,
		postgresImageColumns, images.Table, images.PhotographerID, images.Seq,
	)
	entries, err := repository.queryImages(context, query, photographerID)
	if err != nil {
		return nil, err
	}

	result.Images = entries
	return result, nil
}

/*
FindByCategory returns the entries with an exactly matching category.
*/
func (repository *PostgresRepository) FindByCategory(context context.Context, photographerID, category string) ([]*Image, error) {
	images := schema.CatalogImage
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 ORDER BY %s`,
		postgresImageColumns, images.Table, images.PhotographerID, images.Category, images.Seq,
	)
	return repository.queryImages(context, query, photographerID, category)
}

/*
ListAll reads every catalog with its images in a single LEFT JOIN scan.
*/
func (repository *PostgresRepository) ListAll(context context.Context) ([]*Catalog, error) {
	catalogTable, images := schema.Catalog, schema.CatalogImage
	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, i.%s, i.%s, i.%s, i.%s, i.%s
		FROM %s c
		LEFT JOIN %s i ON i.%s = c.%s
		ORDER BY c.%s, c.%s, i.%s`,
		catalogTable.PhotographerID, catalogTable.CreatedAt,
		images.ID, images.ImageURL, images.Category, images.BestImage, images.UploadedAt,
		catalogTable.Table,
		images.Table, images.PhotographerID, catalogTable.PhotographerID,
		catalogTable.CreatedAt, catalogTable.PhotographerID, images.Seq,
	)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_catalog_repo_list_failed")
	}
	defer rows.Close()

	catalogs, err := collectCatalogs(rows)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_catalog_repo_list_scan_failed")
	}
	return catalogs, nil
}

func (repository *PostgresRepository) queryImages(context context.Context, query string, args ...any) ([]*Image, error) {
	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_catalog_repo_query_failed")
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Image, error) {
		return scanImage(row)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_catalog_repo_scan_failed")
	}
	return entries, nil
}

// # Shared Row Mapping

// rowScanner is satisfied by pgx rows and database/sql rows alike.
type rowScanner interface {
	Scan(dest ...any) error
}

// rowIterator is the subset of pgx.Rows and *sql.Rows used by collectCatalogs.
type rowIterator interface {
	rowScanner
	Next() bool
	Err() error
}

// scanImage hydrates an Image from a row selected with [schema.CatalogImageTable.Columns].
func scanImage(row rowScanner) (*Image, error) {
	image := &Image{}

	var best *string
	err := row.Scan(
		&image.ID,
		&image.ImageURL,
		&image.Category,
		&best,
		&image.UploadedAt,
	)
	if err != nil {
		return nil, err
	}

	if best != nil {
		image.BestImage = BestFlag(*best)
	}
	return image, nil
}

// collectCatalogs folds LEFT JOIN rows ordered by catalog into documents. A
// catalog without images yields one row of NULL image columns.
func collectCatalogs(rows rowIterator) ([]*Catalog, error) {
	catalogs := []*Catalog{}

	var current *Catalog
	for rows.Next() {
		var (
			photographerID string
			createdAt      time.Time
			id             *string
			url            *string
			category       *string
			best           *string
			uploadedAt     *time.Time
		)
		if err := rows.Scan(&photographerID, &createdAt, &id, &url, &category, &best, &uploadedAt); err != nil {
			return nil, err
		}

		if current == nil || current.PhotographerID != photographerID {
			current = &Catalog{PhotographerID: photographerID, CreatedAt: createdAt, Images: []*Image{}}
			catalogs = append(catalogs, current)
		}

		if id == nil {
			continue
		}

		image := &Image{
			ID:         *id,
			ImageURL:   pointer.Fallback(url, ""),
			Category:   pointer.Fallback(category, ""),
			BestImage:  BestFlag(pointer.Fallback(best, "")),
			UploadedAt: pointer.Fallback(uploadedAt, time.Time{}),
		}
		current.Images = append(current.Images, image)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return catalogs, nil
}

func wrapImageRead(err error, action string) error {
	if dberr.IsNoRows(err) {
		return apperr.NotFound("Image")
	}
	return dberr.Wrap(err, action)
}
