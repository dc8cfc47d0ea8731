package filestore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/filevault/integration/database/pg"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so catalog
// calls can join a caller transaction carried in the context.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresCatalog stores FileRecords in PostgreSQL. Canonical uniqueness per
// (content hash, bucket) is enforced by a partial unique index over rows where
// id = content_id, which turns the dedup race into a constraint violation
// instead of a duplicate canonical row.
type PostgresCatalog struct {
	pool *pgxpool.Pool
}

// Compile-time check that PostgresCatalog implements Catalog.
var _ Catalog = (*PostgresCatalog)(nil)

// NewPostgresCatalog creates a catalog over an established connection pool.
func NewPostgresCatalog(pool *pgxpool.Pool) *PostgresCatalog {
	return &PostgresCatalog{pool: pool}
}

// db returns the caller's transaction when one rides the context, otherwise
// the pool.
func (c *PostgresCatalog) db(ctx context.Context) querier {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx
	}
	return c.pool
}

const insertRecordSQL = `
	INSERT INTO files (id, content_id, name, content_type, content_hash, bucket, spoiler, width, height)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const selectRecordSQL = `
	SELECT id, content_id, name, content_type, content_hash, bucket, spoiler, width, height
	FROM files`

// Insert stores a record; a unique violation on the canonical index surfaces
// as ErrContentExists.
func (c *PostgresCatalog) Insert(ctx context.Context, record *FileRecord) error {
	_, err := c.db(ctx).Exec(ctx, insertRecordSQL,
		record.ID,
		record.ContentID,
		record.Name,
		record.ContentType,
		record.ContentHash,
		record.Bucket,
		record.Spoiler,
		record.Width,
		record.Height,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: hash %s in bucket %q", ErrContentExists, record.ContentHash, record.Bucket)
		}
		return fmt.Errorf("%w: insert record: %v", ErrCatalogUnavailable, err)
	}
	return nil
}

// FindByHash returns the canonical record for (hash, bucket).
func (c *PostgresCatalog) FindByHash(ctx context.Context, hash, bucket string) (*FileRecord, error) {
	row := c.db(ctx).QueryRow(ctx, selectRecordSQL+`
		WHERE content_hash = $1 AND bucket = $2 AND id = content_id`,
		hash, bucket,
	)
	return c.scan(row)
}

// FindByID returns the record for (id, bucket).
func (c *PostgresCatalog) FindByID(ctx context.Context, id int64, bucket string) (*FileRecord, error) {
	row := c.db(ctx).QueryRow(ctx, selectRecordSQL+`
		WHERE id = $1 AND bucket = $2`,
		id, bucket,
	)
	return c.scan(row)
}

func (c *PostgresCatalog) scan(row pgx.Row) (*FileRecord, error) {
	var record FileRecord
	err := row.Scan(
		&record.ID,
		&record.ContentID,
		&record.Name,
		&record.ContentType,
		&record.ContentHash,
		&record.Bucket,
		&record.Spoiler,
		&record.Width,
		&record.Height,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: query record: %v", ErrCatalogUnavailable, err)
	}
	return &record, nil
}
