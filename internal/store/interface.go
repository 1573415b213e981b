package store

import (
	"context"
	"time"

	"jsonblob/internal/blobid"
	"jsonblob/internal/models"
)

// BlobStore abstracts blob storage backends.
//
// FindByID returns (nil, nil) on a miss; a miss is never an error at this
// layer. Replace and Remove report how many records they touched so that
// callers can distinguish a lost race from a storage failure.
type BlobStore interface {
	Insert(ctx context.Context, rec *models.BlobRecord) error
	FindByID(ctx context.Context, id blobid.ID) (*models.BlobRecord, error)
	Replace(ctx context.Context, rec *models.BlobRecord) (int64, error)
	Remove(ctx context.Context, id blobid.ID) (int64, error)

	// SetAccessed touches only the accessed timestamp. It is a no-op, not an
	// error, when the blob no longer exists.
	SetAccessed(ctx context.Context, id blobid.ID, accessed time.Time) error

	// ListAccessedBefore returns up to limit records whose accessed timestamp
	// is strictly before cutoff. The sweeper calls it in batches until the
	// result set is drained.
	ListAccessedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.BlobRecord, error)

	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ BlobStore = (*Store)(nil)
	_ BlobStore = (*MongoStore)(nil)
)
