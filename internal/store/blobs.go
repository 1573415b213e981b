package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"jsonblob/internal/blobid"
	"jsonblob/internal/models"
)

// sqliteTimeLayout pads fractional seconds so stored timestamps compare
// lexicographically in the same order as chronologically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// Insert stores a new blob record.
func (s *Store) Insert(ctx context.Context, rec *models.BlobRecord) error {
	if rec == nil {
		return fmt.Errorf("record is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (id, body, created_at, updated_at, accessed_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		rec.ID.Hex(),
		rec.Body,
		formatTime(rec.CreatedAt),
		formatTime(rec.UpdatedAt),
		formatTime(rec.AccessedAt),
	)
	return err
}

// FindByID returns a blob record by id, or (nil, nil) when absent.
func (s *Store) FindByID(ctx context.Context, id blobid.ID) (*models.BlobRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, body, created_at, updated_at, accessed_at
		FROM blobs WHERE id = ?
	`, id.Hex())
	return scanBlob(row)
}

// Replace swaps the stored body and write timestamps at the record's id,
// leaving created_at untouched. It returns the number of matched rows.
func (s *Store) Replace(ctx context.Context, rec *models.BlobRecord) (int64, error) {
	if rec == nil {
		return 0, fmt.Errorf("record is required")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE blobs SET body = ?, updated_at = ?, accessed_at = ? WHERE id = ?
	`,
		rec.Body,
		formatTime(rec.UpdatedAt),
		formatTime(rec.AccessedAt),
		rec.ID.Hex(),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Remove deletes a blob record and returns the number of removed rows.
func (s *Store) Remove(ctx context.Context, id blobid.ID) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM blobs WHERE id = ?", id.Hex())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// SetAccessed updates only the accessed timestamp. A missing id is a no-op.
func (s *Store) SetAccessed(ctx context.Context, id blobid.ID, accessed time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE blobs SET accessed_at = ? WHERE id = ?",
		formatTime(accessed), id.Hex(),
	)
	return err
}

// ListAccessedBefore returns up to limit records last accessed strictly
// before cutoff, oldest first.
func (s *Store) ListAccessedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.BlobRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, body, created_at, updated_at, accessed_at
		FROM blobs WHERE accessed_at < ?
		ORDER BY accessed_at ASC LIMIT ?
	`, formatTime(cutoff), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.BlobRecord
	for rows.Next() {
		rec, err := scanBlob(rows)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, rows.Err()
}

// Count returns the number of stored blobs.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blobs").Scan(&count)
	return count, err
}

func scanBlob(scanner interface {
	Scan(dest ...any) error
}) (*models.BlobRecord, error) {
	var hexID, body, createdAt, updatedAt, accessedAt string

	if err := scanner.Scan(&hexID, &body, &createdAt, &updatedAt, &accessedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	id, err := blobid.Parse(hexID)
	if err != nil {
		return nil, fmt.Errorf("corrupt blob id %q: %w", hexID, err)
	}

	var rec models.BlobRecord
	rec.ID = id
	rec.Body = body
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if rec.AccessedAt, err = parseTime(accessedAt); err != nil {
		return nil, err
	}

	return &rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}
