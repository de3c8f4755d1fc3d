// ABOUTME: SQLite implementation for uploaded file storage.
// ABOUTME: Files are stored verbatim and evicted by the retention sweep.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SaveFile stores an uploaded file.
func (s *SQLiteStore) SaveFile(ctx context.Context, f *File) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (id, name, mime, size, owner_id, data, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.Mime, f.Size, f.OwnerID, f.Data,
		f.UploadedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting file: %w", err)
	}

	s.logger.Debug("file saved", "file_id", f.ID, "name", f.Name, "size", f.Size)
	return nil
}

// GetFile returns a file by ID, or ErrNotFound.
func (s *SQLiteStore) GetFile(ctx context.Context, id string) (*File, error) {
	var f File
	var uploadedAtStr string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, mime, size, owner_id, data, uploaded_at
		 FROM files WHERE id = ?`, id,
	).Scan(&f.ID, &f.Name, &f.Mime, &f.Size, &f.OwnerID, &f.Data, &uploadedAtStr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning file row: %w", err)
	}

	f.UploadedAt, err = time.Parse(timeFormat, uploadedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing uploaded_at: %w", err)
	}

	return &f, nil
}

// EvictFilesBefore deletes every file uploaded before the cutoff and returns
// the number removed.
func (s *SQLiteStore) EvictFilesBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM files WHERE uploaded_at < ?`,
		cutoff.UTC().Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("evicting files: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	if affected > 0 {
		s.logger.Info("evicted files", "count", affected, "cutoff", cutoff)
	}
	return int(affected), nil
}
