package sync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SyncFile records the state of one Drive file in local storage.
type SyncFile struct {
	ID           int64  `db:"id"`
	DriveFileID  string `db:"drive_file_id"`
	LocalPath    string `db:"local_path"`
	LastModified string `db:"last_modified"`
	SyncStatus   string `db:"sync_status"`
	FileType     string `db:"file_type"`
	ErrorMessage string `db:"error_message"`
	SyncedAt     string `db:"synced_at"`
}

// Repository persists sync state in the sync_files table.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Upsert inserts or replaces the sync record for a Drive file.
func (r *Repository) Upsert(ctx context.Context, f SyncFile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sync_files (drive_file_id, local_path, last_modified, sync_status, file_type, error_message, synced_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(drive_file_id) DO UPDATE SET
		   local_path = excluded.local_path,
		   last_modified = excluded.last_modified,
		   sync_status = excluded.sync_status,
		   file_type = excluded.file_type,
		   error_message = excluded.error_message,
		   synced_at = CURRENT_TIMESTAMP`,
		f.DriveFileID, f.LocalPath, f.LastModified, f.SyncStatus, f.FileType, f.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert sync file: %w", err)
	}
	return nil
}

// Get returns the sync record for a Drive file, or nil when the file has
// never been synced.
func (r *Repository) Get(ctx context.Context, driveFileID string) (*SyncFile, error) {
	var row struct {
		ID           int64          `db:"id"`
		DriveFileID  string         `db:"drive_file_id"`
		LocalPath    string         `db:"local_path"`
		LastModified string         `db:"last_modified"`
		SyncStatus   string         `db:"sync_status"`
		FileType     string         `db:"file_type"`
		ErrorMessage sql.NullString `db:"error_message"`
		SyncedAt     string         `db:"synced_at"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT id, drive_file_id, local_path, last_modified, sync_status, file_type, error_message, synced_at
		 FROM sync_files WHERE drive_file_id = ?`, driveFileID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sync file: %w", err)
	}
	return &SyncFile{
		ID:           row.ID,
		DriveFileID:  row.DriveFileID,
		LocalPath:    row.LocalPath,
		LastModified: row.LastModified,
		SyncStatus:   row.SyncStatus,
		FileType:     row.FileType,
		ErrorMessage: row.ErrorMessage.String,
		SyncedAt:     row.SyncedAt,
	}, nil
}
