package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"soundwave/model"
)

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	SearchTracks(ctx context.Context, search string) ([]*model.Track, error)
	GetTrackByID(ctx context.Context, id int64) (*model.Track, error)
	GetTrackByFilePath(ctx context.Context, filePath string) (*model.Track, error)
	CreateTrack(ctx context.Context, track *model.Track) (int64, error)
	UpdateTrack(ctx context.Context, track *model.Track) error
	DeleteTrack(ctx context.Context, id int64) error
}

const trackColumns = `id, title, artist, album, duration_seconds, file_path, audio_format, bitrate, created_at, updated_at`

// mysqlTrackRepository implements TrackRepository over database/sql.
type mysqlTrackRepository struct {
	db *sql.DB
}

// NewMySQLTrackRepository creates a new track repository backed by db.
func NewMySQLTrackRepository(db *sql.DB) TrackRepository {
	return &mysqlTrackRepository{db: db}
}

func scanTrack(row interface{ Scan(...interface{}) error }) (*model.Track, error) {
	track := &model.Track{}
	err := row.Scan(&track.ID, &track.Title, &track.Artist, &track.Album,
		&track.DurationSeconds, &track.FilePath, &track.AudioFormat, &track.Bitrate,
		&track.CreatedAt, &track.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return track, nil
}

// SearchTracks returns all tracks ordered by title. When search is non-empty
// only tracks whose title, artist or album contains it are returned.
func (r *mysqlTrackRepository) SearchTracks(ctx context.Context, search string) ([]*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks`
	var args []interface{}
	if search != "" {
		query += ` WHERE title LIKE ? OR artist LIKE ? OR album LIKE ?`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY title ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track in SearchTracks: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in SearchTracks: %w", err)
	}

	return tracks, nil
}

// GetTrackByID retrieves a track by its ID. Returns (nil, nil) when absent.
func (r *mysqlTrackRepository) GetTrackByID(ctx context.Context, id int64) (*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id = ?`
	track, err := scanTrack(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan track by ID %d: %w", id, err)
	}
	return track, nil
}

// GetTrackByFilePath retrieves the track referencing a stored filename.
// Returns (nil, nil) when absent.
func (r *mysqlTrackRepository) GetTrackByFilePath(ctx context.Context, filePath string) (*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE file_path = ?`
	track, err := scanTrack(r.db.QueryRowContext(ctx, query, filePath))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan track by file path %s: %w", filePath, err)
	}
	return track, nil
}

// CreateTrack adds a new track. The id and UTC timestamps are assigned by
// the repository and written back into track.
func (r *mysqlTrackRepository) CreateTrack(ctx context.Context, track *model.Track) (int64, error) {
	query := `INSERT INTO tracks (title, artist, album, duration_seconds, file_path, audio_format, bitrate, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	// Second precision so the updated_at concurrency token round-trips
	// identically through the store.
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx, query,
		track.Title, track.Artist, track.Album, track.DurationSeconds,
		track.FilePath, track.AudioFormat, track.Bitrate, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateTrack: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateTrack: %w", err)
	}

	track.ID = id
	track.CreatedAt = now
	track.UpdatedAt = now
	return id, nil
}

// UpdateTrack replaces all mutable fields of the track. track.UpdatedAt must
// hold the value from the read that preceded this update; when the stored row
// no longer carries it the update is rejected with ErrConflict (or
// ErrNotFound when the row is gone).
func (r *mysqlTrackRepository) UpdateTrack(ctx context.Context, track *model.Track) error {
	query := `UPDATE tracks
	           SET title = ?, artist = ?, album = ?, duration_seconds = ?, file_path = ?, audio_format = ?, bitrate = ?, updated_at = ?
	           WHERE id = ? AND updated_at = ?`

	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx, query,
		track.Title, track.Artist, track.Album, track.DurationSeconds,
		track.FilePath, track.AudioFormat, track.Bitrate, now,
		track.ID, track.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute UpdateTrack for track ID %d: %w", track.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for UpdateTrack: %w", err)
	}
	if affected == 0 {
		existing, err := r.GetTrackByID(ctx, track.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}
		return ErrConflict
	}

	track.UpdatedAt = now
	return nil
}

// DeleteTrack removes the track and all its playlist memberships in one
// transaction.
func (r *mysqlTrackRepository) DeleteTrack(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for DeleteTrack: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_tracks WHERE track_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete memberships for track ID %d: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete track ID %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for DeleteTrack: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit DeleteTrack: %w", err)
	}
	return nil
}
