package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"soundwave/model"
)

// PlaylistRepository defines the interface for playlist data operations,
// including the ordered membership relation between playlists and tracks.
type PlaylistRepository interface {
	GetAllPlaylists(ctx context.Context) ([]*model.PlaylistWithTracks, error)
	GetPlaylistByID(ctx context.Context, id int64) (*model.PlaylistWithTracks, error)
	CreatePlaylist(ctx context.Context, playlist *model.Playlist) (int64, error)
	UpdatePlaylist(ctx context.Context, playlist *model.Playlist) error
	DeletePlaylist(ctx context.Context, id int64) error
	AddTrackToPlaylist(ctx context.Context, playlistID, trackID int64) error
	RemoveTrackFromPlaylist(ctx context.Context, playlistID, trackID int64) error
}

// mysqlPlaylistRepository implements PlaylistRepository over database/sql.
type mysqlPlaylistRepository struct {
	db *sql.DB
}

// NewMySQLPlaylistRepository creates a new playlist repository backed by db.
func NewMySQLPlaylistRepository(db *sql.DB) PlaylistRepository {
	return &mysqlPlaylistRepository{db: db}
}

// GetAllPlaylists returns all playlists ordered by name, each with its
// tracks embedded in ascending position order.
func (r *mysqlPlaylistRepository) GetAllPlaylists(ctx context.Context) ([]*model.PlaylistWithTracks, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM playlists ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]*model.PlaylistWithTracks, 0)
	for rows.Next() {
		p := &model.PlaylistWithTracks{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist in GetAllPlaylists: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetAllPlaylists: %w", err)
	}

	for _, p := range playlists {
		tracks, err := r.getPlaylistTracks(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Tracks = tracks
	}

	return playlists, nil
}

// GetPlaylistByID retrieves a playlist with its ordered tracks.
// Returns (nil, nil) when absent.
func (r *mysqlPlaylistRepository) GetPlaylistByID(ctx context.Context, id int64) (*model.PlaylistWithTracks, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM playlists WHERE id = ?`
	p := &model.PlaylistWithTracks{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan playlist by ID %d: %w", id, err)
	}

	tracks, err := r.getPlaylistTracks(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Tracks = tracks
	return p, nil
}

// getPlaylistTracks returns the playlist's tracks in ascending position order.
func (r *mysqlPlaylistRepository) getPlaylistTracks(ctx context.Context, playlistID int64) ([]*model.Track, error) {
	query := `SELECT t.id, t.title, t.artist, t.album, t.duration_seconds, t.file_path, t.audio_format, t.bitrate, t.created_at, t.updated_at
	           FROM tracks t
	           JOIN playlist_tracks pt ON t.id = pt.track_id
	           WHERE pt.playlist_id = ?
	           ORDER BY pt.position ASC`

	rows, err := r.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks for playlist ID %d: %w", playlistID, err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track in getPlaylistTracks: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in getPlaylistTracks: %w", err)
	}

	return tracks, nil
}

// CreatePlaylist persists a playlist with an empty track list. The id and
// UTC timestamps are assigned by the repository and written back.
func (r *mysqlPlaylistRepository) CreatePlaylist(ctx context.Context, playlist *model.Playlist) (int64, error) {
	query := `INSERT INTO playlists (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)`

	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx, query, playlist.Name, playlist.Description, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreatePlaylist: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreatePlaylist: %w", err)
	}

	playlist.ID = id
	playlist.CreatedAt = now
	playlist.UpdatedAt = now
	return id, nil
}

// UpdatePlaylist replaces the playlist's mutable fields with the same
// optimistic-concurrency contract as UpdateTrack.
func (r *mysqlPlaylistRepository) UpdatePlaylist(ctx context.Context, playlist *model.Playlist) error {
	query := `UPDATE playlists SET name = ?, description = ?, updated_at = ? WHERE id = ? AND updated_at = ?`

	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx, query,
		playlist.Name, playlist.Description, now, playlist.ID, playlist.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute UpdatePlaylist for playlist ID %d: %w", playlist.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for UpdatePlaylist: %w", err)
	}
	if affected == 0 {
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM playlists WHERE id = ?`, playlist.ID).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check playlist existence: %w", err)
		}
		return ErrConflict
	}

	playlist.UpdatedAt = now
	return nil
}

// DeletePlaylist removes the playlist and its memberships in one transaction.
func (r *mysqlPlaylistRepository) DeletePlaylist(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for DeletePlaylist: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_tracks WHERE playlist_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete memberships for playlist ID %d: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist ID %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for DeletePlaylist: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit DeletePlaylist: %w", err)
	}
	return nil
}

// AddTrackToPlaylist inserts a membership at position max+1 for the
// playlist. The position is computed and inserted in a single statement
// inside the transaction, so two concurrent adds cannot observe the same
// max; the unique key on (playlist_id, track_id) is the backstop against a
// duplicate pair racing past the existence check.
func (r *mysqlPlaylistRepository) AddTrackToPlaylist(ctx context.Context, playlistID, trackID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for AddTrackToPlaylist: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?`,
		playlistID, trackID).Scan(&exists)
	if err == nil {
		return ErrDuplicateTrack
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check membership existence: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO playlist_tracks (playlist_id, track_id, position, added_at)
		  SELECT ?, ?, COALESCE(MAX(position), 0) + 1, ? FROM playlist_tracks WHERE playlist_id = ?`,
		playlistID, trackID, now, playlistID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTrack
		}
		return fmt.Errorf("failed to insert membership for playlist %d track %d: %w", playlistID, trackID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit AddTrackToPlaylist: %w", err)
	}
	return nil
}

// RemoveTrackFromPlaylist deletes the membership for the pair. Remaining
// entries keep their position values.
func (r *mysqlPlaylistRepository) RemoveTrackFromPlaylist(ctx context.Context, playlistID, trackID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?`,
		playlistID, trackID)
	if err != nil {
		return fmt.Errorf("failed to delete membership for playlist %d track %d: %w", playlistID, trackID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for RemoveTrackFromPlaylist: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a unique-constraint failure.
// Matched by message to stay driver-agnostic (MySQL in production, SQLite
// in tests).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint")
}
