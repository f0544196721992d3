package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"soundwave/model"
)

// testSchema mirrors db.InitDB in SQLite dialect. The repositories only use
// portable SQL, so the tests run the real queries against an in-memory
// database.
const testSchema = `
CREATE TABLE tracks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	artist TEXT NOT NULL,
	album TEXT NOT NULL DEFAULT '',
	duration_seconds INTEGER NOT NULL DEFAULT 0,
	file_path TEXT NOT NULL DEFAULT '',
	audio_format TEXT NOT NULL DEFAULT 'MP3',
	bitrate INTEGER NOT NULL DEFAULT 320,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE playlists (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE playlist_tracks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	playlist_id INTEGER NOT NULL,
	track_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	added_at TIMESTAMP NOT NULL,
	CONSTRAINT uq_playlist_track UNIQUE (playlist_id, track_id)
);

CREATE INDEX idx_playlist_position ON playlist_tracks (playlist_id, position);
`

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return db
}

func createTestTrack(t *testing.T, repo TrackRepository, title, artist, album string) *model.Track {
	t.Helper()

	track := &model.Track{
		Title:           title,
		Artist:          artist,
		Album:           album,
		DurationSeconds: 180,
		FilePath:        title + ".mp3",
		AudioFormat:     "mp3",
		Bitrate:         320,
	}
	_, err := repo.CreateTrack(context.Background(), track)
	require.NoError(t, err)
	return track
}

func createTestPlaylist(t *testing.T, repo PlaylistRepository, name string) *model.Playlist {
	t.Helper()

	playlist := &model.Playlist{Name: name}
	_, err := repo.CreatePlaylist(context.Background(), playlist)
	require.NoError(t, err)
	return playlist
}
