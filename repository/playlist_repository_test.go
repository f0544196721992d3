package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func membershipPosition(t *testing.T, db *sql.DB, playlistID, trackID int64) int {
	t.Helper()

	var position int
	err := db.QueryRow(
		`SELECT position FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?`,
		playlistID, trackID).Scan(&position)
	require.NoError(t, err)
	return position
}

func TestCreatePlaylistStartsEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := NewMySQLPlaylistRepository(db)
	ctx := context.Background()

	playlist := createTestPlaylist(t, repo, "Morning Mix")

	assert.NotZero(t, playlist.ID)
	assert.False(t, playlist.CreatedAt.IsZero())

	stored, err := repo.GetPlaylistByID(ctx, playlist.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Morning Mix", stored.Name)
	assert.Empty(t, stored.Tracks)
}

func TestGetPlaylistByIDMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewMySQLPlaylistRepository(db)

	playlist, err := repo.GetPlaylistByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, playlist)
}

func TestGetAllPlaylistsOrderedByName(t *testing.T) {
	db := newTestDB(t)
	repo := NewMySQLPlaylistRepository(db)

	createTestPlaylist(t, repo, "Workout")
	createTestPlaylist(t, repo, "Chill")
	createTestPlaylist(t, repo, "Focus")

	playlists, err := repo.GetAllPlaylists(context.Background())
	require.NoError(t, err)
	require.Len(t, playlists, 3)
	assert.Equal(t, "Chill", playlists[0].Name)
	assert.Equal(t, "Focus", playlists[1].Name)
	assert.Equal(t, "Workout", playlists[2].Name)
}

func TestAddTrackToPlaylistAppendsInOrder(t *testing.T) {
	db := newTestDB(t)
	playlistRepo := NewMySQLPlaylistRepository(db)
	trackRepo := NewMySQLTrackRepository(db)
	ctx := context.Background()

	playlist := createTestPlaylist(t, playlistRepo, "Morning Mix")
	a := createTestTrack(t, trackRepo, "Alpha", "One", "")
	b := createTestTrack(t, trackRepo, "Bravo", "Two", "")
	c := createTestTrack(t, trackRepo, "Charlie", "Three", "")

	require.NoError(t, playlistRepo.AddTrackToPlaylist(ctx, playlist.ID, a.ID))
	require.NoError(t, playlistRepo.AddTrackToPlaylist(ctx, playlist.ID, b.ID))
	require.NoError(t, playlistRepo.AddTrackToPlaylist(ctx, playlist.ID, c.ID))

	assert.Equal(t, 1, membershipPosition(t, db, playlist.ID, a.ID))
	assert.Equal(t, 2, membershipPosition(t, db, playlist.ID, b.ID))
	assert.Equal(t, 3, membershipPosition(t, db, playlist.ID, c.ID))

	stored, err := playlistRepo.GetPlaylistByID(ctx, playlist.ID)
	require.NoError(t, err)
	require.Len(t, stored.Tracks, 3)
	assert.Equal(t, "Alpha", stored.Tracks[0].Title)
	assert.Equal(t, "Bravo", stored.Tracks[1].Title)
	assert.Equal(t, "Charlie", stored.Tracks[2].Title)
}

func TestAddTrackToPlaylistDuplicate(t *testing.T) {
	db := newTestDB(t)
	playlistRepo := NewMySQLPlaylistRepository(db)
	trackRepo := NewMySQLTrackRepository(db)
	ctx := context.Background()

	playlist := createTestPlaylist(t, playlistRepo, "Morning Mix")
	track := createTestTrack(t, trackRepo, "Alpha", "One", "")

	require.NoError(t, playlistRepo.AddTrackToPlaylist(ctx, playlist.ID, track.ID))
	assert.ErrorIs(t, playlistRepo.AddTrackToPlaylist(ctx, playlist.ID, track.ID), ErrDuplicateTrack)

	stored, err := playlistRepo.GetPlaylistByID(ctx, playlist.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Tracks, 1)
}

func TestRemoveTrackFromPlaylist(t *testing.T) {
	db := newTestDB(t)
	playlistRepo := NewMySQLPlaylistRepository(db)
	trackRepo := NewMySQLTrackRepository(db)
	ctx := context.Background()

	playlist := createTestPlaylist(t, playlistRepo, "Morning Mix")
	track := createTestTrack(t, trackRepo, "Alpha", "One", "")

	require.NoError(t, playlistRepo.AddTrackToPlaylist(ctx, playlist.ID, track.ID))
	require.NoError(t, playlistRepo.RemoveTrackFromPlaylist(ctx, playlist.ID, track.ID))

	stored, err := playlistRepo.GetPlaylistByID(ctx, playlist.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Tracks)
}

func TestRemoveTrackNeverAdded(t *testing.T) {
	db := newTestDB(t)
	playlistRepo := NewMySQLPlaylistRepository(db)
	trackRepo := NewMySQLTrackRepository(db)
	ctx := context.Background()

	playlist := createTestPlaylist(t, playlistRepo, "Morning Mix")
	track := createTestTrack(t, trackRepo, "Alpha", "One", "")

	err := playlistRepo.RemoveTrackFromPlaylist(ctx, playlist.ID, track.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveTrackKeepsRemainingPositions(t *testing.T) {
	db := newTestDB(t)
	playlistRepo := NewMySQLPlaylistRepository(db)
	trackRepo := NewMySQLTrackRepository(db)
	ctx := context.Background()

	playlist := createTestPlaylist(t, playlistRepo, "Morning Mix")
	a := createTestTrack(t, trackRepo, "Alpha", "One", "")
	b := createTestTrack(t, trackRepo, "Bravo", "Two", "")
	c := createTestTrack(t, trackRepo, "Charlie", "Three", "")

	require.NoError(t, playlistRepo.AddTrackToPlaylist(ctx, playlist.ID, a.ID))
	require.NoError(t, playlistRepo.AddTrackToPlaylist(ctx, playlist.ID, b.ID))
	require.NoError(t, playlistRepo.AddTrackToPlaylist(ctx, playlist.ID, c.ID))

	require.NoError(t, playlistRepo.RemoveTrackFromPlaylist(ctx, playlist.ID, b.ID))

	// Positions are not compacted on removal.
	assert.Equal(t, 1, membershipPosition(t, db, playlist.ID, a.ID))
	assert.Equal(t, 3, membershipPosition(t, db, playlist.ID, c.ID))

	// The next append still goes after the highest surviving position.
	d := createTestTrack(t, trackRepo, "Delta", "Four", "")
	require.NoError(t, playlistRepo.AddTrackToPlaylist(ctx, playlist.ID, d.ID))
	assert.Equal(t, 4, membershipPosition(t, db, playlist.ID, d.ID))
}

func TestDeleteTrackRemovesMemberships(t *testing.T) {
	db := newTestDB(t)
	playlistRepo := NewMySQLPlaylistRepository(db)
	trackRepo := NewMySQLTrackRepository(db)
	ctx := context.Background()

	first := createTestPlaylist(t, playlistRepo, "Morning Mix")
	second := createTestPlaylist(t, playlistRepo, "Evening Mix")
	shared := createTestTrack(t, trackRepo, "Alpha", "One", "")
	keeper := createTestTrack(t, trackRepo, "Bravo", "Two", "")

	require.NoError(t, playlistRepo.AddTrackToPlaylist(ctx, first.ID, shared.ID))
	require.NoError(t, playlistRepo.AddTrackToPlaylist(ctx, first.ID, keeper.ID))
	require.NoError(t, playlistRepo.AddTrackToPlaylist(ctx, second.ID, shared.ID))

	require.NoError(t, trackRepo.DeleteTrack(ctx, shared.ID))

	one, err := playlistRepo.GetPlaylistByID(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, one.Tracks, 1)
	assert.Equal(t, "Bravo", one.Tracks[0].Title)
	assert.Equal(t, 2, membershipPosition(t, db, first.ID, keeper.ID))

	two, err := playlistRepo.GetPlaylistByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, two.Tracks)
}

func TestDeletePlaylistRemovesMemberships(t *testing.T) {
	db := newTestDB(t)
	playlistRepo := NewMySQLPlaylistRepository(db)
	trackRepo := NewMySQLTrackRepository(db)
	ctx := context.Background()

	playlist := createTestPlaylist(t, playlistRepo, "Morning Mix")
	track := createTestTrack(t, trackRepo, "Alpha", "One", "")
	require.NoError(t, playlistRepo.AddTrackToPlaylist(ctx, playlist.ID, track.ID))

	require.NoError(t, playlistRepo.DeletePlaylist(ctx, playlist.ID))

	stored, err := playlistRepo.GetPlaylistByID(ctx, playlist.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM playlist_tracks WHERE playlist_id = ?`, playlist.ID).Scan(&count))
	assert.Zero(t, count)

	// The track itself survives.
	remaining, err := trackRepo.GetTrackByID(ctx, track.ID)
	require.NoError(t, err)
	assert.NotNil(t, remaining)

	assert.ErrorIs(t, playlistRepo.DeletePlaylist(ctx, playlist.ID), ErrNotFound)
}

func TestUpdatePlaylist(t *testing.T) {
	db := newTestDB(t)
	repo := NewMySQLPlaylistRepository(db)
	ctx := context.Background()

	playlist := createTestPlaylist(t, repo, "Morning Mix")

	playlist.Name = "Late Morning Mix"
	playlist.Description = "Easing into the day"
	require.NoError(t, repo.UpdatePlaylist(ctx, playlist))

	stored, err := repo.GetPlaylistByID(ctx, playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, "Late Morning Mix", stored.Name)
	assert.Equal(t, "Easing into the day", stored.Description)
}

func TestUpdatePlaylistConflictOnStaleToken(t *testing.T) {
	db := newTestDB(t)
	repo := NewMySQLPlaylistRepository(db)
	ctx := context.Background()

	playlist := createTestPlaylist(t, repo, "Morning Mix")

	bumped := playlist.UpdatedAt.Add(time.Second)
	_, err := db.Exec(`UPDATE playlists SET updated_at = ? WHERE id = ?`, bumped, playlist.ID)
	require.NoError(t, err)

	playlist.Name = "Stale Mix"
	assert.ErrorIs(t, repo.UpdatePlaylist(ctx, playlist), ErrConflict)
}

func TestUpdatePlaylistNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewMySQLPlaylistRepository(db)

	playlist := createTestPlaylist(t, repo, "Morning Mix")
	require.NoError(t, repo.DeletePlaylist(context.Background(), playlist.ID))

	assert.ErrorIs(t, repo.UpdatePlaylist(context.Background(), playlist), ErrNotFound)
}
