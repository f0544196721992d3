package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"soundwave/logger"
	"soundwave/model"
	"soundwave/repository"
)

// GetPlaylistsHandler lists all playlists ordered by name, each with its
// tracks in playlist order.
func (h *APIHandler) GetPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.playlistRepo.GetAllPlaylists(r.Context())
	if err != nil {
		logger.Error("failed to list playlists", logger.ErrorField(err))
		http.Error(w, "Failed to list playlists", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, playlists)
}

// GetPlaylistHandler returns a single playlist with its ordered tracks.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid playlist ID", http.StatusBadRequest)
		return
	}

	playlist, err := h.playlistRepo.GetPlaylistByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to get playlist", logger.Int64("playlistId", id), logger.ErrorField(err))
		http.Error(w, "Failed to get playlist", http.StatusInternalServerError)
		return
	}
	if playlist == nil {
		http.Error(w, "Playlist not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, playlist)
}

// CreatePlaylistHandler persists a playlist with an empty track list.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var playlist model.Playlist
	if err := json.NewDecoder(r.Body).Decode(&playlist); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := playlist.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.playlistRepo.CreatePlaylist(r.Context(), &playlist)
	if err != nil {
		logger.Error("failed to create playlist", logger.ErrorField(err))
		http.Error(w, "Failed to create playlist", http.StatusInternalServerError)
		return
	}

	logger.Info("playlist created", logger.Int64("playlistId", id), logger.String("name", playlist.Name))
	w.Header().Set("Location", fmt.Sprintf("/api/playlist/%d", id))
	respondJSON(w, http.StatusCreated, &model.PlaylistWithTracks{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		CreatedAt:   playlist.CreatedAt,
		UpdatedAt:   playlist.UpdatedAt,
		Tracks:      []*model.Track{},
	})
}

// UpdatePlaylistHandler replaces the playlist's mutable fields with the
// same id-match and concurrency contract as track updates.
func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid playlist ID", http.StatusBadRequest)
		return
	}

	var payload model.Playlist
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.ID != id {
		http.Error(w, "Playlist ID mismatch", http.StatusBadRequest)
		return
	}
	if err := payload.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing, err := h.playlistRepo.GetPlaylistByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to read playlist for update", logger.Int64("playlistId", id), logger.ErrorField(err))
		http.Error(w, "Failed to update playlist", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "Playlist not found", http.StatusNotFound)
		return
	}

	playlist := model.Playlist{
		ID:          existing.ID,
		Name:        payload.Name,
		Description: payload.Description,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   existing.UpdatedAt,
	}

	if err := h.playlistRepo.UpdatePlaylist(r.Context(), &playlist); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			http.Error(w, "Playlist not found", http.StatusNotFound)
		case errors.Is(err, repository.ErrConflict):
			http.Error(w, "Playlist was modified concurrently", http.StatusConflict)
		default:
			logger.Error("failed to update playlist", logger.Int64("playlistId", id), logger.ErrorField(err))
			http.Error(w, "Failed to update playlist", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeletePlaylistHandler removes a playlist and its memberships.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid playlist ID", http.StatusBadRequest)
		return
	}

	if err := h.playlistRepo.DeletePlaylist(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Playlist not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to delete playlist", logger.Int64("playlistId", id), logger.ErrorField(err))
		http.Error(w, "Failed to delete playlist", http.StatusInternalServerError)
		return
	}

	logger.Info("playlist deleted", logger.Int64("playlistId", id))
	w.WriteHeader(http.StatusNoContent)
}

// AddTrackToPlaylistHandler appends a track to the end of a playlist.
func (h *APIHandler) AddTrackToPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		http.Error(w, "Invalid playlist ID", http.StatusBadRequest)
		return
	}
	trackID, err := pathID(r, "trackId")
	if err != nil {
		http.Error(w, "Invalid track ID", http.StatusBadRequest)
		return
	}

	playlist, err := h.playlistRepo.GetPlaylistByID(r.Context(), playlistID)
	if err != nil {
		logger.Error("failed to get playlist", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
		http.Error(w, "Failed to add track to playlist", http.StatusInternalServerError)
		return
	}
	if playlist == nil {
		http.Error(w, "Playlist not found", http.StatusNotFound)
		return
	}

	track, err := h.trackRepo.GetTrackByID(r.Context(), trackID)
	if err != nil {
		logger.Error("failed to get track", logger.Int64("trackId", trackID), logger.ErrorField(err))
		http.Error(w, "Failed to add track to playlist", http.StatusInternalServerError)
		return
	}
	if track == nil {
		http.Error(w, "Track not found", http.StatusNotFound)
		return
	}

	if err := h.playlistRepo.AddTrackToPlaylist(r.Context(), playlistID, trackID); err != nil {
		if errors.Is(err, repository.ErrDuplicateTrack) {
			http.Error(w, "Track is already in playlist", http.StatusBadRequest)
			return
		}
		logger.Error("failed to add track to playlist",
			logger.Int64("playlistId", playlistID),
			logger.Int64("trackId", trackID),
			logger.ErrorField(err))
		http.Error(w, "Failed to add track to playlist", http.StatusInternalServerError)
		return
	}

	logger.Info("track added to playlist",
		logger.Int64("playlistId", playlistID),
		logger.Int64("trackId", trackID))
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Track added to playlist",
	})
}

// RemoveTrackFromPlaylistHandler removes the membership for the pair.
// Remaining entries are not reordered.
func (h *APIHandler) RemoveTrackFromPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		http.Error(w, "Invalid playlist ID", http.StatusBadRequest)
		return
	}
	trackID, err := pathID(r, "trackId")
	if err != nil {
		http.Error(w, "Invalid track ID", http.StatusBadRequest)
		return
	}

	if err := h.playlistRepo.RemoveTrackFromPlaylist(r.Context(), playlistID, trackID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Track not found in playlist", http.StatusNotFound)
			return
		}
		logger.Error("failed to remove track from playlist",
			logger.Int64("playlistId", playlistID),
			logger.Int64("trackId", trackID),
			logger.ErrorField(err))
		http.Error(w, "Failed to remove track from playlist", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
