package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"soundwave/logger"
	"soundwave/model"
	"soundwave/repository"
	"soundwave/storage"
)

// GetTracksHandler lists tracks ordered by title, optionally filtered by a
// substring match over title, artist and album.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	tracks, err := h.trackRepo.SearchTracks(r.Context(), search)
	if err != nil {
		logger.Error("failed to list tracks", logger.ErrorField(err))
		http.Error(w, "Failed to list tracks", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, tracks)
}

// GetTrackHandler returns a single track or 404.
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid track ID", http.StatusBadRequest)
		return
	}

	if track := h.trackCache.Get(r.Context(), id); track != nil {
		respondJSON(w, http.StatusOK, track)
		return
	}

	track, err := h.trackRepo.GetTrackByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to get track", logger.Int64("trackId", id), logger.ErrorField(err))
		http.Error(w, "Failed to get track", http.StatusInternalServerError)
		return
	}
	if track == nil {
		http.Error(w, "Track not found", http.StatusNotFound)
		return
	}

	h.trackCache.Set(r.Context(), track)
	respondJSON(w, http.StatusOK, track)
}

// CreateTrackHandler persists a new track record and returns it with a
// Location header.
func (h *APIHandler) CreateTrackHandler(w http.ResponseWriter, r *http.Request) {
	var track model.Track
	if err := json.NewDecoder(r.Body).Decode(&track); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	track.ApplyDefaults()
	if err := track.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.trackRepo.CreateTrack(r.Context(), &track)
	if err != nil {
		logger.Error("failed to create track", logger.ErrorField(err))
		http.Error(w, "Failed to create track", http.StatusInternalServerError)
		return
	}

	logger.Info("track created", logger.Int64("trackId", id), logger.String("title", track.Title))
	w.Header().Set("Location", fmt.Sprintf("/api/track/%d", id))
	respondJSON(w, http.StatusCreated, &track)
}

// UpdateTrackHandler replaces all mutable fields of a track. The path id
// must match the payload id. A concurrent modification between the read and
// the write is reported as a conflict.
func (h *APIHandler) UpdateTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid track ID", http.StatusBadRequest)
		return
	}

	var payload model.Track
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.ID != id {
		http.Error(w, "Track ID mismatch", http.StatusBadRequest)
		return
	}
	if err := payload.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	track, err := h.trackRepo.GetTrackByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to read track for update", logger.Int64("trackId", id), logger.ErrorField(err))
		http.Error(w, "Failed to update track", http.StatusInternalServerError)
		return
	}
	if track == nil {
		http.Error(w, "Track not found", http.StatusNotFound)
		return
	}

	track.Title = payload.Title
	track.Artist = payload.Artist
	track.Album = payload.Album
	track.DurationSeconds = payload.DurationSeconds
	track.FilePath = payload.FilePath
	track.AudioFormat = payload.AudioFormat
	track.Bitrate = payload.Bitrate

	if err := h.trackRepo.UpdateTrack(r.Context(), track); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			http.Error(w, "Track not found", http.StatusNotFound)
		case errors.Is(err, repository.ErrConflict):
			http.Error(w, "Track was modified concurrently", http.StatusConflict)
		default:
			logger.Error("failed to update track", logger.Int64("trackId", id), logger.ErrorField(err))
			http.Error(w, "Failed to update track", http.StatusInternalServerError)
		}
		return
	}

	h.trackCache.Invalidate(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTrackHandler removes a track and cascades its playlist memberships.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid track ID", http.StatusBadRequest)
		return
	}

	if err := h.trackRepo.DeleteTrack(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Track not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to delete track", logger.Int64("trackId", id), logger.ErrorField(err))
		http.Error(w, "Failed to delete track", http.StatusInternalServerError)
		return
	}

	h.trackCache.Invalidate(r.Context(), id)
	logger.Info("track deleted", logger.Int64("trackId", id))
	w.WriteHeader(http.StatusNoContent)
}

// GetTrackAudioHandler streams the track's stored audio file. The database
// record and the file on disk can diverge; a missing file is a 404 even
// when the record exists.
func (h *APIHandler) GetTrackAudioHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid track ID", http.StatusBadRequest)
		return
	}

	track, err := h.trackRepo.GetTrackByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to get track for audio", logger.Int64("trackId", id), logger.ErrorField(err))
		http.Error(w, "Failed to get track", http.StatusInternalServerError)
		return
	}
	if track == nil {
		http.Error(w, "Track not found", http.StatusNotFound)
		return
	}

	path, err := h.fileStore.Path(track.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			http.Error(w, "Audio file not found on disk", http.StatusNotFound)
			return
		}
		logger.Error("failed to resolve audio file", logger.String("file", track.FilePath), logger.ErrorField(err))
		http.Error(w, "Failed to read audio file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", storage.ContentTypeFor(track.FilePath))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", track.Title+"."+strings.ToLower(track.AudioFormat)))
	http.ServeFile(w, r, path)
}
