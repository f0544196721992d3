package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"soundwave/logger"
	"soundwave/model"
	"soundwave/repository"
	"soundwave/storage"
)

// multipartMemoryLimit caps how much of a multipart body is held in memory;
// the rest spills to temporary files.
const multipartMemoryLimit = 32 << 20

// multiUploadResponse is the 400 payload of a partially failed batch
// upload: successes and per-file error messages are reported together.
type multiUploadResponse struct {
	Message        string         `json:"message"`
	Errors         []string       `json:"errors"`
	UploadedTracks []*model.Track `json:"uploadedTracks"`
}

// UploadAudioHandler stores a single uploaded audio file, extracts its
// metadata and persists a track record.
func (h *APIHandler) UploadAudioHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse multipart form: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing 'file' in form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	track, err := h.uploadOne(r, file, header)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidExtension):
			http.Error(w, "Unsupported file format. Allowed: mp3, wav, flac, m4a, aac, ogg", http.StatusBadRequest)
		case errors.Is(err, storage.ErrFileTooLarge):
			http.Error(w, "File too large. Maximum size: 100MB", http.StatusBadRequest)
		default:
			logger.Error("failed to upload audio file",
				logger.String("filename", header.Filename),
				logger.ErrorField(err))
			http.Error(w, "Internal server error while uploading file", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusOK, track)
}

// UploadMultipleHandler stores each uploaded file independently. A failing
// file never aborts the others; successes and per-file errors are collected
// and returned together.
func (h *APIHandler) UploadMultipleHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse multipart form: %v", err), http.StatusBadRequest)
		return
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["files"]
	}
	if len(files) == 0 {
		http.Error(w, "Missing 'files' in form", http.StatusBadRequest)
		return
	}

	uploaded := make([]*model.Track, 0, len(files))
	uploadErrors := make([]string, 0)

	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			uploadErrors = append(uploadErrors, fmt.Sprintf("Failed to upload %s: %v", header.Filename, err))
			continue
		}

		track, err := h.uploadOne(r, file, header)
		file.Close()
		if err != nil {
			logger.Warn("failed to upload file in batch",
				logger.String("filename", header.Filename),
				logger.ErrorField(err))
			uploadErrors = append(uploadErrors, fmt.Sprintf("Failed to upload %s: %v", header.Filename, err))
			continue
		}
		uploaded = append(uploaded, track)
	}

	if len(uploadErrors) > 0 {
		respondJSON(w, http.StatusBadRequest, multiUploadResponse{
			Message:        "Some files could not be uploaded",
			Errors:         uploadErrors,
			UploadedTracks: uploaded,
		})
		return
	}

	respondJSON(w, http.StatusOK, uploaded)
}

// uploadOne runs the upload pipeline for one file: store the bytes, extract
// metadata, persist the track record. A failed insert after the file was
// written leaves an orphan file on disk; that gap is logged, not reconciled.
func (h *APIHandler) uploadOne(r *http.Request, file multipart.File, header *multipart.FileHeader) (*model.Track, error) {
	storedName, err := h.fileStore.Save(file, header.Size, header.Filename)
	if err != nil {
		return nil, err
	}

	meta := h.extractor.Extract(filepath.Join(h.fileStore.BaseDir(), storedName), header.Filename)

	track := &model.Track{
		Title:           meta.Title,
		Artist:          meta.Artist,
		Album:           meta.Album,
		DurationSeconds: meta.DurationSeconds,
		FilePath:        storedName,
		AudioFormat:     strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), "."),
		Bitrate:         meta.Bitrate,
	}

	if _, err := h.trackRepo.CreateTrack(r.Context(), track); err != nil {
		logger.Error("track insert failed after file write, leaving orphan file",
			logger.String("file", storedName),
			logger.ErrorField(err))
		return nil, err
	}

	logger.Info("audio file uploaded",
		logger.String("originalFilename", header.Filename),
		logger.String("storedName", storedName),
		logger.Int64("trackId", track.ID))
	return track, nil
}

// DownloadFileHandler streams a stored file by its generated name.
func (h *APIHandler) DownloadFileHandler(w http.ResponseWriter, r *http.Request) {
	fileName := pathFileName(r)

	path, err := h.fileStore.Path(fileName)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to resolve file", logger.String("file", fileName), logger.ErrorField(err))
		http.Error(w, "Failed to download file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", storage.ContentTypeFor(fileName))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	http.ServeFile(w, r, path)
}

// DeleteFileHandler removes a stored file together with its track record
// (and, through the cascade, any playlist memberships). The file may
// already be gone from disk; the record is removed regardless.
func (h *APIHandler) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	fileName := pathFileName(r)

	track, err := h.trackRepo.GetTrackByFilePath(r.Context(), fileName)
	if err != nil {
		logger.Error("failed to look up track by file", logger.String("file", fileName), logger.ErrorField(err))
		http.Error(w, "Failed to delete file", http.StatusInternalServerError)
		return
	}
	if track == nil {
		http.Error(w, "Track not found", http.StatusNotFound)
		return
	}

	if err := h.fileStore.Delete(fileName); err != nil {
		logger.Error("failed to delete file from disk", logger.String("file", fileName), logger.ErrorField(err))
		http.Error(w, "Failed to delete file", http.StatusInternalServerError)
		return
	}

	if err := h.trackRepo.DeleteTrack(r.Context(), track.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		logger.Error("failed to delete track record", logger.Int64("trackId", track.ID), logger.ErrorField(err))
		http.Error(w, "Failed to delete file", http.StatusInternalServerError)
		return
	}

	h.trackCache.Invalidate(r.Context(), track.ID)
	logger.Info("audio file deleted", logger.String("file", fileName), logger.Int64("trackId", track.ID))
	w.WriteHeader(http.StatusNoContent)
}
