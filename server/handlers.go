package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"soundwave/cache"
	"soundwave/config"
	"soundwave/core/metadata"
	"soundwave/logger"
	"soundwave/model"
	"soundwave/repository"
	"soundwave/storage"
)

// APIHandler handles all API requests.
type APIHandler struct {
	trackRepo    repository.TrackRepository
	playlistRepo repository.PlaylistRepository
	fileStore    *storage.FileStore
	extractor    metadata.Extractor
	trackCache   *cache.TrackCache
	cfg          *config.Config
}

// NewAPIHandler creates a new API handler. trackCache may be nil when the
// cache is disabled.
func NewAPIHandler(
	trackRepo repository.TrackRepository,
	playlistRepo repository.PlaylistRepository,
	fileStore *storage.FileStore,
	extractor metadata.Extractor,
	trackCache *cache.TrackCache,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		trackRepo:    trackRepo,
		playlistRepo: playlistRepo,
		fileStore:    fileStore,
		extractor:    extractor,
		trackCache:   trackCache,
		cfg:          cfg,
	}
}

// StatusHandler reports application identity and server time.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, model.Status{
		Application:   config.AppName,
		Version:       config.AppVersion,
		ServerTimeUtc: time.Now().UTC(),
		Status:        "OK",
	})
}

// respondJSON writes payload as JSON with the given status code.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

// pathID parses the named integer path variable.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

// pathFileName returns the fileName path variable.
func pathFileName(r *http.Request) string {
	return mux.Vars(r)["fileName"]
}
