package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"soundwave/cache"
	"soundwave/config"
	"soundwave/core/metadata"
	"soundwave/db"
	"soundwave/logger"
	"soundwave/repository"
	"soundwave/storage"
)

// Start initializes dependencies and runs the HTTP server until a shutdown
// signal arrives.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.InitDB(); err != nil {
		logger.Fatal("failed to initialize database", logger.ErrorField(err))
	}

	// The cache is optional; the server runs without it.
	var trackCache *cache.TrackCache
	if cfg.RedisEnabled {
		if err := cache.ConnectRedis(cfg); err != nil {
			logger.Warn("redis unavailable, running without cache", logger.ErrorField(err))
		} else {
			defer cache.CloseRedis()
			logger.Info("connected to redis cache")
		}
	}
	trackCache = cache.NewTrackCache(cache.RedisClient)

	fileStore, err := storage.NewFileStore(cfg.AudioDir)
	if err != nil {
		logger.Fatal("failed to initialize file store", logger.ErrorField(err))
	}

	trackRepo := repository.NewMySQLTrackRepository(db.DB)
	playlistRepo := repository.NewMySQLPlaylistRepository(db.DB)
	extractor := metadata.NewTagExtractor()

	apiHandler := NewAPIHandler(trackRepo, playlistRepo, fileStore, extractor, trackCache, cfg)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      NewRouter(apiHandler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}

// NewRouter builds the API route table.
func NewRouter(h *APIHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.HandleFunc("/status", h.StatusHandler).Methods(http.MethodGet)

	// Track endpoints
	router.HandleFunc("/api/track", h.GetTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/track", h.CreateTrackHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/track/{id}", h.GetTrackHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/track/{id}", h.UpdateTrackHandler).Methods(http.MethodPut)
	router.HandleFunc("/api/track/{id}", h.DeleteTrackHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/track/{id}/audio", h.GetTrackAudioHandler).Methods(http.MethodGet)

	// Playlist endpoints
	router.HandleFunc("/api/playlist", h.GetPlaylistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/playlist", h.CreatePlaylistHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/playlist/{id}", h.GetPlaylistHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/playlist/{id}", h.UpdatePlaylistHandler).Methods(http.MethodPut)
	router.HandleFunc("/api/playlist/{id}", h.DeletePlaylistHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlist/{playlistId}/tracks/{trackId}", h.AddTrackToPlaylistHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/playlist/{playlistId}/tracks/{trackId}", h.RemoveTrackFromPlaylistHandler).Methods(http.MethodDelete)

	// Upload endpoints
	router.HandleFunc("/api/upload/audio", h.UploadAudioHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/upload/multiple", h.UploadMultipleHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/upload/download/{fileName}", h.DownloadFileHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/upload/file/{fileName}", h.DeleteFileHandler).Methods(http.MethodDelete)

	return router
}

// corsMiddleware allows the desktop client to call the API from any origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
