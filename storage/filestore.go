package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"soundwave/logger"
)

// MaxFileSize is the upload size cap (100 MiB).
const MaxFileSize = 100 << 20

// Sentinel errors translated to HTTP status codes at the API boundary.
var (
	ErrFileNotFound     = errors.New("file not found")
	ErrInvalidExtension = errors.New("file extension is not allowed")
	ErrFileTooLarge     = errors.New("file exceeds the maximum allowed size")
)

// allowedExtensions is the upload allow-list, lowercase with leading dot.
var allowedExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
}

// contentTypes maps audio file extensions to MIME types.
var contentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
}

// FileStore persists uploaded audio files under a dedicated directory,
// keyed by generated filename.
type FileStore struct {
	baseDir string
}

// NewFileStore creates a file store rooted at baseDir, creating the
// directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", baseDir, err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// BaseDir returns the storage directory.
func (s *FileStore) BaseDir() string {
	return s.baseDir
}

// AllowedExtension reports whether the original filename carries an
// extension from the allow-list (case-insensitive).
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ContentTypeFor resolves the MIME type for a filename by extension,
// defaulting to application/octet-stream.
func ContentTypeFor(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Save validates the upload and writes it under a collision-resistant
// generated name that preserves the original extension. Validation failures
// are reported before anything is written. A write that fails midway (for
// example a client abort) removes the partial file.
func (s *FileStore) Save(src io.Reader, size int64, originalFilename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %s", ErrInvalidExtension, ext)
	}
	if size > MaxFileSize {
		return "", fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}

	storedName := uuid.New().String() + ext
	path := filepath.Join(s.baseDir, storedName)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", path, err)
	}

	// Cap the copy as well, in case the declared size was wrong.
	written, err := io.Copy(dst, io.LimitReader(src, MaxFileSize+1))
	closeErr := dst.Close()
	if err == nil && closeErr != nil {
		err = closeErr
	}
	if err == nil && written > MaxFileSize {
		err = ErrFileTooLarge
	}
	if err != nil {
		if removeErr := os.Remove(path); removeErr != nil {
			logger.Warn("failed to remove partial upload",
				logger.String("file", storedName),
				logger.ErrorField(removeErr))
		}
		if errors.Is(err, ErrFileTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return storedName, nil
}

// Path resolves a stored name to its on-disk path, reporting
// ErrFileNotFound when the file is missing (a database record may still
// reference it; the two can diverge).
func (s *FileStore) Path(storedName string) (string, error) {
	// Stored names never contain path separators.
	if storedName == "" || storedName != filepath.Base(storedName) {
		return "", ErrFileNotFound
	}
	path := filepath.Join(s.baseDir, storedName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrFileNotFound
		}
		return "", fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	return path, nil
}

// Delete removes a stored file, tolerating its absence. Deletes check
// existence first to avoid racing a cleanup of an already-gone file.
func (s *FileStore) Delete(storedName string) error {
	path, err := s.Path(storedName)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil
		}
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}
