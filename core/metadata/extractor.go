// Package metadata extracts tag and stream metadata from uploaded audio
// files. Extraction never fails: unreadable files yield placeholder
// metadata so a bad tag block cannot turn into a failed upload.
package metadata

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"

	"soundwave/logger"
)

// Placeholders used when a tag field is empty or unreadable.
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

// TrackMetadata carries the fields extracted from an audio file.
type TrackMetadata struct {
	Title           string
	Artist          string
	Album           string
	DurationSeconds int
	Bitrate         int
}

// Extractor reads metadata from a stored audio file. The original uploaded
// filename supplies the title fallback.
type Extractor interface {
	Extract(path, originalFilename string) *TrackMetadata
}

// TagExtractor reads embedded tags with dhowden/tag, falling back to
// TagLib, and audio stream properties with TagLib.
type TagExtractor struct{}

// NewTagExtractor creates a TagExtractor.
func NewTagExtractor() *TagExtractor {
	return &TagExtractor{}
}

// Extract returns the file's metadata. Missing tag fields fall back to the
// filename-derived title and the fixed artist/album placeholders; duration
// and bitrate are zero when the stream properties cannot be read. Failures
// are logged, never returned.
func (e *TagExtractor) Extract(path, originalFilename string) *TrackMetadata {
	meta := &TrackMetadata{
		Title:  titleFromFilename(originalFilename),
		Artist: UnknownArtist,
		Album:  UnknownAlbum,
	}

	title, artist, album, err := readTags(path)
	if err != nil {
		logger.Warn("failed to read tags, using placeholder metadata",
			logger.String("path", path),
			logger.ErrorField(err))
	} else {
		if strings.TrimSpace(title) != "" {
			meta.Title = title
		}
		if strings.TrimSpace(artist) != "" {
			meta.Artist = artist
		}
		if strings.TrimSpace(album) != "" {
			meta.Album = album
		}
	}

	props, err := taglib.ReadProperties(path)
	if err != nil {
		logger.Warn("failed to read audio properties",
			logger.String("path", path),
			logger.ErrorField(err))
	} else {
		meta.DurationSeconds = int(props.Length.Seconds())
		meta.Bitrate = int(props.Bitrate)
	}

	return meta
}

// readTags reads title/artist/album tags, trying dhowden/tag first and
// TagLib second. dhowden/tag has trouble with some UTF-16 ID3 tags and some
// ffmpeg-created M4A files.
func readTags(path string) (title, artist, album string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", "", err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		rawTags, tlErr := taglib.ReadTags(path)
		if tlErr != nil {
			return "", "", "", err
		}
		first := func(key string) string {
			if values, ok := rawTags[key]; ok && len(values) > 0 {
				return values[0]
			}
			return ""
		}
		return first(taglib.Title), first(taglib.Artist), first(taglib.Album), nil
	}

	return m.Title(), m.Artist(), m.Album(), nil
}

// titleFromFilename strips the directory and extension from the original
// uploaded filename.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
