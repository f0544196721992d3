package model

import (
	"fmt"
	"strings"
	"time"
)

// Track represents an audio track in the media library.
type Track struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title           string    `json:"title" gorm:"size:200;not null;index:idx_title_artist"`
	Artist          string    `json:"artist" gorm:"size:200;not null;index:idx_title_artist"`
	Album           string    `json:"album" gorm:"size:200"`
	DurationSeconds int       `json:"durationSeconds"`
	FilePath        string    `json:"filePath" gorm:"size:500"` // stored filename, relative to the audio directory
	AudioFormat     string    `json:"audioFormat" gorm:"size:50"`
	Bitrate         int       `json:"bitrate"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Defaults for tracks created without explicit format information.
const (
	DefaultAudioFormat = "MP3"
	DefaultBitrate     = 320
)

// ApplyDefaults fills in default format fields on an otherwise valid track.
func (t *Track) ApplyDefaults() {
	if strings.TrimSpace(t.AudioFormat) == "" {
		t.AudioFormat = DefaultAudioFormat
	}
	if t.Bitrate == 0 {
		t.Bitrate = DefaultBitrate
	}
}

// Validate checks required fields and length limits.
func (t *Track) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(t.Title) > 200 {
		return fmt.Errorf("title must be at most 200 characters")
	}
	if strings.TrimSpace(t.Artist) == "" {
		return fmt.Errorf("artist is required")
	}
	if len(t.Artist) > 200 {
		return fmt.Errorf("artist must be at most 200 characters")
	}
	if len(t.Album) > 200 {
		return fmt.Errorf("album must be at most 200 characters")
	}
	if t.DurationSeconds < 0 {
		return fmt.Errorf("durationSeconds must not be negative")
	}
	if len(t.FilePath) > 500 {
		return fmt.Errorf("filePath must be at most 500 characters")
	}
	if len(t.AudioFormat) > 50 {
		return fmt.Errorf("audioFormat must be at most 50 characters")
	}
	return nil
}
