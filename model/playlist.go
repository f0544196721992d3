package model

import (
	"fmt"
	"strings"
	"time"
)

// Playlist is a named, ordered collection of track references.
type Playlist struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"size:1000"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistTrack links one playlist to one track with a position.
// Position values are assigned as current-max+1 per playlist and are not
// compacted when entries are removed.
type PlaylistTrack struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PlaylistID int64     `json:"playlistId" gorm:"uniqueIndex:uq_playlist_track;index:idx_playlist_position"`
	TrackID    int64     `json:"trackId" gorm:"uniqueIndex:uq_playlist_track"`
	Position   int       `json:"order" gorm:"index:idx_playlist_position"`
	AddedAt    time.Time `json:"addedAt"`
}

// PlaylistWithTracks is the API shape of a playlist: the playlist record
// with its tracks embedded in ascending position order.
type PlaylistWithTracks struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Tracks      []*Track  `json:"tracks"`
}

// Validate checks required fields and length limits.
func (p *Playlist) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(p.Name) > 200 {
		return fmt.Errorf("name must be at most 200 characters")
	}
	if len(p.Description) > 1000 {
		return fmt.Errorf("description must be at most 1000 characters")
	}
	return nil
}
