package model

import "time"

// Status is the payload returned by GET /status.
type Status struct {
	Application   string    `json:"application"`
	Version       string    `json:"version"`
	ServerTimeUtc time.Time `json:"serverTimeUtc"`
	Status        string    `json:"status"`
}
