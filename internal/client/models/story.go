// Package models defines client-side data models used by the storypin client.
package models

import "time"

// PlaceholderPhotoURL is embedded into stories that arrive without a photo,
// so consumers never have to handle a missing image source.
const PlaceholderPhotoURL = "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' width='300' height='200' viewBox='0 0 300 200'%3E%3Crect width='300' height='200' fill='%23667eea'/%3E%3Ctext x='50%25' y='50%25' font-size='16' text-anchor='middle' fill='white'%3ENo image available%3C/text%3E%3C/svg%3E"

// RawStory is the server-shaped story record. Pointer coordinates distinguish
// "absent" from a legitimate zero (the equator and the prime meridian exist).
type RawStory struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PhotoURL    string   `json:"photoUrl"`
	CreatedAt   string   `json:"createdAt"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
}

// Story is the normalized story shape. Every story handed to consumers has
// passed through Normalize, so no field is ever missing.
type Story struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PhotoURL    string   `json:"photoUrl"`
	CreatedAt   string   `json:"createdAt"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`

	// Derived fields, recomputed on every normalization. Never the source
	// of truth.
	FormattedDate    string `json:"formattedDate"`
	ShortDescription string `json:"shortDescription"`
	HasLocation      bool   `json:"hasLocation"`
}

// StoryList is the path-agnostic result of a story read: both the remote and
// the local-fallback path produce exactly this shape.
type StoryList struct {
	Stories []Story

	// Message is set on degraded reads to tell the user they are looking at
	// locally cached data.
	Message string

	// Live is true when the stories came from the remote API.
	Live bool
}

// Photo is the binary payload attached to a story draft.
type Photo struct {
	Name string
	MIME string
	Data []byte
}

// StoryDraft is user input for a new story. Coordinates are kept as strings
// until validation; an empty string means "not provided".
type StoryDraft struct {
	Description string
	Photo       *Photo
	Lat         string
	Lon         string
}

// PendingStory is a write queued locally while the API was unreachable,
// keyed by a client-generated id until a confirmed remote success.
type PendingStory struct {
	ID          string
	Description string
	PhotoName   string
	PhotoMIME   string
	PhotoData   []byte
	Lat         *float64
	Lon         *float64
	QueuedAt    time.Time
}

// Draft reconstructs the submittable draft from a queued story.
func (p *PendingStory) Draft() StoryDraft {
	d := StoryDraft{
		Description: p.Description,
		Photo:       &Photo{Name: p.PhotoName, MIME: p.PhotoMIME, Data: p.PhotoData},
	}
	if p.Lat != nil && p.Lon != nil {
		d.Lat = formatCoord(*p.Lat)
		d.Lon = formatCoord(*p.Lon)
	}
	return d
}

// Raw converts a stored or already-normalized story back to the raw shape so
// it can be re-normalized; derived fields are recomputed, never trusted.
func (s Story) Raw() RawStory {
	return RawStory{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		PhotoURL:    s.PhotoURL,
		CreatedAt:   s.CreatedAt,
		Lat:         s.Lat,
		Lon:         s.Lon,
	}
}

// ReplayStats summarizes one deferred-sync run over the pending queue.
type ReplayStats struct {
	Attempted int
	Replayed  int
	Remaining int
}

// User is the profile stored alongside the bearer token.
type User struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}
