package model

import (
	"encoding/json"
	"time"
)

// Share is a visitor submission shown on the wall once an admin publishes it.
type Share struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	ImageURL  string    `json:"imageUrl"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`

	// ImageHandle is the storage deletion handle for ImageURL.
	ImageHandle string `json:"-"`
}

// MarshalJSON always emits imageUrl, as null when the share has no image.
func (s Share) MarshalJSON() ([]byte, error) {
	type share Share
	var imageURL *string
	if s.ImageURL != "" {
		imageURL = &s.ImageURL
	}
	return json.Marshal(struct {
		share
		ImageURL *string `json:"imageUrl"`
	}{share(s), imageURL})
}

// HasImage reports whether the share references a stored image.
func (s *Share) HasImage() bool {
	return s.ImageURL != "" || s.ImageHandle != ""
}

// ShareFilter selects which shares a listing returns.
type ShareFilter int

const (
	// FilterAll returns every share regardless of moderation state (admin only).
	FilterAll ShareFilter = iota
	// FilterPublishedOnly returns only published shares (public feed).
	FilterPublishedOnly
)

func (f ShareFilter) String() string {
	switch f {
	case FilterPublishedOnly:
		return "published_only"
	default:
		return "all"
	}
}

// ShareListOptions carries the filter and an optional row cap for listing shares.
// Limit <= 0 means no cap.
type ShareListOptions struct {
	Filter ShareFilter
	Limit  int
}
