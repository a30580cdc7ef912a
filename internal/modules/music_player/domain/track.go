package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Track is one concretely playable audio stream, produced by resolution and
// consumed by the playback scheduler. Tracks are immutable once constructed;
// ownership transfers to the queue on enqueue.
type Track struct {
	StreamURL    string // time-limited media URL handed to the decoder
	Title        string
	PageURL      string // stable public page reference for display
	AudioBitrate float64
	TotalBitrate float64
	HasVideo     bool
	Headers      map[string]string // HTTP headers the source requires
	RequesterID  snowflake.ID
	EnqueuedAt   time.Time
}

// NewTrack builds a Track from a format selection and display metadata.
func NewTrack(sel Selection, title, pageURL string, headers map[string]string, requesterID snowflake.ID) *Track {
	if title == "" {
		title = "Unknown"
	}
	return &Track{
		StreamURL:    sel.StreamURL,
		Title:        title,
		PageURL:      pageURL,
		AudioBitrate: sel.AudioBitrate,
		TotalBitrate: sel.TotalBitrate,
		HasVideo:     sel.HasVideo,
		Headers:      headers,
		RequesterID:  requesterID,
		EnqueuedAt:   time.Now().UTC(),
	}
}
