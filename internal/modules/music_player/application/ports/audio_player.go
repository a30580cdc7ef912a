package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/fuguebot/fugue/internal/modules/music_player/domain"
)

// AudioPlayer defines per-guild decoder control. The decoder emits no
// completion signal; the scheduler polls IsActive and collects the terminal
// error, if any, through Result once playback has ended.
type AudioPlayer interface {
	// Play starts decoding the track's stream into the guild's voice
	// connection. It returns once the decoder has launched.
	Play(ctx context.Context, guildID snowflake.ID, track *domain.Track) error

	// Stop force-halts the active track, if any.
	Stop(guildID snowflake.ID)

	// Pause suspends frame delivery for the active track.
	Pause(guildID snowflake.ID) error

	// Resume reverses Pause.
	Resume(guildID snowflake.ID) error

	// IsActive reports whether a track is playing or paused.
	IsActive(guildID snowflake.ID) bool

	// IsPaused reports whether the active track is paused.
	IsPaused(guildID snowflake.ID) bool

	// Result returns and clears the last finished track's terminal error.
	// A natural or force-halted end yields nil; an abnormal decoder exit
	// yields an error carrying the exit diagnostics.
	Result(guildID snowflake.ID) error
}
