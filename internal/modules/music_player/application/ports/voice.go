package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// VoiceConnector manages the bot's voice-gateway connection per guild.
type VoiceConnector interface {
	// Join connects (or moves) the bot to the given voice channel. For stage
	// channels this includes obtaining permission to speak.
	Join(ctx context.Context, guildID, channelID snowflake.ID) error

	// Leave disconnects the bot from voice in the given guild.
	Leave(ctx context.Context, guildID snowflake.ID) error

	// IsConnected reports whether a live voice connection exists.
	IsConnected(guildID snowflake.ID) bool
}

// VoiceStateProvider exposes Discord voice state information.
type VoiceStateProvider interface {
	// GetUserVoiceChannel returns the voice channel the user is currently
	// in, or 0 if they are not in one.
	GetUserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error)
}
