package ports

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/fuguebot/fugue/internal/modules/music_player/domain"
)

// NotificationSender delivers asynchronous playback notifications to text
// channels. The scheduler uses it to report track starts and failures that
// happen after the originating command has already been answered.
type NotificationSender interface {
	// SendNowPlaying announces the track that just started.
	SendNowPlaying(guildID, channelID snowflake.ID, track *domain.Track) error

	// SendError reports a playback failure to the channel.
	SendError(channelID snowflake.ID, message string) error
}
