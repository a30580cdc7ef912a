package music_player

import "time"

// Config holds the music player module configuration.
type Config struct {
	// FFmpegPath is the ffmpeg binary to decode streams with.
	FFmpegPath string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`

	// YtdlpAutoInstall downloads a yt-dlp binary on startup when none is
	// present on PATH.
	YtdlpAutoInstall bool `env:"YTDLP_AUTO_INSTALL" envDefault:"true"`

	// MaxPlaylistItems caps how many tracks a playlist or mix expands into.
	MaxPlaylistItems int `env:"MAX_PLAYLIST_ITEMS" envDefault:"50"`

	// ExtractionSocketTimeout bounds yt-dlp's network reads, in seconds.
	ExtractionSocketTimeout int `env:"EXTRACTION_SOCKET_TIMEOUT" envDefault:"30"`

	// PollInterval is how often playback completion is checked.
	PollInterval time.Duration `env:"PLAYBACK_POLL_INTERVAL" envDefault:"500ms"`

	// ConsumerIdleTimeout retires a guild's playback worker after this long
	// with an empty queue.
	ConsumerIdleTimeout time.Duration `env:"CONSUMER_IDLE_TIMEOUT" envDefault:"10m"`
}
