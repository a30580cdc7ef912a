package music_player

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/fuguebot/fugue/internal/bot"
	"github.com/fuguebot/fugue/internal/modules/music_player/application/usecases"
	"github.com/fuguebot/fugue/internal/modules/music_player/infrastructure"
	"github.com/fuguebot/fugue/internal/modules/music_player/presentation"
	"github.com/lrstanley/go-ytdlp"
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config    *Config
	handlers  *presentation.Handlers
	scheduler *usecases.SchedulerService
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"join":   m.handlers.HandleJoin,
		"leave":  m.handlers.HandleLeave,
		"play":   m.handlers.HandlePlay,
		"stop":   m.handlers.HandleStop,
		"pause":  m.handlers.HandlePause,
		"resume": m.handlers.HandleResume,
		"skip":   m.handlers.HandleSkip,
		"queue":  m.handlers.HandleQueue,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return nil
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		slog.Warn("music_player module initialized without session, playback disabled")
		return nil
	}

	if m.config.YtdlpAutoInstall {
		// Resolves or downloads the yt-dlp binary up front so the first
		// /play does not pay the cost.
		ytdlp.MustInstall(context.Background(), nil)
	}

	rooms := usecases.NewRegistry()

	extractor := infrastructure.NewYtdlpExtractor(infrastructure.YtdlpExtractorConfig{
		SocketTimeoutSeconds: m.config.ExtractionSocketTimeout,
		PlaylistItems:        m.config.MaxPlaylistItems,
	})
	player := infrastructure.NewFFmpegPlayer(deps.Session, m.config.FFmpegPath)
	voice := infrastructure.NewDiscordVoiceConnector(deps.Session)
	voiceState := infrastructure.NewDiscordVoiceStateProvider(deps.Session)
	userInfo := infrastructure.NewDiscordUserInfoProvider(deps.Session)
	notifier := infrastructure.NewNotifier(deps.Session, userInfo)

	resolver := usecases.NewResolverService(extractor, m.config.MaxPlaylistItems)
	m.scheduler = usecases.NewSchedulerService(rooms, player, voice, notifier, usecases.SchedulerConfig{
		PollInterval: m.config.PollInterval,
		IdleTimeout:  m.config.ConsumerIdleTimeout,
	})
	playback := usecases.NewPlaybackService(rooms, player)
	voiceChannel := usecases.NewVoiceChannelService(rooms, voice, voiceState, player)

	m.handlers = presentation.NewHandlers(voiceChannel, playback, resolver, m.scheduler)

	slog.Info("music_player module initialized")

	return nil
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	if m.scheduler != nil {
		m.scheduler.Shutdown()
	}
	return nil
}
