package presentation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/fuguebot/fugue/internal/bot"
	"github.com/fuguebot/fugue/internal/modules/music_player/application/usecases"
	"github.com/fuguebot/fugue/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

const queueDisplayLimit = 10

// Handlers holds all the command handlers.
type Handlers struct {
	voiceChannel *usecases.VoiceChannelService
	playback     *usecases.PlaybackService
	resolver     *usecases.ResolverService
	scheduler    *usecases.SchedulerService
}

// NewHandlers creates new Handlers.
func NewHandlers(
	voiceChannel *usecases.VoiceChannelService,
	playback *usecases.PlaybackService,
	resolver *usecases.ResolverService,
	scheduler *usecases.SchedulerService,
) *Handlers {
	return &Handlers{
		voiceChannel: voiceChannel,
		playback:     playback,
		resolver:     resolver,
		scheduler:    scheduler,
	}
}

// HandleJoin handles the /join command.
func (h *Handlers) HandleJoin(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid user")
	}

	notifyChannelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondError(r, "Invalid channel")
	}

	var voiceChannelID snowflake.ID
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "channel" {
			voiceChannelID, _ = snowflake.Parse(opt.ChannelValue(s).ID)
		}
	}

	output, err := h.voiceChannel.Join(context.Background(), usecases.JoinInput{
		GuildID:         guildID,
		UserID:          userID,
		VoiceChannelID:  voiceChannelID,
		NotifyChannelID: notifyChannelID,
	})
	if err != nil {
		return respondError(r, userFacingMessage(err))
	}

	return respondSuccess(r, fmt.Sprintf("Connected to <#%d>.", output.VoiceChannelID))
}

// HandleLeave handles the /leave command.
func (h *Handlers) HandleLeave(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	if _, err := h.voiceChannel.Leave(context.Background(), guildID); err != nil {
		return respondError(r, userFacingMessage(err))
	}

	return respondSuccess(r, "Disconnected.")
}

// HandlePlay handles the /play command. Resolution can take several seconds,
// so the interaction is deferred and the result delivered as a followup.
func (h *Handlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid user")
	}

	notifyChannelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondError(r, "Invalid channel")
	}

	var rawURL string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "url" {
			rawURL = opt.StringValue()
		}
	}

	locator, err := domain.ClassifyLocator(rawURL)
	if err != nil {
		return respondError(r, "Only YouTube video and playlist URLs are supported.")
	}

	// Join the user's voice channel (or refresh the notification target if
	// already connected) before the slow resolution step.
	if _, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:         guildID,
		UserID:          userID,
		NotifyChannelID: notifyChannelID,
	}); err != nil {
		return respondError(r, userFacingMessage(err))
	}

	if err := r.Defer(); err != nil {
		return err
	}

	output, err := h.resolver.Resolve(ctx, usecases.ResolveInput{
		Locator:     locator,
		RequesterID: userID,
	})
	if err != nil {
		return followupError(r, userFacingMessage(err))
	}

	h.scheduler.Enqueue(guildID, output.Tracks...)

	// A collection can legitimately boil down to one track; the singular
	// message covers that case too.
	if len(output.Tracks) == 1 {
		track := output.Tracks[0]
		return followupSuccess(r, fmt.Sprintf("Added [%s](%s) to the queue.", track.Title, track.PageURL))
	}
	return followupSuccess(r, fmt.Sprintf("Added **%d** tracks to the queue.", len(output.Tracks)))
}

// HandleStop handles the /stop command.
func (h *Handlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	output, err := h.playback.Stop(guildID)
	if err != nil {
		return respondError(r, userFacingMessage(err))
	}

	if output.ClearedTracks > 0 {
		return respondSuccess(r, fmt.Sprintf(
			"Stopped playback and cleared **%d** queued tracks.", output.ClearedTracks))
	}
	return respondSuccess(r, "Stopped playback.")
}

// HandlePause handles the /pause command.
func (h *Handlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	if err := h.playback.Pause(guildID); err != nil {
		return respondError(r, userFacingMessage(err))
	}

	return respondSuccess(r, "Paused playback.")
}

// HandleResume handles the /resume command.
func (h *Handlers) HandleResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	if err := h.playback.Resume(guildID); err != nil {
		return respondError(r, userFacingMessage(err))
	}

	return respondSuccess(r, "Resumed playback.")
}

// HandleSkip handles the /skip command.
func (h *Handlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	if err := h.playback.Skip(guildID); err != nil {
		return respondError(r, userFacingMessage(err))
	}

	return respondSuccess(r, "Skipped the current track.")
}

// HandleQueue handles the /queue command.
func (h *Handlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	pending := h.scheduler.Pending(guildID)

	embed := &discordgo.MessageEmbed{Title: "Up Next"}
	if len(pending) == 0 {
		embed.Description = "The queue is empty."
	} else {
		var sb strings.Builder
		shown := pending
		if len(shown) > queueDisplayLimit {
			shown = shown[:queueDisplayLimit]
		}
		for idx, track := range shown {
			// Escape the period so Discord does not render an ordered list.
			fmt.Fprintf(&sb, "%d\\. [%s](%s)\n", idx+1, track.Title, track.PageURL)
		}
		if rest := len(pending) - len(shown); rest > 0 {
			fmt.Fprintf(&sb, "...and **%d** more.\n", rest)
		}
		embed.Description = sb.String()
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// userFacingMessage maps service errors onto messages fit for an embed.
// Unknown errors pass through verbatim.
func userFacingMessage(err error) string {
	switch {
	case errors.Is(err, usecases.ErrNotInVoice):
		return "You must be in a voice channel first."
	case errors.Is(err, usecases.ErrJoinVoiceFailed):
		return "Could not join the voice channel."
	case errors.Is(err, usecases.ErrExtractionFailed):
		return "Could not extract a stream from that URL."
	case errors.Is(err, usecases.ErrNoPlayableFormat):
		return "No playable audio format was found for that URL."
	case errors.Is(err, usecases.ErrPlaybackStartFailed):
		return "Failed to start playback."
	case errors.Is(err, usecases.ErrPlaybackProcessError):
		return "The playback process ended abnormally."
	case errors.Is(err, usecases.ErrNotPlaying):
		return "Nothing is currently playing."
	case errors.Is(err, usecases.ErrAlreadyPaused):
		return "Playback is already paused."
	case errors.Is(err, usecases.ErrNotPaused):
		return "Playback is not paused."
	case errors.Is(err, usecases.ErrNotConnected):
		return "Not connected to a voice channel."
	default:
		return err.Error()
	}
}

// Response helpers.

func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Error",
					Description: message,
					Color:       colorError,
				},
			},
		},
	})
}

func respondSuccess(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: message,
					Color:       colorSuccess,
				},
			},
		},
	})
}

func followupError(r bot.Responder, message string) error {
	return r.Followup(&discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "Error",
				Description: message,
				Color:       colorError,
			},
		},
	})
}

func followupSuccess(r bot.Responder, message string) error {
	return r.Followup(&discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{
			{
				Description: message,
				Color:       colorSuccess,
			},
		},
	})
}
