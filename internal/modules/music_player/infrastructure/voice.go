package infrastructure

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/fuguebot/fugue/internal/modules/music_player/application/ports"
)

// Ensure the Discord adapters implement their ports.
var (
	_ ports.VoiceConnector     = (*DiscordVoiceConnector)(nil)
	_ ports.VoiceStateProvider = (*DiscordVoiceStateProvider)(nil)
)

// DiscordVoiceConnector manages voice-gateway connections through discordgo.
type DiscordVoiceConnector struct {
	session *discordgo.Session
}

// NewDiscordVoiceConnector creates a new DiscordVoiceConnector.
func NewDiscordVoiceConnector(session *discordgo.Session) *DiscordVoiceConnector {
	return &DiscordVoiceConnector{session: session}
}

// Join connects or moves the bot to the voice channel. Joining a stage
// channel additionally lifts the suppressed state so the bot can speak.
func (c *DiscordVoiceConnector) Join(_ context.Context, guildID, channelID snowflake.ID) error {
	if _, err := c.session.ChannelVoiceJoin(guildID.String(), channelID.String(), false, true); err != nil {
		return fmt.Errorf("joining voice channel: %w", err)
	}

	stage, err := c.isStageChannel(channelID)
	if err != nil {
		return fmt.Errorf("inspecting channel type: %w", err)
	}
	if stage {
		if err := c.becomeSpeaker(guildID, channelID); err != nil {
			return fmt.Errorf("requesting to speak on stage: %w", err)
		}
	}
	return nil
}

// Leave disconnects the bot from voice in the guild.
func (c *DiscordVoiceConnector) Leave(_ context.Context, guildID snowflake.ID) error {
	c.session.RLock()
	vc := c.session.VoiceConnections[guildID.String()]
	c.session.RUnlock()
	if vc == nil {
		return nil
	}
	return vc.Disconnect()
}

// IsConnected reports whether a voice connection exists for the guild.
func (c *DiscordVoiceConnector) IsConnected(guildID snowflake.ID) bool {
	c.session.RLock()
	defer c.session.RUnlock()
	return c.session.VoiceConnections[guildID.String()] != nil
}

func (c *DiscordVoiceConnector) isStageChannel(channelID snowflake.ID) (bool, error) {
	channel, err := c.session.State.Channel(channelID.String())
	if err != nil {
		channel, err = c.session.Channel(channelID.String())
		if err != nil {
			return false, err
		}
	}
	return channel.Type == discordgo.ChannelTypeGuildStageVoice, nil
}

// becomeSpeaker clears the bot's suppressed flag in a stage channel.
// discordgo has no helper for the voice-state endpoint, so this patches it
// directly.
func (c *DiscordVoiceConnector) becomeSpeaker(guildID, channelID snowflake.ID) error {
	payload := struct {
		ChannelID string `json:"channel_id"`
		Suppress  bool   `json:"suppress"`
	}{
		ChannelID: channelID.String(),
		Suppress:  false,
	}

	endpoint := discordgo.EndpointGuild(guildID.String()) + "/voice-states/@me"
	_, err := c.session.RequestWithBucketID(http.MethodPatch, endpoint, payload, endpoint)
	return err
}

// DiscordVoiceStateProvider reads voice states from the discordgo state cache.
type DiscordVoiceStateProvider struct {
	session *discordgo.Session
}

// NewDiscordVoiceStateProvider creates a new DiscordVoiceStateProvider.
func NewDiscordVoiceStateProvider(session *discordgo.Session) *DiscordVoiceStateProvider {
	return &DiscordVoiceStateProvider{session: session}
}

// GetUserVoiceChannel returns the voice channel ID that the user is currently in.
// Returns 0 if the user is not in a voice channel.
func (v *DiscordVoiceStateProvider) GetUserVoiceChannel(
	guildID, userID snowflake.ID,
) (snowflake.ID, error) {
	guild, err := v.session.State.Guild(guildID.String())
	if err != nil {
		return 0, err
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID.String() && vs.ChannelID != "" {
			channelID, err := snowflake.Parse(vs.ChannelID)
			if err != nil {
				return 0, err
			}
			return channelID, nil
		}
	}

	return 0, nil
}
