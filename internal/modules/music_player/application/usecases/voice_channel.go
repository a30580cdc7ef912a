package usecases

import (
	"context"
	"fmt"

	"github.com/disgoorg/snowflake/v2"
	"github.com/fuguebot/fugue/internal/modules/music_player/application/ports"
)

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID

	// VoiceChannelID explicitly selects the channel to join. Zero means the
	// channel the user is currently in.
	VoiceChannelID snowflake.ID

	// NotifyChannelID is the text channel future playback notifications go
	// to. Zero leaves the room's current setting untouched.
	NotifyChannelID snowflake.ID
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	VoiceChannelID snowflake.ID
}

// LeaveOutput contains the result of the Leave use case.
type LeaveOutput struct {
	ClearedTracks int
}

// VoiceChannelService connects the bot to the voice channel of the invoking
// user and tears the connection down again.
type VoiceChannelService struct {
	rooms      *Registry
	voice      ports.VoiceConnector
	voiceState ports.VoiceStateProvider
	player     ports.AudioPlayer
}

// NewVoiceChannelService creates a new VoiceChannelService.
func NewVoiceChannelService(
	rooms *Registry,
	voice ports.VoiceConnector,
	voiceState ports.VoiceStateProvider,
	player ports.AudioPlayer,
) *VoiceChannelService {
	return &VoiceChannelService{
		rooms:      rooms,
		voice:      voice,
		voiceState: voiceState,
		player:     player,
	}
}

// Join connects the bot to a voice channel and records it as the room's
// playback target. Without an explicit channel the user's current channel is
// used, and the user must be in one.
func (v *VoiceChannelService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	channelID := input.VoiceChannelID
	if channelID == 0 {
		var err error
		channelID, err = v.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
		if err != nil {
			return nil, fmt.Errorf("looking up voice state: %w", err)
		}
		if channelID == 0 {
			return nil, ErrNotInVoice
		}
	}

	if err := v.voice.Join(ctx, input.GuildID, channelID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJoinVoiceFailed, err)
	}

	room := v.rooms.Room(input.GuildID)
	room.SetTargets(channelID, input.NotifyChannelID)
	return &JoinOutput{VoiceChannelID: channelID}, nil
}

// Leave halts playback, clears the queue and disconnects from voice.
func (v *VoiceChannelService) Leave(ctx context.Context, guildID snowflake.ID) (*LeaveOutput, error) {
	if !v.voice.IsConnected(guildID) {
		return nil, ErrNotConnected
	}

	out := &LeaveOutput{}
	if room, ok := v.rooms.Lookup(guildID); ok {
		out.ClearedTracks = room.Queue.Drain()
		if v.player.IsActive(guildID) {
			v.player.Stop(guildID)
			room.Wake()
		}
	} else if v.player.IsActive(guildID) {
		v.player.Stop(guildID)
	}

	if err := v.voice.Leave(ctx, guildID); err != nil {
		return nil, fmt.Errorf("leaving voice channel: %w", err)
	}
	return out, nil
}
