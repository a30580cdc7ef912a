package usecases

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/fuguebot/fugue/internal/modules/music_player/application/ports"
)

// StopOutput contains the result of the Stop use case.
type StopOutput struct {
	ClearedTracks int  // tracks removed from the queue
	HaltedActive  bool // whether an active track was cut off
}

// PlaybackService controls the active track. Pause and resume act on the
// decoder alone; skip and stop additionally wake the room's completion poll
// so the consumer advances without waiting out the interval.
type PlaybackService struct {
	rooms  *Registry
	player ports.AudioPlayer
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(rooms *Registry, player ports.AudioPlayer) *PlaybackService {
	return &PlaybackService{
		rooms:  rooms,
		player: player,
	}
}

// Pause pauses the active track.
func (p *PlaybackService) Pause(guildID snowflake.ID) error {
	if !p.player.IsActive(guildID) {
		return ErrNotPlaying
	}
	if p.player.IsPaused(guildID) {
		return ErrAlreadyPaused
	}
	return p.player.Pause(guildID)
}

// Resume resumes a paused track.
func (p *PlaybackService) Resume(guildID snowflake.ID) error {
	if !p.player.IsActive(guildID) {
		return ErrNotPlaying
	}
	if !p.player.IsPaused(guildID) {
		return ErrNotPaused
	}
	return p.player.Resume(guildID)
}

// Skip force-halts the active track only. The consumer observes the halt
// and proceeds to the next queued item.
func (p *PlaybackService) Skip(guildID snowflake.ID) error {
	if !p.player.IsActive(guildID) {
		return ErrNotPlaying
	}
	p.player.Stop(guildID)
	if room, ok := p.rooms.Lookup(guildID); ok {
		room.Wake()
	}
	return nil
}

// Stop drains all pending tracks and halts the active one. The room's
// consumer stays alive, so a later enqueue resumes playback normally.
func (p *PlaybackService) Stop(guildID snowflake.ID) (*StopOutput, error) {
	out := &StopOutput{}

	if room, ok := p.rooms.Lookup(guildID); ok {
		out.ClearedTracks = room.Queue.Drain()
		if p.player.IsActive(guildID) {
			p.player.Stop(guildID)
			room.Wake()
			out.HaltedActive = true
		}
		return out, nil
	}

	if p.player.IsActive(guildID) {
		p.player.Stop(guildID)
		out.HaltedActive = true
	}
	return out, nil
}
