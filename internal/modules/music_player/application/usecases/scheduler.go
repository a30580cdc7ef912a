package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/fuguebot/fugue/internal/modules/music_player/application/ports"
	"github.com/fuguebot/fugue/internal/modules/music_player/domain"
)

const (
	// DefaultPollInterval is how often the scheduler checks whether the
	// decoder is still busy with the current track.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultIdleTimeout is how long a room's consumer waits on an empty
	// queue before retiring. The next enqueue recreates it lazily.
	DefaultIdleTimeout = 10 * time.Minute
)

// Room is the per-guild playback state: the track queue, the guard that
// serializes connect/play sequences, and the last known target channels.
// Rooms are created lazily by the Registry on the first play request.
type Room struct {
	GuildID snowflake.ID
	Queue   *domain.TrackQueue

	// playMu guards active playback so a burst of concurrent play commands
	// cannot each start a decoder.
	playMu sync.Mutex

	mu              sync.Mutex
	voiceChannelID  snowflake.ID
	notifyChannelID snowflake.ID
	consumerRunning bool

	// wake hurries the completion poll after a skip or stop.
	wake chan struct{}
}

func newRoom(guildID snowflake.ID) *Room {
	return &Room{
		GuildID: guildID,
		Queue:   domain.NewTrackQueue(),
		wake:    make(chan struct{}, 1),
	}
}

// SetTargets records the voice channel to (re)connect to and the text
// channel for asynchronous notifications.
func (r *Room) SetTargets(voiceChannelID, notifyChannelID snowflake.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if voiceChannelID != 0 {
		r.voiceChannelID = voiceChannelID
	}
	if notifyChannelID != 0 {
		r.notifyChannelID = notifyChannelID
	}
}

// Targets returns the last recorded voice and notification channels.
func (r *Room) Targets() (voiceChannelID, notifyChannelID snowflake.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.voiceChannelID, r.notifyChannelID
}

// Wake nudges the room's consumer out of its completion poll.
func (r *Room) Wake() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Registry owns the process-wide mapping from guild to Room. It is passed
// explicitly to the services that need it rather than living in a package
// variable.
type Registry struct {
	mu    sync.Mutex
	rooms map[snowflake.ID]*Room
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[snowflake.ID]*Room),
	}
}

// Room returns the guild's Room, creating it on first use.
func (g *Registry) Room(guildID snowflake.ID) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[guildID]
	if !ok {
		room = newRoom(guildID)
		g.rooms[guildID] = room
	}
	return room
}

// Lookup returns the guild's Room without creating one.
func (g *Registry) Lookup(guildID snowflake.ID) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[guildID]
	return room, ok
}

// SchedulerConfig tunes the per-room consumer behavior.
type SchedulerConfig struct {
	PollInterval time.Duration
	IdleTimeout  time.Duration
}

// SchedulerService runs one consumer per room that drives the
// connect → play → wait-for-completion → next cycle. The decoder gives no
// completion signal, so the consumer polls its playing/paused state.
type SchedulerService struct {
	rooms    *Registry
	player   ports.AudioPlayer
	voice    ports.VoiceConnector
	notifier ports.NotificationSender
	poll     time.Duration
	idle     time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSchedulerService creates a new SchedulerService.
func NewSchedulerService(
	rooms *Registry,
	player ports.AudioPlayer,
	voice ports.VoiceConnector,
	notifier ports.NotificationSender,
	cfg SchedulerConfig,
) *SchedulerService {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &SchedulerService{
		rooms:    rooms,
		player:   player,
		voice:    voice,
		notifier: notifier,
		poll:     cfg.PollInterval,
		idle:     cfg.IdleTimeout,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Enqueue appends tracks to the room's queue and makes sure a consumer is
// running. Starting the consumer is idempotent: a second concurrent enqueue
// while one is alive never starts another.
func (s *SchedulerService) Enqueue(guildID snowflake.ID, tracks ...*domain.Track) {
	room := s.rooms.Room(guildID)
	room.Queue.Append(tracks...)
	s.ensureConsumer(room)
}

// Pending returns the queued tracks for display, in play order.
func (s *SchedulerService) Pending(guildID snowflake.ID) []*domain.Track {
	room, ok := s.rooms.Lookup(guildID)
	if !ok {
		return nil
	}
	return room.Queue.Snapshot()
}

// Shutdown stops all consumers and waits for them to finish.
func (s *SchedulerService) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

func (s *SchedulerService) ensureConsumer(room *Room) {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.consumerRunning || s.ctx.Err() != nil {
		return
	}
	room.consumerRunning = true
	s.wg.Add(1)
	go s.consume(room)
}

func (s *SchedulerService) consume(room *Room) {
	defer s.wg.Done()

	slog.Debug("room consumer started", "guild_id", room.GuildID)
	for {
		track, ok := s.nextTrack(room)
		if !ok {
			slog.Debug("room consumer retired", "guild_id", room.GuildID)
			return
		}
		s.playOne(room, track)
	}
}

// nextTrack blocks for the next queued track. After the idle timeout it
// retires the consumer, re-checking the queue under the room guard so an
// enqueue racing with retirement is never stranded.
func (s *SchedulerService) nextTrack(room *Room) (*domain.Track, bool) {
	waitCtx, cancel := context.WithTimeout(s.ctx, s.idle)
	track, err := room.Queue.Next(waitCtx)
	cancel()
	if err == nil {
		return track, true
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if s.ctx.Err() == nil {
		if t, ok := room.Queue.TryNext(); ok {
			return t, true
		}
	}
	room.consumerRunning = false
	return nil, false
}

// playOne plays a single track to completion. Failures are reported and the
// consumer moves on; nothing here terminates the loop.
func (s *SchedulerService) playOne(room *Room, track *domain.Track) {
	guildID := room.GuildID
	voiceChannelID, notifyChannelID := room.Targets()

	room.playMu.Lock()

	// A connection from a previous track may have died in the meantime.
	if !s.voice.IsConnected(guildID) {
		if voiceChannelID == 0 {
			room.playMu.Unlock()
			slog.Warn("dropping track, no voice channel recorded",
				"guild_id", guildID,
				"title", track.Title,
			)
			return
		}
		if err := s.voice.Join(s.ctx, guildID, voiceChannelID); err != nil {
			room.playMu.Unlock()
			s.report(notifyChannelID, fmt.Sprintf(
				"Could not rejoin the voice channel for **%s**: %v", track.Title, err))
			return
		}
	}

	if err := s.player.Play(s.ctx, guildID, track); err != nil {
		room.playMu.Unlock()
		s.report(notifyChannelID, fmt.Sprintf("Could not play **%s**: %v",
			track.Title, fmt.Errorf("%w: %w", ErrPlaybackStartFailed, err)))
		return
	}

	// The guard is released once playback has been initiated; pausing and
	// halting the active track must not block behind it.
	room.playMu.Unlock()

	if s.notifier != nil && notifyChannelID != 0 {
		if err := s.notifier.SendNowPlaying(guildID, notifyChannelID, track); err != nil {
			slog.Warn("failed to send now-playing notification",
				"guild_id", guildID,
				"error", err,
			)
		}
	}

	s.awaitCompletion(room)

	if err := s.player.Result(guildID); err != nil {
		s.report(notifyChannelID, fmt.Sprintf("Playback of **%s** failed: %v",
			track.Title, fmt.Errorf("%w: %w", ErrPlaybackProcessError, err)))
	}
}

// awaitCompletion polls the decoder until the track is neither playing nor
// paused. A skip or stop wakes the poll immediately via Room.Wake.
func (s *SchedulerService) awaitCompletion(room *Room) {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for s.player.IsActive(room.GuildID) {
		select {
		case <-ticker.C:
		case <-room.wake:
		case <-s.ctx.Done():
			s.player.Stop(room.GuildID)
			return
		}
	}
}

func (s *SchedulerService) report(channelID snowflake.ID, message string) {
	slog.Warn("playback failure", "message", message)
	if s.notifier == nil || channelID == 0 {
		return
	}
	if err := s.notifier.SendError(channelID, message); err != nil {
		slog.Warn("failed to send error notification", "error", err)
	}
}
