package usecases

import (
	"context"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/fuguebot/fugue/internal/modules/music_player/application/ports"
	"github.com/fuguebot/fugue/internal/modules/music_player/domain"
)

type extractCall struct {
	target  string
	profile string
}

// mockExtractor answers Extract from a script keyed by target and profile
// name, and records every call.
type mockExtractor struct {
	mu        sync.Mutex
	extractFn func(target string, profile ports.ClientProfile) (*domain.ExtractedItem, error)
	calls     []extractCall
}

func (m *mockExtractor) Extract(_ context.Context, target string, profile ports.ClientProfile) (*domain.ExtractedItem, error) {
	m.mu.Lock()
	m.calls = append(m.calls, extractCall{target: target, profile: profile.Name})
	fn := m.extractFn
	m.mu.Unlock()
	if fn == nil {
		return nil, context.Canceled
	}
	return fn(target, profile)
}

func (m *mockExtractor) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type playerState struct {
	active bool
	paused bool
	result error
}

// mockAudioPlayer simulates the per-guild decoder. Tests drive completion by
// calling finish, which flips the guild inactive and stores the terminal
// error for Result to return.
type mockAudioPlayer struct {
	mu       sync.Mutex
	states   map[snowflake.ID]*playerState
	played   []*domain.Track
	playErr  error
	overlaps int
}

func newMockAudioPlayer() *mockAudioPlayer {
	return &mockAudioPlayer{states: make(map[snowflake.ID]*playerState)}
}

func (m *mockAudioPlayer) state(guildID snowflake.ID) *playerState {
	st, ok := m.states[guildID]
	if !ok {
		st = &playerState{}
		m.states[guildID] = st
	}
	return st
}

func (m *mockAudioPlayer) Play(_ context.Context, guildID snowflake.ID, track *domain.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playErr != nil {
		return m.playErr
	}
	st := m.state(guildID)
	if st.active {
		m.overlaps++
	}
	st.active = true
	st.paused = false
	m.played = append(m.played, track)
	return nil
}

func (m *mockAudioPlayer) Stop(guildID snowflake.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state(guildID)
	st.active = false
	st.paused = false
}

func (m *mockAudioPlayer) Pause(guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state(guildID).paused = true
	return nil
}

func (m *mockAudioPlayer) Resume(guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state(guildID).paused = false
	return nil
}

func (m *mockAudioPlayer) IsActive(guildID snowflake.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state(guildID).active
}

func (m *mockAudioPlayer) IsPaused(guildID snowflake.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state(guildID).paused
}

func (m *mockAudioPlayer) Result(guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state(guildID)
	err := st.result
	st.result = nil
	return err
}

func (m *mockAudioPlayer) finish(guildID snowflake.ID, result error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state(guildID)
	st.active = false
	st.paused = false
	st.result = result
}

func (m *mockAudioPlayer) setActive(guildID snowflake.ID, active, paused bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state(guildID)
	st.active = active
	st.paused = paused
}

func (m *mockAudioPlayer) overlapCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlaps
}

func (m *mockAudioPlayer) playedTracks() []*domain.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Track, len(m.played))
	copy(out, m.played)
	return out
}

// mockVoiceConnector tracks per-guild connection state in memory.
type mockVoiceConnector struct {
	mu        sync.Mutex
	connected map[snowflake.ID]snowflake.ID
	joinErr   error
	joins     int
}

func newMockVoiceConnector() *mockVoiceConnector {
	return &mockVoiceConnector{connected: make(map[snowflake.ID]snowflake.ID)}
}

func (m *mockVoiceConnector) Join(_ context.Context, guildID, channelID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joins++
	if m.joinErr != nil {
		return m.joinErr
	}
	m.connected[guildID] = channelID
	return nil
}

func (m *mockVoiceConnector) Leave(_ context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connected, guildID)
	return nil
}

func (m *mockVoiceConnector) IsConnected(guildID snowflake.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.connected[guildID]
	return ok
}

// mockVoiceStateProvider maps users to voice channels.
type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID
	err      error
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

// mockNotifier records outgoing notifications.
type mockNotifier struct {
	mu         sync.Mutex
	nowPlaying []*domain.Track
	errors     []string
}

func (m *mockNotifier) SendNowPlaying(_, _ snowflake.ID, track *domain.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nowPlaying = append(m.nowPlaying, track)
	return nil
}

func (m *mockNotifier) SendError(_ snowflake.ID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, message)
	return nil
}

func (m *mockNotifier) errorMessages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.errors))
	copy(out, m.errors)
	return out
}

func singleItem(id, title, streamURL string, abr float64) *domain.ExtractedItem {
	return &domain.ExtractedItem{
		Kind:  domain.ItemSingle,
		ID:    id,
		Title: title,
		Formats: []domain.Format{
			{URL: streamURL, AudioCodec: "opus", VideoCodec: "none", AudioBitrate: abr},
		},
	}
}

func testTrack(title string) *domain.Track {
	return domain.NewTrack(domain.Selection{
		StreamURL:    "https://cdn.example/" + title,
		AudioBitrate: 128,
	}, title, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", nil, 0)
}
