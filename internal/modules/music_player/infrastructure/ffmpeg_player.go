package infrastructure

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/fuguebot/fugue/internal/modules/music_player/application/ports"
	"github.com/fuguebot/fugue/internal/modules/music_player/domain"
	"layeh.com/gopus"
)

const (
	audioChannels  = 2
	audioFrameRate = 48000
	audioFrameSize = 960
	maxOpusBytes   = 1000
)

// Ensure FFmpegPlayer implements ports.AudioPlayer.
var _ ports.AudioPlayer = (*FFmpegPlayer)(nil)

// ErrTrackActive is returned by Play when the guild already has a decoder
// running.
var ErrTrackActive = errors.New("a track is already active in this guild")

// playSession is the state of one running decode.
type playSession struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	paused bool
	halted bool
}

func (ps *playSession) isPaused() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.paused
}

func (ps *playSession) setPaused(paused bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.paused = paused
}

func (ps *playSession) halt() {
	ps.mu.Lock()
	ps.halted = true
	ps.paused = false
	ps.mu.Unlock()
	ps.cancel()
}

func (ps *playSession) wasHalted() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.halted
}

// FFmpegPlayer decodes stream URLs with an external ffmpeg process and pushes
// opus frames into the guild's voice connection. One decode runs per guild at
// a time. The player keeps no completion callback; callers poll IsActive and
// pick up the terminal error through Result.
type FFmpegPlayer struct {
	session    *discordgo.Session
	ffmpegPath string

	mu       sync.Mutex
	sessions map[snowflake.ID]*playSession
	results  map[snowflake.ID]error
}

// NewFFmpegPlayer creates a new FFmpegPlayer. An empty ffmpegPath resolves
// the binary from PATH.
func NewFFmpegPlayer(session *discordgo.Session, ffmpegPath string) *FFmpegPlayer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegPlayer{
		session:    session,
		ffmpegPath: ffmpegPath,
		sessions:   make(map[snowflake.ID]*playSession),
		results:    make(map[snowflake.ID]error),
	}
}

// Play launches the decoder for the track and returns once it is running.
func (p *FFmpegPlayer) Play(ctx context.Context, guildID snowflake.ID, track *domain.Track) error {
	vc := p.voiceConnection(guildID)
	if vc == nil {
		return errors.New("no voice connection for guild")
	}

	p.mu.Lock()
	if _, busy := p.sessions[guildID]; busy {
		p.mu.Unlock()
		return ErrTrackActive
	}
	playCtx, cancel := context.WithCancel(ctx)
	ps := &playSession{cancel: cancel, done: make(chan struct{})}
	p.sessions[guildID] = ps
	delete(p.results, guildID)
	p.mu.Unlock()

	cmd := exec.CommandContext(playCtx, p.ffmpegPath, p.buildArgs(track)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		p.finish(guildID, ps, nil)
		cancel()
		return fmt.Errorf("creating ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		p.finish(guildID, ps, nil)
		cancel()
		return fmt.Errorf("starting ffmpeg: %w", err)
	}

	go p.stream(playCtx, guildID, ps, vc, cmd, stdout, &stderr)
	return nil
}

// Stop force-halts the guild's decoder and waits for it to wind down so that
// IsActive reports false as soon as Stop returns.
func (p *FFmpegPlayer) Stop(guildID snowflake.ID) {
	p.mu.Lock()
	ps, ok := p.sessions[guildID]
	p.mu.Unlock()
	if !ok {
		return
	}

	ps.halt()
	select {
	case <-ps.done:
	case <-time.After(2 * time.Second):
	}
}

// Pause suspends frame delivery. The ffmpeg process keeps running and stalls
// on its full stdout pipe.
func (p *FFmpegPlayer) Pause(guildID snowflake.ID) error {
	p.mu.Lock()
	ps, ok := p.sessions[guildID]
	p.mu.Unlock()
	if !ok {
		return errors.New("no active track")
	}
	ps.setPaused(true)
	return nil
}

// Resume reverses Pause.
func (p *FFmpegPlayer) Resume(guildID snowflake.ID) error {
	p.mu.Lock()
	ps, ok := p.sessions[guildID]
	p.mu.Unlock()
	if !ok {
		return errors.New("no active track")
	}
	ps.setPaused(false)
	return nil
}

// IsActive reports whether a decode is running, paused included.
func (p *FFmpegPlayer) IsActive(guildID snowflake.ID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.sessions[guildID]
	return ok
}

// IsPaused reports whether the active decode is paused.
func (p *FFmpegPlayer) IsPaused(guildID snowflake.ID) bool {
	p.mu.Lock()
	ps, ok := p.sessions[guildID]
	p.mu.Unlock()
	return ok && ps.isPaused()
}

// Result returns and clears the terminal error of the last finished decode.
func (p *FFmpegPlayer) Result(guildID snowflake.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.results[guildID]
	delete(p.results, guildID)
	return err
}

func (p *FFmpegPlayer) voiceConnection(guildID snowflake.ID) *discordgo.VoiceConnection {
	p.session.RLock()
	defer p.session.RUnlock()
	return p.session.VoiceConnections[guildID.String()]
}

// buildArgs assembles the ffmpeg command line: reconnect flags for flaky
// CDN streams, the track's HTTP headers, then a raw PCM decode of the audio
// stream only.
func (p *FFmpegPlayer) buildArgs(track *domain.Track) []string {
	args := []string{
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
	}

	userAgent, headerBlock := renderHeaders(track.Headers)
	if userAgent != "" {
		args = append(args, "-user_agent", userAgent)
	}
	if headerBlock != "" {
		args = append(args, "-headers", headerBlock)
	}

	return append(args,
		"-i", track.StreamURL,
		"-f", "s16le",
		"-ar", "48000",
		"-ac", "2",
		"-vn",
		"-loglevel", "warning",
		"pipe:1",
	)
}

// renderHeaders converts extractor-provided HTTP headers into ffmpeg's
// format. The User-Agent is split out because ffmpeg takes it as a dedicated
// flag; the rest become one CRLF-joined -headers block, key-sorted so the
// command line is deterministic.
func renderHeaders(headers map[string]string) (userAgent, headerBlock string) {
	if len(headers) == 0 {
		return "", ""
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		if strings.EqualFold(k, "User-Agent") {
			userAgent = headers[k]
			continue
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(headers[k])
		b.WriteString("\r\n")
	}
	return userAgent, b.String()
}

func (p *FFmpegPlayer) finish(guildID snowflake.ID, ps *playSession, result error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessions, guildID)
	p.results[guildID] = result
}

// stream reads PCM frames from ffmpeg, opus-encodes them and pushes them to
// Discord until the stream ends, fails, or is halted.
func (p *FFmpegPlayer) stream(
	ctx context.Context,
	guildID snowflake.ID,
	ps *playSession,
	vc *discordgo.VoiceConnection,
	cmd *exec.Cmd,
	stdout io.Reader,
	stderr *bytes.Buffer,
) {
	var result error
	defer func() {
		waitErr := cmd.Wait()
		// A kill from halting or shutdown is a normal end, not a failure.
		if result == nil && waitErr != nil && !ps.wasHalted() && ctx.Err() == nil {
			result = fmt.Errorf("ffmpeg exited abnormally: %w (stderr: %s)",
				waitErr, stderrTail(stderr.String()))
		}
		p.finish(guildID, ps, result)
		close(ps.done)
	}()

	_ = vc.Speaking(true)
	defer func() { _ = vc.Speaking(false) }()

	encoder, err := gopus.NewEncoder(audioFrameRate, audioChannels, gopus.Audio)
	if err != nil {
		result = fmt.Errorf("creating opus encoder: %w", err)
		ps.cancel()
		return
	}

	pcm := make([]int16, audioFrameSize*audioChannels)
	for {
		if ctx.Err() != nil {
			return
		}
		if ps.isPaused() {
			select {
			case <-time.After(20 * time.Millisecond):
			case <-ctx.Done():
				return
			}
			continue
		}

		if err := binary.Read(stdout, binary.LittleEndian, &pcm); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return
			}
			if ctx.Err() == nil {
				result = fmt.Errorf("reading pcm from ffmpeg: %w", err)
			}
			ps.cancel()
			return
		}

		opusFrame, err := encoder.Encode(pcm, audioFrameSize, maxOpusBytes)
		if err != nil {
			result = fmt.Errorf("encoding opus frame: %w", err)
			ps.cancel()
			return
		}

		select {
		case vc.OpusSend <- opusFrame:
		case <-time.After(time.Second):
			result = errors.New("timed out delivering an opus frame")
			ps.cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}
