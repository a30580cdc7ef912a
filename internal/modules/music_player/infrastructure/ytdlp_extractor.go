package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fuguebot/fugue/internal/modules/music_player/application/ports"
	"github.com/fuguebot/fugue/internal/modules/music_player/domain"
	"github.com/lrstanley/go-ytdlp"
)

// Ensure YtdlpExtractor implements ports.Extractor.
var _ ports.Extractor = (*YtdlpExtractor)(nil)

// YtdlpExtractorConfig tunes the yt-dlp invocation.
type YtdlpExtractorConfig struct {
	// SocketTimeoutSeconds is passed through as --socket-timeout.
	SocketTimeoutSeconds int

	// PlaylistItems limits how many playlist entries yt-dlp enumerates.
	PlaylistItems int
}

// YtdlpExtractor extracts stream metadata by running yt-dlp with
// --dump-single-json and parsing its output. Playlists are requested flat so
// enumerating a large collection stays cheap; the entries come back as page
// references for the caller to re-extract.
type YtdlpExtractor struct {
	socketTimeout int
	playlistItems int
}

// NewYtdlpExtractor creates a new YtdlpExtractor.
func NewYtdlpExtractor(cfg YtdlpExtractorConfig) *YtdlpExtractor {
	if cfg.SocketTimeoutSeconds <= 0 {
		cfg.SocketTimeoutSeconds = 30
	}
	if cfg.PlaylistItems <= 0 {
		cfg.PlaylistItems = 50
	}
	return &YtdlpExtractor{
		socketTimeout: cfg.SocketTimeoutSeconds,
		playlistItems: cfg.PlaylistItems,
	}
}

// ytdlpFormat mirrors one entry of the "formats" array in yt-dlp's JSON dump.
type ytdlpFormat struct {
	URL    string  `json:"url"`
	ACodec string  `json:"acodec"`
	VCodec string  `json:"vcodec"`
	ABR    float64 `json:"abr"`
	TBR    float64 `json:"tbr"`
}

// ytdlpInfo mirrors the fields of yt-dlp's JSON dump that we consume.
// Playlist entries reuse the same shape recursively.
type ytdlpInfo struct {
	Type        string            `json:"_type"`
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	WebpageURL  string            `json:"webpage_url"`
	OriginalURL string            `json:"original_url"`
	Formats     []ytdlpFormat     `json:"formats"`
	HTTPHeaders map[string]string `json:"http_headers"`
	Entries     []*ytdlpInfo      `json:"entries"`
}

// Extract runs yt-dlp against the target with the given client profile and
// converts the JSON dump into a domain item.
func (e *YtdlpExtractor) Extract(
	ctx context.Context,
	target string,
	profile ports.ClientProfile,
) (*domain.ExtractedItem, error) {
	cmd := ytdlp.New().
		NoWarnings().
		IgnoreConfig().
		NoCheckFormats().
		FlatPlaylist().
		PlaylistItems(fmt.Sprintf("1-%d", e.playlistItems))

	args := []string{
		"--dump-single-json",
		"--socket-timeout", fmt.Sprintf("%d", e.socketTimeout),
	}
	if profile.PlayerClient != "" {
		args = append(args, "--extractor-args", "youtube:player_client="+profile.PlayerClient)
	}

	res, err := cmd.Run(ctx, append(args, target)...)
	if err != nil {
		if res != nil && res.Stderr != "" {
			return nil, fmt.Errorf("yt-dlp failed: %w, stderr: %s", err, stderrTail(res.Stderr))
		}
		return nil, fmt.Errorf("yt-dlp failed: %w", err)
	}

	var info ytdlpInfo
	if err := json.Unmarshal([]byte(res.Stdout), &info); err != nil {
		return nil, fmt.Errorf("parsing yt-dlp output: %w", err)
	}
	return convertInfo(&info, false), nil
}

// convertInfo maps a yt-dlp info dict onto a domain item. Entries of a flat
// playlist carry a page reference instead of formats and are tagged so the
// resolver knows to re-extract them.
func convertInfo(info *ytdlpInfo, isEntry bool) *domain.ExtractedItem {
	item := &domain.ExtractedItem{
		ID:          info.ID,
		Title:       info.Title,
		WebpageURL:  info.WebpageURL,
		OriginalURL: info.OriginalURL,
		Headers:     info.HTTPHeaders,
	}

	switch {
	case info.Type == "playlist" || len(info.Entries) > 0:
		item.Kind = domain.ItemCollection
		for _, entry := range info.Entries {
			if entry == nil {
				continue
			}
			item.Entries = append(item.Entries, convertInfo(entry, true))
		}
	case isEntry && len(info.Formats) == 0:
		item.Kind = domain.ItemFlat
		// A flat entry's "url" points at the watch page, not a stream.
		if item.WebpageURL == "" {
			item.WebpageURL = info.URL
		}
	default:
		item.Kind = domain.ItemSingle
		item.DirectURL = info.URL
		for _, f := range info.Formats {
			if f.URL == "" {
				continue
			}
			item.Formats = append(item.Formats, domain.Format{
				URL:          f.URL,
				AudioCodec:   f.ACodec,
				VideoCodec:   f.VCodec,
				AudioBitrate: f.ABR,
				TotalBitrate: f.TBR,
			})
		}
	}
	return item
}

// stderrTail keeps error messages short: yt-dlp's stderr can run to pages,
// but the diagnosis is in the last lines.
func stderrTail(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	lines := strings.Split(stderr, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, " | ")
}
