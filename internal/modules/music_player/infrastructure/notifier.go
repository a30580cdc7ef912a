package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/fuguebot/fugue/internal/modules/music_player/application/ports"
	"github.com/fuguebot/fugue/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorRed     = 0xE74C3C
	colorYouTube = 0xFF0000
)

var videoIDPattern = regexp.MustCompile(`[?&]v=([\w-]{11})`)

// Ensure Notifier implements ports.NotificationSender.
var _ ports.NotificationSender = (*Notifier)(nil)

// Notifier sends playback notifications to Discord channels.
type Notifier struct {
	session    *discordgo.Session
	userInfo   ports.UserInfoProvider
	httpClient *http.Client
}

// NewNotifier creates a new Notifier. userInfo may be nil, in which case the
// requester footer is omitted.
func NewNotifier(session *discordgo.Session, userInfo ports.UserInfoProvider) *Notifier {
	return &Notifier{
		session:  session,
		userInfo: userInfo,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// SendNowPlaying sends a "Now Playing" embed for the track to the channel.
func (n *Notifier) SendNowPlaying(guildID, channelID snowflake.ID, track *domain.Track) error {
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: "Now Playing",
		},
		Title:     track.Title,
		URL:       track.PageURL,
		Color:     colorYouTube,
		Timestamp: track.EnqueuedAt.UTC().Format(time.RFC3339),
	}

	if track.AudioBitrate > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Bitrate",
			Value:  fmt.Sprintf("%.0f kbps", track.AudioBitrate),
			Inline: true,
		})
	}

	if n.userInfo != nil && track.RequesterID != 0 {
		if info, err := n.userInfo.GetUserInfo(guildID, track.RequesterID); err == nil {
			embed.Footer = &discordgo.MessageEmbedFooter{
				Text:    fmt.Sprintf("Requested by %s", info.DisplayName),
				IconURL: info.AvatarURL,
			}
		} else {
			slog.Debug("failed to resolve requester info", "error", err)
		}
	}

	if thumbnailURL := n.bestThumbnail(track.PageURL); thumbnailURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{
			URL: thumbnailURL,
		}
	}

	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

// SendError sends an error message embed to the channel.
func (n *Notifier) SendError(channelID snowflake.ID, message string) error {
	embed := &discordgo.MessageEmbed{
		Description: message,
		Color:       colorRed,
	}

	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

// bestThumbnail tries the YouTube thumbnail quality ladder for the video
// referenced by the page URL, highest first.
func (n *Notifier) bestThumbnail(pageURL string) string {
	m := videoIDPattern.FindStringSubmatch(pageURL)
	if m == nil {
		return ""
	}
	videoID := m[1]

	qualities := []string{"maxresdefault", "sddefault", "hqdefault", "mqdefault"}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, quality := range qualities {
		url := fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", videoID, quality)
		if n.urlExists(ctx, url) {
			return url
		}
	}

	return ""
}

// urlExists checks if a URL returns a successful response using a HEAD request.
func (n *Notifier) urlExists(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}
