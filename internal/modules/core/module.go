package core

import (
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/fuguebot/fugue/internal/bot"
)

func init() {
	bot.Register(&CoreModule{})
}

// CoreModule provides basic liveness commands.
type CoreModule struct{}

// Name returns the module name.
func (m *CoreModule) Name() string {
	return "core"
}

// Commands returns the slash commands for this module.
func (m *CoreModule) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "ping",
			Description: "Replies with Pong!",
		},
	}
}

// CommandHandlers returns the command handlers for this module.
func (m *CoreModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"ping": HandlePing,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *CoreModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		handlePingMessage,
	}
}

// Init initializes the module.
func (m *CoreModule) Init(_ bot.ModuleDependencies) error {
	return nil
}

// Shutdown cleans up module resources.
func (m *CoreModule) Shutdown() error {
	return nil
}

// HandlePing handles the /ping command.
func HandlePing(
	_ *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Pong!",
		},
	})
}

// handlePingMessage replies to chat messages containing the ping emoji.
func handlePingMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}
	if !strings.Contains(m.Content, "\U0001F3D3") {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, "\U0001F3D3"); err != nil {
		slog.Error("failed to send message", "channel", m.ChannelID, "error", err)
	}
}
