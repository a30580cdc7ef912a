package core

import (
	"testing"

	"github.com/fuguebot/fugue/internal/bot"
)

func TestHandlePingRespondsWithPong(t *testing.T) {
	responder := &bot.MockResponder{}

	if err := HandlePing(nil, nil, responder); err != nil {
		t.Fatalf("HandlePing: %v", err)
	}

	if responder.LastResponse == nil || responder.LastResponse.Data == nil {
		t.Fatal("expected a response")
	}
	if got := responder.LastResponse.Data.Content; got != "Pong!" {
		t.Errorf("expected %q, got %q", "Pong!", got)
	}
}

func TestCoreModuleRegistersPingCommand(t *testing.T) {
	m := &CoreModule{}

	commands := m.Commands()
	if len(commands) != 1 || commands[0].Name != "ping" {
		t.Fatalf("expected a single ping command, got %v", commands)
	}

	if _, ok := m.CommandHandlers()["ping"]; !ok {
		t.Error("expected a handler for ping")
	}
}
