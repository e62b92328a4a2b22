package discord

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/jmendes/bedboard/internal/alerts"
)

// mockSession records embeds sent through the session.
type mockSession struct {
	opened  bool
	closed  bool
	channel string
	embeds  []*discordgo.MessageEmbed
}

func (m *mockSession) Open() error  { m.opened = true; return nil }
func (m *mockSession) Close() error { m.closed = true; return nil }
func (m *mockSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.channel = channelID
	m.embeds = append(m.embeds, embed)
	return &discordgo.Message{}, nil
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(AdapterOpts{ChannelID: "123"}); err == nil {
		t.Error("New() without token = nil error, want error")
	}
	if _, err := New(AdapterOpts{BotToken: "token"}); err == nil {
		t.Error("New() without channel = nil error, want error")
	}
}

func TestSend_OpensOnceAndSendsEmbed(t *testing.T) {
	sess := &mockSession{}
	a, err := New(AdapterOpts{ChannelID: "123", Session: sess})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	alert := alerts.Alert{
		Severity: alerts.SeverityCritical,
		Title:    "Critical patient in ER queue",
		Body:     "Ada Lovelace (P-1) is waiting for a bed.",
		Fields:   []alerts.Field{{Name: "Triage Level", Value: "1"}},
	}
	if err := a.Send(context.Background(), alert); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if err := a.Send(context.Background(), alert); err != nil {
		t.Fatalf("second Send() error: %v", err)
	}

	if !sess.opened {
		t.Error("session was never opened")
	}
	if len(sess.embeds) != 2 || sess.channel != "123" {
		t.Fatalf("embeds = %d to %q, want 2 to 123", len(sess.embeds), sess.channel)
	}
	embed := sess.embeds[0]
	if embed.Title != alert.Title || len(embed.Fields) != 1 {
		t.Errorf("embed = %+v, want title and one field", embed)
	}
	if embed.Color != 0xd00000 {
		t.Errorf("embed color = %#x, want critical red", embed.Color)
	}
}

func TestClose_OnlyAfterOpen(t *testing.T) {
	sess := &mockSession{}
	a, _ := New(AdapterOpts{ChannelID: "123", Session: sess})

	if err := a.Close(); err != nil {
		t.Fatalf("Close() before open: %v", err)
	}
	if sess.closed {
		t.Error("session closed without ever opening")
	}

	a.Send(context.Background(), alerts.Alert{Title: "t"})
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !sess.closed {
		t.Error("session not closed after open")
	}
}

func TestHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"#439fe0", 0x439fe0},
		{"#d00000", 0xd00000},
		{"garbage", 0},
	}
	for _, tt := range tests {
		if got := hexColor(tt.in); got != tt.want {
			t.Errorf("hexColor(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}
