package cli

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/client/mirror"
	"github.com/dmitrijs2005/weddingportal/internal/logging"
	"github.com/dmitrijs2005/weddingportal/internal/protocol"
	"github.com/stretchr/testify/assert"
)

func TestRender_FullState(t *testing.T) {
	now := time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC)
	joined := now.Add(-3 * time.Minute).UnixMilli()

	m := mirror.New(logging.NewNop())
	m.Apply(protocol.EventFullSync, json.RawMessage(`{
		"config": {"coupleName":"Ann & Tom","date":"2026-06-01","welcomeMsg":"Welcome!"},
		"announcement": "Cake at 6",
		"theme": {"gradient":"rose","effect":"petals"},
		"heartCount": 1234,
		"lanterns": [{"id":"l1"}],
		"playback": {"currentSong":"Perfect","isPlaying":true},
		"guests": [{"name":"Ann","role":"couple","joinedAt":`+itoa(joined)+`,"rsvp":true}],
		"gallery": [{"id":"g1","type":"image","url":"https://x/a.jpg","sender":"Ann","caption":"cake"}],
		"messages": [{"id":"m1","timestamp":"14:59","senderName":"Bob","content":"rings","type":"sticker"}],
		"locations": {"Bob":{"lat":56.95,"lng":24.1,"timestamp":1}}
	}`))
	m.Apply(protocol.EventTyping, json.RawMessage(`{"user":"Bob","isTyping":true}`))

	out := render(m.State(), now)

	for _, want := range []string{
		"Ann & Tom  2026-06-01",
		"Welcome!",
		"ANNOUNCEMENT: Cake at 6",
		"theme: rose/petals  hearts: 1,234  lanterns: 1",
		"music: Perfect (playing)",
		"Ann [couple] rsvp joined 3 minutes ago",
		`g1 image https://x/a.jpg by Ann "cake"`,
		"m1 14:59 Bob: [rings]",
		"Bob 56.95000,24.10000",
		"typing: Bob",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRender_EmptyStateAndChatWindow(t *testing.T) {
	m := mirror.New(logging.NewNop())
	out := render(m.State(), time.Now())
	assert.Contains(t, out, "theme: -/-  hearts: 0  lanterns: 0")
	assert.NotContains(t, out, "locations:")
	assert.NotContains(t, out, "ANNOUNCEMENT")

	for i := 0; i < 15; i++ {
		m.Apply(protocol.EventMessage, json.RawMessage(`{"id":"m`+itoa(int64(i))+`","content":"c`+itoa(int64(i))+`"}`))
	}
	out = render(m.State(), time.Now())
	assert.Contains(t, out, "chat (15):")
	assert.NotContains(t, out, ": c4\n")
	assert.Contains(t, out, ": c5\n")
	assert.True(t, strings.HasSuffix(out, ": c14"))
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
