package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/client/mirror"
	"github.com/dmitrijs2005/weddingportal/internal/models"
	"github.com/dustin/go-humanize"
)

// recentMessages is how many chat lines show prints.
const recentMessages = 10

func (a *App) Show(_ context.Context) error {
	printlnFn(render(a.mirror.State(), time.Now()))
	return nil
}

// render formats the read model for the terminal.
func render(s mirror.State, now time.Time) string {
	var b strings.Builder

	if s.Config.CoupleName != "" {
		fmt.Fprintf(&b, "%s  %s\n", s.Config.CoupleName, s.Config.Date)
	}
	if s.Config.WelcomeMsg != "" {
		fmt.Fprintf(&b, "%s\n", s.Config.WelcomeMsg)
	}
	if s.Announcement != nil && *s.Announcement != "" {
		fmt.Fprintf(&b, "ANNOUNCEMENT: %s\n", *s.Announcement)
	}
	fmt.Fprintf(&b, "theme: %s/%s  hearts: %s  lanterns: %d\n",
		orDash(s.Theme.Gradient), orDash(s.Theme.Effect), humanize.Comma(s.HeartCount), len(s.Lanterns))

	if s.Playback.CurrentSong != "" {
		state := "paused"
		if s.Playback.IsPlaying {
			state = "playing"
		}
		fmt.Fprintf(&b, "music: %s (%s)\n", s.Playback.CurrentSong, state)
	}

	fmt.Fprintf(&b, "guests (%d):\n", len(s.Guests))
	for _, g := range s.Guests {
		rsvp := ""
		if g.RSVP != nil && *g.RSVP {
			rsvp = " rsvp"
		}
		fmt.Fprintf(&b, "  %s [%s]%s joined %s\n", g.Name, g.Role, rsvp,
			humanize.RelTime(time.UnixMilli(g.JoinedAt), now, "ago", "from now"))
	}

	fmt.Fprintf(&b, "gallery (%d):\n", len(s.Gallery))
	for _, item := range s.Gallery {
		fmt.Fprintf(&b, "  %s %s %s by %s", item.ID, item.Type, item.URL, item.Sender)
		if item.Caption != "" {
			fmt.Fprintf(&b, " %q", item.Caption)
		}
		b.WriteByte('\n')
	}

	msgs := s.Messages
	if len(msgs) > recentMessages {
		msgs = msgs[len(msgs)-recentMessages:]
	}
	fmt.Fprintf(&b, "chat (%d):\n", len(s.Messages))
	for _, m := range msgs {
		content := m.Content
		if m.Type == models.MessageSticker {
			content = "[" + content + "]"
		}
		fmt.Fprintf(&b, "  %s %s %s: %s\n", m.ID, m.Timestamp, m.SenderName, content)
	}

	if len(s.Locations) > 0 {
		names := make([]string, 0, len(s.Locations))
		for name := range s.Locations {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("locations:\n")
		for _, name := range names {
			p := s.Locations[name]
			fmt.Fprintf(&b, "  %s %.5f,%.5f\n", name, p.Lat, p.Lng)
		}
	}

	if len(s.Typing) > 0 {
		fmt.Fprintf(&b, "typing: %s\n", strings.Join(s.Typing, ", "))
	}

	return strings.TrimRight(b.String(), "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
