package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/dmitrijs2005/weddingportal/internal/common"
	"github.com/dmitrijs2005/weddingportal/internal/models"
	"github.com/dmitrijs2005/weddingportal/internal/protocol"
)

var lanternColors = []string{"#ffb347", "#ff6b6b", "#ffd93d", "#c3aed6", "#9ee6cf"}

// requireMe returns the joined identity or common.ErrNotJoined.
func (s *portalService) requireMe() (models.GuestEntry, error) {
	me, ok := s.Me()
	if !ok {
		return models.GuestEntry{}, common.ErrNotJoined
	}
	return me, nil
}

func (s *portalService) Join(_ context.Context, name string, role models.Role) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errNoName
	}
	if role == "" {
		role = models.RoleGuest
	}

	g := models.GuestEntry{Name: name, Role: role, JoinedAt: s.now().UnixMilli()}

	s.mu.Lock()
	s.me = &g
	s.mu.Unlock()

	s.mirror.UpsertGuest(g)
	return s.emit(protocol.EventJoinUser, g)
}

func (s *portalService) RSVP(_ context.Context) error {
	me, err := s.requireMe()
	if err != nil {
		return err
	}
	s.mirror.MarkRSVP(me.Name)
	return s.emit(protocol.EventSendRSVP, protocol.NameRef{Name: me.Name})
}

func (s *portalService) Block(_ context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errNoName
	}
	s.mirror.RemoveGuest(name)
	return s.emit(protocol.EventBlockUser, protocol.NameRef{Name: name})
}

func (s *portalService) SendMessage(_ context.Context, text string) error {
	return s.send(models.MessageText, text)
}

func (s *portalService) SendSticker(_ context.Context, key string) error {
	return s.send(models.MessageSticker, key)
}

func (s *portalService) send(kind models.MessageType, content string) error {
	me, err := s.requireMe()
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: empty message", common.ErrMalformedPayload)
	}

	now := s.now()
	msg := models.ChatMessage{
		ID:         s.newID(now),
		SenderName: me.Name,
		IsCouple:   me.Role == models.RoleCouple,
		Content:    content,
		Type:       kind,
		Timestamp:  now.Format("15:04"),
	}

	s.mirror.AppendMessage(msg)
	return s.emit(protocol.EventSendMessage, msg)
}

func (s *portalService) DeleteMessage(_ context.Context, id string) error {
	list, ok := s.mirror.MessagesWithout(id)
	if !ok {
		return fmt.Errorf("message %s: %w", id, common.ErrNotFound)
	}
	s.mirror.ReplaceMessages(list)
	return s.emit(protocol.EventMessageSync, list)
}

func (s *portalService) AddHeart(_ context.Context) error {
	s.mirror.IncrementHearts()
	return s.emit(protocol.EventAddHeart, nil)
}

func (s *portalService) ReleaseLantern(_ context.Context, text string) error {
	me, err := s.requireMe()
	if err != nil {
		return err
	}

	now := s.now()
	l := models.Lantern{
		ID:        s.newID(now),
		Sender:    me.Name,
		Message:   text,
		Color:     lanternColors[rand.IntN(len(lanternColors))],
		Depth:     rand.Float64(),
		XValues:   []float64{rand.Float64()*100 - 50, rand.Float64()*100 - 50, rand.Float64()*100 - 50},
		Speed:     10 + rand.Float64()*10,
		Delay:     rand.Float64() * 2,
		Timestamp: now.UnixMilli(),
	}

	s.mirror.AppendLantern(l)
	return s.emit(protocol.EventReleaseLantern, l)
}

func (s *portalService) UploadMedia(_ context.Context, url, caption string) error {
	me, err := s.requireMe()
	if err != nil {
		return err
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("%w: empty media url", common.ErrMalformedPayload)
	}

	now := s.now()
	item := models.MediaItem{
		ID:        s.newID(now),
		URL:       url,
		Type:      mediaType(url),
		Caption:   caption,
		Timestamp: now.UnixMilli(),
		Sender:    me.Name,
	}

	s.mirror.PrependMedia(item)
	return s.emit(protocol.EventUploadMedia, item)
}

// mediaType guesses video from a data URI prefix or a file extension.
func mediaType(url string) models.MediaType {
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "data:video/") {
		return models.MediaVideo
	}
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	for _, ext := range []string{".mp4", ".webm", ".mov", ".m4v"} {
		if strings.HasSuffix(lower, ext) {
			return models.MediaVideo
		}
	}
	return models.MediaImage
}

func (s *portalService) EditCaption(_ context.Context, id, caption string) error {
	list, ok := s.mirror.GalleryWithCaption(id, caption)
	if !ok {
		return fmt.Errorf("media %s: %w", id, common.ErrNotFound)
	}
	s.mirror.ReplaceGallery(list)
	return s.emit(protocol.EventGallerySync, list)
}

func (s *portalService) DeleteMedia(_ context.Context, id string) error {
	list, ok := s.mirror.GalleryWithout(id)
	if !ok {
		return fmt.Errorf("media %s: %w", id, common.ErrNotFound)
	}
	s.mirror.ReplaceGallery(list)
	return s.emit(protocol.EventGallerySync, list)
}

func (s *portalService) UpdateConfig(_ context.Context, patch models.ConfigPatch) error {
	if patch.IsEmpty() {
		return fmt.Errorf("%w: empty config patch", common.ErrMalformedPayload)
	}
	s.mirror.MergeConfig(patch)
	return s.emit(protocol.EventConfigUpdate, patch)
}

func (s *portalService) UpdateTheme(_ context.Context, theme models.ThemeConfig) error {
	s.mirror.SetTheme(theme)
	return s.emit(protocol.EventThemeUpdate, theme)
}

func (s *portalService) UpdatePlayback(_ context.Context, p models.PlaybackState) error {
	s.mirror.SetPlayback(p)
	return s.emit(protocol.EventPlaylistUpdate, p)
}

func (s *portalService) Announce(_ context.Context, text string) error {
	s.mirror.SetAnnouncement(&text)
	return s.emit(protocol.EventSendAnnouncement, protocol.Announcement{Message: &text})
}

// SetTyping reports the local user's typing state. Repeated "on" reports
// inside the typing interval are dropped; "off" is always sent.
func (s *portalService) SetTyping(_ context.Context, on bool) error {
	me, err := s.requireMe()
	if err != nil {
		return err
	}
	if on && !s.typing.Allow() {
		return nil
	}
	return s.emit(protocol.EventTyping, protocol.Typing{User: me.Name, IsTyping: on})
}

func (s *portalService) UpdateLocation(_ context.Context, lat, lng float64) error {
	me, err := s.requireMe()
	if err != nil {
		return err
	}

	now := s.now().UnixMilli()
	s.mirror.SetLocation(me.Name, models.LocationPoint{Lat: lat, Lng: lng, Timestamp: now})
	return s.emit(protocol.EventUpdateLocation, protocol.LocationUpdate{
		Name:      me.Name,
		Lat:       lat,
		Lng:       lng,
		Timestamp: now,
	})
}

func (s *portalService) RequestSync(_ context.Context) error {
	return s.emit(protocol.EventRequestSync, nil)
}
