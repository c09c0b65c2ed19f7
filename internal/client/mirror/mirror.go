package mirror

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/dmitrijs2005/weddingportal/internal/logging"
	"github.com/dmitrijs2005/weddingportal/internal/models"
	"github.com/dmitrijs2005/weddingportal/internal/protocol"
)

// State is an immutable copy of the mirror handed to readers.
type State struct {
	Connected    bool
	Messages     []models.ChatMessage
	Gallery      []models.MediaItem
	Guests       []models.GuestEntry
	HeartCount   int64
	Lanterns     []models.Lantern
	Locations    map[string]models.LocationPoint
	Theme        models.ThemeConfig
	Config       models.GlobalConfig
	Playback     models.PlaybackState
	Announcement *string
	Typing       []string
}

// Snapshot returns the shared part of s.
func (s State) Snapshot() models.Snapshot {
	return models.Snapshot{
		Messages:     s.Messages,
		Gallery:      s.Gallery,
		Guests:       s.Guests,
		HeartCount:   s.HeartCount,
		Lanterns:     s.Lanterns,
		Locations:    s.Locations,
		Theme:        s.Theme,
		Config:       s.Config,
		Playback:     s.Playback,
		Announcement: s.Announcement,
	}.Clone()
}

type Mirror struct {
	logger logging.Logger

	mu        sync.RWMutex
	snap      models.Snapshot
	typing    map[string]struct{}
	connected bool

	subsMu  sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

func New(logger logging.Logger) *Mirror {
	return &Mirror{
		logger: logger.With("module", "mirror"),
		snap:   models.NewSnapshot(),
		typing: make(map[string]struct{}),
		subs:   make(map[int]func(State)),
	}
}

// State returns a deep copy of the read model.
func (m *Mirror) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stateLocked()
}

func (m *Mirror) stateLocked() State {
	s := m.snap.Clone()

	typing := make([]string, 0, len(m.typing))
	for u := range m.typing {
		typing = append(typing, u)
	}
	sort.Strings(typing)

	return State{
		Connected:    m.connected,
		Messages:     s.Messages,
		Gallery:      s.Gallery,
		Guests:       s.Guests,
		HeartCount:   s.HeartCount,
		Lanterns:     s.Lanterns,
		Locations:    s.Locations,
		Theme:        s.Theme,
		Config:       s.Config,
		Playback:     s.Playback,
		Announcement: s.Announcement,
		Typing:       typing,
	}
}

// Subscribe registers fn to receive the read model after every change. The
// returned func removes the subscription. fn runs on the mutating goroutine
// and must not call back into mutating methods.
func (m *Mirror) Subscribe(fn func(State)) func() {
	m.subsMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subsMu.Unlock()

	return func() {
		m.subsMu.Lock()
		delete(m.subs, id)
		m.subsMu.Unlock()
	}
}

func (m *Mirror) publish() {
	m.subsMu.Lock()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subsMu.Unlock()

	if len(fns) == 0 {
		return
	}
	s := m.State()
	for _, fn := range fns {
		fn(s)
	}
}

// update runs fn under the write lock and notifies subscribers if it reports
// a change.
func (m *Mirror) update(fn func() bool) bool {
	m.mu.Lock()
	changed := fn()
	m.mu.Unlock()

	if changed {
		m.publish()
	}
	return changed
}

func (m *Mirror) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// SetConnected flips the connectivity flag. Nothing else is touched: the
// mirror is kept as last-known-good across disconnects.
func (m *Mirror) SetConnected(connected bool) {
	m.update(func() bool {
		if m.connected == connected {
			return false
		}
		m.connected = connected
		return true
	})
}

// Apply merges one inbound event. It reports whether the event name is one
// the mirror understands; malformed payloads of known events are absorbed.
func (m *Mirror) Apply(event string, payload json.RawMessage) bool {
	switch event {
	case protocol.EventFullSync, protocol.EventSyncData:
		m.ApplySnapshot(payload)

	case protocol.EventMessage, protocol.EventSendMessage:
		if msg, ok := decodeItem[models.ChatMessage](m, event, payload); ok {
			m.AppendMessage(msg)
		}

	case protocol.EventLanternAdded:
		if l, ok := decodeItem[models.Lantern](m, event, payload); ok {
			m.AppendLantern(l)
		}

	case protocol.EventGallerySync:
		if list, err := protocol.DecodeList[models.MediaItem](payload); err == nil {
			m.ReplaceGallery(list)
		} else {
			m.malformed(event, err)
		}

	case protocol.EventMessageSync:
		if list, err := protocol.DecodeList[models.ChatMessage](payload); err == nil {
			m.ReplaceMessages(list)
		} else {
			m.malformed(event, err)
		}

	case protocol.EventUserPresence:
		if g, ok := decodeItem[models.GuestEntry](m, event, payload); ok {
			m.UpsertGuest(g)
		}

	case protocol.EventBlockUser:
		if ref, ok := decodeItem[protocol.NameRef](m, event, payload); ok {
			m.RemoveGuest(ref.Name)
		}

	case protocol.EventHeartUpdate:
		if n, err := decodeHeart(payload); err == nil {
			m.SetHeartCount(n)
		} else {
			m.malformed(event, err)
		}

	case protocol.EventThemeUpdate, protocol.EventThemeSync:
		if t, ok := decodeItem[models.ThemeConfig](m, event, payload); ok {
			m.SetTheme(t)
		}

	case protocol.EventConfigSync:
		if c, ok := decodeItem[models.GlobalConfig](m, event, payload); ok {
			m.SetConfig(c)
		}

	case protocol.EventPlaylistUpdate:
		if p, ok := decodeItem[models.PlaybackState](m, event, payload); ok {
			m.SetPlayback(p)
		}

	case protocol.EventAnnouncement:
		text, present, err := protocol.DecodeAnnouncementText(payload)
		switch {
		case err != nil:
			m.malformed(event, err)
		case present:
			m.SetAnnouncement(&text)
		default:
			m.SetAnnouncement(nil)
		}

	case protocol.EventLocationsUpdate, protocol.EventLocationsSync:
		if locs, err := decodeLocations(payload); err == nil {
			m.ReplaceLocations(locs)
		} else {
			m.malformed(event, err)
		}

	case protocol.EventTyping:
		if t, ok := decodeItem[protocol.Typing](m, event, payload); ok {
			m.SetTyping(t.User, t.IsTyping)
		}

	default:
		return false
	}
	return true
}

func (m *Mirror) malformed(event string, err error) {
	m.logger.Debug(context.Background(), "ignoring payload", "event", event, "error", err)
}

func decodeItem[T any](m *Mirror, event string, payload json.RawMessage) (T, bool) {
	v, err := protocol.DecodeItem[T](payload)
	if err != nil {
		m.malformed(event, err)
		return v, false
	}
	return v, true
}
