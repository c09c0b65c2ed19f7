package mirror

import "github.com/dmitrijs2005/weddingportal/internal/models"

// The methods below are shared by inbound merges and optimistic local writes,
// so both paths follow the same rules.

// AppendMessage appends msg unless its id is empty or already present.
func (m *Mirror) AppendMessage(msg models.ChatMessage) bool {
	if msg.ID == "" {
		return false
	}
	return m.update(func() bool {
		for _, existing := range m.snap.Messages {
			if existing.ID == msg.ID {
				return false
			}
		}
		m.snap.Messages = append(m.snap.Messages, msg)
		return true
	})
}

// AppendLantern appends l unless its id is empty or already present.
func (m *Mirror) AppendLantern(l models.Lantern) bool {
	if l.ID == "" {
		return false
	}
	return m.update(func() bool {
		for _, existing := range m.snap.Lanterns {
			if existing.ID == l.ID {
				return false
			}
		}
		m.snap.Lanterns = append(m.snap.Lanterns, l)
		return true
	})
}

// PrependMedia puts item first unless its id is empty or already present.
func (m *Mirror) PrependMedia(item models.MediaItem) bool {
	if item.ID == "" {
		return false
	}
	return m.update(func() bool {
		for _, existing := range m.snap.Gallery {
			if existing.ID == item.ID {
				return false
			}
		}
		gallery := make([]models.MediaItem, 0, len(m.snap.Gallery)+1)
		m.snap.Gallery = append(append(gallery, item), m.snap.Gallery...)
		return true
	})
}

func (m *Mirror) ReplaceMessages(list []models.ChatMessage) {
	list = models.CloneMessages(list)
	m.update(func() bool {
		m.snap.Messages = list
		return true
	})
}

func (m *Mirror) ReplaceGallery(list []models.MediaItem) {
	list = models.CloneGallery(list)
	m.update(func() bool {
		m.snap.Gallery = list
		return true
	})
}

// UpsertGuest drops any guest named g.Name and appends g.
func (m *Mirror) UpsertGuest(g models.GuestEntry) bool {
	if g.Name == "" {
		return false
	}
	g = models.CloneGuests([]models.GuestEntry{g})[0]
	return m.update(func() bool {
		m.snap.Guests = append(withoutGuest(m.snap.Guests, g.Name), g)
		return true
	})
}

// RemoveGuest drops the named guest and their location.
func (m *Mirror) RemoveGuest(name string) bool {
	if name == "" {
		return false
	}
	return m.update(func() bool {
		before := len(m.snap.Guests)
		m.snap.Guests = withoutGuest(m.snap.Guests, name)
		_, hadLocation := m.snap.Locations[name]
		delete(m.snap.Locations, name)
		return hadLocation || len(m.snap.Guests) != before
	})
}

// MarkRSVP sets rsvp=true on the named guest, if present.
func (m *Mirror) MarkRSVP(name string) (models.GuestEntry, bool) {
	var (
		out   models.GuestEntry
		found bool
	)
	m.update(func() bool {
		for i := range m.snap.Guests {
			if m.snap.Guests[i].Name == name {
				yes := true
				m.snap.Guests[i].RSVP = &yes
				out = models.CloneGuests(m.snap.Guests[i : i+1])[0]
				found = true
				return true
			}
		}
		return false
	})
	return out, found
}

// IncrementHearts bumps the local counter. The next heart_update from the
// server overwrites it.
func (m *Mirror) IncrementHearts() int64 {
	var n int64
	m.update(func() bool {
		m.snap.HeartCount++
		n = m.snap.HeartCount
		return true
	})
	return n
}

func (m *Mirror) SetHeartCount(n int64) {
	m.update(func() bool {
		m.snap.HeartCount = n
		return true
	})
}

func (m *Mirror) ReplaceLocations(locs map[string]models.LocationPoint) {
	locs = models.CloneLocations(locs)
	m.update(func() bool {
		m.snap.Locations = locs
		return true
	})
}

func (m *Mirror) SetLocation(name string, p models.LocationPoint) bool {
	if name == "" {
		return false
	}
	return m.update(func() bool {
		m.snap.Locations[name] = p
		return true
	})
}

func (m *Mirror) SetTheme(t models.ThemeConfig) {
	m.update(func() bool {
		m.snap.Theme = t
		return true
	})
}

func (m *Mirror) SetConfig(c models.GlobalConfig) {
	m.update(func() bool {
		m.snap.Config = c
		return true
	})
}

// MergeConfig applies p over the local config and returns the result.
func (m *Mirror) MergeConfig(p models.ConfigPatch) models.GlobalConfig {
	var out models.GlobalConfig
	m.update(func() bool {
		m.snap.Config = p.Apply(m.snap.Config)
		out = m.snap.Config
		return true
	})
	return out
}

func (m *Mirror) SetPlayback(p models.PlaybackState) {
	m.update(func() bool {
		m.snap.Playback = p
		return true
	})
}

// SetAnnouncement replaces the announcement; nil clears it.
func (m *Mirror) SetAnnouncement(text *string) {
	if text != nil {
		t := *text
		text = &t
	}
	m.update(func() bool {
		m.snap.Announcement = text
		return true
	})
}

// SetTyping adds or removes user from the typing set.
func (m *Mirror) SetTyping(user string, on bool) bool {
	if user == "" {
		return false
	}
	return m.update(func() bool {
		_, was := m.typing[user]
		if on {
			m.typing[user] = struct{}{}
		} else {
			delete(m.typing, user)
		}
		return was != on
	})
}

// MessagesWithout returns the message list minus id, and whether id was found.
func (m *Mirror) MessagesWithout(id string) ([]models.ChatMessage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.ChatMessage, 0, len(m.snap.Messages))
	found := false
	for _, msg := range m.snap.Messages {
		if msg.ID == id {
			found = true
			continue
		}
		out = append(out, msg)
	}
	return out, found
}

// GalleryWithout returns the gallery minus id, and whether id was found.
func (m *Mirror) GalleryWithout(id string) ([]models.MediaItem, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.MediaItem, 0, len(m.snap.Gallery))
	found := false
	for _, item := range m.snap.Gallery {
		if item.ID == id {
			found = true
			continue
		}
		out = append(out, item)
	}
	return out, found
}

// GalleryWithCaption returns the gallery with id's caption replaced.
func (m *Mirror) GalleryWithCaption(id, caption string) ([]models.MediaItem, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := models.CloneGallery(m.snap.Gallery)
	for i := range out {
		if out[i].ID == id {
			out[i].Caption = caption
			return out, true
		}
	}
	return out, false
}

func withoutGuest(guests []models.GuestEntry, name string) []models.GuestEntry {
	out := make([]models.GuestEntry, 0, len(guests))
	for _, g := range guests {
		if g.Name != name {
			out = append(out, g)
		}
	}
	return out
}
