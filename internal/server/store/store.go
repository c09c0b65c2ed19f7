// Package store holds the server's single in-memory shared-state record.
//
// Every operation takes the store mutex for the whole merge and returns copies,
// so callers can encode results without holding the lock and no reader ever
// observes a half-applied update.
package store

import (
	"sync"

	"github.com/dmitrijs2005/weddingportal/internal/common"
	"github.com/dmitrijs2005/weddingportal/internal/models"
)

// Caps bounds the append-only lists. Zero or negative values fall back to the
// package defaults.
type Caps struct {
	Lanterns int
	Messages int
	Gallery  int
}

func (c Caps) withDefaults() Caps {
	if c.Lanterns <= 0 {
		c.Lanterns = common.DefaultLanternCap
	}
	if c.Messages <= 0 {
		c.Messages = common.DefaultMessageCap
	}
	if c.Gallery <= 0 {
		c.Gallery = common.DefaultGalleryCap
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	caps  Caps
	state models.Snapshot
}

func New(caps Caps) *Store {
	return &Store{caps: caps.withDefaults(), state: models.NewSnapshot()}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Join replaces any guest with the same name and appends g.
func (s *Store) Join(g models.GuestEntry) models.GuestEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Guests = append(removeGuest(s.state.Guests, g.Name), g)
	return models.CloneGuests([]models.GuestEntry{g})[0]
}

// RSVP marks the named guest as attending. The second result is false when no
// such guest exists, in which case nothing changes.
func (s *Store) RSVP(name string) (models.GuestEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Guests {
		if s.state.Guests[i].Name == name {
			yes := true
			s.state.Guests[i].RSVP = &yes
			return models.CloneGuests(s.state.Guests[i : i+1])[0], true
		}
	}
	return models.GuestEntry{}, false
}

// Block removes the named guest and their location, returning the remaining
// locations.
func (s *Store) Block(name string) map[string]models.LocationPoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Guests = removeGuest(s.state.Guests, name)
	delete(s.state.Locations, name)
	return models.CloneLocations(s.state.Locations)
}

// Heart increments the counter by one and returns the new total.
func (s *Store) Heart() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.HeartCount++
	return s.state.HeartCount
}

func (s *Store) ReleaseLantern(l models.Lantern) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Lanterns = keepNewest(append(s.state.Lanterns, l), s.caps.Lanterns)
}

func (s *Store) SendMessage(m models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Messages = keepNewest(append(s.state.Messages, m), s.caps.Messages)
}

// ReplaceMessages stores list verbatim.
func (s *Store) ReplaceMessages(list []models.ChatMessage) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Messages = models.CloneMessages(list)
	return models.CloneMessages(s.state.Messages)
}

// UploadMedia prepends item and trims the oldest entries from the tail. It
// returns the whole gallery.
func (s *Store) UploadMedia(item models.MediaItem) []models.MediaItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	gallery := make([]models.MediaItem, 0, len(s.state.Gallery)+1)
	gallery = append(gallery, item)
	gallery = append(gallery, s.state.Gallery...)
	if len(gallery) > s.caps.Gallery {
		gallery = gallery[:s.caps.Gallery]
	}
	s.state.Gallery = gallery
	return models.CloneGallery(gallery)
}

// ReplaceGallery stores list verbatim.
func (s *Store) ReplaceGallery(list []models.MediaItem) []models.MediaItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Gallery = models.CloneGallery(list)
	return models.CloneGallery(s.state.Gallery)
}

func (s *Store) UpdateTheme(t models.ThemeConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Theme = t
}

// UpdateConfig merges the fields present in p and returns the result.
func (s *Store) UpdateConfig(p models.ConfigPatch) models.GlobalConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Config = p.Apply(s.state.Config)
	return s.state.Config
}

func (s *Store) UpdatePlayback(p models.PlaybackState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Playback = p
}

func (s *Store) Announce(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Announcement = &text
}

// UpdateLocation upserts the point for sender and returns all locations.
func (s *Store) UpdateLocation(sender string, p models.LocationPoint) map[string]models.LocationPoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Locations[sender] = p
	return models.CloneLocations(s.state.Locations)
}

func removeGuest(guests []models.GuestEntry, name string) []models.GuestEntry {
	out := make([]models.GuestEntry, 0, len(guests))
	for _, g := range guests {
		if g.Name != name {
			out = append(out, g)
		}
	}
	return out
}

// keepNewest drops items from the front until at most limit remain. The
// result never aliases the input's backing array.
func keepNewest[T any](list []T, limit int) []T {
	if len(list) > limit {
		list = list[len(list)-limit:]
	}
	return append(make([]T, 0, len(list)), list...)
}
