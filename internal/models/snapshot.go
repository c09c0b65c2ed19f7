package models

// Snapshot JSON keys.
const (
	KeyMessages     = "messages"
	KeyGallery      = "gallery"
	KeyGuests       = "guests"
	KeyHeartCount   = "heartCount"
	KeyLanterns     = "lanterns"
	KeyLocations    = "locations"
	KeyTheme        = "theme"
	KeyConfig       = "config"
	KeyPlayback     = "playback"
	KeyAnnouncement = "announcement"
)

// Snapshot is the complete shared-state record.
type Snapshot struct {
	Messages     []ChatMessage            `json:"messages"`
	Gallery      []MediaItem              `json:"gallery"`
	Guests       []GuestEntry             `json:"guests"`
	HeartCount   int64                    `json:"heartCount"`
	Lanterns     []Lantern                `json:"lanterns"`
	Locations    map[string]LocationPoint `json:"locations"`
	Theme        ThemeConfig              `json:"theme"`
	Config       GlobalConfig             `json:"config"`
	Playback     PlaybackState            `json:"playback"`
	Announcement *string                  `json:"announcement"`
}

// NewSnapshot returns an empty snapshot whose collections are non-nil, so it
// encodes as [] and {} rather than null.
func NewSnapshot() Snapshot {
	return Snapshot{
		Messages:  []ChatMessage{},
		Gallery:   []MediaItem{},
		Guests:    []GuestEntry{},
		Lanterns:  []Lantern{},
		Locations: map[string]LocationPoint{},
	}
}

// Clone returns a deep copy that shares no mutable memory with s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Messages = CloneMessages(s.Messages)
	out.Gallery = CloneGallery(s.Gallery)
	out.Guests = CloneGuests(s.Guests)
	out.Lanterns = CloneLanterns(s.Lanterns)
	out.Locations = CloneLocations(s.Locations)
	if s.Announcement != nil {
		a := *s.Announcement
		out.Announcement = &a
	}
	return out
}

func CloneMessages(in []ChatMessage) []ChatMessage {
	return append(make([]ChatMessage, 0, len(in)), in...)
}

func CloneGallery(in []MediaItem) []MediaItem {
	return append(make([]MediaItem, 0, len(in)), in...)
}

func CloneGuests(in []GuestEntry) []GuestEntry {
	out := make([]GuestEntry, 0, len(in))
	for _, g := range in {
		if g.RSVP != nil {
			v := *g.RSVP
			g.RSVP = &v
		}
		out = append(out, g)
	}
	return out
}

func CloneLanterns(in []Lantern) []Lantern {
	out := make([]Lantern, 0, len(in))
	for _, l := range in {
		l.XValues = append([]float64(nil), l.XValues...)
		out = append(out, l)
	}
	return out
}

func CloneLocations(in map[string]LocationPoint) map[string]LocationPoint {
	out := make(map[string]LocationPoint, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
