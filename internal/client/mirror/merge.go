package mirror

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/weddingportal/internal/common"
	"github.com/dmitrijs2005/weddingportal/internal/models"
	"github.com/dmitrijs2005/weddingportal/internal/protocol"
)

// ApplySnapshot merges a full or partial snapshot. See the package doc for
// the field rules.
func (m *Mirror) ApplySnapshot(raw json.RawMessage) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(protocol.Unwrap(raw), &fields); err != nil || fields == nil {
		m.malformed(protocol.EventFullSync, fmt.Errorf("%w: snapshot is not an object", common.ErrMalformedPayload))
		return
	}

	var (
		messages     []models.ChatMessage
		gallery      []models.MediaItem
		guests       []models.GuestEntry
		lanterns     []models.Lantern
		theme        models.ThemeConfig
		config       models.GlobalConfig
		playback     models.PlaybackState
		announcement string
		hearts       int64
		locations    map[string]models.LocationPoint
	)

	hasMessages := snapshotField(fields, models.KeyMessages, &messages)
	hasGallery := snapshotField(fields, models.KeyGallery, &gallery)
	hasGuests := snapshotField(fields, models.KeyGuests, &guests)
	hasLanterns := snapshotField(fields, models.KeyLanterns, &lanterns)
	hasTheme := snapshotField(fields, models.KeyTheme, &theme)
	hasConfig := snapshotField(fields, models.KeyConfig, &config)
	hasPlayback := snapshotField(fields, models.KeyPlayback, &playback)
	hasAnnouncement := snapshotField(fields, models.KeyAnnouncement, &announcement)

	hasHearts := false
	if raw, ok := present(fields, models.KeyHeartCount); ok {
		if n, err := decodeHeart(raw); err == nil {
			hearts, hasHearts = n, true
		}
	}

	hasLocations := false
	if raw, ok := present(fields, models.KeyLocations); ok {
		if locs, err := decodeLocations(raw); err == nil {
			locations, hasLocations = locs, true
		}
	}

	m.update(func() bool {
		if hasMessages {
			m.snap.Messages = messages
		}
		if hasGallery {
			m.snap.Gallery = gallery
		}
		if hasGuests {
			m.snap.Guests = guests
		}
		if hasLanterns {
			m.snap.Lanterns = lanterns
		}
		if hasTheme {
			m.snap.Theme = theme
		}
		if hasConfig {
			m.snap.Config = config
		}
		if hasPlayback {
			m.snap.Playback = playback
		}
		if hasAnnouncement {
			m.snap.Announcement = &announcement
		}
		if hasHearts {
			m.snap.HeartCount = hearts
		}
		if hasLocations {
			m.snap.Locations = locations
		}
		return true
	})
}

func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || protocol.IsNull(raw) {
		return nil, false
	}
	return raw, true
}

// snapshotField decodes fields[key] into dst when it is present, not null and
// of the right type. dst is untouched otherwise.
func snapshotField[T any](fields map[string]json.RawMessage, key string, dst *T) bool {
	raw, ok := present(fields, key)
	if !ok {
		return false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	*dst = v
	return true
}

// decodeHeart accepts {"count": n} or a bare number.
func decodeHeart(raw json.RawMessage) (int64, error) {
	inner := protocol.Unwrap(raw)

	var n int64
	if err := json.Unmarshal(inner, &n); err == nil {
		return n, nil
	}

	var hc struct {
		Count *int64 `json:"count"`
	}
	if err := json.Unmarshal(inner, &hc); err != nil || hc.Count == nil {
		return 0, fmt.Errorf("%w: heart count", common.ErrMalformedPayload)
	}
	return *hc.Count, nil
}

// decodeLocations accepts a name-keyed object or an array of location
// reports. Array entries without a name are skipped.
func decodeLocations(raw json.RawMessage) (map[string]models.LocationPoint, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty locations", common.ErrMalformedPayload)
	}

	switch trimmed[0] {
	case '{':
		locs := map[string]models.LocationPoint{}
		if err := json.Unmarshal(trimmed, &locs); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrMalformedPayload, err)
		}
		return locs, nil
	case '[':
		var list []protocol.LocationUpdate
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrMalformedPayload, err)
		}
		locs := make(map[string]models.LocationPoint, len(list))
		for _, u := range list {
			if who := u.Who(); who != "" {
				locs[who] = models.LocationPoint{Lat: u.Lat, Lng: u.Lng, Timestamp: u.Timestamp}
			}
		}
		return locs, nil
	default:
		return nil, fmt.Errorf("%w: locations must be an object or array", common.ErrMalformedPayload)
	}
}
