// Package relay maps inbound transport events onto the snapshot store and
// fans the resulting broadcasts out to connected clients.
//
// Nothing is ever rejected: frames that fail to decode, or that lack the key
// field of their entity, are logged at debug level and dropped.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/common"
	"github.com/dmitrijs2005/weddingportal/internal/logging"
	"github.com/dmitrijs2005/weddingportal/internal/models"
	"github.com/dmitrijs2005/weddingportal/internal/protocol"
	"github.com/dmitrijs2005/weddingportal/internal/server/metrics"
	"github.com/dmitrijs2005/weddingportal/internal/server/store"
	"github.com/dustin/go-humanize"
)

// Broadcaster delivers encoded frames to connections.
type Broadcaster interface {
	Broadcast(frame []byte)
	BroadcastExcept(connID string, frame []byte)
	Send(connID string, frame []byte)
}

type handlerFunc func(ctx context.Context, connID string, payload json.RawMessage) error

type Relay struct {
	store   *store.Store
	out     Broadcaster
	metrics *metrics.Metrics
	logger  logging.Logger

	handlers map[string]handlerFunc

	// applyMu orders store mutations together with the frames they produce,
	// so every connection sees broadcasts in store order.
	applyMu sync.Mutex

	mu    sync.Mutex
	names map[string]string // connection id -> joined guest name
}

func New(s *store.Store, out Broadcaster, m *metrics.Metrics, logger logging.Logger) *Relay {
	r := &Relay{
		store:   s,
		out:     out,
		metrics: m,
		logger:  logger.With("module", "relay"),
		names:   make(map[string]string),
	}

	r.handlers = map[string]handlerFunc{
		protocol.EventJoinUser:         r.join,
		protocol.EventUserJoin:         r.join,
		protocol.EventSendRSVP:         r.rsvp,
		protocol.EventBlockUser:        r.block,
		protocol.EventAddHeart:         r.heart,
		protocol.EventSendHeart:        r.heart,
		protocol.EventReleaseLantern:   r.lantern,
		protocol.EventSendLantern:      r.lantern,
		protocol.EventSendMessage:      r.message,
		protocol.EventMessage:          r.message,
		protocol.EventMessageSync:      r.messageSync,
		protocol.EventUploadMedia:      r.uploadMedia,
		protocol.EventGalleryUpload:    r.uploadMedia,
		protocol.EventGallerySync:      r.gallerySync,
		protocol.EventConfigUpdate:     r.config,
		protocol.EventThemeUpdate:      r.theme,
		protocol.EventPlaylistUpdate:   r.playback,
		protocol.EventSendAnnouncement: r.announce,
		protocol.EventAnnouncement:     r.announce,
		protocol.EventTyping:           r.typing,
		protocol.EventUpdateLocation:   r.location,
		protocol.EventRequestSync:      r.requestSync,
	}

	return r
}

// OnConnect sends the current snapshot to the new connection.
func (r *Relay) OnConnect(ctx context.Context, connID string) {
	r.logger.Info(ctx, "client connected", "conn", connID)

	r.applyMu.Lock()
	defer r.applyMu.Unlock()
	r.sendSnapshot(ctx, connID)
}

// OnMessage applies one inbound frame.
func (r *Relay) OnMessage(ctx context.Context, connID string, data []byte) {
	start := time.Now()

	env, err := protocol.Decode(data)
	if err != nil {
		r.logger.Debug(ctx, "dropping frame", "conn", connID, "error", err)
		r.metrics.Malformed("")
		return
	}
	defer func() { r.metrics.Event(env.Event, time.Since(start)) }()

	h, ok := r.handlers[env.Event]
	if !ok {
		r.logger.Debug(ctx, "dropping frame", "conn", connID, "event", env.Event, "error", common.ErrUnknownEvent)
		return
	}

	r.applyMu.Lock()
	err = h(ctx, connID, env.Payload)
	r.applyMu.Unlock()

	if err != nil {
		if errors.Is(err, common.ErrMalformedPayload) {
			r.metrics.Malformed(env.Event)
		}
		r.logger.Debug(ctx, "event ignored", "conn", connID, "event", env.Event, "error", err)
	}
}

// OnDisconnect forgets the connection's joined name. The guest entry stays in
// the store.
func (r *Relay) OnDisconnect(ctx context.Context, connID string) {
	r.mu.Lock()
	name := r.names[connID]
	delete(r.names, connID)
	r.mu.Unlock()

	r.logger.Info(ctx, "client disconnected", "conn", connID, "name", name)
}

func (r *Relay) joinedName(connID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.names[connID]
}

func (r *Relay) emit(ctx context.Context, event string, payload any) {
	frame, err := protocol.Encode(event, payload)
	if err != nil {
		r.logger.Error(ctx, "encode broadcast", "event", event, "error", err)
		return
	}
	r.metrics.Broadcast(event)
	r.out.Broadcast(frame)
}

func (r *Relay) sendSnapshot(ctx context.Context, connID string) {
	frame, err := protocol.Encode(protocol.EventFullSync, r.store.Snapshot())
	if err != nil {
		r.logger.Error(ctx, "encode snapshot", "error", err)
		return
	}
	r.out.Send(connID, frame)
}

func missing(field string) error {
	return fmt.Errorf("%w: missing %s", common.ErrMalformedPayload, field)
}

func (r *Relay) join(ctx context.Context, connID string, payload json.RawMessage) error {
	g, err := protocol.DecodeItem[models.GuestEntry](payload)
	if err != nil {
		return err
	}
	if g.Name == "" {
		return missing("name")
	}

	g = r.store.Join(g)

	r.mu.Lock()
	r.names[connID] = g.Name
	r.mu.Unlock()

	r.emit(ctx, protocol.EventUserPresence, protocol.Wrapped{Payload: g})
	return nil
}

func (r *Relay) rsvp(ctx context.Context, _ string, payload json.RawMessage) error {
	ref, err := protocol.DecodeItem[protocol.NameRef](payload)
	if err != nil {
		return err
	}
	g, ok := r.store.RSVP(ref.Name)
	if !ok {
		return common.ErrNotFound
	}
	r.emit(ctx, protocol.EventUserPresence, protocol.Wrapped{Payload: g})
	return nil
}

func (r *Relay) block(ctx context.Context, _ string, payload json.RawMessage) error {
	ref, err := protocol.DecodeItem[protocol.NameRef](payload)
	if err != nil {
		return err
	}
	if ref.Name == "" {
		return missing("name")
	}
	locs := r.store.Block(ref.Name)
	r.emit(ctx, protocol.EventBlockUser, ref)
	r.emit(ctx, protocol.EventLocationsUpdate, locs)
	return nil
}

func (r *Relay) heart(ctx context.Context, _ string, _ json.RawMessage) error {
	r.emit(ctx, protocol.EventHeartUpdate, protocol.HeartCount{Count: r.store.Heart()})
	return nil
}

func (r *Relay) lantern(ctx context.Context, _ string, payload json.RawMessage) error {
	l, err := protocol.DecodeItem[models.Lantern](payload)
	if err != nil {
		return err
	}
	if l.ID == "" {
		return missing("id")
	}
	r.store.ReleaseLantern(l)
	r.emit(ctx, protocol.EventLanternAdded, protocol.Wrapped{Payload: l})
	return nil
}

func (r *Relay) message(ctx context.Context, _ string, payload json.RawMessage) error {
	m, err := protocol.DecodeItem[models.ChatMessage](payload)
	if err != nil {
		return err
	}
	if m.ID == "" {
		return missing("id")
	}
	r.store.SendMessage(m)
	r.emit(ctx, protocol.EventMessage, protocol.Wrapped{Payload: m})
	return nil
}

func (r *Relay) messageSync(ctx context.Context, _ string, payload json.RawMessage) error {
	list, err := protocol.DecodeList[models.ChatMessage](payload)
	if err != nil {
		return err
	}
	r.emit(ctx, protocol.EventMessageSync, protocol.Wrapped{Payload: r.store.ReplaceMessages(list)})
	return nil
}

func (r *Relay) uploadMedia(ctx context.Context, connID string, payload json.RawMessage) error {
	item, err := protocol.DecodeItem[models.MediaItem](payload)
	if err != nil {
		return err
	}
	if item.ID == "" {
		return missing("id")
	}
	gallery := r.store.UploadMedia(item)
	r.logger.Info(ctx, "media uploaded",
		"conn", connID, "id", item.ID, "type", item.Type, "size", humanize.Bytes(uint64(len(item.URL))))
	r.emit(ctx, protocol.EventGallerySync, protocol.Wrapped{Payload: gallery})
	return nil
}

func (r *Relay) gallerySync(ctx context.Context, _ string, payload json.RawMessage) error {
	list, err := protocol.DecodeList[models.MediaItem](payload)
	if err != nil {
		return err
	}
	r.emit(ctx, protocol.EventGallerySync, protocol.Wrapped{Payload: r.store.ReplaceGallery(list)})
	return nil
}

func (r *Relay) config(ctx context.Context, _ string, payload json.RawMessage) error {
	p, err := protocol.DecodeItem[models.ConfigPatch](payload)
	if err != nil {
		return err
	}
	r.emit(ctx, protocol.EventConfigSync, protocol.Wrapped{Payload: r.store.UpdateConfig(p)})
	return nil
}

func (r *Relay) theme(ctx context.Context, _ string, payload json.RawMessage) error {
	t, err := protocol.DecodeItem[models.ThemeConfig](payload)
	if err != nil {
		return err
	}
	r.store.UpdateTheme(t)
	r.emit(ctx, protocol.EventThemeUpdate, t)
	return nil
}

func (r *Relay) playback(ctx context.Context, _ string, payload json.RawMessage) error {
	p, err := protocol.DecodeItem[models.PlaybackState](payload)
	if err != nil {
		return err
	}
	r.store.UpdatePlayback(p)
	r.emit(ctx, protocol.EventPlaylistUpdate, p)
	return nil
}

func (r *Relay) announce(ctx context.Context, _ string, payload json.RawMessage) error {
	text, ok, err := protocol.DecodeAnnouncementText(payload)
	if err != nil {
		return err
	}
	if !ok {
		return missing("message")
	}
	r.store.Announce(text)
	r.emit(ctx, protocol.EventAnnouncement, protocol.Announcement{Message: &text})
	return nil
}

func (r *Relay) typing(ctx context.Context, connID string, payload json.RawMessage) error {
	t, err := protocol.DecodeItem[protocol.Typing](payload)
	if err != nil {
		return err
	}
	if t.User == "" {
		return missing("user")
	}
	frame, err := protocol.Encode(protocol.EventTyping, t)
	if err != nil {
		return err
	}
	r.metrics.Broadcast(protocol.EventTyping)
	r.out.BroadcastExcept(connID, frame)
	return nil
}

func (r *Relay) location(ctx context.Context, connID string, payload json.RawMessage) error {
	u, err := protocol.DecodeItem[protocol.LocationUpdate](payload)
	if err != nil {
		return err
	}
	sender := u.Who()
	if sender == "" {
		sender = r.joinedName(connID)
	}
	if sender == "" {
		return common.ErrNotJoined
	}
	locs := r.store.UpdateLocation(sender, models.LocationPoint{Lat: u.Lat, Lng: u.Lng, Timestamp: u.Timestamp})
	r.emit(ctx, protocol.EventLocationsUpdate, locs)
	return nil
}

func (r *Relay) requestSync(ctx context.Context, connID string, _ json.RawMessage) error {
	r.sendSnapshot(ctx, connID)
	return nil
}
