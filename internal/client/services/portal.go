// Package services turns user intents into optimistic mirror updates plus
// outbound events, and feeds inbound events from the transport back into the
// mirror.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/weddingportal/internal/client/mirror"
	"github.com/dmitrijs2005/weddingportal/internal/client/transport"
	"github.com/dmitrijs2005/weddingportal/internal/logging"
	"github.com/dmitrijs2005/weddingportal/internal/models"
	"github.com/dmitrijs2005/weddingportal/internal/protocol"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Emitter sends one event to the server.
type Emitter interface {
	Emit(event string, payload any) error
}

// Cache is the warm-start store.
type Cache interface {
	Save(ctx context.Context, snap models.Snapshot) error
	Load(ctx context.Context) (json.RawMessage, error)
}

type PortalService interface {
	transport.Handler

	State() mirror.State
	Me() (models.GuestEntry, bool)

	Join(ctx context.Context, name string, role models.Role) error
	RSVP(ctx context.Context) error
	Block(ctx context.Context, name string) error
	SendMessage(ctx context.Context, text string) error
	SendSticker(ctx context.Context, key string) error
	DeleteMessage(ctx context.Context, id string) error
	AddHeart(ctx context.Context) error
	ReleaseLantern(ctx context.Context, text string) error
	UploadMedia(ctx context.Context, url, caption string) error
	EditCaption(ctx context.Context, id, caption string) error
	DeleteMedia(ctx context.Context, id string) error
	UpdateConfig(ctx context.Context, patch models.ConfigPatch) error
	UpdateTheme(ctx context.Context, theme models.ThemeConfig) error
	UpdatePlayback(ctx context.Context, p models.PlaybackState) error
	Announce(ctx context.Context, text string) error
	SetTyping(ctx context.Context, on bool) error
	UpdateLocation(ctx context.Context, lat, lng float64) error
	RequestSync(ctx context.Context) error

	LoadCache(ctx context.Context) error
	SaveCache(ctx context.Context) error
}

type portalService struct {
	mirror *mirror.Mirror
	out    Emitter
	cache  Cache
	typing *rate.Limiter
	logger logging.Logger

	now   func() time.Time
	newID func(time.Time) string

	mu sync.RWMutex
	me *models.GuestEntry
}

// NewPortalService wires m to out. cache may be nil. Typing "on" events are
// sent at most once per typingInterval.
func NewPortalService(m *mirror.Mirror, out Emitter, cache Cache, typingInterval time.Duration, logger logging.Logger) PortalService {
	return &portalService{
		mirror: m,
		out:    out,
		cache:  cache,
		typing: rate.NewLimiter(rate.Every(typingInterval), 1),
		logger: logger.With("module", "portal"),
		now:    time.Now,
		newID:  newID,
	}
}

// newID returns unix millis plus a short random suffix.
func newID(t time.Time) string {
	return fmt.Sprintf("%d-%s", t.UnixMilli(), uuid.NewString()[:8])
}

func (s *portalService) State() mirror.State {
	return s.mirror.State()
}

func (s *portalService) Me() (models.GuestEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.me == nil {
		return models.GuestEntry{}, false
	}
	return *s.me, true
}

func (s *portalService) OnConnect(ctx context.Context) {
	s.mirror.SetConnected(true)

	if err := s.emit(protocol.EventRequestSync, nil); err != nil {
		s.logger.Warn(ctx, "request sync failed", "error", err)
	}

	// The server forgets who a connection is when it drops.
	if me, ok := s.Me(); ok {
		if err := s.emit(protocol.EventJoinUser, me); err != nil {
			s.logger.Warn(ctx, "rejoin failed", "error", err)
		}
	}
}

func (s *portalService) OnEvent(ctx context.Context, env protocol.Envelope) {
	s.mirror.Apply(env.Event, env.Payload)

	switch env.Event {
	case protocol.EventFullSync, protocol.EventSyncData:
		if err := s.SaveCache(ctx); err != nil {
			s.logger.Warn(ctx, "cache save failed", "error", err)
		}
	}
}

func (s *portalService) OnDisconnect(ctx context.Context, err error) {
	s.mirror.SetConnected(false)
	if err != nil {
		s.logger.Debug(ctx, "disconnected", "error", err)
	}
}

func (s *portalService) LoadCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cache: %w", err)
	}
	s.mirror.ApplySnapshot(raw)
	return nil
}

func (s *portalService) SaveCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Save(ctx, s.mirror.State().Snapshot()); err != nil {
		return fmt.Errorf("save cache: %w", err)
	}
	return nil
}

func (s *portalService) emit(event string, payload any) error {
	if err := s.out.Emit(event, payload); err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	return nil
}

// errNoName is returned for intents that need a non-empty name argument.
var errNoName = errors.New("name is required")
