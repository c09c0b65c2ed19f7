package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/weddingportal/internal/dbx"
	"github.com/dmitrijs2005/weddingportal/internal/logging"
	"github.com/dmitrijs2005/weddingportal/internal/models"
)

// Cached snapshot fields. Everything else is only trusted from the server.
var cachedKeys = []string{
	models.KeyMessages,
	models.KeyGallery,
	models.KeyHeartCount,
	models.KeyConfig,
	models.KeyTheme,
}

// validators reject cache entries that would not decode into their field.
var validators = map[string]func([]byte) error{
	models.KeyMessages:   validate[[]models.ChatMessage],
	models.KeyGallery:    validate[[]models.MediaItem],
	models.KeyHeartCount: validate[int64],
	models.KeyConfig:     validate[models.GlobalConfig],
	models.KeyTheme:      validate[models.ThemeConfig],
}

func validate[T any](b []byte) error {
	var v T
	return json.Unmarshal(b, &v)
}

type Store struct {
	db      *sql.DB
	newRepo func(dbx.DBTX) Repository
	logger  logging.Logger
}

func NewStore(db *sql.DB, logger logging.Logger) *Store {
	return &Store{
		db:      db,
		newRepo: func(tx dbx.DBTX) Repository { return NewSQLiteRepository(tx) },
		logger:  logger.With("module", "cache"),
	}
}

// Save writes the cached fields of snap in one transaction.
func (s *Store) Save(ctx context.Context, snap models.Snapshot) error {
	values := map[string]any{
		models.KeyMessages:   snap.Messages,
		models.KeyGallery:    snap.Gallery,
		models.KeyHeartCount: snap.HeartCount,
		models.KeyConfig:     snap.Config,
		models.KeyTheme:      snap.Theme,
	}

	encoded := make(map[string][]byte, len(values))
	for _, key := range cachedKeys {
		b, err := json.Marshal(values[key])
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		encoded[key] = b
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)
		for _, key := range cachedKeys {
			if err := repo.Set(ctx, key, encoded[key]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load returns the cached fields as a partial snapshot object suitable for
// mirror.ApplySnapshot. Entries that do not decode are logged and left out.
func (s *Store) Load(ctx context.Context) (json.RawMessage, error) {
	stored, err := s.newRepo(s.db).List(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]json.RawMessage, len(cachedKeys))
	for _, key := range cachedKeys {
		value, ok := stored[key]
		if !ok {
			continue
		}
		if err := validators[key](value); err != nil {
			s.logger.Warn(ctx, "skipping corrupt cache entry", "key", key, "error", err)
			continue
		}
		out[key] = json.RawMessage(value)
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode cached snapshot: %w", err)
	}
	return b, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
