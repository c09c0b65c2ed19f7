package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/weddingportal/internal/client/mirror"
	"github.com/dmitrijs2005/weddingportal/internal/logging"
	"github.com/dmitrijs2005/weddingportal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() models.Snapshot {
	s := models.NewSnapshot()
	s.Messages = []models.ChatMessage{{ID: "m1", SenderName: "Ann", Content: "hi", Type: models.MessageText}}
	s.Gallery = []models.MediaItem{{ID: "g1", URL: "https://x/1.jpg", Type: models.MediaImage, Sender: "Ann"}}
	s.HeartCount = 7
	s.Config = models.GlobalConfig{CoupleName: "A & B", Date: "2026-06-01"}
	s.Theme = models.ThemeConfig{Gradient: "rose", Effect: "petals"}
	s.Guests = []models.GuestEntry{{Name: "Ann", Role: models.RoleGuest}}
	return s
}

func TestStore_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	st := NewStore(setupTestDB(t), logging.NewNop())

	require.NoError(t, st.Save(ctx, sampleSnapshot()))

	raw, err := st.Load(ctx)
	require.NoError(t, err)

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Len(t, got, 5)
	assert.NotContains(t, got, models.KeyGuests)
	assert.JSONEq(t, `7`, string(got[models.KeyHeartCount]))
}

func TestStore_LoadIntoMirror(t *testing.T) {
	ctx := context.Background()
	st := NewStore(setupTestDB(t), logging.NewNop())
	require.NoError(t, st.Save(ctx, sampleSnapshot()))

	raw, err := st.Load(ctx)
	require.NoError(t, err)

	m := mirror.New(logging.NewNop())
	m.ApplySnapshot(raw)

	s := m.State()
	assert.Equal(t, int64(7), s.HeartCount)
	assert.Equal(t, "A & B", s.Config.CoupleName)
	assert.Equal(t, "petals", s.Theme.Effect)
	require.Len(t, s.Messages, 1)
	assert.Equal(t, "m1", s.Messages[0].ID)
	require.Len(t, s.Gallery, 1)
	assert.Empty(t, s.Guests)
}

func TestStore_LoadEmptyCache(t *testing.T) {
	st := NewStore(setupTestDB(t), logging.NewNop())

	raw, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestStore_LoadSkipsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	require.NoError(t, repo.Set(ctx, models.KeyMessages, []byte(`{not json`)))
	require.NoError(t, repo.Set(ctx, models.KeyGallery, []byte(`"a string"`)))
	require.NoError(t, repo.Set(ctx, models.KeyHeartCount, []byte(`12`)))
	require.NoError(t, repo.Set(ctx, "unrelated", []byte(`1`)))

	raw, err := NewStore(db, logging.NewNop()).Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"heartCount":12}`, string(raw))
}

func TestStore_SaveRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("disk full")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO metadata").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO metadata").WillReturnError(boom)
	mock.ExpectRollback()

	err = NewStore(db, logging.NewNop()).Save(context.Background(), sampleSnapshot())
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveBeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("locked"))

	err = NewStore(db, logging.NewNop()).Save(context.Background(), sampleSnapshot())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LoadQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT key, value FROM metadata").WillReturnError(errors.New("io"))

	_, err = NewStore(db, logging.NewNop()).Load(context.Background())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
