package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_LevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(BackendSlog, "debug", &buf)
	ctx := context.Background()

	log.Debug(ctx, "ignoring payload", "event", "typing")
	log.Info(ctx, "client connected", "conn", "c-1")
	log.Warn(ctx, "skipping cache entry", "key", "gallery")
	log.Error(ctx, "encode broadcast", "event", "message")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)

	want := []struct{ level, msg, key, val string }{
		{"DEBUG", "ignoring payload", "event", "typing"},
		{"INFO", "client connected", "conn", "c-1"},
		{"WARN", "skipping cache entry", "key", "gallery"},
		{"ERROR", "encode broadcast", "event", "message"},
	}
	for i, w := range want {
		assert.Equal(t, w.level, lines[i]["level"])
		assert.Equal(t, w.msg, lines[i]["msg"])
		assert.Equal(t, w.val, lines[i][w.key])
	}
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(BackendSlog, "warn", &buf)
	ctx := context.Background()

	log.Debug(ctx, "hidden")
	log.Info(ctx, "hidden")
	log.Warn(ctx, "shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
}

func TestSlogLogger_WithKeepsParentClean(t *testing.T) {
	var buf bytes.Buffer
	root := New(BackendSlog, "info", &buf)
	child := root.With("module", "relay")

	child.Info(context.Background(), "from child")
	root.Info(context.Background(), "from root")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "relay", lines[0]["module"])
	assert.NotContains(t, lines[1], "module")
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.With("module", "x").Error(context.TODO(), "dropped", "k", "v")
	})
}
