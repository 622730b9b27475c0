package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vidshare/internal/config"
	"github.com/mmcdole/vidshare/internal/history"
	"github.com/mmcdole/vidshare/internal/log"
	"github.com/mmcdole/vidshare/internal/playback"
	"github.com/mmcdole/vidshare/internal/player"
	"github.com/mmcdole/vidshare/internal/store"
)

func testApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Dir = t.TempDir()
	cfg.UI.RelativeTimes = true

	logger := log.NullLogger()
	handle := openStore(cfg, logger)
	t.Cleanup(func() { handle.Close() })

	cache := history.NewCache(handle, history.WithLogger(logger))
	var out bytes.Buffer
	return &app{
		cfg:      cfg,
		logger:   logger,
		history:  cache,
		playback: playback.NewService(player.NewLauncher("vidshare-no-such-player", nil, logger), cache, cfg.Player.WatchURL, logger),
		out:      &out,
	}, &out
}

func TestDispatchRecordListRemove(t *testing.T) {
	ctx := context.Background()
	a, out := testApp(t)

	require.NoError(t, a.dispatch(ctx, []string{"record", "-id", "v1", "-title", "Cat piano", "-sharer", "alice"}))
	require.NoError(t, a.dispatch(ctx, []string{"record", "-id", "v2", "-title", "Dog surfing"}))

	require.NoError(t, a.dispatch(ctx, []string{"list"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Dog surfing")
	assert.Contains(t, lines[1], "Cat piano  @alice")

	out.Reset()
	require.NoError(t, a.dispatch(ctx, []string{"remove", "v2"}))
	require.NoError(t, a.dispatch(ctx, []string{"remove", "v2"}))
	require.NoError(t, a.dispatch(ctx, []string{"list"}))
	assert.NotContains(t, out.String(), "Dog surfing")
	assert.Contains(t, out.String(), "Cat piano")
}

func TestDispatchFindAndClear(t *testing.T) {
	ctx := context.Background()
	a, out := testApp(t)

	require.NoError(t, a.dispatch(ctx, []string{"record", "-id", "v1", "-title", "Cat piano"}))
	require.NoError(t, a.dispatch(ctx, []string{"record", "-id", "v2", "-title", "Dog surfing"}))

	require.NoError(t, a.dispatch(ctx, []string{"find", "cat"}))
	assert.Contains(t, out.String(), "Cat piano")
	assert.NotContains(t, out.String(), "Dog surfing")

	out.Reset()
	require.NoError(t, a.dispatch(ctx, []string{"clear"}))
	assert.Equal(t, "History cleared\n", out.String())
	assert.Empty(t, a.history.ListViewed(ctx))
}

func TestDispatchErrors(t *testing.T) {
	ctx := context.Background()
	a, _ := testApp(t)

	assert.Error(t, a.dispatch(ctx, []string{"record"}))
	assert.Error(t, a.dispatch(ctx, []string{"record", "-id", "v1", "-created", "yesterday"}))
	assert.Error(t, a.dispatch(ctx, []string{"remove"}))
	assert.Error(t, a.dispatch(ctx, []string{"find"}))
	assert.ErrorContains(t, a.dispatch(ctx, []string{"open", "missing"}), "not in history")
	assert.ErrorContains(t, a.dispatch(ctx, []string{"bogus"}), "unknown command")
}

func TestOpenStoreFallsBackToMemory(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Dir = t.TempDir()

	first := openStore(cfg, log.NullLogger())
	defer first.Close()
	_, isBolt := first.(*store.BoltStore)
	assert.True(t, isBolt)

	// The file lock is held, so a second handle degrades to memory.
	cfg.Storage.OpenTimeout = 50 * time.Millisecond
	second := openStore(cfg, log.NullLogger())
	defer second.Close()
	_, isMemory := second.(*store.MemoryStore)
	assert.True(t, isMemory)

	cfg.Storage.MemoryOnly = true
	_, isMemory = openStore(cfg, log.NullLogger()).(*store.MemoryStore)
	assert.True(t, isMemory)
}
