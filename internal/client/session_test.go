package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/inkwell/internal/api"
	"github.com/starford/inkwell/internal/client/cache"
	"github.com/starford/inkwell/internal/client/form"
	"github.com/starford/inkwell/internal/client/syncer"
	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/postservice"
	"github.com/starford/inkwell/internal/testutil"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// backend starts a real API server over a temporary SQLite store.
func backend(t *testing.T) *httptest.Server {
	t.Helper()
	svc := postservice.New(testutil.TestStore(t))
	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", api.NewRouter(svc, false, "", nil)))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func session(t *testing.T, baseURL string, opts ...Option) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.Cache.Dir = t.TempDir()
	s, err := NewSession(cfg, append([]Option{WithLogger(quiet)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSessionCreateUpdateDeleteAgainstServer(t *testing.T) {
	srv := backend(t)
	s := session(t, srv.URL, WithConfirmer(form.ConfirmFunc(func(context.Context, string) bool { return true })))
	ctx := context.Background()

	s.Sync.Refresh(ctx)
	assert.Equal(t, syncer.StatusSynced, s.State.Status())
	assert.Empty(t, s.State.Posts())

	require.NoError(t, s.Form.Submit(ctx, form.Values{Title: "T", Date: "2026-03-01", Content: "C"}))
	require.NoError(t, s.Form.Submit(ctx, form.Values{Title: "U", Date: "2026-03-02", Content: "D"}))
	assert.Equal(t, form.StatusCreated, s.State.Status())

	posts := s.State.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, "U", posts[0].Title, "server orders by date desc")
	for _, p := range posts {
		assert.NotEmpty(t, p.ID, "_id normalised to id")
	}

	target := posts[1]
	require.True(t, s.Form.StartEdit(target.ID))
	v := s.Form.Values()
	v.Content = "C2"
	require.NoError(t, s.Form.Submit(ctx, v))
	assert.Equal(t, form.StatusUpdated, s.State.Status())

	updated, ok := s.State.Find(target.ID)
	require.True(t, ok)
	assert.Equal(t, "C2", updated.Content)
	other, _ := s.State.Find(posts[0].ID)
	assert.Equal(t, posts[0], other)

	confirmed, err := s.Form.RequestDelete(ctx, target.ID)
	require.NoError(t, err)
	assert.True(t, confirmed)
	_, ok = s.State.Find(target.ID)
	assert.False(t, ok)
	assert.Len(t, s.State.Posts(), 1)

	// the file cache mirrors the last successful list
	cached, err := s.Slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.State.Posts(), cached)
}

func TestSessionOfflineFallsBackToCache(t *testing.T) {
	srv := backend(t)
	s := session(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, s.Form.Submit(ctx, form.Values{Title: "A", Date: "2026-01-01", Content: "x"}))
	online := s.State.Posts()
	require.Len(t, online, 1)

	srv.Close()
	s.Sync.Refresh(ctx)
	assert.Equal(t, "offline (using cache)", s.State.Status())
	assert.Equal(t, online, s.State.Posts())

	err := s.Form.Submit(ctx, form.Values{Title: "B", Content: "y"})
	require.Error(t, err)
	assert.Equal(t, form.StatusSaveFailed, s.State.Status())
	assert.Equal(t, "B", s.Form.Values().Title)
}

func TestSessionRendersAfterRefresh(t *testing.T) {
	srv := backend(t)
	var renders int
	s := session(t, srv.URL, WithRenderer(syncer.RendererFunc(func([]models.Post) error {
		renders++
		return nil
	})))
	s.Sync.Refresh(context.Background())
	assert.Equal(t, 1, renders)
}

func TestOpenSlotDrivers(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  CacheConfig
		want any
	}{
		{"memory", CacheConfig{Driver: CacheMemory}, &cache.MemorySlot{}},
		{"file", CacheConfig{Driver: CacheFile, Dir: t.TempDir(), Key: "k"}, &cache.FileSlot{}},
		{"redis", CacheConfig{Driver: CacheRedis, Key: "k", Redis: RedisConfig{Addr: mr.Addr()}}, &cache.RedisSlot{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			slot, closeFn, err := OpenSlot(tc.cfg)
			require.NoError(t, err)
			defer closeFn()
			assert.IsType(t, tc.want, slot)

			require.NoError(t, slot.Save(context.Background(), []models.Post{{ID: "1"}}))
			got, err := slot.Load(context.Background())
			require.NoError(t, err)
			assert.Len(t, got, 1)
		})
	}

	_, _, err := OpenSlot(CacheConfig{Driver: "etcd"})
	assert.Error(t, err)
}

func TestCacheDir(t *testing.T) {
	dir, err := CacheDir(CacheConfig{Dir: "/tmp/x"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", dir)

	dir, err = CacheDir(CacheConfig{})
	if err == nil {
		assert.Equal(t, "inkwell", filepath.Base(dir))
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Cache.Driver = ""
	cfg.Cache.Key = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, CacheFile, cfg.Cache.Driver)
	assert.Equal(t, cache.DefaultKey, cfg.Cache.Key)

	bad := DefaultConfig()
	bad.BaseURL = ""
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Cache.Driver = "etcd"
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Cache.Driver = CacheRedis
	bad.Cache.Redis.Addr = ""
	assert.Error(t, bad.Validate())
}
