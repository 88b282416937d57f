package scripthost

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-scripthost/host"
)

// recordingHandler is a slog.Handler that captures log messages for
// assertions.
type recordingHandler struct {
	mu       sync.Mutex
	messages []string
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, r.Message)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) Messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.messages))
	copy(out, h.messages)
	return out
}

// stubEngine records the filenames dispatched to it.
type stubEngine struct {
	ext    string
	loaded []string
	err    error
}

func (s *stubEngine) FileExt() string { return s.ext }

func (s *stubEngine) Load(_ context.Context, _ host.Client, filename string) error {
	s.loaded = append(s.loaded, filename)
	return s.err
}

func TestDispatchByExtension(t *testing.T) {
	t.Parallel()

	star := &stubEngine{ext: "star"}
	wasm := &stubEngine{ext: "wasm"}
	h := New(star, wasm)

	client := host.NewClient("s", host.NewRegistry())
	require.NoError(t, h.Load(context.Background(), client, "/x/a.star"))
	require.NoError(t, h.Load(context.Background(), client, "/x/b.wasm"))
	require.NoError(t, h.Load(context.Background(), client, "/x/c.star"))

	assert.Equal(t, []string{"/x/a.star", "/x/c.star"}, star.loaded)
	assert.Equal(t, []string{"/x/b.wasm"}, wasm.loaded)
}

func TestDispatchUnknownExtension(t *testing.T) {
	t.Parallel()

	h := New(&stubEngine{ext: "star"})
	client := host.NewClient("s", host.NewRegistry())

	err := h.Load(context.Background(), client, "/x/a.lua")
	require.ErrorIs(t, err, ErrNoEngine)
}

func TestRegisterReplaces(t *testing.T) {
	t.Parallel()

	first := &stubEngine{ext: "star"}
	second := &stubEngine{ext: "star"}
	h := New(first)
	h.Register(second)

	client := host.NewClient("s", host.NewRegistry())
	require.NoError(t, h.Load(context.Background(), client, "/x/a.star"))
	assert.Empty(t, first.loaded)
	assert.Equal(t, []string{"/x/a.star"}, second.loaded)
}

func TestDefaultHostEndToEnd(t *testing.T) {
	t.Parallel()

	props := host.NewRegistry()
	props.RegisterStatic("volume", host.Double(50))
	props.RegisterStatic("chapters", host.Array(
		host.Map(
			host.Pair{Key: "title", Value: host.String("intro")},
			host.Pair{Key: "time", Value: host.Double(0)},
		),
		host.Map(
			host.Pair{Key: "title", Value: host.String("credits")},
			host.Pair{Key: "time", Value: host.Double(55.5)},
		),
	))

	rec := &recordingHandler{}
	client := host.NewClient("osd", props, host.WithLogHandler(rec))

	dir := t.TempDir()
	path := filepath.Join(dir, "osd.star")
	require.NoError(t, os.WriteFile(path, []byte(`
chapters = mp.get_property("chapters")
mp.log("first chapter: " + chapters[0]["title"])
mp.get_property("nonexistent-property")
`), 0o644))

	h := Default(nil)
	require.NoError(t, h.Load(context.Background(), client, path))

	msgs := rec.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first chapter: intro", msgs[0])
	assert.Equal(t, `get_property("nonexistent-property") failed: property not found`, msgs[1])
}
