package extism

import (
	"context"
	"encoding/json"
	"log/slog"
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

func newTestScriptContext(props *host.Registry) (*ScriptContext, *recordingHandler) {
	rec := &recordingHandler{}
	client := host.NewClient("test-plugin", props, host.WithLogHandler(rec))
	return &ScriptContext{
		Name:     client.Name(),
		Filename: "test.wasm",
		Client:   client,
		Logger:   slog.New(rec),
	}, rec
}

func TestConvertNodeJSONPrimitives(t *testing.T) {
	t.Parallel()

	sc, _ := newTestScriptContext(nil)

	tests := []struct {
		name string
		node host.Node
		want string
	}{
		{"none", host.None(), "null"},
		{"string", host.String("hello"), `"hello"`},
		{"string escaping", host.String(`say "hi"`), `"say \"hi\""`},
		{"flag true", host.Flag(0), "true"},
		{"flag positive true", host.Flag(7), "true"},
		{"flag negative false", host.Flag(-1), "false"},
		{"int", host.Int(1 << 40), "1099511627776"},
		{"double", host.Double(2.75), "2.75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, string(convertNodeJSON(sc, tt.node)))
		})
	}
}

func TestConvertNodeJSONNested(t *testing.T) {
	t.Parallel()

	sc, rec := newTestScriptContext(nil)

	node := host.Array(
		host.String("first"),
		host.Map(
			host.Pair{Key: "inner", Value: host.Array(host.Int(1), host.Double(2.5), host.Flag(-1))},
			host.Pair{Key: "title", Value: host.String("x")},
		),
		host.Int(99),
	)

	out := convertNodeJSON(sc, node)
	assert.Equal(t, `["first",{"inner":[1,2.5,false],"title":"x"},99]`, string(out))
	assert.True(t, json.Valid(out))
	assert.Empty(t, rec.Messages(), "clean conversion must not log")
}

func TestConvertNodeJSONMapMemberOrder(t *testing.T) {
	t.Parallel()

	sc, _ := newTestScriptContext(nil)

	node := host.Map(
		host.Pair{Key: "c", Value: host.Int(3)},
		host.Pair{Key: "a", Value: host.Int(1)},
		host.Pair{Key: "b", Value: host.Int(2)},
	)

	// member order follows host insertion order, not key order
	assert.Equal(t, `{"c":3,"a":1,"b":2}`, string(convertNodeJSON(sc, node)))
}

func TestConvertNodeJSONUnknownFormat(t *testing.T) {
	t.Parallel()

	sc, rec := newTestScriptContext(nil)

	node := host.Array(
		host.String("keep"),
		host.Node{Format: host.Format(937)},
		host.Int(5),
	)

	out := convertNodeJSON(sc, node)
	assert.Equal(t, `["keep",null,5]`, string(out))
	assert.True(t, json.Valid(out))

	msgs := rec.Messages()
	require.Len(t, msgs, 1, "exactly one log line for the unknown value")
	assert.Equal(t, "node mapping failed (format: 937)", msgs[0])
}

func TestScriptContextRoundTrip(t *testing.T) {
	t.Parallel()

	sc, _ := newTestScriptContext(nil)
	ctx := withScriptContext(context.Background(), sc)
	assert.Same(t, sc, scriptContextFrom(ctx))
}

func TestScriptContextMissingPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		scriptContextFrom(context.Background())
	})
}
