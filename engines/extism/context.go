package extism

import (
	"context"
	"log/slog"

	"github.com/robbyt/go-scripthost/host"
)

// ScriptContext ties one loaded plugin to the host state its host functions
// need. Extism host functions receive only a context.Context, so the
// ScriptContext travels in a reserved context key: one slot per load,
// populated before the plugin is instantiated and read-only afterwards.
type ScriptContext struct {
	Name     string
	Filename string
	Client   host.Client
	Logger   *slog.Logger
}

type contextKey struct{}

func withScriptContext(ctx context.Context, sc *ScriptContext) context.Context {
	return context.WithValue(ctx, contextKey{}, sc)
}

// scriptContextFrom recovers the ScriptContext carried by the call context.
// Calling it outside a plugin call started by Load is a programming error
// and panics.
func scriptContextFrom(ctx context.Context) *ScriptContext {
	return ctx.Value(contextKey{}).(*ScriptContext)
}
