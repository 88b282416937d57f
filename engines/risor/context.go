package risor

import (
	"context"
	"log/slog"

	"github.com/robbyt/go-scripthost/host"
)

// ScriptContext ties one loaded script to the host state its native
// functions need. Risor builtins receive only a context.Context, so the
// ScriptContext travels in a reserved context key: one slot per load,
// populated before evaluation starts and read-only afterwards.
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

// scriptContextFrom recovers the ScriptContext carried by the evaluation
// context. Calling it outside an evaluation started by Load is a
// programming error and panics.
func scriptContextFrom(ctx context.Context) *ScriptContext {
	return ctx.Value(contextKey{}).(*ScriptContext)
}
