package starlark

import (
	"log/slog"

	starlarkLib "go.starlark.net/starlark"

	"github.com/robbyt/go-scripthost/host"
)

// contextLocalKey is the reserved thread-local slot holding the
// ScriptContext. One slot per interpreter instance keeps concurrent loads
// fully isolated from each other.
const contextLocalKey = "scripthost.context"

// ScriptContext ties one loaded script to the host state its native
// functions need: the script's identity, its source path, the log sink, and
// the client handle reaching the property system. Exactly one exists per
// Thread, installed before any guest code can run.
type ScriptContext struct {
	Name     string
	Filename string
	Client   host.Client
	Logger   *slog.Logger
}

// installContext binds the ScriptContext into the thread's reserved slot.
// Must run before native function registration is visible to guest code.
func installContext(thread *starlarkLib.Thread, sc *ScriptContext) {
	thread.SetLocal(contextLocalKey, sc)
}

// contextFrom recovers the ScriptContext installed on the calling thread.
// Native functions receive no side channel for host state, so this is the
// only way back to it. Calling contextFrom on a thread without an installed
// context is a programming error and panics.
func contextFrom(thread *starlarkLib.Thread) *ScriptContext {
	return thread.Local(contextLocalKey).(*ScriptContext)
}
