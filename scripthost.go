// Package scripthost embeds guest scripting engines in a host application.
//
// The host registers typed properties in a host.Registry and hands script
// files to Load. The dispatcher picks a backend by file extension; the
// backend runs the script to completion inside a private interpreter,
// exposing the host's capabilities to guest code as the native `mp` module
// (log, get_property, property_list). Host values cross the boundary as
// tagged host.Node trees and are rebuilt as native guest values on the way
// in.
package scripthost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	extismEngine "github.com/robbyt/go-scripthost/engines/extism"
	risorEngine "github.com/robbyt/go-scripthost/engines/risor"
	starlarkEngine "github.com/robbyt/go-scripthost/engines/starlark"
	"github.com/robbyt/go-scripthost/host"
)

// ErrNoEngine is returned when no backend claims a script's file extension.
var ErrNoEngine = errors.New("no engine registered for file extension")

// Engine is one scripting backend: it claims a file extension and owns the
// full lifecycle of every script it loads. Load returns an error only when
// the script never reached a running interpreter (file open or engine open
// failed); guest-level failures are logged through the client's sink and
// swallowed.
type Engine interface {
	FileExt() string
	Load(ctx context.Context, client host.Client, filename string) error
}

// Host dispatches script loads to registered engines by file extension.
type Host struct {
	engines map[string]Engine
}

// New creates a Host with the given engines registered.
func New(engines ...Engine) *Host {
	h := &Host{
		engines: make(map[string]Engine, len(engines)),
	}
	for _, e := range engines {
		h.Register(e)
	}
	return h
}

// Default creates a Host with all built-in backends registered, logging
// engine diagnostics through handler (nil for stderr defaults).
func Default(handler slog.Handler) *Host {
	return New(
		starlarkEngine.New(starlarkEngine.WithLogHandler(handler)),
		risorEngine.New(risorEngine.WithLogHandler(handler)),
		extismEngine.New(extismEngine.WithLogHandler(handler)),
	)
}

// Register adds an engine, replacing any previous engine claiming the same
// extension.
func (h *Host) Register(e Engine) {
	h.engines[e.FileExt()] = e
}

// Load dispatches one script file to the engine claiming its extension.
func (h *Host) Load(ctx context.Context, client host.Client, filename string) error {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	e, ok := h.engines[ext]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoEngine, ext)
	}
	return e.Load(ctx, client, filename)
}
