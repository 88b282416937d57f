package extism

import (
	"context"
	"fmt"
	"log/slog"

	extismSDK "github.com/extism/go-sdk"
	"github.com/tetratelabs/wazero"

	"github.com/robbyt/go-scripthost/host"
	"github.com/robbyt/go-scripthost/internal/helpers"
	"github.com/robbyt/go-scripthost/loader"
)

// Entrypoint candidates tried in order when no override is set: WASI-built
// modules (Go wasip1, Rust, TinyGo) export _start, extism-style plugins
// export main.
const (
	wasiEntryPoint   = "_start"
	extismEntryPoint = "main"
)

// Engine is the WASM scripting backend, built on Extism plugins. Scripts
// are compiled WASM modules rather than source text; they reach the host
// through the same three native functions the text backends register,
// exported into the plugin's import namespace.
type Engine struct {
	entryPoint    string
	runtimeConfig wazero.RuntimeConfig
	logHandler    slog.Handler
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogHandler sets the handler used for the engine's own diagnostics
// (not the per-script sink, which comes from the Client).
func WithLogHandler(handler slog.Handler) Option {
	return func(e *Engine) {
		e.logHandler = handler
	}
}

// WithEntryPoint pins the exported plugin function invoked on load,
// overriding the automatic _start/main selection.
func WithEntryPoint(name string) Option {
	return func(e *Engine) {
		e.entryPoint = name
	}
}

// WithRuntimeConfig overrides the wazero runtime configuration used when
// compiling plugins.
func WithRuntimeConfig(cfg wazero.RuntimeConfig) Option {
	return func(e *Engine) {
		e.runtimeConfig = cfg
	}
}

// New creates an Extism Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.runtimeConfig == nil {
		e.runtimeConfig = wazero.NewRuntimeConfig()
	}
	e.logHandler, e.logger = helpers.SetupLogger(e.logHandler, "extism", "Engine")
	return e
}

func (e *Engine) String() string {
	return "extism.Engine"
}

// FileExt is the file extension the dispatcher associates with this backend.
func (e *Engine) FileExt() string {
	return "wasm"
}

// functionLookup is the part of a plugin instance consulted when picking
// an entrypoint.
type functionLookup interface {
	FunctionExists(name string) bool
}

// resolveEntryPoint picks the exported function to invoke. An explicit
// WithEntryPoint override is honored as-is; otherwise the WASI _start
// export wins over the extism-style main. Empty means the plugin exports
// none of the candidates.
func (e *Engine) resolveEntryPoint(plugin functionLookup) string {
	candidates := []string{wasiEntryPoint, extismEntryPoint}
	if e.entryPoint != "" {
		candidates = []string{e.entryPoint}
	}
	for _, name := range candidates {
		if plugin.FunctionExists(name) {
			return name
		}
	}
	return ""
}

// entryPointNames describes the candidate set for the missing-export log line.
func (e *Engine) entryPointNames() string {
	if e.entryPoint != "" {
		return fmt.Sprintf("%q", e.entryPoint)
	}
	return fmt.Sprintf("%q or %q", wasiEntryPoint, extismEntryPoint)
}

// Load compiles and runs one plugin to completion. File-open and plugin
// compilation failures are returned (the runtime never opened); guest traps
// and non-zero exits are logged through the script's sink and swallowed,
// matching the text backends' failure semantics. All plugin resources are
// released before the ScriptContext is dropped.
func (e *Engine) Load(ctx context.Context, client host.Client, filename string) error {
	sc := &ScriptContext{
		Name:     client.Name(),
		Filename: filename,
		Client:   client,
		Logger:   slog.New(client.LogHandler()).With("script", client.Name()),
	}

	path, err := client.ScriptPath(filename)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPathResolve, err)
	}

	ld, err := loader.NewFromDisk(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScriptOpen, err)
	}
	return e.load(ctx, sc, ld)
}

// load runs the plugin supplied by ld. The loader's source URL names the
// script in backtrace lines.
func (e *Engine) load(ctx context.Context, sc *ScriptContext, ld loader.Loader) error {
	wasmBytes, err := loader.ReadSource(ld)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScriptOpen, err)
	}
	path := ld.GetSourceURL().Path

	ctx = withScriptContext(ctx, sc)

	manifest := extismSDK.Manifest{
		Wasm: []extismSDK.Wasm{
			extismSDK.WasmData{Data: wasmBytes, Name: sc.Name},
		},
	}
	config := extismSDK.PluginConfig{
		EnableWasi:    true,
		RuntimeConfig: e.runtimeConfig,
	}

	plugin, err := extismSDK.NewCompiledPlugin(ctx, manifest, config, hostFunctions())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEngineOpen, err)
	}
	defer func() {
		if closeErr := plugin.Close(ctx); closeErr != nil {
			e.logger.Warn("plugin close failed", "script", sc.Name, "error", closeErr)
		}
	}()

	instance, err := plugin.Instance(ctx, extismSDK.PluginInstanceConfig{
		ModuleConfig: wazero.NewModuleConfig(),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEngineOpen, err)
	}
	defer func() {
		if closeErr := instance.Close(ctx); closeErr != nil {
			e.logger.Warn("instance close failed", "script", sc.Name, "error", closeErr)
		}
	}()

	entry := e.resolveEntryPoint(instance)
	if entry == "" {
		sc.Logger.Error(fmt.Sprintf("plugin exports no %s function\nbacktrace:\n\t[0] => %s\n", e.entryPointNames(), path))
		return nil
	}

	e.logger.DebugContext(ctx, "executing plugin", "script", sc.Name, "path", path, "entrypoint", entry)
	exit, _, err := instance.CallWithContext(ctx, entry, nil)
	if err != nil {
		sc.Logger.Error(fmt.Sprintf("%s\nbacktrace:\n\t[0] => %s\n", err, path))
		return nil
	}
	if exit != 0 {
		sc.Logger.Error(fmt.Sprintf("plugin exited with code %d\nbacktrace:\n\t[0] => %s\n", exit, path))
	}
	return nil
}
