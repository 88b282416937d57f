package risor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	risorLib "github.com/risor-io/risor"
	risorErrors "github.com/risor-io/risor/errz"

	"github.com/robbyt/go-scripthost/host"
	"github.com/robbyt/go-scripthost/internal/helpers"
	"github.com/robbyt/go-scripthost/loader"
)

// Engine is the Risor scripting backend. Each Load call owns a private VM
// and ScriptContext; the Engine itself holds no per-load state.
type Engine struct {
	logHandler slog.Handler
	logger     *slog.Logger
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

// New creates a Risor Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	e.logHandler, e.logger = helpers.SetupLogger(e.logHandler, "risor", "Engine")
	return e
}

func (e *Engine) String() string {
	return "risor.Engine"
}

// FileExt is the file extension the dispatcher associates with this backend.
func (e *Engine) FileExt() string {
	return "risor"
}

// Load runs one script file to completion inside a fresh VM. Setup failures
// (path resolution, file open) are returned; guest-level compile errors and
// uncaught exceptions are logged through the script's sink and swallowed.
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

// load runs the script supplied by ld inside a fresh VM. The loader's
// source URL names the script in backtrace lines.
func (e *Engine) load(ctx context.Context, sc *ScriptContext, ld loader.Loader) error {
	src, err := loader.ReadSource(ld)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScriptOpen, err)
	}
	path := ld.GetSourceURL().Path

	ctx = withScriptContext(ctx, sc)
	e.logger.DebugContext(ctx, "executing script", "script", sc.Name, "path", path)

	if _, err := risorLib.Eval(ctx, string(src), risorLib.WithGlobal(moduleName, newModule())); err != nil {
		sc.Logger.Error(formatGuestError(err, path))
	}
	return nil
}

// formatGuestError renders an uncaught guest error as a single log block in
// the same shape the other backends use. Risor exposes no frame list on its
// errors, so the backtrace carries one frame naming the script; syntax
// errors are rendered through the friendly form when available.
func formatGuestError(err error, path string) string {
	msg := err.Error()
	var friendlyErr risorErrors.FriendlyError
	if errors.As(err, &friendlyErr) {
		msg = friendlyErr.FriendlyErrorMessage()
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimRight(msg, "\n"))
	sb.WriteString("\nbacktrace:\n")
	fmt.Fprintf(&sb, "\t[0] => %s\n", path)
	return sb.String()
}
