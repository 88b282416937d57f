package starlark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/robbyt/go-scripthost/host"
	"github.com/robbyt/go-scripthost/internal/helpers"
	"github.com/robbyt/go-scripthost/loader"
)

// Engine is the Starlark scripting backend. One Engine may serve many
// concurrent Load calls; each call owns a private interpreter thread,
// ScriptContext and guest heap, so no state is shared between loads.
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

// New creates a Starlark Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	e.logHandler, e.logger = helpers.SetupLogger(e.logHandler, "starlark", "Engine")
	return e
}

func (e *Engine) String() string {
	return "starlark.Engine"
}

// FileExt is the file extension the dispatcher associates with this backend.
func (e *Engine) FileExt() string {
	return "star"
}

// Load runs one script file to completion inside a fresh interpreter.
//
// An error is returned only when the script never reached a running
// interpreter: path resolution or file open failed. Guest-level compile
// errors and uncaught exceptions are captured, logged through the script's
// sink with a backtrace, and otherwise swallowed — the host's script
// supervisor treats "interpreter ran" as success.
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

// load runs the script supplied by ld inside a fresh interpreter thread.
// The loader's source URL becomes the compilation file name so positions
// in backtraces point at the real file.
func (e *Engine) load(ctx context.Context, sc *ScriptContext, ld loader.Loader) error {
	src, err := loader.ReadSource(ld)
	if err != nil {
		// redesigned from the original backend: a file that cannot be opened
		// short-circuits here instead of falling through into execution
		return fmt.Errorf("%w: %w", ErrScriptOpen, err)
	}
	path := ld.GetSourceURL().Path

	thread := &starlarkLib.Thread{
		Name: sc.Name,
		Print: func(_ *starlarkLib.Thread, msg string) {
			sc.Logger.Info(msg)
		},
	}
	installContext(thread, sc)

	// propagate host cancellation into the interpreter
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	e.logger.DebugContext(ctx, "executing script", "script", sc.Name, "path", path)
	if err := e.exec(thread, path, src); err != nil {
		sc.Logger.Error(formatGuestError(err))
	}
	return nil
}

// exec compiles and runs the script source. The resolved path becomes the
// compilation file name so positions in backtraces point at the real file.
func (e *Engine) exec(thread *starlarkLib.Thread, path string, src []byte) error {
	opts := &syntax.FileOptions{}
	f, err := opts.Parse(path, src, 0)
	if err != nil {
		return err
	}

	predeclared := starlarkLib.StringDict{
		moduleName: newModule(),
	}
	prog, err := starlarkLib.FileProgram(f, predeclared.Has)
	if err != nil {
		return err
	}

	_, err = prog.Init(thread, predeclared)
	return err
}

// formatGuestError renders an uncaught guest error as a single log block:
// the error description, then a backtrace with the innermost frame at index
// zero. Compile errors carry no frames and get an empty backtrace section.
func formatGuestError(err error) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\nbacktrace:\n")

	var evalErr *starlarkLib.EvalError
	if errors.As(err, &evalErr) {
		stack := evalErr.CallStack
		for i := range stack {
			fr := stack[len(stack)-1-i]
			fmt.Fprintf(&sb, "\t[%d] => %s (%s)\n", i, fr.Name, fr.Pos)
		}
	}
	return sb.String()
}
