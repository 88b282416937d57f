package helpers

import (
	"log/slog"
	"os"
)

// SetupLogger creates a configured logger for an engine component.
// If the provided handler is nil, a default stderr handler grouped under the
// engine name is created.
//
// Returns the handler (for passing down to sub-components) and a logger
// grouped under the component name.
func SetupLogger(handler slog.Handler, engineName, component string) (slog.Handler, *slog.Logger) {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, nil).WithGroup(engineName)
	}

	if component == "" {
		return handler, slog.New(handler)
	}
	return handler, slog.New(handler.WithGroup(component))
}
