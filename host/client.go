package host

import (
	"log/slog"
	"os"
)

// Client is the per-script handle the host's script dispatcher hands to an
// engine. It resolves to everything a running script is allowed to reach:
// its identity, the property system, the log sink, and host path rules.
type Client interface {
	// Name is the host-assigned identifier for this script instance.
	Name() string

	// Properties is the host's property registry.
	Properties() *Registry

	// LogHandler is the log sink for this script. It outlives the script.
	LogHandler() slog.Handler

	// ScriptPath resolves a script file path using host path rules.
	ScriptPath(path string) (string, error)
}

type client struct {
	name      string
	props     *Registry
	handler   slog.Handler
	configDir string
}

// ClientOption configures a Client built with NewClient.
type ClientOption func(*client)

// WithLogHandler sets the script's log sink. Defaults to a text handler on
// stderr.
func WithLogHandler(handler slog.Handler) ClientOption {
	return func(c *client) {
		c.handler = handler
	}
}

// WithConfigDir overrides the directory the `~~/` path shorthand expands to.
func WithConfigDir(dir string) ClientOption {
	return func(c *client) {
		c.configDir = dir
	}
}

// NewClient builds a script handle for the given name and property registry.
func NewClient(name string, props *Registry, opts ...ClientOption) Client {
	c := &client{
		name:  name,
		props: props,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.props == nil {
		c.props = NewRegistry()
	}
	if c.handler == nil {
		c.handler = slog.NewTextHandler(os.Stderr, nil)
	}
	return c
}

func (c *client) Name() string             { return c.name }
func (c *client) Properties() *Registry    { return c.props }
func (c *client) LogHandler() slog.Handler { return c.handler }

func (c *client) ScriptPath(path string) (string, error) {
	return ExpandPath(path, c.configDir)
}
