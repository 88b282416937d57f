package host

import (
	"fmt"
	"sync"
)

// PropertyFunc produces the current value of one registered property.
type PropertyFunc func() (Node, error)

// Registry is the host's property system: a name to typed-value registry
// queried by guest scripts through get_property and property_list. Names
// keep registration order. Reads are safe for concurrent use, so one
// Registry may back multiple simultaneous script loads.
type Registry struct {
	mu    sync.RWMutex
	names []string
	props map[string]PropertyFunc
}

func NewRegistry() *Registry {
	return &Registry{
		props: make(map[string]PropertyFunc),
	}
}

// Register adds a property getter. Registering an existing name replaces
// its getter but keeps its original position.
func (r *Registry) Register(name string, fn PropertyFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.props[name]; !ok {
		r.names = append(r.names, name)
	}
	r.props[name] = fn
}

// RegisterStatic registers a property whose value never changes.
func (r *Registry) RegisterStatic(name string, value Node) {
	r.Register(name, func() (Node, error) {
		return value, nil
	})
}

// Names returns the registered property names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Get queries one property as a tagged value. The returned node is owned by
// the caller for the duration of the call only.
func (r *Registry) Get(name string) (Node, error) {
	r.mu.RLock()
	fn, ok := r.props[name]
	r.mu.RUnlock()

	if !ok {
		return None(), ErrPropertyNotFound
	}
	node, err := fn()
	if err != nil {
		return None(), fmt.Errorf("%w: %w", ErrPropertyUnavailable, err)
	}
	return node, nil
}
