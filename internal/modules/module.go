package modules

import (
	"io"

	"telwire/internal/nodes"
)

// Module defines the base interface for pluggable functionality.
type Module interface {
	// Name returns the unique identifier for the module.
	Name() string
}

// CommandHandler is an optional interface for modules that process user commands.
type CommandHandler interface {
	Module
	// HandleCommand processes a command.
	// Returns true if the command was handled, false otherwise.
	HandleCommand(w io.Writer, node *nodes.Node, cmd string, args string) (bool, error)
}

// Registry holds all available modules.
type Registry struct {
	modules map[string]Module
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]Module),
	}
}

// Register adds m, replacing any module with the same name.
func (r *Registry) Register(m Module) {
	if _, ok := r.modules[m.Name()]; !ok {
		r.order = append(r.order, m.Name())
	}
	r.modules[m.Name()] = m
}

func (r *Registry) Get(name string) Module {
	return r.modules[name]
}

// HandleCommand offers cmd to each command handler in registration order
// and stops at the first one that takes it.
func (r *Registry) HandleCommand(w io.Writer, node *nodes.Node, cmd string, args string) (bool, error) {
	for _, name := range r.order {
		h, ok := r.modules[name].(CommandHandler)
		if !ok {
			continue
		}
		if handled, err := h.HandleCommand(w, node, cmd, args); handled || err != nil {
			return handled, err
		}
	}
	return false, nil
}
