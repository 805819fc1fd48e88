package oauth

import (
	"fmt"
	"strings"
)

// Registry is the dispatch table from provider kind to Flow. Registration
// order is preserved for display.
type Registry struct {
	flows map[string]Flow
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		flows: make(map[string]Flow),
		order: make([]string, 0),
	}
}

// Register adds a provider flow. Duplicate kinds are an error.
func (r *Registry) Register(f Flow) error {
	kind := strings.ToLower(strings.TrimSpace(f.Kind()))
	if kind == "" {
		return fmt.Errorf("oauth flow kind cannot be empty")
	}
	if _, exists := r.flows[kind]; exists {
		return fmt.Errorf("oauth flow kind %q already registered", kind)
	}
	r.flows[kind] = f
	r.order = append(r.order, kind)
	return nil
}

// Get retrieves a flow by kind, case-insensitively.
func (r *Registry) Get(kind string) (Flow, bool) {
	f, ok := r.flows[strings.ToLower(strings.TrimSpace(kind))]
	return f, ok
}

// All returns every registered flow in registration order.
func (r *Registry) All() []Flow {
	flows := make([]Flow, 0, len(r.order))
	for _, kind := range r.order {
		flows = append(flows, r.flows[kind])
	}
	return flows
}
