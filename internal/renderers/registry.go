package renderers

import (
	"context"

	"github.com/dejo1307/objchdr/internal/objc"
)

// Renderer turns an extraction snapshot into output files.
type Renderer interface {
	// Name is the identifier used in the renderers list of the config.
	Name() string
	// Render produces artifacts from the given snapshot.
	Render(ctx context.Context, snapshot *objc.Snapshot) ([]objc.Artifact, error)
}

// Registry holds renderers in registration order. Registering a second
// renderer with the same name replaces the first in place.
type Registry struct {
	renderers []Renderer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds rnd, or replaces the renderer already registered under its name.
func (r *Registry) Register(rnd Renderer) {
	for i, existing := range r.renderers {
		if existing.Name() == rnd.Name() {
			r.renderers[i] = rnd
			return
		}
	}
	r.renderers = append(r.renderers, rnd)
}

// Get returns the renderer with the given name, or nil if not found.
func (r *Registry) Get(name string) Renderer {
	for _, rnd := range r.renderers {
		if rnd.Name() == name {
			return rnd
		}
	}
	return nil
}

// Enabled returns the renderers accepted by the filter, in registration order.
func (r *Registry) Enabled(enabled func(name string) bool) []Renderer {
	var result []Renderer
	for _, rnd := range r.renderers {
		if enabled(rnd.Name()) {
			result = append(result, rnd)
		}
	}
	return result
}
