package explainers

import (
	"context"

	"github.com/dejo1307/objchdr/internal/objc"
)

// Explainer analyzes extracted declarations and produces insights.
type Explainer interface {
	// Name returns the explainer identifier (e.g. "cycles", "unresolved").
	Name() string
	// Explain analyzes the snapshot's classes and enums and returns insights.
	Explain(ctx context.Context, snapshot *objc.Snapshot) ([]objc.Insight, error)
}

// Registry holds registered explainers.
type Registry struct {
	explainers []Explainer
}

// NewRegistry creates a new explainer registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an explainer, replacing one already registered under the same name.
func (r *Registry) Register(e Explainer) {
	for i, existing := range r.explainers {
		if existing.Name() == e.Name() {
			r.explainers[i] = e
			return
		}
	}
	r.explainers = append(r.explainers, e)
}

// Get returns the explainer with the given name, or nil if not found.
func (r *Registry) Get(name string) Explainer {
	for _, e := range r.explainers {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

// Enabled returns the registered explainers accepted by enabled, in
// registration order.
func (r *Registry) Enabled(enabled func(name string) bool) []Explainer {
	var out []Explainer
	for _, e := range r.explainers {
		if enabled(e.Name()) {
			out = append(out, e)
		}
	}
	return out
}
