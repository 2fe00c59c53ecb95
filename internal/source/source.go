// Package source resolves configured sources to their adapter
// implementations.
package source

import (
	"fmt"

	"AINewsCollector/internal/config"
	"AINewsCollector/internal/domain"
	"AINewsCollector/internal/ports"
)

// Builder constructs an adapter for one configured source of its kind.
type Builder interface {
	Kind() string
	Build(src config.SourceConfig, fetch config.FetchConfig) (ports.SourceAdapter, error)
}

// Registry keeps a mapping from adapter kinds to their builders.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]Builder{}}
}

// Register adds or replaces a builder for its kind.
func (r *Registry) Register(b Builder) {
	if r.builders == nil {
		r.builders = map[string]Builder{}
	}
	r.builders[b.Kind()] = b
}

// Resolve returns the builder for a kind or an error if it is absent.
func (r *Registry) Resolve(kind string) (Builder, error) {
	if b, ok := r.builders[kind]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("source kind %s is not registered", kind)
}

// Adapters builds one adapter per enabled source. Unknown kinds are a
// configuration error, caught before any fetching begins.
func (r *Registry) Adapters(sources []config.SourceConfig, fetch config.FetchConfig) ([]ports.SourceAdapter, error) {
	out := make([]ports.SourceAdapter, 0, len(sources))
	for _, src := range sources {
		builder, err := r.Resolve(src.Kind)
		if err != nil {
			return nil, &domain.ConfigurationError{Field: "sources." + src.ID, Reason: err.Error()}
		}
		adapter, err := builder.Build(src, fetch)
		if err != nil {
			return nil, &domain.ConfigurationError{Field: "sources." + src.ID, Reason: err.Error()}
		}
		out = append(out, adapter)
	}
	return out, nil
}
