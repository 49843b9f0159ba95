package source

import (
	"context"
	"fmt"
	"time"

	"veillellm/internal/domain"
)

// Request carries all parameters required to execute a fetch.
type Request struct {
	Keywords []string
	Limit    int
	Since    time.Time
	Until    time.Time
	Feeds    []string
	Options  map[string]string
}

// Provider captures a single source strategy (TheNewsAPI, RSS, etc.).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]domain.RawArticle, error)
}

// Registry keeps a mapping from provider names to their implementations.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

// Register adds or replaces a provider implementation.
func (r *Registry) Register(p Provider) {
	if r.providers == nil {
		r.providers = map[string]Provider{}
	}
	r.providers[p.Name()] = p
}

// Resolve returns a provider by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Provider, error) {
	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("provider %s is not registered", name)
}
