package search

import (
	"context"
	"errors"
	"fmt"

	"NewsCurator/internal/domain"
)

// ErrUpstream marks a non-success status from the external search API. The
// failure is isolated to the keyword being fetched; sibling fetches continue.
var ErrUpstream = errors.New("search upstream failure")

// ErrParse marks a malformed response body from the external search API.
var ErrParse = errors.New("search response parse failure")

// Request carries all parameters for one keyword search.
type Request struct {
	Keyword string
	Display int
	Sort    string
}

// Provider captures a single search API integration (Naver, etc.).
type Provider interface {
	Name() string
	Search(ctx context.Context, req Request) ([]domain.SearchResult, error)
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
func (r *Registry) Register(provider Provider) {
	if r.providers == nil {
		r.providers = map[string]Provider{}
	}
	r.providers[provider.Name()] = provider
}

// Resolve returns a provider by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Provider, error) {
	if provider, ok := r.providers[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("search provider %s is not registered", name)
}
