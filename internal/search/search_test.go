package search

import (
	"context"
	"testing"

	"NewsCurator/internal/domain"
)

type stubProvider struct {
	name string
}

func (s stubProvider) Name() string { return s.name }

func (s stubProvider) Search(ctx context.Context, req Request) ([]domain.SearchResult, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	registry := NewRegistry()
	registry.Register(stubProvider{name: "naver"})

	provider, err := registry.Resolve("naver")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if provider.Name() != "naver" {
		t.Errorf("provider = %s, want naver", provider.Name())
	}

	if _, err := registry.Resolve("missing"); err == nil {
		t.Error("expected error for unregistered provider")
	}
}

func TestRegistryReplace(t *testing.T) {
	registry := NewRegistry()
	registry.Register(stubProvider{name: "naver"})
	registry.Register(stubProvider{name: "naver"})

	if _, err := registry.Resolve("naver"); err != nil {
		t.Fatalf("Resolve after replace: %v", err)
	}
}
