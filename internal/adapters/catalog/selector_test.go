package catalog

import (
	"context"
	"testing"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
)

type stubResolver struct {
	bySrc map[string]*entities.Source
}

func (r *stubResolver) Resolve(ctx context.Context, location string, forceRefresh bool) (*entities.Source, error) {
	if src, ok := r.bySrc[location]; ok {
		return src, nil
	}
	return &entities.Source{Location: location, LocalPath: location}, nil
}

type stubManifests struct {
	byPath map[string]*entities.CatalogManifest
}

func (m *stubManifests) LoadArchetypeManifest(ctx context.Context, src *entities.Source) (*entities.ArchetypeManifest, error) {
	manifest := entities.ArchetypeManifest{}.WithDefaults()
	return &manifest, nil
}

func (m *stubManifests) LoadCatalogManifest(ctx context.Context, src *entities.Source) (*entities.CatalogManifest, error) {
	return m.byPath[src.LocalPath], nil
}

// scriptedArbiter answers a fixed sequence of Select prompts in order.
type scriptedArbiter struct {
	choices []string
	calls   int
}

func (a *scriptedArbiter) Resolve(ctx context.Context, rc *entities.RenderContext, p entities.PromptDescriptor) (any, error) {
	choice := a.choices[a.calls]
	a.calls++
	return choice, nil
}

func TestSelector_DescendsIntoArchetype(t *testing.T) {
	rootSrc := &entities.Source{LocalPath: "/catalogs/root"}
	manifests := &stubManifests{byPath: map[string]*entities.CatalogManifest{
		"/catalogs/root": {
			Entries: []entities.CatalogEntry{
				{Kind: entities.CatalogEntryArchetype, Description: "service", Source: "/archetypes/service"},
			},
		},
	}}
	resolver := &stubResolver{bySrc: map[string]*entities.Source{
		"/archetypes/service": {LocalPath: "/archetypes/service"},
	}}
	arbiter := &scriptedArbiter{choices: []string{"service"}}

	sel := NewSelector(resolver, manifests, arbiter)
	src, rc, err := sel.Select(context.Background(), rootSrc)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if src.LocalPath != "/archetypes/service" {
		t.Errorf("got %q", src.LocalPath)
	}
	if rc == nil {
		t.Fatal("expected a non-nil RenderContext")
	}
}

func TestSelector_NestedCatalogCycleDetected(t *testing.T) {
	rootSrc := &entities.Source{Location: "root", LocalPath: "/catalogs/root"}
	manifests := &stubManifests{byPath: map[string]*entities.CatalogManifest{
		"/catalogs/root": {
			Entries: []entities.CatalogEntry{
				{Kind: entities.CatalogEntryCatalog, Description: "back-to-root", Source: "root"},
			},
		},
	}}
	resolver := &stubResolver{bySrc: map[string]*entities.Source{
		"root": rootSrc,
	}}
	arbiter := &scriptedArbiter{choices: []string{"back-to-root"}}

	sel := NewSelector(resolver, manifests, arbiter)
	_, _, err := sel.Select(context.Background(), rootSrc)
	if _, ok := err.(*entities.CatalogCycleError); !ok {
		t.Fatalf("got %v (%T), want *entities.CatalogCycleError", err, err)
	}
}

func TestSelector_DescendsThroughGroup(t *testing.T) {
	rootSrc := &entities.Source{LocalPath: "/catalogs/root"}
	manifests := &stubManifests{byPath: map[string]*entities.CatalogManifest{
		"/catalogs/root": {
			Entries: []entities.CatalogEntry{
				{
					Kind:        entities.CatalogEntryGroup,
					Description: "languages",
					Children: []entities.CatalogEntry{
						{Kind: entities.CatalogEntryArchetype, Description: "go-service", Source: "/archetypes/go-service"},
					},
				},
			},
		},
	}}
	resolver := &stubResolver{}
	arbiter := &scriptedArbiter{choices: []string{"languages", "go-service"}}

	sel := NewSelector(resolver, manifests, arbiter)
	src, _, err := sel.Select(context.Background(), rootSrc)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if src.Location != "/archetypes/go-service" {
		t.Errorf("got %q", src.Location)
	}
}
