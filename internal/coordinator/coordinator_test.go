package coordinator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
	"github.com/madstone-tech/archetect-go/internal/core/usecases"
)

type stubResolver struct {
	bySrc map[string]*entities.Source
}

func (r *stubResolver) Resolve(ctx context.Context, location string, forceRefresh bool) (*entities.Source, error) {
	if src, ok := r.bySrc[location]; ok {
		return src, nil
	}
	return nil, entities.ErrSourceNotFound
}

type stubManifests struct {
	archetypes map[string]*entities.ArchetypeManifest
	catalogs   map[string]*entities.CatalogManifest
}

func (m *stubManifests) LoadArchetypeManifest(ctx context.Context, src *entities.Source) (*entities.ArchetypeManifest, error) {
	manifest, ok := m.archetypes[src.LocalPath]
	if !ok {
		return nil, entities.ErrArchetypeConfigMissing
	}
	return manifest, nil
}

func (m *stubManifests) LoadCatalogManifest(ctx context.Context, src *entities.Source) (*entities.CatalogManifest, error) {
	return m.catalogs[src.LocalPath], nil
}

type stubDriver struct {
	notified []usecases.ScriptMessage
	answers  []usecases.ClientMessage
	calls    int
}

func (d *stubDriver) Request(ctx context.Context, msg usecases.ScriptMessage) (usecases.ClientMessage, error) {
	resp := d.answers[d.calls]
	d.calls++
	return resp, nil
}

func (d *stubDriver) Notify(ctx context.Context, msg usecases.ScriptMessage) error {
	d.notified = append(d.notified, msg)
	return nil
}

func writeArchetypeDir(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "archetype.js"), []byte(script), 0o644); err != nil {
		t.Fatalf("write archetype.js: %v", err)
	}
	return dir
}

func defaultedArchetypeManifest() *entities.ArchetypeManifest {
	m := entities.ArchetypeManifest{}.WithDefaults()
	return &m
}

func TestCoordinator_RenderArchetype(t *testing.T) {
	archDir := writeArchetypeDir(t, `set('name', 'Ada'); log('info', 'hello');`)

	resolver := &stubResolver{bySrc: map[string]*entities.Source{
		"svc": {LocalPath: archDir, Location: "svc"},
	}}
	manifests := &stubManifests{archetypes: map[string]*entities.ArchetypeManifest{
		archDir: defaultedArchetypeManifest(),
	}}
	driver := &stubDriver{}

	c := New(entities.DefaultConfiguration(), entities.Layout{}, resolver, manifests, nil)

	dest := t.TempDir()
	err := c.RenderArchetype(context.Background(), "svc", driver, RenderOptions{Destination: dest})
	if err != nil {
		t.Fatalf("RenderArchetype: %v", err)
	}
	if len(driver.notified) != 1 || driver.notified[0].LogMessage != "hello" {
		t.Errorf("got notifications %+v", driver.notified)
	}
}

func TestCoordinator_RenderArchetype_MissingSourceErrors(t *testing.T) {
	c := New(entities.DefaultConfiguration(), entities.Layout{}, &stubResolver{}, &stubManifests{}, nil)
	err := c.RenderArchetype(context.Background(), "missing", &stubDriver{}, RenderOptions{Destination: t.TempDir()})
	if err == nil {
		t.Fatal("expected an error for an unresolvable source")
	}
}

func TestCoordinator_RenderCatalog_SelectsThenRenders(t *testing.T) {
	archDir := writeArchetypeDir(t, `set('picked', true);`)
	catalogDir := t.TempDir()

	resolver := &stubResolver{bySrc: map[string]*entities.Source{
		"catalog-root":         {LocalPath: catalogDir, Location: "catalog-root"},
		"/archetypes/service":  {LocalPath: archDir, Location: "/archetypes/service"},
	}}
	manifests := &stubManifests{
		catalogs: map[string]*entities.CatalogManifest{
			catalogDir: {
				Entries: []entities.CatalogEntry{
					{Kind: entities.CatalogEntryArchetype, Description: "service", Source: "/archetypes/service"},
				},
			},
		},
		archetypes: map[string]*entities.ArchetypeManifest{
			archDir: defaultedArchetypeManifest(),
		},
	}
	driver := &stubDriver{answers: []usecases.ClientMessage{
		{Kind: usecases.MsgString, StringValue: "service"},
	}}

	c := New(entities.DefaultConfiguration(), entities.Layout{}, resolver, manifests, nil)

	dest := t.TempDir()
	err := c.RenderCatalog(context.Background(), "catalog-root", driver, RenderOptions{Destination: dest})
	if err != nil {
		t.Fatalf("RenderCatalog: %v", err)
	}
}

func TestCoordinator_Version(t *testing.T) {
	c := New(entities.DefaultConfiguration(), entities.Layout{}, nil, nil, nil)
	if c.Version() == "" {
		t.Error("expected a non-empty version")
	}
}
