// Package coordinator wires the adapters into the top-level render and
// catalog-selection operations: it owns the merged Configuration, the
// resolved Layout, and the process-wide Source Resolver and Manifest
// Loader, and constructs a fresh Renderer/Arbiter/Script Engine/Walker for
// each render (their state, e.g. a pongo2 template set rooted at one
// archetype's templates directory, is not safely shared across renders).
package coordinator

import (
	"context"
	"fmt"

	"github.com/madstone-tech/archetect-go/internal/adapters/arbiter"
	"github.com/madstone-tech/archetect-go/internal/adapters/catalog"
	"github.com/madstone-tech/archetect-go/internal/adapters/script"
	"github.com/madstone-tech/archetect-go/internal/adapters/template"
	"github.com/madstone-tech/archetect-go/internal/adapters/walker"
	"github.com/madstone-tech/archetect-go/internal/core/entities"
	"github.com/madstone-tech/archetect-go/internal/core/usecases"
)

// Version is the running engine's own version, checked against an
// archetype's requires.archetect constraint.
const Version = "0.1.0"

// Coordinator owns the engine's process-wide state and drives the
// top-level render/catalog operations on top of it.
type Coordinator struct {
	Configuration entities.Configuration
	Layout        entities.Layout

	Resolver  usecases.SourceResolver
	Manifests usecases.ManifestLoader
	Logger    usecases.Logger
}

// New builds a Coordinator from its merged Configuration, resolved Layout,
// and the two process-wide ports (Source Resolver, Manifest Loader).
func New(cfg entities.Configuration, layout entities.Layout, resolver usecases.SourceResolver, manifests usecases.ManifestLoader, logger usecases.Logger) *Coordinator {
	return &Coordinator{
		Configuration: cfg,
		Layout:        layout,
		Resolver:      resolver,
		Manifests:     manifests,
		Logger:        logger,
	}
}

// Version reports the engine's own version string.
func (c *Coordinator) Version() string { return Version }

// RenderOptions parameterizes a single top-level render invocation.
type RenderOptions struct {
	Destination    string
	Answers        map[string]entities.Answer
	Switches       []string
	UseDefaults    []string
	UseDefaultsAll bool
	Headless       bool
	ForceRefresh   bool
}

// buildRenderContext seeds a fresh RenderContext from RenderOptions.
func buildRenderContext(opts RenderOptions) (*entities.RenderContext, error) {
	rc, err := entities.NewRenderContext(opts.Destination)
	if err != nil {
		return nil, err
	}
	for k, v := range opts.Answers {
		rc.Answers[k] = v
	}
	for _, sw := range opts.Switches {
		rc.EnableSwitch(sw)
	}
	for _, k := range opts.UseDefaults {
		rc.UseDefaults[k] = struct{}{}
	}
	rc.UseDefaultsAll = opts.UseDefaultsAll
	rc.Headless = opts.Headless
	return rc, nil
}

// RenderArchetype resolves location, loads its manifest, and runs its main
// script against a fresh RenderContext seeded from opts, using driver for
// every interactive prompt and log/print/display message the script emits.
func (c *Coordinator) RenderArchetype(ctx context.Context, location string, driver usecases.Driver, opts RenderOptions) error {
	src, err := c.Resolver.Resolve(ctx, location, opts.ForceRefresh)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", location, err)
	}

	manifest, err := c.Manifests.LoadArchetypeManifest(ctx, src)
	if err != nil {
		return fmt.Errorf("loading manifest for %q: %w", location, err)
	}

	rc, err := buildRenderContext(opts)
	if err != nil {
		return err
	}

	return c.runArchetype(ctx, src, manifest, rc, driver)
}

// RenderCatalog drives the Catalog Selector's navigation loop starting from
// location, then renders the chosen archetype with the selector-extended
// RenderContext merged on top of opts.
func (c *Coordinator) RenderCatalog(ctx context.Context, location string, driver usecases.Driver, opts RenderOptions) error {
	catalogSrc, err := c.Resolver.Resolve(ctx, location, opts.ForceRefresh)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", location, err)
	}

	renderer := template.NewEngine(".")
	a := arbiter.NewArbiter(driver, renderer)
	selector := catalog.NewSelector(c.Resolver, c.Manifests, a)

	archetypeSrc, selectedRC, err := selector.Select(ctx, catalogSrc)
	if err != nil {
		return fmt.Errorf("selecting from catalog %q: %w", location, err)
	}

	rc, err := buildRenderContext(opts)
	if err != nil {
		return err
	}
	for k, v := range selectedRC.Answers {
		rc.Answers[k] = v
	}
	for sw := range selectedRC.Switches {
		rc.EnableSwitch(sw)
	}
	for k := range selectedRC.UseDefaults {
		rc.UseDefaults[k] = struct{}{}
	}
	rc.UseDefaultsAll = rc.UseDefaultsAll || selectedRC.UseDefaultsAll

	manifest, err := c.Manifests.LoadArchetypeManifest(ctx, archetypeSrc)
	if err != nil {
		return fmt.Errorf("loading manifest for %q: %w", archetypeSrc.Location, err)
	}

	return c.runArchetype(ctx, archetypeSrc, manifest, rc, driver)
}

// runArchetype wires the per-render adapters (Renderer, Arbiter, Walker,
// Script Engine) for one archetype bundle and runs its main script.
func (c *Coordinator) runArchetype(ctx context.Context, src *entities.Source, manifest *entities.ArchetypeManifest, rc *entities.RenderContext, driver usecases.Driver) error {
	renderer := template.NewEngine(src.LocalPath)
	a := arbiter.NewArbiter(driver, renderer)
	w := walker.NewWalker()

	engine := script.NewEngine(renderer, w, a, c.Resolver, c.Manifests, driver, c.Configuration.Security.AllowExec)

	if err := engine.RunMain(ctx, src, manifest, rc); err != nil {
		return fmt.Errorf("running %q: %w", src.Location, err)
	}
	return nil
}
