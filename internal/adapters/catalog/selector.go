// Package catalog implements the Catalog Selector: a repeated Select-prompt
// loop over a catalog tree, descending through group entries, re-loading
// catalog entries from their own source, and terminating once an archetype
// entry is reached.
package catalog

import (
	"context"
	"fmt"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
	"github.com/madstone-tech/archetect-go/internal/core/usecases"
)

// Selector implements usecases.CatalogSelector.
type Selector struct {
	Resolver  usecases.SourceResolver
	Manifests usecases.ManifestLoader
	Arbiter   usecases.Arbiter
}

// NewSelector builds a Catalog Selector wired to the ports it needs to
// resolve and load nested catalogs.
func NewSelector(resolver usecases.SourceResolver, manifests usecases.ManifestLoader, arbiter usecases.Arbiter) *Selector {
	return &Selector{Resolver: resolver, Manifests: manifests, Arbiter: arbiter}
}

// Select drives the navigation loop starting from catalogSrc, returning the
// archetype source chosen and a RenderContext pre-extended with that entry's
// answers/switches/use-defaults.
func (s *Selector) Select(ctx context.Context, catalogSrc *entities.Source) (*entities.Source, *entities.RenderContext, error) {
	visited := map[string]bool{catalogSrc.CanonicalKey(): true}

	rc, err := entities.NewRenderContext(".")
	if err != nil {
		return nil, nil, err
	}

	currentSrc := catalogSrc
	for {
		manifest, err := s.Manifests.LoadCatalogManifest(ctx, currentSrc)
		if err != nil {
			return nil, nil, err
		}

		entry, err := s.selectEntry(ctx, manifest.Entries, "Select an entry:")
		if err != nil {
			return nil, nil, err
		}

		switch entry.Kind {
		case entities.CatalogEntryArchetype:
			archSrc, err := s.Resolver.Resolve(ctx, entry.Source, false)
			if err != nil {
				return nil, nil, err
			}
			extendRenderContext(rc, entry)
			return archSrc, rc, nil

		case entities.CatalogEntryCatalog:
			nextSrc, err := s.Resolver.Resolve(ctx, entry.Source, false)
			if err != nil {
				return nil, nil, err
			}
			key := nextSrc.CanonicalKey()
			if visited[key] {
				return nil, nil, &entities.CatalogCycleError{Location: entry.Source}
			}
			visited[key] = true
			currentSrc = nextSrc

		default:
			return nil, nil, fmt.Errorf("unexpected catalog entry kind %q", entry.Kind)
		}
	}
}

// selectEntry flattens a group level (recursing into chosen groups) until an
// archetype or catalog entry is chosen.
func (s *Selector) selectEntry(ctx context.Context, entries []entities.CatalogEntry, message string) (entities.CatalogEntry, error) {
	for {
		labels := make([]string, len(entries))
		for i, e := range entries {
			labels[i] = entryLabel(e)
		}

		desc := entities.PromptDescriptor{
			Kind:    entities.PromptSelect,
			Message: message,
			Options: labels,
		}
		answer, err := s.Arbiter.Resolve(ctx, &entities.RenderContext{}, desc)
		if err != nil {
			return entities.CatalogEntry{}, err
		}
		choice, _ := answer.(string)

		idx := indexOf(labels, choice)
		if idx < 0 {
			return entities.CatalogEntry{}, entities.ErrCatalogNotFound
		}
		entry := entries[idx]

		if entry.Kind != entities.CatalogEntryGroup {
			return entry, nil
		}
		if len(entry.Children) == 0 {
			return entities.CatalogEntry{}, entities.ErrCatalogGroupEmpty
		}
		entries = entry.Children
	}
}

func entryLabel(e entities.CatalogEntry) string {
	if e.Description != "" {
		return e.Description
	}
	return e.Source
}

func indexOf(labels []string, choice string) int {
	for i, l := range labels {
		if l == choice {
			return i
		}
	}
	return -1
}

// extendRenderContext layers an archetype entry's answers/switches/
// use-defaults onto rc before the final render.
func extendRenderContext(rc *entities.RenderContext, entry entities.CatalogEntry) {
	for k, v := range entry.Answers {
		rc.Answers[k] = v
	}
	for _, sw := range entry.Switches {
		rc.EnableSwitch(sw)
	}
	for _, k := range entry.UseDefaults {
		rc.UseDefaults[k] = struct{}{}
	}
	if entry.UseDefaultsAll {
		rc.UseDefaultsAll = true
	}
}
