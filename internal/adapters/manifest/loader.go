// Package manifest loads and validates archetype.yaml and catalog.yaml
// manifests from a resolved Source.
package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
)

var archetypeFilenames = []string{"archetype.yaml", "archetype.yml"}
var catalogFilenames = []string{"catalog.yaml", "catalog.yml"}

// Loader implements usecases.ManifestLoader against the local filesystem.
type Loader struct {
	// HostVersion is the running engine's own version, checked against an
	// archetype's requires.archetect constraint.
	HostVersion string
}

// NewLoader builds a manifest Loader pinned to hostVersion.
func NewLoader(hostVersion string) *Loader {
	return &Loader{HostVersion: hostVersion}
}

// LoadArchetypeManifest reads archetype.yaml/yml from src's root, applies
// defaults, and checks the requires.archetect semver constraint.
func (l *Loader) LoadArchetypeManifest(ctx context.Context, src *entities.Source) (*entities.ArchetypeManifest, error) {
	path, data, err := readFirst(src.LocalPath, archetypeFilenames)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, entities.ErrArchetypeConfigMissing
		}
		return nil, err
	}

	var m entities.ArchetypeManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &entities.ManifestSyntaxError{Path: path, Source: string(data), Err: err}
	}
	m = m.WithDefaults()

	if err := l.checkRequirements(m.Requires); err != nil {
		return nil, err
	}

	return &m, nil
}

// LoadCatalogManifest reads catalog.yaml/yml from src's root and validates
// its entry tree.
func (l *Loader) LoadCatalogManifest(ctx context.Context, src *entities.Source) (*entities.CatalogManifest, error) {
	path, data, err := readFirst(src.LocalPath, catalogFilenames)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &entities.ManifestNotFoundError{Path: filepath.Join(src.LocalPath, catalogFilenames[0])}
		}
		return nil, err
	}

	var m entities.CatalogManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &entities.ManifestSyntaxError{Path: path, Source: string(data), Err: err}
	}

	if err := l.checkRequirements(m.Requires); err != nil {
		return nil, err
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

func (l *Loader) checkRequirements(req entities.Requirements) error {
	if req.Archetect == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(req.Archetect)
	if err != nil {
		return fmt.Errorf("invalid requires.archetect constraint %q: %w", req.Archetect, err)
	}
	host, err := semver.NewVersion(l.HostVersion)
	if err != nil {
		// An unparsable host version (e.g. "dev" builds) can't be checked;
		// treat the constraint as satisfied rather than blocking every run.
		return nil
	}
	if !constraint.Check(host) {
		return &entities.RequirementsError{HostVersion: l.HostVersion, Constraint: req.Archetect}
	}
	return nil
}

func readFirst(root string, names []string) (string, []byte, error) {
	var lastErr error
	for _, name := range names {
		path := filepath.Join(root, name)
		data, err := os.ReadFile(path)
		if err == nil {
			return path, data, nil
		}
		lastErr = err
	}
	return "", nil, lastErr
}
