// Package usecases defines the ports the archetype execution runtime is
// built from, and the use cases that compose them.
package usecases

import (
	"context"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
)

// SourceResolver turns a location string into a local directory.
type SourceResolver interface {
	Resolve(ctx context.Context, location string, forceRefresh bool) (*entities.Source, error)
}

// ManifestLoader parses archetype/catalog manifests from a resolved Source.
type ManifestLoader interface {
	LoadArchetypeManifest(ctx context.Context, src *entities.Source) (*entities.ArchetypeManifest, error)
	LoadCatalogManifest(ctx context.Context, src *entities.Source) (*entities.CatalogManifest, error)
}

// TemplateRenderer expands strings and paths against a context map with an
// explicit undefined-symbol policy.
type TemplateRenderer interface {
	// RenderString expands a single template string.
	RenderString(ctx context.Context, tmpl string, vars map[string]any, undef entities.UndefinedBehavior) (string, error)

	// RenderFile expands the contents of a template file.
	RenderFile(ctx context.Context, path string, vars map[string]any, undef entities.UndefinedBehavior) ([]byte, error)
}

// DirectoryWalker maps a template tree onto a destination tree.
type DirectoryWalker interface {
	Walk(ctx context.Context, opts WalkOptions) error
}

// WalkOptions parameterizes a single directory-render invocation.
type WalkOptions struct {
	SourceRoot string
	RenderCtx  *entities.RenderContext
	Renderer   TemplateRenderer
	Undef      entities.UndefinedBehavior
	Arbiter    Arbiter
}

// Arbiter resolves the value of a prompt from answers, defaults, headless
// rules, or an interactive round-trip.
type Arbiter interface {
	Resolve(ctx context.Context, rc *entities.RenderContext, p entities.PromptDescriptor) (any, error)
}

// ScriptEngine executes an archetype's main script with the bound API
// surface.
type ScriptEngine interface {
	RunMain(ctx context.Context, src *entities.Source, manifest *entities.ArchetypeManifest, rc *entities.RenderContext) error
}

// CatalogSelector drives the interactive catalog navigation loop.
type CatalogSelector interface {
	Select(ctx context.Context, catalogSrc *entities.Source) (archetypeSrc *entities.Source, rc *entities.RenderContext, err error)
}

// Logger is the structured logging port used throughout the runtime.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, err error, keysAndValues ...any)
	WithFields(keysAndValues ...any) Logger
}
