package entities

// UndefinedBehavior selects how the Template Renderer treats references
// to undefined symbols. The three modes must be preserved verbatim; they are
// semantically visible to archetype authors.
type UndefinedBehavior string

const (
	UndefinedStrict    UndefinedBehavior = "Strict"
	UndefinedLenient   UndefinedBehavior = "Lenient"
	UndefinedChainable UndefinedBehavior = "Chainable"
)

// Scripting describes where an archetype's main script and modules live.
type Scripting struct {
	// Main is the path, relative to the archetype root, of the main script.
	// Defaults to "archetype.js"; scripts run on an embedded ECMAScript
	// engine.
	Main string `yaml:"main"`

	// Modules is the directory importable modules are resolved from,
	// relative to the archetype root.
	Modules string `yaml:"modules"`
}

// Templating describes the content/template roots and undefined-symbol policy.
type Templating struct {
	// Content is the root of static, non-templated assets. Default ".".
	Content string `yaml:"content"`

	// Templates is the root the Directory Walker traverses by default.
	// Default "templates".
	Templates string `yaml:"templates"`

	// UndefinedBehavior selects the renderer's undefined-symbol policy.
	UndefinedBehavior UndefinedBehavior `yaml:"undefined_behavior"`
}

// Requirements pins the archetect host version an archetype was authored
// against.
type Requirements struct {
	// Archetect is a semver constraint string, e.g. ">=1.0.0, <2.0.0". Empty
	// means "any host version is acceptable".
	Archetect string `yaml:"archetect"`
}

// ArchetypeManifest is the declarative document attached to an archetype
// bundle.
type ArchetypeManifest struct {
	Description string   `yaml:"description"`
	Authors     []string `yaml:"authors"`
	Languages   []string `yaml:"languages"`
	Frameworks  []string `yaml:"frameworks"`
	Tags        []string `yaml:"tags"`

	Requires   Requirements         `yaml:"requires"`
	Scripting  Scripting            `yaml:"scripting"`
	Templating Templating           `yaml:"templating"`
	Components map[string]string    `yaml:"components"`
}

// WithDefaults returns a copy of the manifest with zero-valued fields filled
// in with the engine's conventional defaults.
func (m ArchetypeManifest) WithDefaults() ArchetypeManifest {
	if m.Scripting.Main == "" {
		m.Scripting.Main = "archetype.js"
	}
	if m.Scripting.Modules == "" {
		m.Scripting.Modules = "modules"
	}
	if m.Templating.Content == "" {
		m.Templating.Content = "."
	}
	if m.Templating.Templates == "" {
		m.Templating.Templates = "templates"
	}
	if m.Templating.UndefinedBehavior == "" {
		m.Templating.UndefinedBehavior = UndefinedLenient
	}
	return m
}

// CatalogEntryKind distinguishes the three catalog entry shapes.
type CatalogEntryKind string

const (
	CatalogEntryGroup     CatalogEntryKind = "group"
	CatalogEntryCatalog   CatalogEntryKind = "catalog"
	CatalogEntryArchetype CatalogEntryKind = "archetype"
)

// CatalogEntry is a single node in a catalog tree.
type CatalogEntry struct {
	Kind        CatalogEntryKind `yaml:"kind"`
	Description string           `yaml:"description"`

	// Children populates a "group" entry.
	Children []CatalogEntry `yaml:"entries,omitempty"`

	// Source populates "catalog" and "archetype" entries.
	Source string `yaml:"source,omitempty"`

	// Answers, Switches, UseDefaults, UseDefaultsAll populate an
	// "archetype" entry; they extend the outer Render Context when this
	// entry is selected.
	Answers        map[string]Answer `yaml:"answers,omitempty"`
	Switches       []string          `yaml:"switches,omitempty"`
	UseDefaults    []string          `yaml:"use_defaults,omitempty"`
	UseDefaultsAll bool              `yaml:"use_defaults_all,omitempty"`
}

// CatalogManifest is a tree of entries used to present a selection UI.
type CatalogManifest struct {
	Requires Requirements   `yaml:"requires"`
	Entries  []CatalogEntry `yaml:"entries"`
}

// Validate enforces the invariant: a catalog (or a group) with no
// entries is rejected.
func (m *CatalogManifest) Validate() error {
	if len(m.Entries) == 0 {
		return ErrCatalogEmpty
	}
	return validateGroupChildren(m.Entries)
}

func validateGroupChildren(entries []CatalogEntry) error {
	for _, e := range entries {
		if e.Kind == CatalogEntryGroup {
			if len(e.Children) == 0 {
				return ErrCatalogGroupEmpty
			}
			if err := validateGroupChildren(e.Children); err != nil {
				return err
			}
		}
	}
	return nil
}
