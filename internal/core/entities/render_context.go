package entities

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// OverwritePolicy is the per-render-call enum for pre-existing destination
// files. Default is Preserve.
type OverwritePolicy string

const (
	OverwriteOverwrite OverwritePolicy = "Overwrite"
	OverwritePreserve  OverwritePolicy = "Preserve"
	OverwritePrompt    OverwritePolicy = "Prompt"
)

// RenderContext is the per-render state carried through an archetype render
// and cloned (with destination rewrite) when composing sub-archetypes.
type RenderContext struct {
	Destination string

	// Answers is the merged answer mapping; keys are identifiers, values are
	// arbitrary scalar or collection values.
	Answers map[string]any

	// Switches is the set of active free-form string tags.
	Switches map[string]struct{}

	// UseDefaults is the set of identifier names for which prompts must
	// auto-accept their default.
	UseDefaults map[string]struct{}

	// UseDefaultsAll auto-accepts defaults for every prompt.
	UseDefaultsAll bool

	// Headless forbids any interactive prompt; only defaults or pre-supplied
	// answers are allowed.
	Headless bool

	// RulesStack carries the active path-rule stack for the current walk scope.
	RulesStack *PathRuleStack

	// Overwrite is the overwrite policy in effect for writes made under this
	// context.
	Overwrite OverwritePolicy
}

// NewRenderContext builds a Render Context rooted at destination; destination
// must be resolvable to an absolute, creatable path.
func NewRenderContext(destination string) (*RenderContext, error) {
	abs, err := filepath.Abs(destination)
	if err != nil {
		return nil, fmt.Errorf("resolving destination %q: %w", destination, err)
	}
	return &RenderContext{
		Destination: abs,
		Answers:     map[string]any{},
		Switches:    map[string]struct{}{},
		UseDefaults: map[string]struct{}{},
		RulesStack:  &PathRuleStack{},
		Overwrite:   OverwritePreserve,
	}, nil
}

// SwitchEnabled reports whether name is an active switch.
func (rc *RenderContext) SwitchEnabled(name string) bool {
	_, ok := rc.Switches[name]
	return ok
}

// EnableSwitch activates a switch.
func (rc *RenderContext) EnableSwitch(name string) { rc.Switches[name] = struct{}{} }

// TemplateVars returns the answer map augmented with the two template
// functions every render call must expose: uuid(), a fresh random UUID per
// call, and switch_enabled(name), a lookup against this context's active
// switches. Callers pass the result to a TemplateRenderer in place of
// Answers directly.
func (rc *RenderContext) TemplateVars() map[string]any {
	vars := make(map[string]any, len(rc.Answers)+2)
	for k, v := range rc.Answers {
		vars[k] = v
	}
	vars["uuid"] = func() string { return uuid.NewString() }
	vars["switch_enabled"] = func(name string) bool { return rc.SwitchEnabled(name) }
	return vars
}

// ShouldUseDefault reports whether a prompt for key should auto-accept its
// default.
func (rc *RenderContext) ShouldUseDefault(key string) bool {
	if rc.UseDefaultsAll {
		return true
	}
	if key == "" {
		return false
	}
	_, ok := rc.UseDefaults[key]
	return ok
}

// Clone produces an independent Render Context for composing a child
// archetype into subDestination, inheriting answers/switches/use-defaults
// unless overridden by the caller afterwards.
func (rc *RenderContext) Clone(subDestination string) (*RenderContext, error) {
	if !filepath.IsAbs(subDestination) {
		subDestination = filepath.Join(rc.Destination, subDestination)
	}
	abs, err := filepath.Abs(subDestination)
	if err != nil {
		return nil, fmt.Errorf("resolving destination %q: %w", subDestination, err)
	}

	answers := make(map[string]any, len(rc.Answers))
	for k, v := range rc.Answers {
		answers[k] = v
	}
	switches := make(map[string]struct{}, len(rc.Switches))
	for k, v := range rc.Switches {
		switches[k] = v
	}
	useDefaults := make(map[string]struct{}, len(rc.UseDefaults))
	for k, v := range rc.UseDefaults {
		useDefaults[k] = v
	}

	return &RenderContext{
		Destination:    abs,
		Answers:        answers,
		Switches:       switches,
		UseDefaults:    useDefaults,
		UseDefaultsAll: rc.UseDefaultsAll,
		Headless:       rc.Headless,
		RulesStack:     rc.RulesStack.Clone(),
		Overwrite:      rc.Overwrite,
	}, nil
}
