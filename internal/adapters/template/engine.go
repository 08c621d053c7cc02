// Package template implements the Template Renderer on top of pongo2, a
// Jinja-style engine, adding the three undefined-symbol policies archetype
// authors select via templating.undefined_behavior.
package template

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/flosch/pongo2/v4"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
	"github.com/madstone-tech/archetect-go/pkg/inflect"
)

// identifierRef matches a bare root identifier referenced inside a
// pongo2/Jinja tag or variable expression: {{ name }}, {{ name.field }},
// {% if name %}, {% for x in name %}.
var identifierRef = regexp.MustCompile(`(?:\{\{\s*|\{%-?\s*(?:if|elif|for\s+\w+\s+in)\s+)([A-Za-z_][A-Za-z0-9_]*)`)

// builtinNames are identifiers pongo2 itself binds inside control structures
// and must never be treated as undefined context variables.
var builtinNames = map[string]bool{
	"forloop": true, "loop": true, "not": true, "and": true, "or": true,
	"true": true, "false": true, "none": true, "nil": true,
}

func init() {
	for name, fn := range inflect.Filters {
		fn := fn
		_ = pongo2.RegisterFilter(name, func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(fn(in.String())), nil
		})
	}
}

// Engine implements usecases.TemplateRenderer.
type Engine struct {
	set *pongo2.TemplateSet
}

// NewEngine builds a renderer that loads included/extended templates
// relative to templatesRoot.
func NewEngine(templatesRoot string) *Engine {
	loader := pongo2.NewLocalFileSystemLoader(templatesRoot)
	return &Engine{set: pongo2.NewSet("archetect", loader)}
}

// RenderString expands a single template string against vars, honoring the
// requested undefined-symbol policy.
func (e *Engine) RenderString(ctx context.Context, tmpl string, vars map[string]any, undef entities.UndefinedBehavior) (string, error) {
	if undef == entities.UndefinedStrict {
		if missing := firstUndefined(tmpl, vars); missing != "" {
			return "", &entities.RenderError{Path: "<string>", Op: "path-template", Err: fmt.Errorf("undefined symbol %q", missing)}
		}
	}

	t, err := e.set.FromString(tmpl)
	if err != nil {
		return "", &entities.RenderError{Path: "<string>", Op: "path-template", Err: err}
	}

	out, err := t.Execute(pongo2.Context(vars))
	if err != nil {
		return "", &entities.RenderError{Path: "<string>", Op: "path-template", Err: err}
	}
	return out, nil
}

// RenderFile expands the contents of a template file against vars.
func (e *Engine) RenderFile(ctx context.Context, path string, vars map[string]any, undef entities.UndefinedBehavior) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &entities.RenderError{Path: path, Op: "read", Err: err}
	}

	if undef == entities.UndefinedStrict {
		if missing := firstUndefined(string(raw), vars); missing != "" {
			return nil, &entities.RenderError{Path: path, Op: "file-template", Err: fmt.Errorf("undefined symbol %q", missing)}
		}
	}

	t, err := e.set.FromString(string(raw))
	if err != nil {
		return nil, &entities.RenderError{Path: path, Op: "file-template", Err: err}
	}

	out, err := t.Execute(pongo2.Context(vars))
	if err != nil {
		return nil, &entities.RenderError{Path: path, Op: "file-template", Err: err}
	}
	return []byte(out), nil
}

// firstUndefined returns the first root identifier referenced by tmpl that
// is absent from vars, or "" if every reference resolves. Lenient and
// Chainable modes skip this check entirely: pongo2 already renders a
// missing variable as an empty value, and further filter/attribute chaining
// on that empty value never panics, which is exactly "chainable" semantics.
func firstUndefined(tmpl string, vars map[string]any) string {
	seen := map[string]bool{}
	for _, m := range identifierRef.FindAllStringSubmatch(tmpl, -1) {
		name := m[1]
		if seen[name] || builtinNames[name] {
			continue
		}
		seen[name] = true
		if _, ok := vars[name]; !ok {
			return name
		}
	}
	return ""
}
