package entities

import "gopkg.in/yaml.v3"

// PromptKind enumerates the typed prompt variants a script can request.
type PromptKind string

const (
	PromptText        PromptKind = "text"
	PromptInteger     PromptKind = "integer"
	PromptBoolean     PromptKind = "boolean"
	PromptList        PromptKind = "list"
	PromptSelect      PromptKind = "select"
	PromptMultiSelect PromptKind = "multi-select"
	PromptEditor      PromptKind = "editor"
)

// PromptDescriptor is a typed request built by the script engine bindings
// and resolved by the Prompt/Answer Arbiter.
type PromptDescriptor struct {
	Kind    PromptKind
	Message string

	// Key, when non-empty, is the identifier used to consult the answer map
	// and the use-defaults set.
	Key string

	// Default is the value returned when use-defaults applies and a default
	// is present. May be nil.
	Default any

	Placeholder string
	Help        string
	Optional    bool

	// Kind-specific restrictions. Zero value means "no restriction" except
	// where noted.
	MinLength int // text/editor; 0 means no minimum
	MaxLength int // text/editor; 0 means unbounded
	MinValue  *int64
	MaxValue  *int64
	MinItems  int // list
	MaxItems  int // list; 0 means unbounded
	Options   []string
	PageSize  int
}

// Answer is either a literal value or a templated expression to be rendered
// against the current context before use.
type Answer struct {
	// Literal holds a scalar or collection value when Template is empty.
	Literal any `yaml:"-"`

	// Template, when non-empty, is rendered against the current context
	// before being used as the answer's value.
	Template string `yaml:"template,omitempty"`
}

// IsTemplate reports whether this answer must be rendered before use.
func (a Answer) IsTemplate() bool { return a.Template != "" }

// UnmarshalYAML allows an Answer to be specified either as a bare scalar/
// sequence/mapping (taken as Literal) or as `{template: "..."}`.
func (a *Answer) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		var tmpl struct {
			Template string `yaml:"template"`
		}
		if err := value.Decode(&tmpl); err == nil && tmpl.Template != "" {
			a.Template = tmpl.Template
			return nil
		}
	}
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	a.Literal = raw
	return nil
}
