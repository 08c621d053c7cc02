// Package arbiter implements the Prompt/Answer Arbiter: the deterministic
// pipeline that resolves a prompt's value from an explicit answer, a
// use-defaults rule, headless policy, or an interactive round-trip through
// the duplex driver.
package arbiter

import (
	"context"
	"fmt"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
	"github.com/madstone-tech/archetect-go/internal/core/usecases"
)

// Arbiter implements usecases.Arbiter.
type Arbiter struct {
	Driver   usecases.Driver
	Renderer usecases.TemplateRenderer
}

// NewArbiter builds an Arbiter that falls back to an interactive prompt
// over driver when no answer, default, or use-defaults rule applies.
func NewArbiter(driver usecases.Driver, renderer usecases.TemplateRenderer) *Arbiter {
	return &Arbiter{Driver: driver, Renderer: renderer}
}

// Resolve implements the pipeline: explicit answer (validated) takes
// priority, then use-defaults/use-defaults-all, then headless rules, and
// finally an interactive prompt.
func (a *Arbiter) Resolve(ctx context.Context, rc *entities.RenderContext, p entities.PromptDescriptor) (any, error) {
	if p.Key != "" {
		if raw, ok := rc.Answers[p.Key]; ok {
			value, err := a.materialize(ctx, rc, raw)
			if err != nil {
				return nil, err
			}
			if err := validate(p, value); err != nil {
				return nil, &entities.AnswerValidationError{Key: p.Key, Prompt: p.Message, Answer: value, Requires: err.Error()}
			}
			return value, nil
		}
	}

	if rc.ShouldUseDefault(p.Key) {
		if p.Default != nil {
			return p.Default, nil
		}
		if p.Optional {
			return nil, nil
		}
		if !rc.Headless {
			return a.promptInteractive(ctx, p)
		}
		return nil, entities.ErrHeadlessNoAnswer
	}

	if rc.Headless {
		if p.Default != nil {
			return p.Default, nil
		}
		if p.Optional {
			return nil, nil
		}
		return nil, entities.ErrHeadlessNoAnswer
	}

	return a.promptInteractive(ctx, p)
}

// materialize resolves a raw answer value (or an entities.Answer wrapper)
// against rc, rendering templated answers before use.
func (a *Arbiter) materialize(ctx context.Context, rc *entities.RenderContext, raw any) (any, error) {
	ans, ok := raw.(entities.Answer)
	if !ok {
		return raw, nil
	}
	if !ans.IsTemplate() {
		return ans.Literal, nil
	}
	rendered, err := a.Renderer.RenderString(ctx, ans.Template, rc.TemplateVars(), entities.UndefinedLenient)
	if err != nil {
		return nil, err
	}
	return rendered, nil
}

func (a *Arbiter) promptInteractive(ctx context.Context, p entities.PromptDescriptor) (any, error) {
	msg := usecases.ScriptMessage{
		PromptMessage:     p.Message,
		PromptKey:         p.Key,
		PromptDefault:     p.Default,
		PromptHelp:        p.Help,
		PromptPlaceholder: p.Placeholder,
		PromptOptional:    p.Optional,
		PromptMin:         p.MinValue,
		PromptMax:         p.MaxValue,
		PromptMinItems:    p.MinItems,
		PromptMaxItems:    p.MaxItems,
		PromptOptions:     p.Options,
		PromptPageSize:    p.PageSize,
	}

	switch p.Kind {
	case entities.PromptText:
		msg.Kind = usecases.MsgPromptForText
	case entities.PromptInteger:
		msg.Kind = usecases.MsgPromptForInt
	case entities.PromptBoolean:
		msg.Kind = usecases.MsgPromptForBool
	case entities.PromptList:
		msg.Kind = usecases.MsgPromptForList
	case entities.PromptSelect:
		msg.Kind = usecases.MsgPromptForSelect
	case entities.PromptMultiSelect:
		msg.Kind = usecases.MsgPromptForMultiSelect
	case entities.PromptEditor:
		msg.Kind = usecases.MsgPromptForEditor
	default:
		return nil, fmt.Errorf("unknown prompt kind %q", p.Kind)
	}

	resp, err := a.Driver.Request(ctx, msg)
	if err != nil {
		return nil, err
	}

	switch resp.Kind {
	case usecases.MsgAbort:
		return nil, &entities.AbortError{}
	case usecases.MsgNone:
		if p.Optional {
			return nil, nil
		}
		return nil, entities.ErrAnswerNotOptional
	case usecases.MsgError:
		return nil, &entities.ClientReportedError{Message: resp.ErrorMessage}
	}

	value, err := typedValue(p.Kind, resp)
	if err != nil {
		return nil, err
	}
	if err := validate(p, value); err != nil {
		return nil, &entities.AnswerValidationError{Key: p.Key, Prompt: p.Message, Answer: value, Requires: err.Error()}
	}
	return value, nil
}

// typedValue extracts the Go value matching p's kind from a ClientMessage,
// enforcing that the response variant matches the prompt that was issued.
func typedValue(kind entities.PromptKind, resp usecases.ClientMessage) (any, error) {
	switch kind {
	case entities.PromptText, entities.PromptEditor:
		if resp.Kind != usecases.MsgString {
			return nil, &entities.PromptTypeMismatchError{Expected: "String", Got: string(resp.Kind)}
		}
		return resp.StringValue, nil
	case entities.PromptInteger:
		if resp.Kind != usecases.MsgInteger {
			return nil, &entities.PromptTypeMismatchError{Expected: "Integer", Got: string(resp.Kind)}
		}
		return resp.IntegerValue, nil
	case entities.PromptBoolean:
		if resp.Kind != usecases.MsgBoolean {
			return nil, &entities.PromptTypeMismatchError{Expected: "Boolean", Got: string(resp.Kind)}
		}
		return resp.BoolValue, nil
	case entities.PromptList, entities.PromptMultiSelect:
		if resp.Kind != usecases.MsgArray {
			return nil, &entities.PromptTypeMismatchError{Expected: "Array", Got: string(resp.Kind)}
		}
		return resp.ArrayValue, nil
	case entities.PromptSelect:
		if resp.Kind != usecases.MsgString {
			return nil, &entities.PromptTypeMismatchError{Expected: "String", Got: string(resp.Kind)}
		}
		return resp.StringValue, nil
	default:
		return nil, fmt.Errorf("unknown prompt kind %q", kind)
	}
}

// validate enforces kind-specific restrictions (length/range/item-count/
// option membership) on an already-typed value.
func validate(p entities.PromptDescriptor, value any) error {
	switch p.Kind {
	case entities.PromptText, entities.PromptEditor:
		s, _ := value.(string)
		if p.MinLength > 0 && len(s) < p.MinLength {
			return fmt.Errorf("must be at least %d characters", p.MinLength)
		}
		if p.MaxLength > 0 && len(s) > p.MaxLength {
			return fmt.Errorf("must be at most %d characters", p.MaxLength)
		}
	case entities.PromptInteger:
		n, _ := value.(int64)
		if p.MinValue != nil && n < *p.MinValue {
			return fmt.Errorf("must be >= %d", *p.MinValue)
		}
		if p.MaxValue != nil && n > *p.MaxValue {
			return fmt.Errorf("must be <= %d", *p.MaxValue)
		}
	case entities.PromptList, entities.PromptMultiSelect:
		items, _ := value.([]string)
		if p.MinItems > 0 && len(items) < p.MinItems {
			return fmt.Errorf("must supply at least %d items", p.MinItems)
		}
		if p.MaxItems > 0 && len(items) > p.MaxItems {
			return fmt.Errorf("must supply at most %d items", p.MaxItems)
		}
	case entities.PromptSelect:
		s, _ := value.(string)
		if len(p.Options) > 0 && !contains(p.Options, s) {
			return fmt.Errorf("%q is not one of the allowed options", s)
		}
	}
	return nil
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
