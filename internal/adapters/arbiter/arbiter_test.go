package arbiter

import (
	"context"
	"testing"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
	"github.com/madstone-tech/archetect-go/internal/core/usecases"
)

type stubDriver struct {
	resp usecases.ClientMessage
	err  error
	got  usecases.ScriptMessage
}

func (s *stubDriver) Request(ctx context.Context, msg usecases.ScriptMessage) (usecases.ClientMessage, error) {
	s.got = msg
	return s.resp, s.err
}

func (s *stubDriver) Notify(ctx context.Context, msg usecases.ScriptMessage) error { return nil }

type passthroughRenderer struct{}

func (passthroughRenderer) RenderString(ctx context.Context, tmpl string, vars map[string]any, undef entities.UndefinedBehavior) (string, error) {
	return tmpl, nil
}

func (passthroughRenderer) RenderFile(ctx context.Context, path string, vars map[string]any, undef entities.UndefinedBehavior) ([]byte, error) {
	return nil, nil
}

func newRC() *entities.RenderContext {
	rc, _ := entities.NewRenderContext(".")
	return rc
}

func TestArbiter_ExplicitAnswerWins(t *testing.T) {
	driver := &stubDriver{}
	a := NewArbiter(driver, passthroughRenderer{})
	rc := newRC()
	rc.Answers["name"] = "Ada"

	v, err := a.Resolve(context.Background(), rc, entities.PromptDescriptor{Kind: entities.PromptText, Key: "name", Message: "name?"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != "Ada" {
		t.Errorf("got %v, want Ada", v)
	}
	if driver.got.Kind != "" {
		t.Error("driver should not have been consulted when an explicit answer exists")
	}
}

func TestArbiter_UseDefaultsAppliesDefault(t *testing.T) {
	driver := &stubDriver{}
	a := NewArbiter(driver, passthroughRenderer{})
	rc := newRC()
	rc.UseDefaults["color"] = struct{}{}

	v, err := a.Resolve(context.Background(), rc, entities.PromptDescriptor{Kind: entities.PromptText, Key: "color", Default: "blue"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != "blue" {
		t.Errorf("got %v, want blue", v)
	}
}

func TestArbiter_UseDefaultsWithoutDefaultFallsThroughToPrompt(t *testing.T) {
	driver := &stubDriver{resp: usecases.ClientMessage{Kind: usecases.MsgString, StringValue: "red"}}
	a := NewArbiter(driver, passthroughRenderer{})
	rc := newRC()
	rc.UseDefaults["color"] = struct{}{}

	v, err := a.Resolve(context.Background(), rc, entities.PromptDescriptor{Kind: entities.PromptText, Key: "color", Message: "color?"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != "red" {
		t.Errorf("got %v, want red", v)
	}
	if driver.got.Kind != usecases.MsgPromptForText {
		t.Errorf("driver.got.Kind = %v, want MsgPromptForText; use-defaults without a default must fall through to an interactive prompt outside headless mode", driver.got.Kind)
	}
}

func TestArbiter_HeadlessUseDefaultsWithoutDefaultErrors(t *testing.T) {
	driver := &stubDriver{}
	a := NewArbiter(driver, passthroughRenderer{})
	rc := newRC()
	rc.Headless = true
	rc.UseDefaults["color"] = struct{}{}

	_, err := a.Resolve(context.Background(), rc, entities.PromptDescriptor{Kind: entities.PromptText, Key: "color"})
	if err != entities.ErrHeadlessNoAnswer {
		t.Errorf("got %v, want ErrHeadlessNoAnswer", err)
	}
}

func TestArbiter_HeadlessWithoutDefaultOrAnswerErrors(t *testing.T) {
	driver := &stubDriver{}
	a := NewArbiter(driver, passthroughRenderer{})
	rc := newRC()
	rc.Headless = true

	_, err := a.Resolve(context.Background(), rc, entities.PromptDescriptor{Kind: entities.PromptText, Key: "name"})
	if err != entities.ErrHeadlessNoAnswer {
		t.Errorf("got %v, want ErrHeadlessNoAnswer", err)
	}
}

func TestArbiter_InteractivePromptRoundTrip(t *testing.T) {
	driver := &stubDriver{resp: usecases.ClientMessage{Kind: usecases.MsgString, StringValue: "Grace"}}
	a := NewArbiter(driver, passthroughRenderer{})
	rc := newRC()

	v, err := a.Resolve(context.Background(), rc, entities.PromptDescriptor{Kind: entities.PromptText, Key: "name", Message: "name?"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != "Grace" {
		t.Errorf("got %v, want Grace", v)
	}
	if driver.got.Kind != usecases.MsgPromptForText {
		t.Errorf("driver.got.Kind = %v, want MsgPromptForText", driver.got.Kind)
	}
}

func TestArbiter_AbortResponseReturnsAbortError(t *testing.T) {
	driver := &stubDriver{resp: usecases.ClientMessage{Kind: usecases.MsgAbort}}
	a := NewArbiter(driver, passthroughRenderer{})
	rc := newRC()

	_, err := a.Resolve(context.Background(), rc, entities.PromptDescriptor{Kind: entities.PromptText, Key: "name"})
	if _, ok := err.(*entities.AbortError); !ok {
		t.Fatalf("got %v (%T), want *entities.AbortError", err, err)
	}
}

func TestArbiter_TypeMismatchResponseErrors(t *testing.T) {
	driver := &stubDriver{resp: usecases.ClientMessage{Kind: usecases.MsgBoolean, BoolValue: true}}
	a := NewArbiter(driver, passthroughRenderer{})
	rc := newRC()

	_, err := a.Resolve(context.Background(), rc, entities.PromptDescriptor{Kind: entities.PromptText, Key: "name"})
	if _, ok := err.(*entities.PromptTypeMismatchError); !ok {
		t.Fatalf("got %v (%T), want *entities.PromptTypeMismatchError", err, err)
	}
}

func TestArbiter_IntegerRangeValidation(t *testing.T) {
	min := int64(1)
	max := int64(10)
	driver := &stubDriver{resp: usecases.ClientMessage{Kind: usecases.MsgInteger, IntegerValue: 42}}
	a := NewArbiter(driver, passthroughRenderer{})
	rc := newRC()

	_, err := a.Resolve(context.Background(), rc, entities.PromptDescriptor{
		Kind: entities.PromptInteger, Key: "count", MinValue: &min, MaxValue: &max,
	})
	if _, ok := err.(*entities.AnswerValidationError); !ok {
		t.Fatalf("got %v (%T), want *entities.AnswerValidationError", err, err)
	}
}

func TestArbiter_SelectOptionMembership(t *testing.T) {
	driver := &stubDriver{resp: usecases.ClientMessage{Kind: usecases.MsgString, StringValue: "purple"}}
	a := NewArbiter(driver, passthroughRenderer{})
	rc := newRC()

	_, err := a.Resolve(context.Background(), rc, entities.PromptDescriptor{
		Kind: entities.PromptSelect, Key: "color", Options: []string{"red", "blue"},
	})
	if _, ok := err.(*entities.AnswerValidationError); !ok {
		t.Fatalf("got %v (%T), want *entities.AnswerValidationError", err, err)
	}
}

func TestArbiter_TemplatedAnswerIsRendered(t *testing.T) {
	driver := &stubDriver{}
	a := NewArbiter(driver, passthroughRenderer{})
	rc := newRC()
	rc.Answers["greeting"] = entities.Answer{Template: "hello {{ name }}"}

	v, err := a.Resolve(context.Background(), rc, entities.PromptDescriptor{Kind: entities.PromptText, Key: "greeting"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != "hello {{ name }}" {
		t.Errorf("got %v", v)
	}
}
