package template

import (
	"context"
	"testing"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
)

func TestEngine_RenderString_TemplateFunctions(t *testing.T) {
	e := NewEngine(t.TempDir())
	rc, err := entities.NewRenderContext(t.TempDir())
	if err != nil {
		t.Fatalf("NewRenderContext: %v", err)
	}
	rc.EnableSwitch("with_metrics")

	out, err := e.RenderString(context.Background(), `{% if switch_enabled('with_metrics') %}on{% else %}off{% endif %}`, rc.TemplateVars(), entities.UndefinedLenient)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if out != "on" {
		t.Errorf("switch_enabled('with_metrics') rendered %q, want \"on\"", out)
	}

	out, err = e.RenderString(context.Background(), `{% if switch_enabled('unset') %}on{% else %}off{% endif %}`, rc.TemplateVars(), entities.UndefinedLenient)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if out != "off" {
		t.Errorf("switch_enabled('unset') rendered %q, want \"off\"", out)
	}

	out, err = e.RenderString(context.Background(), `{{ uuid() }}`, rc.TemplateVars(), entities.UndefinedLenient)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if len(out) != 36 {
		t.Errorf("uuid() rendered %q, want a 36-character UUID", out)
	}
}

func TestEngine_RenderString_StrictUndefinedAllowsBuiltinFunctions(t *testing.T) {
	e := NewEngine(t.TempDir())
	rc, err := entities.NewRenderContext(t.TempDir())
	if err != nil {
		t.Fatalf("NewRenderContext: %v", err)
	}

	_, err = e.RenderString(context.Background(), `{{ uuid() }}`, rc.TemplateVars(), entities.UndefinedStrict)
	if err != nil {
		t.Fatalf("RenderString under Strict mode should not treat uuid as an undefined symbol: %v", err)
	}
}
