package script

import (
	"context"
	"os"
	"testing"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
	"github.com/madstone-tech/archetect-go/internal/core/usecases"
)

type stubRenderer struct{}

func (stubRenderer) RenderString(ctx context.Context, tmpl string, vars map[string]any, undef entities.UndefinedBehavior) (string, error) {
	return tmpl, nil
}

func (stubRenderer) RenderFile(ctx context.Context, path string, vars map[string]any, undef entities.UndefinedBehavior) ([]byte, error) {
	return nil, nil
}

type stubDriver struct {
	notified []usecases.ScriptMessage
}

func (s *stubDriver) Request(ctx context.Context, msg usecases.ScriptMessage) (usecases.ClientMessage, error) {
	return usecases.ClientMessage{}, nil
}

func (s *stubDriver) Notify(ctx context.Context, msg usecases.ScriptMessage) error {
	s.notified = append(s.notified, msg)
	return nil
}

func newTestEngine(driver usecases.Driver) *Engine {
	return NewEngine(stubRenderer{}, nil, nil, nil, nil, driver, false)
}

func writeArchetype(t *testing.T, dir, script string) (*entities.Source, *entities.ArchetypeManifest) {
	t.Helper()
	path := dir + "/archetype.js"
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	src := &entities.Source{LocalPath: dir}
	manifest := entities.ArchetypeManifest{}.WithDefaults()
	return src, &manifest
}

func TestEngine_RunMain_SetAndLog(t *testing.T) {
	dir := t.TempDir()
	driver := &stubDriver{}
	engine := newTestEngine(driver)

	src, manifest := writeArchetype(t, dir, `
		set("name", "Ada");
		log("info", "hello " + render("{{ name }}"));
	`)

	rc, err := entities.NewRenderContext(t.TempDir())
	if err != nil {
		t.Fatalf("NewRenderContext: %v", err)
	}

	if err := engine.RunMain(context.Background(), src, manifest, rc); err != nil {
		t.Fatalf("RunMain: %v", err)
	}
	if rc.Answers["name"] != "Ada" {
		t.Errorf("Answers[name] = %v, want Ada", rc.Answers["name"])
	}
	if len(driver.notified) != 1 || driver.notified[0].Kind != usecases.MsgLogInfo {
		t.Fatalf("got %+v", driver.notified)
	}
}

func TestEngine_RunMain_SetCasesExpandsSiblingKeys(t *testing.T) {
	dir := t.TempDir()
	driver := &stubDriver{}
	engine := newTestEngine(driver)

	src, manifest := writeArchetype(t, dir, `
		set("name", "OrderItem", {cases: ["snake", "kebab", "train"]});
		set("tags", ["OrderItem", "UserProfile"], {cases: ["snake"]});
	`)

	rc, err := entities.NewRenderContext(t.TempDir())
	if err != nil {
		t.Fatalf("NewRenderContext: %v", err)
	}

	if err := engine.RunMain(context.Background(), src, manifest, rc); err != nil {
		t.Fatalf("RunMain: %v", err)
	}

	if got, want := rc.Answers["name_snake"], "order_item"; got != want {
		t.Errorf("Answers[name_snake] = %v, want %v", got, want)
	}
	if got, want := rc.Answers["name_kebab"], "order-item"; got != want {
		t.Errorf("Answers[name_kebab] = %v, want %v", got, want)
	}
	if got, want := rc.Answers["name_train"], "Order-Item"; got != want {
		t.Errorf("Answers[name_train] = %v, want %v", got, want)
	}

	tags, ok := rc.Answers["tags_snake"].([]any)
	if !ok || len(tags) != 2 {
		t.Fatalf("Answers[tags_snake] = %#v, want a 2-element list", rc.Answers["tags_snake"])
	}
	if tags[0] != "order_item" || tags[1] != "user_profile" {
		t.Errorf("Answers[tags_snake] = %v, want [order_item user_profile]", tags)
	}
}

func TestEngine_RunMain_EvalIsDisabled(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine(&stubDriver{})

	src, manifest := writeArchetype(t, dir, `eval("1+1")`)
	rc, _ := entities.NewRenderContext(t.TempDir())

	if err := engine.RunMain(context.Background(), src, manifest, rc); err == nil {
		t.Fatal("expected an error from calling eval, got nil")
	}
}

func TestEngine_RunMain_ExecuteDisabledByDefault(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine(&stubDriver{})

	src, manifest := writeArchetype(t, dir, `execute("echo", ["hi"])`)
	rc, _ := entities.NewRenderContext(t.TempDir())

	if err := engine.RunMain(context.Background(), src, manifest, rc); err == nil {
		t.Fatal("expected an error, allow_exec defaults to false")
	}
}
