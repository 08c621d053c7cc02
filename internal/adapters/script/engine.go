// Package script implements the Script Engine: each archetype render gets
// its own goja ECMAScript VM, with a bound host API that reaches back into
// the Arbiter, Directory Walker, Source Resolver, and Duplex Driver. Scripts
// never see Go channels or the filesystem directly — every I/O-performing
// call goes through one of those ports.
package script

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dop251/goja"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
	"github.com/madstone-tech/archetect-go/internal/core/usecases"
)

// Engine implements usecases.ScriptEngine on top of goja.
type Engine struct {
	Renderer  usecases.TemplateRenderer
	Walker    usecases.DirectoryWalker
	Arbiter   usecases.Arbiter
	Resolver  usecases.SourceResolver
	Manifests usecases.ManifestLoader
	Driver    usecases.Driver
	AllowExec bool
}

// NewEngine builds a Script Engine wired to the ports it needs to satisfy
// the host API surface.
func NewEngine(renderer usecases.TemplateRenderer, walker usecases.DirectoryWalker, arbiter usecases.Arbiter, resolver usecases.SourceResolver, manifests usecases.ManifestLoader, driver usecases.Driver, allowExec bool) *Engine {
	return &Engine{
		Renderer:  renderer,
		Walker:    walker,
		Arbiter:   arbiter,
		Resolver:  resolver,
		Manifests: manifests,
		Driver:    driver,
		AllowExec: allowExec,
	}
}

// RunMain loads and executes an archetype's main script against a fresh VM.
func (e *Engine) RunMain(ctx context.Context, src *entities.Source, manifest *entities.ArchetypeManifest, rc *entities.RenderContext) error {
	mainPath := filepath.Join(src.LocalPath, manifest.Scripting.Main)
	code, err := os.ReadFile(mainPath)
	if err != nil {
		return &entities.RenderError{Path: mainPath, Op: "read", Err: err}
	}

	vm := goja.New()
	guardDynamicEval(vm)

	b := &bindings{
		ctx:       ctx,
		engine:    e,
		src:       src,
		manifest:  manifest,
		rc:        rc,
		vm:        vm,
		modules:   filepath.Join(src.LocalPath, manifest.Scripting.Modules),
	}
	b.install()

	program, err := goja.Compile(manifest.Scripting.Main, string(code), false)
	if err != nil {
		return &entities.RenderError{Path: mainPath, Op: "file-template", Err: fmt.Errorf("compiling script: %w", err)}
	}

	if _, err := vm.RunProgram(program); err != nil {
		return &entities.RenderError{Path: mainPath, Op: "file-template", Err: fmt.Errorf("running script: %w", err)}
	}
	return nil
}

// guardDynamicEval replaces eval and the Function constructor on the global
// object with a function that throws a TypeError, so a script cannot
// synthesize and run code outside what
// was loaded by RunMain — the Go equivalent of disabling a scripting
// language's own dynamic-eval sandboxing knob.
func guardDynamicEval(vm *goja.Runtime) {
	blocked := func(call goja.FunctionCall) goja.Value {
		panic(vm.NewTypeError("dynamic code evaluation is disabled"))
	}
	vm.Set("eval", blocked)
	vm.Set("Function", blocked)
}
