package script

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/google/uuid"
	toon "github.com/toon-format/toon-go"
	"gopkg.in/yaml.v3"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
	"github.com/madstone-tech/archetect-go/internal/core/usecases"
	"github.com/madstone-tech/archetect-go/pkg/inflect"
)

// bindings holds the per-render state every host function closes over.
type bindings struct {
	ctx      context.Context
	engine   *Engine
	src      *entities.Source
	manifest *entities.ArchetypeManifest
	rc       *entities.RenderContext
	vm       *goja.Runtime
	modules  string
}

func (b *bindings) install() {
	vm := b.vm
	vm.Set("prompt", b.prompt)
	vm.Set("promptText", b.promptText)
	vm.Set("promptInt", b.promptInt)
	vm.Set("promptBool", b.promptBool)
	vm.Set("promptList", b.promptList)
	vm.Set("promptSelect", b.promptSelect)
	vm.Set("promptMultiSelect", b.promptMultiSelect)
	vm.Set("promptEditor", b.promptEditor)
	vm.Set("set", b.set)
	vm.Set("render", b.render)
	vm.Set("Directory", b.directory)
	vm.Set("Archetype", b.archetype)
	vm.Set("asJSON", b.asJSON)
	vm.Set("asYAML", b.asYAML)
	vm.Set("fromJSON", b.fromJSON)
	vm.Set("fromYAML", b.fromYAML)
	vm.Set("asScript", b.asScript)
	vm.Set("log", b.log)
	vm.Set("uuid", b.uuidFn)
	vm.Set("switchEnabled", b.switchEnabled)
	vm.Set("display", b.display)
	vm.Set("print", b.print)
	vm.Set("Path", b.path)
	vm.Set("execute", b.execute)
	vm.Set("capture", b.capture)
	vm.Set("require", b.require)
}

// require loads a CommonJS-style module by name from scripting.modules and
// returns its module.exports. Modules run in the same VM and share its
// global bindings, so a required module can call prompt/render/etc. too.
func (b *bindings) require(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	path := filepath.Join(b.modules, name)
	if !strings.HasSuffix(path, ".js") {
		path += ".js"
	}

	code, err := os.ReadFile(path)
	if err != nil {
		b.throw(fmt.Errorf("resolving module %q: %w", name, err))
	}

	moduleObj := b.vm.NewObject()
	exportsObj := b.vm.NewObject()
	_ = moduleObj.Set("exports", exportsObj)
	b.vm.Set("module", moduleObj)
	b.vm.Set("exports", exportsObj)

	if _, err := b.vm.RunScript(path, string(code)); err != nil {
		b.throw(fmt.Errorf("loading module %q: %w", name, err))
	}
	return moduleObj.Get("exports")
}

func (b *bindings) throw(err error) {
	panic(b.vm.NewGoError(err))
}

// settingsArg exports the optional trailing settings object argument as a
// plain map, or nil if it was omitted.
func settingsArg(call goja.FunctionCall, idx int) map[string]any {
	if len(call.Arguments) <= idx {
		return nil
	}
	v := call.Argument(idx)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	m, _ := v.Export().(map[string]any)
	return m
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	}
	return 0, false
}

// buildDescriptor assembles a PromptDescriptor from the conventional
// (message, key, settings) argument shape shared by every prompt* binding.
func (b *bindings) buildDescriptor(kind entities.PromptKind, call goja.FunctionCall) entities.PromptDescriptor {
	desc := entities.PromptDescriptor{Kind: kind}
	if len(call.Arguments) > 0 {
		desc.Message = call.Argument(0).String()
	}
	if len(call.Arguments) > 1 {
		desc.Key = call.Argument(1).String()
	}

	settings := settingsArg(call, 2)
	if settings == nil {
		return desc
	}
	if v, ok := settings["default"]; ok {
		desc.Default = v
	}
	if v, ok := settings["help"].(string); ok {
		desc.Help = v
	}
	if v, ok := settings["placeholder"].(string); ok {
		desc.Placeholder = v
	}
	if v, ok := settings["optional"].(bool); ok {
		desc.Optional = v
	}
	if v, ok := toInt(settings["min_length"]); ok {
		desc.MinLength = v
	}
	if v, ok := toInt(settings["max_length"]); ok {
		desc.MaxLength = v
	}
	if v, ok := toInt64(settings["min"]); ok {
		desc.MinValue = &v
	}
	if v, ok := toInt64(settings["max"]); ok {
		desc.MaxValue = &v
	}
	if v, ok := toInt(settings["min_items"]); ok {
		desc.MinItems = v
	}
	if v, ok := toInt(settings["max_items"]); ok {
		desc.MaxItems = v
	}
	if raw, ok := settings["options"].([]any); ok {
		opts := make([]string, 0, len(raw))
		for _, o := range raw {
			opts = append(opts, fmt.Sprintf("%v", o))
		}
		desc.Options = opts
	}
	if v, ok := toInt(settings["page_size"]); ok {
		desc.PageSize = v
	}
	return desc
}

func (b *bindings) resolve(desc entities.PromptDescriptor) goja.Value {
	v, err := b.engine.Arbiter.Resolve(b.ctx, b.rc, desc)
	if err != nil {
		b.throw(err)
	}
	return b.vm.ToValue(v)
}

// prompt is the generic entry point; settings.kind selects the typed
// variant, defaulting to a text prompt.
func (b *bindings) prompt(call goja.FunctionCall) goja.Value {
	kind := entities.PromptText
	if settings := settingsArg(call, 2); settings != nil {
		if k, ok := settings["kind"].(string); ok && k != "" {
			kind = entities.PromptKind(k)
		}
	}
	return b.resolve(b.buildDescriptor(kind, call))
}

func (b *bindings) promptText(call goja.FunctionCall) goja.Value {
	return b.resolve(b.buildDescriptor(entities.PromptText, call))
}

func (b *bindings) promptInt(call goja.FunctionCall) goja.Value {
	return b.resolve(b.buildDescriptor(entities.PromptInteger, call))
}

func (b *bindings) promptBool(call goja.FunctionCall) goja.Value {
	return b.resolve(b.buildDescriptor(entities.PromptBoolean, call))
}

func (b *bindings) promptList(call goja.FunctionCall) goja.Value {
	return b.resolve(b.buildDescriptor(entities.PromptList, call))
}

func (b *bindings) promptSelect(call goja.FunctionCall) goja.Value {
	return b.resolve(b.buildDescriptor(entities.PromptSelect, call))
}

func (b *bindings) promptMultiSelect(call goja.FunctionCall) goja.Value {
	return b.resolve(b.buildDescriptor(entities.PromptMultiSelect, call))
}

func (b *bindings) promptEditor(call goja.FunctionCall) goja.Value {
	return b.resolve(b.buildDescriptor(entities.PromptEditor, call))
}

// set(key, value, settings) writes directly into the active answer map,
// optionally also enabling a same-named switch and expanding the value into
// case-converted sibling keys: {cases:['snake','train']} on a call with
// key "name" also writes "name_snake" and "name_train", applied element-wise
// when value is a list. Returns the map of every key it wrote.
func (b *bindings) set(call goja.FunctionCall) goja.Value {
	key := call.Argument(0).String()
	value := call.Argument(1).Export()
	b.rc.Answers[key] = value
	result := map[string]any{key: value}

	if settings := settingsArg(call, 2); settings != nil {
		if enabled, ok := settings["switch"].(bool); ok && enabled {
			b.rc.EnableSwitch(key)
		}
		if rawCases, ok := settings["cases"].([]any); ok {
			for _, c := range rawCases {
				name := fmt.Sprintf("%v", c)
				fn, ok := inflect.Filters[name+"_case"]
				if !ok {
					continue
				}
				caseKey := key + "_" + name
				caseValue := applyCaseFn(fn, value)
				b.rc.Answers[caseKey] = caseValue
				result[caseKey] = caseValue
			}
		}
	}
	return b.vm.ToValue(result)
}

// applyCaseFn runs a case-conversion filter over value, element-wise when
// value is a list, so `set('tags', ['foo bar', 'baz'], {cases:['snake']})`
// produces `tags_snake = ['foo_bar', 'baz']`.
func applyCaseFn(fn func(string) string, value any) any {
	if list, ok := value.([]any); ok {
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = fn(fmt.Sprintf("%v", item))
		}
		return out
	}
	return fn(fmt.Sprintf("%v", value))
}

// render(templateString, ctx) expands a string against the active answers,
// optionally overlaid with an extra context object for this call only.
func (b *bindings) render(call goja.FunctionCall) goja.Value {
	tmpl := call.Argument(0).String()
	vars := b.rc.TemplateVars()
	if extra := settingsArg(call, 1); extra != nil {
		for k, v := range extra {
			vars[k] = v
		}
	}
	out, err := b.engine.Renderer.RenderString(b.ctx, tmpl, vars, b.manifest.Templating.UndefinedBehavior)
	if err != nil {
		b.throw(err)
	}
	return b.vm.ToValue(out)
}

// applySettings layers a script-supplied {answers, switches, use_defaults,
// use_defaults_all} object onto a child Render Context before a nested
// render.
func applySettings(rc *entities.RenderContext, settings map[string]any) {
	if settings == nil {
		return
	}
	if answers, ok := settings["answers"].(map[string]any); ok {
		for k, v := range answers {
			rc.Answers[k] = v
		}
	}
	if switches, ok := settings["switches"].([]any); ok {
		for _, s := range switches {
			rc.EnableSwitch(fmt.Sprintf("%v", s))
		}
	}
	if useDefaults, ok := settings["use_defaults"].([]any); ok {
		for _, k := range useDefaults {
			rc.UseDefaults[fmt.Sprintf("%v", k)] = struct{}{}
		}
	}
	if all, ok := settings["use_defaults_all"].(bool); ok {
		rc.UseDefaultsAll = all
	}
}

// directory returns a `{ render(destination, settings) }` object that walks
// relPath (relative to the archetype root) into destination.
func (b *bindings) directory(call goja.FunctionCall) goja.Value {
	relPath := call.Argument(0).String()
	obj := b.vm.NewObject()
	_ = obj.Set("render", func(inner goja.FunctionCall) goja.Value {
		destination := inner.Argument(0).String()
		sourceRoot := filepath.Join(b.src.LocalPath, relPath)

		childRC, err := b.rc.Clone(destination)
		if err != nil {
			b.throw(err)
		}
		applySettings(childRC, settingsArg(inner, 1))

		err = b.engine.Walker.Walk(b.ctx, usecases.WalkOptions{
			SourceRoot: sourceRoot,
			RenderCtx:  childRC,
			Renderer:   b.engine.Renderer,
			Undef:      b.manifest.Templating.UndefinedBehavior,
			Arbiter:    b.engine.Arbiter,
		})
		if err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})
	return obj
}

// archetype returns a `{ render(destination, settings) }` object that
// resolves and renders a component archetype declared in the manifest's
// components map.
func (b *bindings) archetype(call goja.FunctionCall) goja.Value {
	key := call.Argument(0).String()
	location, ok := b.manifest.Components[key]
	if !ok {
		b.throw(fmt.Errorf("unknown archetype component %q", key))
	}

	obj := b.vm.NewObject()
	_ = obj.Set("render", func(inner goja.FunctionCall) goja.Value {
		destination := inner.Argument(0).String()

		childSrc, err := b.engine.Resolver.Resolve(b.ctx, location, false)
		if err != nil {
			b.throw(err)
		}
		childManifest, err := b.engine.Manifests.LoadArchetypeManifest(b.ctx, childSrc)
		if err != nil {
			b.throw(err)
		}
		childRC, err := b.rc.Clone(destination)
		if err != nil {
			b.throw(err)
		}
		applySettings(childRC, settingsArg(inner, 1))

		if err := b.engine.RunMain(b.ctx, childSrc, childManifest, childRC); err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})
	return obj
}

func (b *bindings) asJSON(call goja.FunctionCall) goja.Value {
	data, err := json.Marshal(call.Argument(0).Export())
	if err != nil {
		b.throw(err)
	}
	return b.vm.ToValue(string(data))
}

func (b *bindings) asYAML(call goja.FunctionCall) goja.Value {
	data, err := yaml.Marshal(call.Argument(0).Export())
	if err != nil {
		b.throw(err)
	}
	return b.vm.ToValue(string(data))
}

func (b *bindings) fromJSON(call goja.FunctionCall) goja.Value {
	var v any
	if err := json.Unmarshal([]byte(call.Argument(0).String()), &v); err != nil {
		b.throw(err)
	}
	return b.vm.ToValue(v)
}

func (b *bindings) fromYAML(call goja.FunctionCall) goja.Value {
	var v any
	if err := yaml.Unmarshal([]byte(call.Argument(0).String()), &v); err != nil {
		b.throw(err)
	}
	return b.vm.ToValue(v)
}

// asScript renders a value as Token-Optimized Object Notation, for archetype
// scripts that want to embed a compact data summary into generated content.
func (b *bindings) asScript(call goja.FunctionCall) goja.Value {
	data, err := toon.Marshal(call.Argument(0).Export())
	if err != nil {
		b.throw(err)
	}
	return b.vm.ToValue(string(data))
}

func (b *bindings) log(call goja.FunctionCall) goja.Value {
	level := call.Argument(0).String()
	msg := call.Argument(1).String()

	var kind usecases.ScriptMessageKind
	switch level {
	case "trace":
		kind = usecases.MsgLogTrace
	case "debug":
		kind = usecases.MsgLogDebug
	case "warn":
		kind = usecases.MsgLogWarn
	case "error":
		kind = usecases.MsgLogError
	default:
		kind = usecases.MsgLogInfo
	}

	if err := b.engine.Driver.Notify(b.ctx, usecases.ScriptMessage{Kind: kind, LogMessage: msg}); err != nil {
		b.throw(err)
	}
	return goja.Undefined()
}

func (b *bindings) uuidFn(call goja.FunctionCall) goja.Value {
	return b.vm.ToValue(uuid.NewString())
}

func (b *bindings) switchEnabled(call goja.FunctionCall) goja.Value {
	return b.vm.ToValue(b.rc.SwitchEnabled(call.Argument(0).String()))
}

func (b *bindings) display(call goja.FunctionCall) goja.Value {
	if err := b.engine.Driver.Notify(b.ctx, usecases.ScriptMessage{Kind: usecases.MsgDisplay, LogMessage: call.Argument(0).String()}); err != nil {
		b.throw(err)
	}
	return goja.Undefined()
}

func (b *bindings) print(call goja.FunctionCall) goja.Value {
	if err := b.engine.Driver.Notify(b.ctx, usecases.ScriptMessage{Kind: usecases.MsgPrint, LogMessage: call.Argument(0).String()}); err != nil {
		b.throw(err)
	}
	return goja.Undefined()
}

// path returns a small path-manipulation object wrapping path/filepath, so
// scripts can build destination paths without string-concatenating
// separators themselves.
func (b *bindings) path(call goja.FunctionCall) goja.Value {
	p := call.Argument(0).String()
	obj := b.vm.NewObject()
	_ = obj.Set("join", func(inner goja.FunctionCall) goja.Value {
		parts := []string{p}
		for _, a := range inner.Arguments {
			parts = append(parts, a.String())
		}
		return b.vm.ToValue(filepath.Join(parts...))
	})
	_ = obj.Set("baseName", func(goja.FunctionCall) goja.Value { return b.vm.ToValue(filepath.Base(p)) })
	_ = obj.Set("dirName", func(goja.FunctionCall) goja.Value { return b.vm.ToValue(filepath.Dir(p)) })
	_ = obj.Set("toString", func(goja.FunctionCall) goja.Value { return b.vm.ToValue(p) })
	return obj
}

// parseExecArgs pulls (program, args, directory, env) out of the
// execute/capture argument shape, rendering the directory and env settings
// through the same template renderer used everywhere else — closing the gap
// between the two legacy binding layers rather than reproducing it.
func (b *bindings) parseExecArgs(call goja.FunctionCall) (program string, args []string, dir string, env []string) {
	program = call.Argument(0).String()
	if raw, ok := call.Argument(1).Export().([]any); ok {
		for _, a := range raw {
			args = append(args, fmt.Sprintf("%v", a))
		}
	}

	dir = b.rc.Destination
	env = os.Environ()

	settings := settingsArg(call, 2)
	if settings == nil {
		return program, args, dir, env
	}
	vars := b.rc.TemplateVars()
	if d, ok := settings["directory"].(string); ok && d != "" {
		rendered, err := b.engine.Renderer.RenderString(b.ctx, d, vars, b.manifest.Templating.UndefinedBehavior)
		if err != nil {
			b.throw(err)
		}
		dir = rendered
	}
	if e, ok := settings["env"].(map[string]any); ok {
		for k, v := range e {
			rendered, err := b.engine.Renderer.RenderString(b.ctx, fmt.Sprintf("%v", v), vars, b.manifest.Templating.UndefinedBehavior)
			if err != nil {
				b.throw(err)
			}
			env = append(env, k+"="+rendered)
		}
	}
	return program, args, dir, env
}

func (b *bindings) execute(call goja.FunctionCall) goja.Value {
	if !b.engine.AllowExec {
		b.throw(&entities.ExecDisabledError{Program: call.Argument(0).String()})
	}
	program, args, dir, env := b.parseExecArgs(call)

	cmd := exec.CommandContext(b.ctx, program, args...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		b.throw(err)
	}
	return goja.Undefined()
}

func (b *bindings) capture(call goja.FunctionCall) goja.Value {
	if !b.engine.AllowExec {
		b.throw(&entities.ExecDisabledError{Program: call.Argument(0).String()})
	}
	program, args, dir, env := b.parseExecArgs(call)

	cmd := exec.CommandContext(b.ctx, program, args...)
	cmd.Dir = dir
	cmd.Env = env
	out, err := cmd.Output()
	if err != nil {
		b.throw(err)
	}
	return b.vm.ToValue(strings.TrimRight(string(out), "\n"))
}
