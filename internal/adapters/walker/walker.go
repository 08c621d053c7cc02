// Package walker implements the Directory Walker: it maps an archetype's
// template tree onto a destination tree, rendering paths and file contents
// and applying the RENDER/COPY/SKIP path-rule stack along the way.
package walker

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
	"github.com/madstone-tech/archetect-go/internal/core/usecases"
)

// Walker implements usecases.DirectoryWalker against the local filesystem.
type Walker struct{}

// NewWalker builds a Walker.
func NewWalker() *Walker { return &Walker{} }

// Walk traverses opts.SourceRoot, rendering each relative path and
// (depending on the resolved PathAction) its contents, writing the result
// under opts.RenderCtx.Destination.
func (w *Walker) Walk(ctx context.Context, opts usecases.WalkOptions) error {
	rc := opts.RenderCtx
	if rc.RulesStack == nil {
		rc.RulesStack = &entities.PathRuleStack{}
	}

	destRoot, err := filepath.Abs(rc.Destination)
	if err != nil {
		return &entities.RenderError{Path: rc.Destination, Op: "write", Err: err}
	}

	return filepath.WalkDir(opts.SourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &entities.RenderError{Path: path, Op: "read", Err: err}
		}
		if path == opts.SourceRoot {
			return nil
		}

		relSrc, err := filepath.Rel(opts.SourceRoot, path)
		if err != nil {
			return &entities.RenderError{Path: path, Op: "read", Err: err}
		}
		relSrc = filepath.ToSlash(relSrc)

		renderedRel, err := opts.Renderer.RenderString(ctx, relSrc, rc.TemplateVars(), opts.Undef)
		if err != nil {
			return err
		}

		action, err := rc.RulesStack.Resolve(relSrc)
		if err != nil {
			return &entities.RenderError{Path: relSrc, Op: "path-template", Err: err}
		}

		destPath := filepath.Join(destRoot, filepath.FromSlash(renderedRel))
		if err := ensureContained(destRoot, destPath); err != nil {
			return &entities.RenderError{Path: destPath, Op: "write", Err: err}
		}

		if d.IsDir() {
			if action == entities.ActionSkip {
				return filepath.SkipDir
			}
			return os.MkdirAll(destPath, 0o755)
		}

		switch action {
		case entities.ActionSkip:
			return nil
		case entities.ActionCopy:
			return w.writeFile(ctx, opts, rc, destPath, func() ([]byte, error) {
				return os.ReadFile(path)
			})
		default: // ActionRender
			return w.writeFile(ctx, opts, rc, destPath, func() ([]byte, error) {
				return opts.Renderer.RenderFile(ctx, path, rc.TemplateVars(), opts.Undef)
			})
		}
	})
}

func (w *Walker) writeFile(ctx context.Context, opts usecases.WalkOptions, rc *entities.RenderContext, destPath string, produce func() ([]byte, error)) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return &entities.RenderError{Path: destPath, Op: "create", Err: err}
	}

	proceed, err := w.resolveOverwrite(ctx, opts, rc, destPath)
	if err != nil {
		return err
	}
	if !proceed {
		return nil
	}

	data, err := produce()
	if err != nil {
		if re, ok := err.(*entities.RenderError); ok {
			return re
		}
		return &entities.RenderError{Path: destPath, Op: "file-template", Err: err}
	}

	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return &entities.RenderError{Path: destPath, Op: "write", Err: err}
	}
	return nil
}

// resolveOverwrite reports whether destPath should be (re)written, honoring
// rc.Overwrite when destPath already exists.
func (w *Walker) resolveOverwrite(ctx context.Context, opts usecases.WalkOptions, rc *entities.RenderContext, destPath string) (bool, error) {
	info, err := os.Stat(destPath)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, &entities.RenderError{Path: destPath, Op: "read", Err: err}
	}
	if info.IsDir() {
		return false, &entities.RenderError{Path: destPath, Op: "write", Err: fmt.Errorf("cannot overwrite directory with a file")}
	}

	switch rc.Overwrite {
	case entities.OverwriteOverwrite:
		return true, nil
	case entities.OverwritePreserve:
		return false, nil
	case entities.OverwritePrompt:
		if opts.Arbiter == nil {
			return false, nil
		}
		desc := entities.PromptDescriptor{
			Kind:    entities.PromptBoolean,
			Message: fmt.Sprintf("Overwrite existing file %q?", destPath),
			Key:     "overwrite:" + destPath,
			Default: false,
		}
		answer, err := opts.Arbiter.Resolve(ctx, rc, desc)
		if err != nil {
			return false, err
		}
		overwrite, _ := answer.(bool)
		return overwrite, nil
	default:
		return false, nil
	}
}

// ensureContained returns an error if destPath would resolve (following
// symlinks) outside of root, preventing a malicious rendered path from
// escaping the destination tree.
func ensureContained(root, destPath string) error {
	rel, err := filepath.Rel(root, destPath)
	if err != nil {
		return err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("rendered path %q escapes destination root", destPath)
	}

	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		// Destination root not created yet; nothing to resolve against.
		return nil
	}
	parent := filepath.Dir(destPath)
	resolvedParent, err := filepath.EvalSymlinks(parent)
	if err != nil {
		return nil
	}
	if !strings.HasPrefix(resolvedParent, resolvedRoot) {
		return fmt.Errorf("rendered path %q escapes destination root via symlink", destPath)
	}
	return nil
}
