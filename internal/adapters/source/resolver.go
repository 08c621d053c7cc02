// Package source implements the Source Resolver & Cache: it turns a
// location string (a local path, an HTTP(S) URL, or a Git remote) into a
// local directory, fetching and caching remote bundles as needed.
package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	getter "github.com/hashicorp/go-getter/v2"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
)

// defaultBranchProbeOrder is the sequence of candidate default branches
// tried, in order, when a Git source's Ref is unspecified.
var defaultBranchProbeOrder = []string{"develop", "main", "master"}

// GitCloner abstracts the subset of go-git's remote operations the resolver
// needs, so tests can substitute a fake.
type GitCloner interface {
	Clone(ctx context.Context, repoURL, ref, dest string) (resolvedRef, commit string, err error)
	DefaultBranch(ctx context.Context, repoURL string) (string, error)
}

// Resolver implements usecases.SourceResolver. It classifies a location,
// fetches it into the cache directory when remote, and returns a Source
// describing the resulting local bundle.
type Resolver struct {
	cacheRoot string
	getClient *getter.Client
	git       GitCloner
	offline   bool

	mu      sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewResolver builds a Resolver rooted at cacheRoot (typically the XDG cache
// directory). A nil git disables Git-backed sources (useful for tests that
// only exercise local/http sources).
func NewResolver(cacheRoot string, git GitCloner, offline bool) *Resolver {
	return &Resolver{
		cacheRoot: cacheRoot,
		getClient: &getter.Client{Getters: getter.Getters},
		git:       git,
		offline:   offline,
		locks:     make(map[string]*sync.Mutex),
	}
}

// CachePath returns the on-disk cache directory a location would resolve
// into, without fetching it — used by cache-management tooling to target a
// specific entry. Local sources have no cache entry and return "".
func (r *Resolver) CachePath(location string) string {
	kind, ref := classify(location)
	if kind == entities.SourceKindLocalFile || kind == entities.SourceKindLocalDirectory {
		return ""
	}
	return filepath.Join(r.cacheRoot, cacheKey(location, ref))
}

// Resolve classifies location and returns the resolved Source. forceRefresh
// bypasses a warm cache entry for remote sources.
func (r *Resolver) Resolve(ctx context.Context, location string, forceRefresh bool) (*entities.Source, error) {
	kind, ref := classify(location)

	switch kind {
	case entities.SourceKindLocalFile, entities.SourceKindLocalDirectory:
		return r.resolveLocal(location, kind)
	case entities.SourceKindHTTP:
		return r.resolveHTTP(ctx, location, forceRefresh)
	case entities.SourceKindGit:
		return r.resolveGit(ctx, location, ref, forceRefresh)
	default:
		return nil, fmt.Errorf("%w: %q", entities.ErrSourceUnsupported, location)
	}
}

func (r *Resolver) resolveLocal(location string, kind entities.SourceKind) (*entities.Source, error) {
	abs, err := filepath.Abs(location)
	if err != nil {
		return nil, &entities.RemoteSourceError{Location: location, Err: err}
	}
	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", entities.ErrSourceNotFound, abs)
	}
	if err != nil {
		return nil, &entities.RemoteSourceError{Location: location, Err: err}
	}
	if info.IsDir() {
		kind = entities.SourceKindLocalDirectory
	} else {
		kind = entities.SourceKindLocalFile
	}
	return &entities.Source{
		Kind:      kind,
		Location:  location,
		LocalPath: abs,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (r *Resolver) resolveHTTP(ctx context.Context, location string, forceRefresh bool) (*entities.Source, error) {
	if r.offline {
		key := cacheKey(location, "")
		dest := filepath.Join(r.cacheRoot, key)
		if dirExists(dest) {
			return &entities.Source{
				Kind: entities.SourceKindHTTP, Location: location, LocalPath: dest,
				FetchedAt: time.Now().UTC(),
			}, nil
		}
		return nil, fmt.Errorf("%w: %q", entities.ErrOfflineAndNotCached, location)
	}

	key := cacheKey(location, "")
	dest := filepath.Join(r.cacheRoot, key)

	lock := r.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	if forceRefresh || !dirExists(dest) {
		if err := os.RemoveAll(dest); err != nil {
			return nil, &entities.RemoteSourceError{Location: location, Err: err}
		}
		req := &getter.Request{
			Src:             location,
			Dst:             dest,
			GetMode:         getter.ModeAny,
			DisableSymlinks: true,
		}
		if _, err := r.getClient.Get(ctx, req); err != nil {
			return nil, &entities.RemoteSourceError{Location: location, Err: err}
		}
	}

	return &entities.Source{
		Kind:      entities.SourceKindHTTP,
		Location:  location,
		LocalPath: dest,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (r *Resolver) resolveGit(ctx context.Context, location, ref string, forceRefresh bool) (*entities.Source, error) {
	if r.git == nil {
		return nil, fmt.Errorf("%w: git sources require a configured GitCloner", entities.ErrSourceUnsupported)
	}

	repoURL, _ := splitRef(strings.TrimPrefix(location, "git::"))

	resolveRef := ref
	if resolveRef == "" {
		if r.offline {
			resolveRef = defaultBranchProbeOrder[len(defaultBranchProbeOrder)-1]
		} else {
			var err error
			resolveRef, err = r.probeDefaultBranch(ctx, repoURL)
			if err != nil {
				return nil, err
			}
		}
	}

	key := cacheKey(location, resolveRef)
	dest := filepath.Join(r.cacheRoot, key)

	lock := r.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	if r.offline {
		if !dirExists(dest) {
			return nil, fmt.Errorf("%w: %q@%s", entities.ErrOfflineAndNotCached, location, resolveRef)
		}
		return &entities.Source{
			Kind: entities.SourceKindGit, Location: repoURL, LocalPath: dest,
			Ref: resolveRef, FetchedAt: time.Now().UTC(),
		}, nil
	}

	if !forceRefresh && dirExists(dest) {
		return &entities.Source{
			Kind: entities.SourceKindGit, Location: repoURL, LocalPath: dest,
			Ref: resolveRef, FetchedAt: time.Now().UTC(),
		}, nil
	}
	if err := os.RemoveAll(dest); err != nil {
		return nil, &entities.RemoteSourceError{Location: location, Err: err}
	}

	resolvedRef, commit, err := r.git.Clone(ctx, repoURL, resolveRef, dest)
	if err != nil {
		return nil, &entities.RemoteSourceError{Location: location, Err: err}
	}

	return &entities.Source{
		Kind:           entities.SourceKindGit,
		Location:       repoURL,
		LocalPath:      dest,
		Ref:            resolvedRef,
		ResolvedCommit: commit,
		FetchedAt:      time.Now().UTC(),
	}, nil
}

func (r *Resolver) probeDefaultBranch(ctx context.Context, location string) (string, error) {
	branch, err := r.git.DefaultBranch(ctx, location)
	if err != nil || branch == "" {
		return "", fmt.Errorf("%w: %q", entities.ErrNoDefaultBranch, location)
	}
	return branch, nil
}

func (r *Resolver) lockFor(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	return l
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// cacheKey derives the on-disk cache subdirectory name for a location (and,
// for Git sources, its ref), so repeated resolutions of the same location
// reuse the same working tree.
func cacheKey(location, ref string) string {
	canonical := location
	if ref != "" {
		canonical = location + "@" + ref
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])[:40]
}

// classify determines the SourceKind of a location string and, for Git
// sources, extracts an explicit ref suffix (owner/repo@ref or url#ref).
func classify(location string) (entities.SourceKind, string) {
	if strings.HasPrefix(location, "git::") {
		rest := strings.TrimPrefix(location, "git::")
		loc, ref := splitRef(rest)
		_ = loc
		return entities.SourceKindGit, ref
	}

	if u, err := url.Parse(location); err == nil && u.Scheme != "" {
		switch {
		case strings.HasSuffix(u.Path, ".git"), u.Host == "github.com", u.Host == "gitlab.com", strings.Contains(u.Host, "git"):
			_, ref := splitRef(location)
			return entities.SourceKindGit, ref
		case u.Scheme == "http" || u.Scheme == "https":
			return entities.SourceKindHTTP, ""
		}
	}

	if strings.HasPrefix(location, "git@") {
		_, ref := splitRef(location)
		return entities.SourceKindGit, ref
	}

	info, err := os.Stat(location)
	if err == nil {
		if info.IsDir() {
			return entities.SourceKindLocalDirectory, ""
		}
		return entities.SourceKindLocalFile, ""
	}

	return entities.SourceKindLocalDirectory, ""
}

// splitRef splits a location of the form "url#ref" or "url@ref" into its
// base location and ref; ref is empty when no separator is present.
func splitRef(location string) (string, string) {
	if idx := strings.LastIndex(location, "#"); idx != -1 {
		return location[:idx], location[idx+1:]
	}
	if idx := strings.LastIndex(location, "@"); idx != -1 && !strings.Contains(location[idx:], "/") {
		return location[:idx], location[idx+1:]
	}
	return location, ""
}
