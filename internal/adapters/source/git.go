package source

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

// goGitCloner implements GitCloner on top of go-git/go-git. It clones the
// requested ref into dest and reports the ref and commit that were actually
// checked out.
type goGitCloner struct{}

// NewGoGitCloner builds the production GitCloner.
func NewGoGitCloner() GitCloner { return &goGitCloner{} }

func (c *goGitCloner) Clone(ctx context.Context, repoURL, ref, dest string) (string, string, error) {
	opts := &git.CloneOptions{
		URL:           repoURL,
		ReferenceName: plumbing.NewBranchReferenceName(ref),
		SingleBranch:  true,
		Depth:         1,
	}

	repo, err := git.PlainCloneContext(ctx, dest, false, opts)
	if err != nil {
		// The ref may be a tag or a bare commit/branch name go-git can't
		// resolve as a branch reference; retry letting go-git pick HEAD and
		// then check out the requested ref explicitly.
		repo, err = git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{URL: repoURL, Depth: 1})
		if err != nil {
			return "", "", fmt.Errorf("clone %q: %w", repoURL, err)
		}
		if err := checkoutRef(repo, ref); err != nil {
			return "", "", fmt.Errorf("checkout %q@%s: %w", repoURL, ref, err)
		}
	}

	head, err := repo.Head()
	if err != nil {
		return "", "", fmt.Errorf("resolve HEAD for %q: %w", repoURL, err)
	}

	return ref, head.Hash().String(), nil
}

func checkoutRef(repo *git.Repository, ref string) error {
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	candidates := []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(ref),
		plumbing.NewTagReferenceName(ref),
	}
	for _, name := range candidates {
		if err := wt.Checkout(&git.CheckoutOptions{Branch: name}); err == nil {
			return nil
		}
	}
	return wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(ref)})
}

// DefaultBranch lists the remote's advertised branches and returns the first
// of develop, main, master that exists; the remote's HEAD is not consulted.
func (c *goGitCloner) DefaultBranch(ctx context.Context, repoURL string) (string, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{Name: "origin", URLs: []string{repoURL}})

	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return "", fmt.Errorf("list refs for %q: %w", repoURL, err)
	}

	branchSet := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if ref.Name().IsBranch() {
			branchSet[ref.Name().Short()] = true
		}
	}

	for _, candidate := range defaultBranchProbeOrder {
		if branchSet[candidate] {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no candidate default branch found for %q", repoURL)
}
