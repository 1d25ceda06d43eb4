package fetch

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/kstenerud/builder-go/internal/logging"
)

// ErrNoDefaultBranch is returned when a repository cloned without an
// explicit reference has neither a main nor a master branch.
var ErrNoDefaultBranch = errors.New("neither 'main' nor 'master' branch exists in the repository")

// defaultBranches are tried in order when the locator carries no #ref.
var defaultBranches = []string{"main", "master"}

// GitCloner acquires builder source from Git repositories.
type GitCloner struct {
	logger logging.Logger
}

// NewGitCloner creates a Git cloner. A nil logger falls back to the
// no-op logger.
func NewGitCloner(logger logging.Logger) *GitCloner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &GitCloner{logger: logger}
}

// CloneAndCheckout clones the repository named by the locator into
// destDir and checks out the locator's #ref. Without a ref it tries the
// default branches in order and fails with ErrNoDefaultBranch when none
// exists. The clone transfers no working tree up front and only the
// remote's default branch, keeping the fetch minimal.
func (g *GitCloner) CloneAndCheckout(ctx context.Context, locator, destDir string) error {
	gitURL, ref := SplitGitRef(locator)

	g.logger.Info("cloning Git repository", "url", gitURL)
	if ref != "" {
		g.logger.Info("will checkout reference", "ref", ref)
	}

	repo, err := gogit.PlainCloneContext(ctx, destDir, false, &gogit.CloneOptions{
		URL:          gitURL,
		NoCheckout:   true,
		SingleBranch: true,
		Tags:         gogit.AllTags,
	})
	if err != nil {
		return fmt.Errorf("clone Git repository %s: %w", gitURL, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("get worktree: %w", err)
	}

	if ref != "" {
		if err := checkoutRevision(repo, worktree, ref); err != nil {
			return fmt.Errorf("checkout reference %q: %w", ref, err)
		}
		return nil
	}

	for _, branch := range defaultBranches {
		if err := checkoutRevision(repo, worktree, branch); err == nil {
			g.logger.Info("checked out default branch", "branch", branch)
			return nil
		}
	}
	return ErrNoDefaultBranch
}

// checkoutRevision resolves a revision (branch, tag, or commit) and
// populates the worktree at it.
func checkoutRevision(repo *gogit.Repository, worktree *gogit.Worktree, revision string) error {
	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return fmt.Errorf("resolve revision: %w", err)
	}

	if err := worktree.Checkout(&gogit.CheckoutOptions{
		Hash:  *hash,
		Force: true,
	}); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return nil
}
