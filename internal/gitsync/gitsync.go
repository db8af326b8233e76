// Package gitsync keeps the daemon's checkout of the guide repository
// current: clone when missing, fetch and reset onto the remote branch
// otherwise. The checkout lives inside the daemon's work directory and
// is never authoritative, so divergence is resolved by hard resetting
// onto the remote.
package gitsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	"git.home.luguber.info/inful/guidebuilder/internal/guideerr"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
)

// Syncer manages the daemon's clone of the guide repository.
type Syncer struct {
	repo    config.RepoConfig
	workDir string
}

// New creates a syncer rooted at workDir.
func New(repo config.RepoConfig, workDir string) *Syncer {
	return &Syncer{repo: repo, workDir: workDir}
}

// RepoDir returns the checkout directory.
func (s *Syncer) RepoDir() string {
	return filepath.Join(s.workDir, "repo")
}

// ContentDir returns the content root inside the checkout, honoring
// the configured subdirectory.
func (s *Syncer) ContentDir() string {
	if s.repo.Subdir == "" {
		return s.RepoDir()
	}
	return filepath.Join(s.RepoDir(), filepath.FromSlash(s.repo.Subdir))
}

// Result describes the outcome of one sync.
type Result struct {
	// Commit is the full hash HEAD points at after the sync.
	Commit string
	// Branch is the branch that was synced.
	Branch string
	// Cloned reports whether this sync created a fresh clone.
	Cloned bool
	// Changed reports whether HEAD moved; fresh clones always count.
	Changed bool
}

// ShortCommit returns the abbreviated hash for logs.
func (r *Result) ShortCommit() string {
	if len(r.Commit) < 8 {
		return r.Commit
	}
	return r.Commit[:8]
}

// Sync brings the checkout up to date with the remote, cloning first
// when the checkout does not exist yet.
func (s *Syncer) Sync(ctx context.Context) (*Result, error) {
	repoDir := s.RepoDir()
	if _, err := os.Stat(filepath.Join(repoDir, ".git")); err != nil {
		if !os.IsNotExist(err) {
			return nil, guideerr.WorkspaceError("stat checkout", err)
		}
		return s.clone(ctx, repoDir)
	}
	return s.update(ctx, repoDir)
}

func (s *Syncer) clone(ctx context.Context, repoDir string) (*Result, error) {
	if err := os.MkdirAll(s.workDir, 0o750); err != nil {
		return nil, guideerr.WorkspaceError("create work dir", err)
	}

	opts := &git.CloneOptions{
		URL:   s.repo.URL,
		Depth: s.repo.Depth,
		Tags:  git.NoTags,
		Auth:  s.auth(),
	}
	if s.repo.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(s.repo.Branch)
		opts.SingleBranch = true
	}

	slog.Info("cloning guide repository",
		logfields.URL(s.repo.URL),
		slog.String("branch", s.repo.Branch),
		logfields.Path(repoDir))

	repository, err := git.PlainCloneContext(ctx, repoDir, false, opts)
	if err != nil {
		// Do not leave a half-initialized checkout behind.
		_ = os.RemoveAll(repoDir)
		return nil, classify("clone", s.repo.URL, err)
	}

	head, err := repository.Head()
	if err != nil {
		return nil, classify("clone", s.repo.URL, err)
	}

	res := &Result{
		Commit:  head.Hash().String(),
		Branch:  head.Name().Short(),
		Cloned:  true,
		Changed: true,
	}
	slog.Info("guide repository cloned",
		logfields.URL(s.repo.URL),
		slog.String("branch", res.Branch),
		slog.String("commit", res.ShortCommit()))
	return res, nil
}

func (s *Syncer) update(ctx context.Context, repoDir string) (*Result, error) {
	repository, err := git.PlainOpen(repoDir)
	if err != nil {
		return nil, guideerr.WrapError(err, guideerr.CategoryGit, "open checkout").
			WithContext("path", repoDir)
	}
	wt, err := repository.Worktree()
	if err != nil {
		return nil, guideerr.WrapError(err, guideerr.CategoryGit, "open worktree").
			WithContext("path", repoDir)
	}

	before, _ := repository.Head()

	if err := s.fetchOrigin(ctx, repository); err != nil {
		return nil, classify("fetch", s.repo.URL, err)
	}

	branch, err := s.targetBranch(repository)
	if err != nil {
		return nil, classify("resolve branch", s.repo.URL, err)
	}
	remoteRef, err := repository.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return nil, classify("resolve branch", s.repo.URL,
			fmt.Errorf("branch %s not found on remote: %w", branch, err))
	}

	localRef, err := checkoutBranch(repository, wt, branch)
	if err != nil {
		return nil, classify("checkout", s.repo.URL, err)
	}

	fastForward, ffErr := isAncestor(repository, localRef.Hash(), remoteRef.Hash())
	if ffErr != nil {
		slog.Warn("ancestor check failed", logfields.Error(ffErr))
	}
	if !fastForward {
		slog.Warn("checkout diverged from remote, hard resetting",
			logfields.URL(s.repo.URL),
			slog.String("branch", branch))
	}
	if err := wt.Reset(&git.ResetOptions{Commit: remoteRef.Hash(), Mode: git.HardReset}); err != nil {
		return nil, classify("reset", s.repo.URL, err)
	}

	res := &Result{
		Commit:  remoteRef.Hash().String(),
		Branch:  branch,
		Changed: before == nil || before.Hash() != remoteRef.Hash(),
	}
	if res.Changed {
		slog.Info("guide repository updated",
			slog.String("branch", branch),
			slog.String("commit", res.ShortCommit()))
	} else {
		slog.Debug("guide repository already up to date",
			slog.String("branch", branch),
			slog.String("commit", res.ShortCommit()))
	}
	return res, nil
}

// fetchOrigin fetches all remote heads so branch switches after a
// config change still resolve.
func (s *Syncer) fetchOrigin(ctx context.Context, repository *git.Repository) error {
	opts := &git.FetchOptions{
		RemoteName: "origin",
		RefSpecs:   []gitcfg.RefSpec{"+refs/heads/*:refs/remotes/origin/*"},
		Tags:       git.NoTags,
		Auth:       s.auth(),
	}
	if s.repo.Depth > 0 {
		opts.Depth = s.repo.Depth
	}
	if err := repository.FetchContext(ctx, opts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

// targetBranch picks the branch to sync: configured branch, current
// HEAD branch, remote default, then "main".
func (s *Syncer) targetBranch(repository *git.Repository) (string, error) {
	if s.repo.Branch != "" {
		return s.repo.Branch, nil
	}
	if headRef, err := repository.Head(); err == nil && headRef.Name().IsBranch() {
		return headRef.Name().Short(), nil
	}
	if ref, err := repository.Reference(plumbing.ReferenceName("refs/remotes/origin/HEAD"), true); err == nil {
		if target := ref.Target(); target != "" {
			return plumbing.ReferenceName(target).Short(), nil
		}
	}
	return "main", nil
}

// checkoutBranch ensures the local branch exists and is checked out,
// returning its reference before any reset.
func checkoutBranch(repository *git.Repository, wt *git.Worktree, branch string) (*plumbing.Reference, error) {
	ref := plumbing.NewBranchReferenceName(branch)
	localRef, err := repository.Reference(ref, true)
	if err != nil {
		if err := wt.Checkout(&git.CheckoutOptions{Branch: ref, Create: true, Force: true}); err != nil {
			return nil, fmt.Errorf("checkout new branch %s: %w", branch, err)
		}
		return repository.Reference(ref, true)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: ref, Force: true}); err != nil {
		return nil, fmt.Errorf("checkout branch %s: %w", branch, err)
	}
	return localRef, nil
}

// auth builds the transport credentials. A token without a username
// uses "token" as the username, which the common forges accept.
func (s *Syncer) auth() transport.AuthMethod {
	if s.repo.Token == "" {
		return nil
	}
	username := s.repo.Username
	if username == "" {
		username = "token"
	}
	return &githttp.BasicAuth{Username: username, Password: s.repo.Token}
}

// isAncestor reports whether a is reachable from b by walking b's
// parents.
func isAncestor(repository *git.Repository, a, b plumbing.Hash) (bool, error) {
	if a == b {
		return true, nil
	}
	seen := make(map[plumbing.Hash]struct{})
	queue := []plumbing.Hash{b}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if h == a {
			return true, nil
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		commit, err := repository.CommitObject(h)
		if err != nil {
			return false, err
		}
		queue = append(queue, commit.ParentHashes...)
	}
	return false, nil
}
