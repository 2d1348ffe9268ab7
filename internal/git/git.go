// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package git reads source files from a git revision so that a repository
// can be digested as of a base commit rather than its working tree.
package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNoGit is returned when the working directory is not a git repository.
var ErrNoGit = errors.New("not a git repository")

// ErrBadRevision is returned when a revision cannot be resolved to a commit.
var ErrBadRevision = errors.New("unknown revision")

// Repo wraps a go-git repository for the read operations we need.
type Repo struct {
	repo    *gogit.Repository
	workDir string
}

// File is one blob read from a revision. Path is slash-separated and
// relative to the repository root.
type File struct {
	Path    string
	Hash    string
	Content []byte
}

// Open opens an existing git repository at workDir.
// Returns ErrNoGit if the directory is not a git repository.
func Open(workDir string) (*Repo, error) {
	r, err := gogit.PlainOpen(workDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	return &Repo{repo: r, workDir: workDir}, nil
}

// WorkDir returns the directory the repository was opened at.
func (r *Repo) WorkDir() string { return r.workDir }

// IsDirty returns true if the working tree has uncommitted changes
// (either staged or unstaged).
func (r *Repo) IsDirty() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("getting status: %w", err)
	}

	return !status.IsClean(), nil
}

// Resolve returns the full commit hash rev points at. An empty rev means
// HEAD.
func (r *Repo) Resolve(rev string) (string, error) {
	c, err := r.commit(rev)
	if err != nil {
		return "", err
	}
	return c.Hash.String(), nil
}

// Files returns every non-binary blob in rev's tree whose path satisfies
// match. A nil match accepts every path.
func (r *Repo) Files(ctx context.Context, rev string, match func(path string) bool) ([]File, error) {
	c, err := r.commit(rev)
	if err != nil {
		return nil, err
	}

	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("getting tree: %w", err)
	}

	var files []File
	err = tree.Files().ForEach(func(f *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if match != nil && !match(f.Name) {
			return nil
		}
		if binary, err := f.IsBinary(); err != nil || binary {
			return nil
		}
		content, err := f.Contents()
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.Name, err)
		}
		files = append(files, File{
			Path:    f.Name,
			Hash:    f.Hash.String(),
			Content: []byte(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *Repo) commit(rev string) (*object.Commit, error) {
	if rev == "" {
		rev = "HEAD"
	}
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrBadRevision, rev, err)
	}
	c, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrBadRevision, rev, err)
	}
	return c, nil
}
