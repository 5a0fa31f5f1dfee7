// Package gitsource reads interface-description documents straight from
// git refs, so before/after pairs can come from a repository instead of
// exported artifacts.
package gitsource

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"specslice/internal/document"
)

// Repository wraps a go-git repository.
type Repository struct {
	repo *git.Repository
	path string
}

// Open opens an existing repository at repoPath.
func Open(repoPath string) (*Repository, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	return &Repository{repo: repo, path: repoPath}, nil
}

// ResolveRef resolves a branch name, tag, or commit hash to a commit.
func (r *Repository) ResolveRef(refName string) (*object.Commit, error) {
	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(refName), true)
	if err == nil {
		return r.repo.CommitObject(ref.Hash())
	}

	ref, err = r.repo.Reference(plumbing.NewTagReferenceName(refName), true)
	if err == nil {
		return r.repo.CommitObject(ref.Hash())
	}

	commit, err := r.repo.CommitObject(plumbing.NewHash(refName))
	if err != nil {
		return nil, fmt.Errorf("resolving ref %q: not a branch, tag, or commit hash", refName)
	}
	return commit, nil
}

// FileAt returns the raw contents of filePath at the given ref.
func (r *Repository) FileAt(refName, filePath string) ([]byte, error) {
	commit, err := r.ResolveRef(refName)
	if err != nil {
		return nil, err
	}
	file, err := commit.File(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s at %s: %w", filePath, refName, err)
	}
	contents, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("reading %s at %s: %w", filePath, refName, err)
	}
	return []byte(contents), nil
}

// DocumentAt loads and parses a document from a ref.
func (r *Repository) DocumentAt(refName, filePath string) (*document.Document, error) {
	data, err := r.FileAt(refName, filePath)
	if err != nil {
		return nil, err
	}
	doc, err := document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s at %s: %w", filePath, refName, err)
	}
	return doc, nil
}
