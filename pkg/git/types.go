// Package git reads the repository state a pull request is generated from.
//
// All operations shell out to the git CLI through a runner.Runner and are
// read-only: nothing in this package modifies refs, the index or the work tree.
package git

import (
	"strings"

	floyderrors "thoreinstein.com/floyd/pkg/errors"
)

// Branch is a validated branch name. The zero value is not a valid branch.
// Branch values are comparable, so == and map keys work by name.
type Branch struct {
	name string
}

// NewBranch trims name and validates it.
//
// A name is rejected when it is empty, starts with '-' (it would be parsed as
// an option by git and gh), contains "..", or ends with ".lock".
func NewBranch(name string) (Branch, error) {
	name = strings.TrimSpace(name)

	switch {
	case name == "":
		return Branch{}, floyderrors.NewInvalidBranch("branch name cannot be empty")
	case strings.HasPrefix(name, "-"):
		return Branch{}, floyderrors.NewInvalidBranch("branch name cannot start with '-': " + name)
	case strings.Contains(name, ".."):
		return Branch{}, floyderrors.NewInvalidBranch("branch name cannot contain '..': " + name)
	case strings.HasSuffix(name, ".lock"):
		return Branch{}, floyderrors.NewInvalidBranch("branch name cannot end with '.lock': " + name)
	}

	return Branch{name: name}, nil
}

// MustBranch is like NewBranch but panics on an invalid name.
// It is intended for constants and tests.
func MustBranch(name string) Branch {
	b, err := NewBranch(name)
	if err != nil {
		panic(err)
	}
	return b
}

// Name returns the branch name.
func (b Branch) Name() string {
	return b.name
}

// String implements fmt.Stringer.
func (b Branch) String() string {
	return b.name
}

// IsZero reports whether b is the zero Branch.
func (b Branch) IsZero() bool {
	return b.name == ""
}

// BranchContext is everything the AI needs to describe the change from
// Current into Target. It is built once per run and passed by value.
type BranchContext struct {
	Current  Branch
	Target   Branch
	Commits  string // one line per commit, most recent first
	Diff     string // merge-base diff, lock files excluded
	DiffStat string
}

// HasChanges reports whether the diff has any non-whitespace content.
func (c BranchContext) HasChanges() bool {
	return strings.TrimSpace(c.Diff) != ""
}
