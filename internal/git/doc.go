// Package git provides low-level Git operations for release automation.
//
// It combines two access paths and reconciles their results:
//   - go-git for object-model reads and tag management (create, delete,
//     list, inspect)
//   - the git command-line tool for everything that mutates the worktree
//     or talks to the network (stage, commit, push, reset, ls-remote)
//
// This package should be the only place where direct git commands are
// executed.
package git
