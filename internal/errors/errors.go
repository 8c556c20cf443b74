// Package errors provides sentinel errors and custom error types for the shipit application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrNotOnBranch indicates that HEAD is not on a branch
	ErrNotOnBranch = errors.New("not on a branch")

	// ErrTagExists indicates that a tag already exists
	ErrTagExists = errors.New("tag already exists")

	// ErrTagNotFound indicates that a tag does not exist
	ErrTagNotFound = errors.New("tag not found")

	// ErrNothingToCommit indicates that the working directory matches HEAD
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrNoRemote indicates that the repository has no configured remotes
	ErrNoRemote = errors.New("no remote configured")

	// ErrReleaseInProgress indicates that a release state file already exists
	ErrReleaseInProgress = errors.New("another release is in progress")

	// ErrNoActiveRelease indicates that no release state file exists
	ErrNoActiveRelease = errors.New("no active release")

	// ErrPushTimeout indicates that a push was killed after exceeding its deadline
	ErrPushTimeout = errors.New("push timed out")
)

// TagExistsError represents an error when a tag already exists
type TagExistsError struct {
	TagName string
}

func (e *TagExistsError) Error() string {
	return fmt.Sprintf("tag %s already exists", e.TagName)
}

// Is returns true if the target error is ErrTagExists
func (e *TagExistsError) Is(target error) bool {
	return target == ErrTagExists
}

// NewTagExistsError creates a new TagExistsError
func NewTagExistsError(tagName string) *TagExistsError {
	return &TagExistsError{TagName: tagName}
}

// TagNotFoundError represents an error when a tag is not found
type TagNotFoundError struct {
	TagName string
}

func (e *TagNotFoundError) Error() string {
	return fmt.Sprintf("tag %s does not exist", e.TagName)
}

// Is returns true if the target error is ErrTagNotFound
func (e *TagNotFoundError) Is(target error) bool {
	return target == ErrTagNotFound
}

// NewTagNotFoundError creates a new TagNotFoundError
func NewTagNotFoundError(tagName string) *TagNotFoundError {
	return &TagNotFoundError{TagName: tagName}
}

// PushError represents a failed push to a remote
type PushError struct {
	Remote  string
	Message string
	Err     error
}

func (e *PushError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("push to %s failed: %s", e.Remote, e.Message)
	}
	return fmt.Sprintf("push to %s failed", e.Remote)
}

func (e *PushError) Unwrap() error {
	return e.Err
}

// NewPushError creates a new PushError
func NewPushError(remote, message string, err error) *PushError {
	return &PushError{Remote: remote, Message: message, Err: err}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
