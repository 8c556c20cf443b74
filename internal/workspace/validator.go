package workspace

import (
	"context"
	"fmt"

	"shipit.dev/shipit/internal/git"
)

// CheckResult is the outcome of a single readiness check
type CheckResult struct {
	Name     string
	Passed   bool
	Critical bool
	Message  string
}

// ValidationReport collects the results of all readiness checks
type ValidationReport struct {
	Checks []CheckResult
}

// Ready reports whether no critical check failed
func (r *ValidationReport) Ready() bool {
	for _, check := range r.Checks {
		if !check.Passed && check.Critical {
			return false
		}
	}
	return true
}

// Failures returns all failed checks, critical and warnings alike
func (r *ValidationReport) Failures() []CheckResult {
	var failed []CheckResult
	for _, check := range r.Checks {
		if !check.Passed {
			failed = append(failed, check)
		}
	}
	return failed
}

// Validator runs release readiness checks against a repository and its
// workspace
type Validator struct {
	repo *git.Repository
	ws   *Workspace
}

// NewValidator creates a Validator for the given repository and workspace
func NewValidator(repo *git.Repository, ws *Workspace) *Validator {
	return &Validator{repo: repo, ws: ws}
}

// Validate runs all checks. tagName is the release tag that must not exist
// yet, pass "" to skip the tag checks.
func (v *Validator) Validate(ctx context.Context, tagName string) (*ValidationReport, error) {
	report := &ValidationReport{}

	clean, err := v.repo.IsClean(ctx)
	if err != nil {
		return nil, err
	}
	report.add("clean worktree", clean, true,
		"working tree is clean",
		"working tree has uncommitted changes")

	branch, err := v.repo.CurrentBranch(ctx)
	if err != nil {
		report.add("on branch", false, true,
			"", "HEAD is detached, check out a branch before releasing")
	} else {
		report.add("on branch", true, true,
			fmt.Sprintf("on branch %s", branch.Name), "")
	}

	remote, err := v.repo.DefaultRemote(ctx)
	if err != nil {
		report.add("remote configured", false, true,
			"", "no git remote configured")
	} else {
		report.add("remote configured", true, true,
			fmt.Sprintf("pushing to %s", remote), "")
	}

	if tagName != "" {
		exists, err := v.repo.TagExists(tagName)
		if err != nil {
			return nil, err
		}
		report.add("tag available", !exists, true,
			fmt.Sprintf("tag %s is free", tagName),
			fmt.Sprintf("tag %s already exists", tagName))

		if remote != "" {
			remoteExists, err := v.repo.RemoteTagExists(ctx, remote, tagName)
			if err != nil {
				// remote may be unreachable, degrade to a warning
				report.add("remote tag available", false, false,
					"", fmt.Sprintf("could not check %s for tag %s: %v", remote, tagName, err))
			} else {
				report.add("remote tag available", !remoteExists, true,
					fmt.Sprintf("%s does not have %s", remote, tagName),
					fmt.Sprintf("tag %s already exists on %s", tagName, remote))
			}
		}
	}

	if _, err := v.ws.Tiers(); err != nil {
		report.add("module graph acyclic", false, true, "", err.Error())
	} else {
		report.add("module graph acyclic", true, true,
			fmt.Sprintf("%d modules", len(v.ws.Modules)), "")
	}

	return report, nil
}

// add records a check outcome, picking the message that matches it
func (r *ValidationReport) add(name string, passed, critical bool, passMessage, failMessage string) {
	message := failMessage
	if passed {
		message = passMessage
		if message == "" {
			message = "ok"
		}
	}
	r.Checks = append(r.Checks, CheckResult{
		Name:     name,
		Passed:   passed,
		Critical: critical,
		Message:  message,
	})
}
