package release

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"shipit.dev/shipit/internal/config"
	shipiterrors "shipit.dev/shipit/internal/errors"
	"shipit.dev/shipit/internal/git"
	"shipit.dev/shipit/internal/output"
	"shipit.dev/shipit/internal/publish"
	"shipit.dev/shipit/internal/state"
	"shipit.dev/shipit/internal/version"
	"shipit.dev/shipit/internal/workspace"
)

// Pipeline runs a release through its phases, persisting progress after
// every phase so an interrupted run can be resumed or rolled back
type Pipeline struct {
	manager *Manager
	store   *state.Store
	ws      *workspace.Workspace
	cfg     *config.Config
	forge   publish.Forge
	log     *output.Splog
}

// NewPipeline assembles a Pipeline. forge may be nil to skip forge
// releases, the publish phase then only tags nested modules.
func NewPipeline(manager *Manager, store *state.Store, ws *workspace.Workspace, cfg *config.Config, forge publish.Forge, log *output.Splog) *Pipeline {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if log == nil {
		log = output.NewSplog()
	}
	return &Pipeline{
		manager: manager,
		store:   store,
		ws:      ws,
		cfg:     cfg,
		forge:   forge,
		log:     log,
	}
}

// RunOptions control a release run
type RunOptions struct {
	// Bump selects the version increment
	Bump version.Bump
	// Exact version overrides the bump when set
	Exact string
	// Remote overrides the configured push remote
	Remote string
	// SkipPush leaves everything local
	SkipPush bool
	// SkipPublish stops after the git phase
	SkipPublish bool
}

// Plan describes what a run would do, used by the preview command and to
// seed a new run
type Plan struct {
	Current *semver.Version
	Next    *semver.Version
	TagName string
	Remote  string
	Modules []*workspace.Module
	// ModuleTags lists the per-module tags the publish phase would create
	ModuleTags []string
}

// Plan computes the version bump and module tags without touching anything
func (p *Pipeline) Plan(ctx context.Context, opts RunOptions) (*Plan, error) {
	tags, err := p.manager.Repo().ListTags()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}

	// No release tag yet means the first release bumps from 0.0.0
	latest := version.Latest(names)
	base := latest
	if base == nil {
		base = semver.MustParse("0.0.0")
	}
	bumper := version.FromVersion(base)

	var next *semver.Version
	if opts.Exact != "" {
		next, err = bumper.NextExact(opts.Exact)
	} else {
		next, err = bumper.Next(opts.Bump)
	}
	if err != nil {
		return nil, err
	}

	remote := opts.Remote
	if remote == "" {
		remote = p.cfg.RemoteName()
	}

	order, err := p.ws.PublishOrder()
	if err != nil {
		return nil, err
	}

	var moduleTags []string
	for _, mod := range order {
		if mod.Dir == "." || p.cfg.SkipsModule(mod.Dir) {
			continue
		}
		moduleTags = append(moduleTags, version.ModuleTagName(mod.Dir, next))
	}

	return &Plan{
		Current:    latest,
		Next:       next,
		TagName:    version.TagName(next),
		Remote:     remote,
		Modules:    order,
		ModuleTags: moduleTags,
	}, nil
}

// Run executes a fresh release. Refuses to start while another run is
// still active.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*state.ReleaseState, error) {
	if _, err := p.store.LoadActive(); err == nil {
		return nil, shipiterrors.ErrReleaseInProgress
	} else if !errors.Is(err, shipiterrors.ErrNoActiveRelease) {
		return nil, err
	}

	plan, err := p.Plan(ctx, opts)
	if err != nil {
		return nil, err
	}

	var previous string
	if plan.Current != nil {
		previous = plan.Current.String()
	}
	st := state.NewReleaseState(plan.Next.String(), previous)
	st.Git.Remote = plan.Remote
	if err := p.store.Save(st); err != nil {
		return nil, err
	}

	return st, p.runFrom(ctx, st, opts)
}

// Resume continues a failed run from the phase it failed in. Completed
// steps within the failed phase are detected from the persisted state and
// skipped.
func (p *Pipeline) Resume(ctx context.Context, opts RunOptions) (*state.ReleaseState, error) {
	st, err := p.store.LoadActive()
	if err != nil {
		return nil, err
	}
	if st.Recovered {
		p.log.Warn("state file was corrupt, resumed from backup")
	}
	if !st.Resume() {
		if st.Phase == state.PhaseFailed {
			return nil, fmt.Errorf("release %s failed before any phase was recorded, roll back instead", st.ID)
		}
		return nil, fmt.Errorf("release %s is in phase %s and cannot be resumed", st.ID, st.Phase)
	}
	if err := p.store.Save(st); err != nil {
		return nil, err
	}

	return st, p.runFrom(ctx, st, opts)
}

// runFrom drives the remaining phases in order, persisting after each
func (p *Pipeline) runFrom(ctx context.Context, st *state.ReleaseState, opts RunOptions) error {
	type phaseFunc struct {
		phase state.Phase
		run   func(context.Context, *state.ReleaseState, RunOptions) error
	}

	phases := []phaseFunc{
		{state.PhaseValidate, p.validatePhase},
		{state.PhaseVersion, p.versionPhase},
		{state.PhaseGit, p.gitPhase},
		{state.PhasePublish, p.publishPhase},
	}

	started := false
	for _, ph := range phases {
		if !started {
			if ph.phase != st.Phase {
				continue
			}
			started = true
		}

		if !st.Advance(ph.phase) {
			return fmt.Errorf("release %s cannot move from phase %s to %s", st.ID, st.Phase, ph.phase)
		}
		if err := p.store.Save(st); err != nil {
			return err
		}

		if err := ph.run(ctx, st, opts); err != nil {
			st.MarkFailed(err.Error())
			if saveErr := p.store.Save(st); saveErr != nil {
				p.log.Warn("could not persist failure state: %v", saveErr)
			}
			return err
		}
	}

	if !st.Advance(state.PhaseDone) {
		return fmt.Errorf("release %s cannot move from phase %s to %s", st.ID, st.Phase, state.PhaseDone)
	}
	return p.store.Save(st)
}

func (p *Pipeline) validatePhase(ctx context.Context, st *state.ReleaseState, _ RunOptions) error {
	validator := workspace.NewValidator(p.manager.Repo(), p.ws)
	report, err := validator.Validate(ctx, st.TagName())
	if err != nil {
		return err
	}

	for _, check := range report.Failures() {
		if check.Critical {
			p.log.Error("%s: %s", check.Name, check.Message)
		} else {
			p.log.Warn("%s: %s", check.Name, check.Message)
		}
	}
	if !report.Ready() {
		return fmt.Errorf("repository is not ready to release")
	}
	return nil
}

func (p *Pipeline) versionPhase(_ context.Context, st *state.ReleaseState, _ RunOptions) error {
	// The bump was computed when the run was planned. This phase only
	// confirms the version still parses, guarding resumed state files
	// edited by hand.
	if _, err := semver.NewVersion(st.Version); err != nil {
		return fmt.Errorf("release version %q is not valid: %w", st.Version, err)
	}
	p.log.Info("releasing %s", output.ColorVersion(st.TagName()))
	return nil
}

func (p *Pipeline) gitPhase(ctx context.Context, st *state.ReleaseState, opts RunOptions) error {
	// Resumed runs skip whatever already landed
	if st.Git.Pushed {
		return nil
	}

	repo := p.manager.Repo()

	if st.Git.CommitSHA == "" && st.Git.TagName == "" {
		result, err := p.manager.PerformRelease(ctx, PerformOptions{
			Version:  st.Version,
			Remote:   st.Git.Remote,
			SkipPush: opts.SkipPush,
		})
		if result != nil {
			p.recordGitProgress(st, result)
		}
		if err != nil {
			return err
		}
		for _, warning := range result.Warnings {
			p.log.Warn("%s", warning)
		}
		return nil
	}

	// Partial earlier run: commit or tag exists, finish the rest
	if st.Git.TagName == "" {
		tag, err := p.manager.tagRelease(st.Version)
		if err != nil {
			return err
		}
		st.Git.TagName = tag.Name
	}

	if opts.SkipPush {
		return nil
	}

	if _, err := repo.Push(ctx, git.PushOptions{Remote: st.Git.Remote}); err != nil {
		return fmt.Errorf("failed to push commits: %w", err)
	}
	if p.cfg.ShouldPushTags() {
		if _, err := repo.Push(ctx, git.PushOptions{
			Remote:   st.Git.Remote,
			Refspecs: []string{"refs/tags/" + st.Git.TagName},
		}); err != nil {
			return fmt.Errorf("failed to push tag %s: %w", st.Git.TagName, err)
		}
	}
	st.Git.Pushed = true
	return nil
}

func (p *Pipeline) recordGitProgress(st *state.ReleaseState, result *PerformResult) {
	st.Git.PreviousHead = result.PreviousHead
	if result.Commit != nil {
		st.Git.CommitSHA = result.Commit.Hash
	}
	if result.Tag != nil {
		st.Git.TagName = result.Tag.Name
	}
	st.Git.Pushed = result.Pushed
}

func (p *Pipeline) publishPhase(ctx context.Context, st *state.ReleaseState, opts RunOptions) error {
	if opts.SkipPublish || opts.SkipPush || !p.cfg.ShouldPublish() {
		return nil
	}

	ver, err := semver.NewVersion(st.Version)
	if err != nil {
		return err
	}

	publisher := publish.NewPublisher(p.manager.Repo(), p.forge, p.cfg)

	tagged, err := publisher.TagModules(ctx, p.ws, ver, st.Git.Remote, st.Publish.TaggedModules)
	st.Publish.TaggedModules = tagged
	if err != nil {
		return err
	}
	for _, tag := range tagged {
		p.log.Debug("module tag %s", tag)
	}

	if p.forge == nil {
		return nil
	}
	if st.Publish.ReleaseURL != "" {
		return nil
	}

	var previousTag string
	if st.PreviousVersion != "" {
		previousTag = "v" + st.PreviousVersion
	}
	notes, err := publisher.ReleaseNotes(ctx, previousTag)
	if err != nil {
		p.log.Warn("could not build release notes: %v", err)
		notes = ""
	}

	info, err := publisher.CreateRelease(ctx, ver, notes)
	if err != nil {
		return err
	}
	st.Publish.ReleaseURL = info.HTMLURL
	p.log.Info("release published: %s", info.HTMLURL)
	return nil
}

// RollbackRun unwinds the persisted release. Forge releases and module
// tags are removed first, then the workspace tag and commit through the
// manager's ordered rollback. The state is kept, marked rolled back, so
// status can still report what happened until cleanup removes it.
func (p *Pipeline) RollbackRun(ctx context.Context) (*RollbackResult, error) {
	st, err := p.store.Load()
	if err != nil {
		return nil, err
	}
	if st.Phase == state.PhaseRolledBack {
		return nil, fmt.Errorf("release %s is already rolled back", st.ID)
	}

	st.Phase = state.PhaseRollingBack
	if err := p.store.Save(st); err != nil {
		return nil, err
	}

	var warnings []string

	if p.forge != nil && st.Publish.ReleaseURL != "" {
		if info, err := p.forge.GetReleaseByTag(ctx, st.TagName()); err != nil {
			warnings = append(warnings, fmt.Sprintf("could not look up forge release: %v", err))
		} else if info != nil {
			if err := p.forge.DeleteRelease(ctx, info.ID); err != nil {
				warnings = append(warnings, fmt.Sprintf("could not delete forge release: %v", err))
			}
		}
	}

	repo := p.manager.Repo()
	for _, tag := range st.Publish.TaggedModules {
		if err := repo.DeleteRemoteTag(ctx, st.Git.Remote, tag); err != nil {
			warnings = append(warnings, fmt.Sprintf("could not delete tag %s from %s: %v", tag, st.Git.Remote, err))
		}
		if err := repo.DeleteTag(tag); err != nil && !errors.Is(err, shipiterrors.ErrTagNotFound) {
			warnings = append(warnings, fmt.Sprintf("could not delete local tag %s: %v", tag, err))
		}
	}

	// A run that failed before the git phase has nothing to unwind
	if st.Git.TagName == "" && st.Git.PreviousHead == "" {
		st.Phase = state.PhaseRolledBack
		if err := p.store.Save(st); err != nil {
			return nil, err
		}
		return &RollbackResult{Successful: true, Warnings: warnings}, nil
	}

	result, err := p.manager.Rollback(ctx, RollbackOptions{
		TagName:      st.Git.TagName,
		PreviousHead: st.Git.PreviousHead,
		Remote:       st.Git.Remote,
		Pushed:       st.Git.Pushed,
	})
	if err != nil {
		st.MarkFailed(err.Error())
		_ = p.store.Save(st)
		return nil, err
	}
	result.Warnings = append(warnings, result.Warnings...)

	if result.Successful {
		st.Phase = state.PhaseRolledBack
	} else {
		st.MarkFailed("rollback left the repository partially unwound")
	}
	if err := p.store.Save(st); err != nil {
		return result, err
	}
	return result, nil
}

// Cleanup removes the persisted state of a finished run. Active runs are
// refused so cleanup cannot orphan a release in flight.
func (p *Pipeline) Cleanup(force bool) error {
	st, err := p.store.Load()
	if err != nil {
		if errors.Is(err, shipiterrors.ErrNoActiveRelease) {
			return nil
		}
		return err
	}
	if st.Active() && !force {
		return fmt.Errorf("release %s is still %s, use --force to discard it", st.ID, st.Phase)
	}
	return p.store.Clear()
}

// Status loads the persisted run, nil when none exists
func (p *Pipeline) Status() (*state.ReleaseState, error) {
	st, err := p.store.Load()
	if err != nil {
		if errors.Is(err, shipiterrors.ErrNoActiveRelease) {
			return nil, nil
		}
		return nil, err
	}
	return st, nil
}
