// Package state persists the progress of a release so that an interrupted
// run can be resumed or rolled back.
package state

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Phase is a step in the release pipeline. Phases advance strictly forward,
// a failed run keeps the phase it failed in so resume knows where to pick up.
type Phase string

const (
	PhaseValidate    Phase = "validate"
	PhaseVersion     Phase = "version"
	PhaseGit         Phase = "git"
	PhasePublish     Phase = "publish"
	PhaseDone        Phase = "done"
	PhaseFailed      Phase = "failed"
	PhaseRollingBack Phase = "rolling-back"
	PhaseRolledBack  Phase = "rolled-back"
)

// phaseOrder maps the forward phases to their pipeline position
var phaseOrder = map[Phase]int{
	PhaseValidate: 0,
	PhaseVersion:  1,
	PhaseGit:      2,
	PhasePublish:  3,
	PhaseDone:     4,
}

// GitState records what the git phase has accomplished so far
type GitState struct {
	// PreviousHead is the commit SHA before the release commit, the
	// rollback target
	PreviousHead string `json:"previous_head,omitempty"`
	// CommitSHA is the release commit, empty until committed
	CommitSHA string `json:"commit_sha,omitempty"`
	// TagName is the release tag, empty until tagged
	TagName string `json:"tag_name,omitempty"`
	// Pushed is true once commits and tags reached the remote
	Pushed bool `json:"pushed"`
	// Remote the release was or will be pushed to
	Remote string `json:"remote,omitempty"`
}

// PublishState records which modules have been published
type PublishState struct {
	// ReleaseURL is the forge release page once created
	ReleaseURL string `json:"release_url,omitempty"`
	// TaggedModules lists module directories whose per-module tags exist
	TaggedModules []string `json:"tagged_modules,omitempty"`
}

// ReleaseState is the full persisted record of one release run
type ReleaseState struct {
	// ID uniquely identifies this release run
	ID string `json:"id"`
	// Version being released, without the v prefix
	Version string `json:"version"`
	// PreviousVersion before the bump, empty for a first release
	PreviousVersion string `json:"previous_version,omitempty"`
	// Phase is the current pipeline phase
	Phase Phase `json:"phase"`
	// FailedPhase is the phase the run was in when it failed, set
	// alongside PhaseFailed so resume knows where to pick up
	FailedPhase Phase `json:"failed_phase,omitempty"`
	// Failure describes why the run failed, only set in PhaseFailed
	Failure string `json:"failure,omitempty"`
	// StartedAt is when the run began
	StartedAt time.Time `json:"started_at"`
	// UpdatedAt is bumped on every save
	UpdatedAt time.Time `json:"updated_at"`
	// Recovered is true when this state was loaded from the backup
	// because the primary file was unreadable
	Recovered bool `json:"-"`

	Git     GitState     `json:"git"`
	Publish PublishState `json:"publish"`
}

// NewReleaseState creates a state record at the validate phase
func NewReleaseState(version, previousVersion string) *ReleaseState {
	now := time.Now().UTC()
	return &ReleaseState{
		ID:              newReleaseID(),
		Version:         version,
		PreviousVersion: previousVersion,
		Phase:           PhaseValidate,
		StartedAt:       now,
		UpdatedAt:       now,
	}
}

// Active reports whether the run is still in flight. Done and rolled back
// runs are inactive and may be cleaned up.
func (s *ReleaseState) Active() bool {
	switch s.Phase {
	case PhaseDone, PhaseRolledBack:
		return false
	}
	return true
}

// Advance moves the state to the given forward phase. Moving backwards is
// refused so a resumed run cannot repeat completed work.
func (s *ReleaseState) Advance(phase Phase) bool {
	current, ok := phaseOrder[s.Phase]
	next, nextOK := phaseOrder[phase]
	if !ok || !nextOK || next < current {
		return false
	}
	s.Phase = phase
	s.FailedPhase = ""
	s.Failure = ""
	return true
}

// MarkFailed records a failure, remembering the phase it happened in
func (s *ReleaseState) MarkFailed(reason string) {
	if s.Phase != PhaseFailed {
		s.FailedPhase = s.Phase
	}
	s.Phase = PhaseFailed
	s.Failure = reason
}

// ResumePhase returns the phase a resumed run should restart from
func (s *ReleaseState) ResumePhase() Phase {
	if s.Phase == PhaseFailed && s.FailedPhase != "" {
		return s.FailedPhase
	}
	return s.Phase
}

// Resume moves a failed run back to the phase it failed in, returns false
// when the run is not in a resumable state
func (s *ReleaseState) Resume() bool {
	if s.Phase != PhaseFailed || s.FailedPhase == "" {
		return false
	}
	s.Phase = s.ResumePhase()
	s.FailedPhase = ""
	s.Failure = ""
	return true
}

// TagName returns the workspace release tag for this run
func (s *ReleaseState) TagName() string {
	return "v" + s.Version
}

func newReleaseID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// rand.Read only fails when the OS entropy source is broken
		return time.Now().UTC().Format("20060102150405")
	}
	return hex.EncodeToString(buf)
}
