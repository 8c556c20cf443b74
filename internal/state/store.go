package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	shipiterrors "shipit.dev/shipit/internal/errors"
)

const (
	stateDirName  = "shipit"
	stateFileName = "state.json"
	backupSuffix  = ".bak"
)

// Store persists ReleaseState under the repository's .git directory so the
// file never shows up as an untracked change. The filesystem is pluggable,
// tests run against an in-memory one.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates a Store rooted at gitDir (the repository's .git
// directory) on the real filesystem
func NewStore(gitDir string) *Store {
	return NewStoreFs(afero.NewOsFs(), gitDir)
}

// NewStoreFs creates a Store on an explicit filesystem
func NewStoreFs(fs afero.Fs, gitDir string) *Store {
	return &Store{
		fs:  fs,
		dir: filepath.Join(gitDir, stateDirName),
	}
}

// Path returns the location of the state file
func (s *Store) Path() string {
	return filepath.Join(s.dir, stateFileName)
}

// Save writes the state atomically. The previous state file, if any, is
// kept as a .bak so a torn write never loses the whole record.
func (s *Store) Save(st *ReleaseState) error {
	st.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode release state: %w", err)
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	path := s.Path()

	if exists, _ := afero.Exists(s.fs, path); exists {
		prev, err := afero.ReadFile(s.fs, path)
		if err == nil {
			if err := afero.WriteFile(s.fs, path+backupSuffix, prev, 0o644); err != nil {
				return fmt.Errorf("failed to write state backup: %w", err)
			}
		}
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write release state: %w", err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace release state: %w", err)
	}
	return nil
}

// Load reads the persisted state. When the primary file is missing or
// corrupt it falls back to the backup and marks the result as recovered.
// Returns ErrNoActiveRelease when nothing is stored at all.
func (s *Store) Load() (*ReleaseState, error) {
	st, err := s.loadFile(s.Path())
	if err == nil {
		return st, nil
	}
	primaryErr := err

	st, backupErr := s.loadFile(s.Path() + backupSuffix)
	if backupErr == nil {
		st.Recovered = true
		return st, nil
	}

	if os.IsNotExist(primaryErr) && os.IsNotExist(backupErr) {
		return nil, shipiterrors.ErrNoActiveRelease
	}
	return nil, fmt.Errorf("failed to load release state: %w", primaryErr)
}

func (s *Store) loadFile(path string) (*ReleaseState, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, err
	}
	var st ReleaseState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if st.ID == "" || st.Version == "" {
		return nil, fmt.Errorf("state file %s is incomplete", path)
	}
	return &st, nil
}

// LoadActive loads the state and refuses inactive runs, so callers that
// need a release in flight get ErrNoActiveRelease for finished ones
func (s *Store) LoadActive() (*ReleaseState, error) {
	st, err := s.Load()
	if err != nil {
		return nil, err
	}
	if !st.Active() {
		return nil, shipiterrors.ErrNoActiveRelease
	}
	return st, nil
}

// Clear removes the state file and its backup
func (s *Store) Clear() error {
	for _, path := range []string{s.Path(), s.Path() + backupSuffix} {
		if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}

// Exists reports whether any state file is present
func (s *Store) Exists() bool {
	if ok, _ := afero.Exists(s.fs, s.Path()); ok {
		return true
	}
	ok, _ := afero.Exists(s.fs, s.Path()+backupSuffix)
	return ok
}
