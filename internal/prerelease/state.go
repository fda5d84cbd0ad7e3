// Package prerelease implements the pre-release controller: entering,
// exiting, and switching the workspace's pre-release label, and the state
// file the release planner consults while that mode is active.
package prerelease

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/gofrs/flock"
	"github.com/sampo-dev/sampo/internal/fileutil"
	"github.com/sampo-dev/sampo/internal/sampoerr"
)

// Mode is the workspace's current release mode.
type Mode string

const (
	ModeStable     Mode = "stable"
	ModePrerelease Mode = "prerelease"
)

// State is the on-disk shape of .sampo/prerelease.json.
type State struct {
	Mode     Mode     `json:"mode"`
	Label    string   `json:"label,omitempty"`
	Packages []string `json:"packages,omitempty"`
}

// stableState is the zero value Enter/Exit fall back to.
func stableState() *State {
	return &State{Mode: ModeStable}
}

// ReadState reads the pre-release state from path under a shared lock.
// A missing file is not an error — it means the workspace is in stable mode.
func ReadState(path string) (*State, error) {
	if !fileutil.PathExists(path) {
		return stableState(), nil
	}

	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, sampoerr.NewIoError(path, "failed to acquire read lock on prerelease state", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return stableState(), nil
		}
		return nil, sampoerr.NewIoError(path, "failed to read prerelease state", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, sampoerr.NewInvalidConfigError("prerelease.json", "malformed prerelease state file", err)
	}
	if state.Mode == "" {
		state.Mode = ModeStable
	}
	return &state, nil
}

// WriteState persists state to path under an exclusive lock, using the
// atomic write-then-rename discipline every other piece of mutable state in
// the workspace follows.
func WriteState(path string, state *State) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return sampoerr.NewIoError(path, "failed to acquire lock on prerelease state", err)
	}
	defer func() { _ = lock.Unlock() }()

	sort.Strings(state.Packages)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return sampoerr.NewIoError(path, "failed to marshal prerelease state", err)
	}
	data = append(data, '\n')

	if err := fileutil.AtomicWrite(path, data, 0o644); err != nil {
		return sampoerr.NewIoError(path, "failed to write prerelease state", err)
	}
	return nil
}

// DeleteState removes the state file; a missing file is not an error.
func DeleteState(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return sampoerr.NewIoError(path, "failed to delete prerelease state", err)
	}
	return nil
}
