// Package settingsync keeps client-side setting state in step with the engine.
//
// A Session holds the state of one settings group while it is shown. Load
// reads the engine's current values, Set applies user edits according to the
// setting's apply policy and Apply commits staged (deferred) edits.
package settingsync

import (
	"errors"
	"time"

	"github.com/patrick-jessen/enginectl/internal/settings"
)

// Status is the synchronisation status of one setting.
type Status int

const (
	// Unknown means the engine has not been read yet.
	Unknown Status = iota
	// Synced means the value matches the last known engine state.
	Synced
	// Pending means a deferred edit is staged locally and not yet applied.
	Pending
)

func (s Status) String() string {
	switch s {
	case Synced:
		return "synced"
	case Pending:
		return "pending"
	default:
		return "unknown"
	}
}

var (
	ErrDisabled      = errors.New("setting is disabled")
	ErrUnmounted     = errors.New("session is unmounted")
	ErrApplyInFlight = errors.New("apply already in progress")
)

// State is a snapshot of one setting as seen by the panel.
type State struct {
	Key     settings.Key
	Label   string
	Policy  settings.ApplyPolicy
	Status  Status
	Value   settings.Value
	Raw     any
	Err     error
	Enabled bool
}

// Stale reports whether the last read or write of the setting failed, in
// which case Value may not reflect the engine.
func (s State) Stale() bool {
	return s.Err != nil
}

// Record describes one remote write, or a group commit when Key is empty.
type Record struct {
	At     time.Time
	Err    error
	Wire   any
	Engine string
	Group  settings.GroupKey
	Key    settings.Key
}

// Recorder receives every write the dispatcher performs.
type Recorder interface {
	Record(r Record) error
}
