package formstate

import (
	"errors"
	"log/slog"
)

var (
	ErrNotDirty       = errors.New("form has no changes to save")
	ErrSaveInProgress = errors.New("form is already saving")
	ErrNotSaving      = errors.New("form is not saving")
)

type State int

const (
	Pristine State = iota
	Dirty
	Saving
)

func (s State) String() string {
	switch s {
	case Dirty:
		return "dirty"
	case Saving:
		return "saving"
	default:
		return "pristine"
	}
}

// Tracker is the per-form state machine:
//
//	Pristine -> Dirty -> Saving -> Pristine (saved, baseline replaced)
//	                            -> Dirty    (failed, baseline kept)
type Tracker struct {
	mode     Mode
	baseline Key
	current  Key
	state    State
	lastErr  error
}

func NewTracker(mode Mode, baseline Key) *Tracker {
	t := &Tracker{
		mode:     mode,
		baseline: baseline,
		current:  baseline,
	}
	t.settle()
	return t
}

func (t *Tracker) Mode() Mode     { return t.mode }
func (t *Tracker) State() State   { return t.state }
func (t *Tracker) Baseline() Key  { return t.baseline }
func (t *Tracker) Err() error     { return t.lastErr }
func (t *Tracker) IsDirty() bool  { return IsDirty(t.mode, t.baseline, t.current) }
func (t *Tracker) CanReset() bool { return t.state != Saving && t.baseline != t.current }

// Update records the latest snapshot. While saving only the snapshot is
// recorded; the state settles when the save finishes.
func (t *Tracker) Update(current Key) {
	t.current = current
	if t.state != Saving {
		t.settle()
	}
}

// Rekey replaces both snapshots. Forms call it when the set of compared
// fields changes, e.g. once the description becomes user-owned and joins
// the comparison, so baseline and current are always built the same way.
func (t *Tracker) Rekey(baseline, current Key) {
	t.baseline = baseline
	t.current = current
	if t.state != Saving {
		t.settle()
	}
}

// BeginSave moves a dirty form to Saving.
func (t *Tracker) BeginSave() error {
	if t.state == Saving {
		return ErrSaveInProgress
	}
	if !t.IsDirty() {
		return ErrNotDirty
	}
	t.state = Saving
	t.lastErr = nil
	return nil
}

// SaveSucceeded makes what was saved both the baseline and the current
// snapshot, so values the backend normalized never read as edits. A form
// saved from create mode continues in edit mode.
func (t *Tracker) SaveSucceeded(saved Key) error {
	if t.state != Saving {
		return ErrNotSaving
	}
	t.mode = ModeEdit
	t.baseline = saved
	t.current = saved
	t.settle()
	return nil
}

// SaveFailed keeps the baseline and surfaces err.
func (t *Tracker) SaveFailed(err error) error {
	if t.state != Saving {
		return ErrNotSaving
	}
	t.lastErr = err
	t.state = Dirty
	slog.Debug("form save failed", "error", err)
	return nil
}

// Reset drops local changes and returns the baseline to restore.
func (t *Tracker) Reset() Key {
	if t.state == Saving {
		return t.current
	}
	t.current = t.baseline
	t.lastErr = nil
	t.settle()
	return t.baseline
}

// Rebase starts over from a new baseline, e.g. after loading a different
// entity into the form.
func (t *Tracker) Rebase(mode Mode, baseline Key) {
	t.mode = mode
	t.baseline = baseline
	t.current = baseline
	t.lastErr = nil
	t.settle()
}

func (t *Tracker) settle() {
	if t.baseline != t.current {
		t.state = Dirty
	} else {
		t.state = Pristine
	}
}
