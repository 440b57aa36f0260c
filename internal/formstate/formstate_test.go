package formstate

import (
	"errors"
	"testing"
)

func TestSnapshot_Normalizes(t *testing.T) {
	a := Snapshot(Fields{"title": "A", "deadline": "2024-05-01"}, Options{DateFields: []string{"deadline"}})
	b := Snapshot(Fields{"deadline": "2024-05-01T10:00:00", "title": "  A "}, Options{DateFields: []string{"deadline"}})
	if a != b {
		t.Errorf("snapshots differ:\n%s\n%s", a, b)
	}
}

func TestSnapshot_Description(t *testing.T) {
	base := Fields{"title": "A", "description": "generated"}
	changed := Fields{"title": "A", "description": "regenerated"}

	if Snapshot(base, Options{}) != Snapshot(changed, Options{}) {
		t.Error("description drift should be ignored when not user-owned")
	}
	if Snapshot(base, Options{IncludeDescription: true}) == Snapshot(changed, Options{IncludeDescription: true}) {
		t.Error("description should count when user-owned")
	}
}

func TestIsDirty(t *testing.T) {
	baseline := Snapshot(Fields{"title": "A"}, Options{})

	tests := []struct {
		name  string
		mode  Mode
		title string
		want  bool
	}{
		{"edit same", ModeEdit, "A", false},
		{"edit trailing space", ModeEdit, "A ", false},
		{"edit changed", ModeEdit, "B", true},
		{"create same", ModeCreate, "A", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := Snapshot(Fields{"title": tt.title}, Options{})
			if got := IsDirty(tt.mode, baseline, current); got != tt.want {
				t.Errorf("IsDirty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTracker_Lifecycle(t *testing.T) {
	a := Snapshot(Fields{"title": "A"}, Options{})
	b := Snapshot(Fields{"title": "B"}, Options{})

	tr := NewTracker(ModeEdit, a)
	if tr.State() != Pristine {
		t.Fatalf("initial state = %v", tr.State())
	}
	if err := tr.BeginSave(); !errors.Is(err, ErrNotDirty) {
		t.Errorf("BeginSave() on pristine = %v, want ErrNotDirty", err)
	}

	tr.Update(b)
	if tr.State() != Dirty || !tr.IsDirty() {
		t.Fatalf("state after change = %v", tr.State())
	}

	if err := tr.BeginSave(); err != nil {
		t.Fatalf("BeginSave() error: %v", err)
	}
	if err := tr.BeginSave(); !errors.Is(err, ErrSaveInProgress) {
		t.Errorf("second BeginSave() = %v, want ErrSaveInProgress", err)
	}

	failure := errors.New("rejected")
	if err := tr.SaveFailed(failure); err != nil {
		t.Fatalf("SaveFailed() error: %v", err)
	}
	if tr.State() != Dirty || tr.Baseline() != a || tr.Err() != failure {
		t.Errorf("after failure: state=%v baseline=%q err=%v", tr.State(), tr.Baseline(), tr.Err())
	}

	if err := tr.BeginSave(); err != nil {
		t.Fatalf("retry BeginSave() error: %v", err)
	}
	if err := tr.SaveSucceeded(b); err != nil {
		t.Fatalf("SaveSucceeded() error: %v", err)
	}
	if tr.State() != Pristine || tr.Baseline() != b || tr.IsDirty() {
		t.Errorf("after success: state=%v baseline=%q", tr.State(), tr.Baseline())
	}
}

func TestTracker_SavedSnapshotWins(t *testing.T) {
	a := Snapshot(Fields{"title": "A"}, Options{})
	b := Snapshot(Fields{"title": "B"}, Options{})
	c := Snapshot(Fields{"title": "C"}, Options{})

	tr := NewTracker(ModeEdit, a)
	tr.Update(b)
	if err := tr.BeginSave(); err != nil {
		t.Fatal(err)
	}
	tr.Update(c)
	if tr.State() != Saving {
		t.Fatalf("state = %v, want saving", tr.State())
	}
	if err := tr.SaveSucceeded(b); err != nil {
		t.Fatal(err)
	}
	if tr.State() != Pristine || tr.Baseline() != b || tr.IsDirty() {
		t.Errorf("after save: state=%v baseline=%q", tr.State(), tr.Baseline())
	}
}

func TestTracker_SaveNormalizedByBackend(t *testing.T) {
	sent := Snapshot(Fields{"status": "planned", "end_date": "2020-01-01"}, Options{})
	saved := Snapshot(Fields{"status": "planned", "end_date": ""}, Options{})

	tr := NewTracker(ModeCreate, Snapshot(Fields{}, Options{}))
	tr.Update(sent)
	if err := tr.BeginSave(); err != nil {
		t.Fatal(err)
	}
	if err := tr.SaveSucceeded(saved); err != nil {
		t.Fatal(err)
	}
	if tr.State() != Pristine || tr.IsDirty() || tr.CanReset() {
		t.Errorf("state=%v dirty=%v canReset=%v, want pristine", tr.State(), tr.IsDirty(), tr.CanReset())
	}
}

func TestTracker_Rekey(t *testing.T) {
	a := Snapshot(Fields{"title": "A"}, Options{})
	tr := NewTracker(ModeEdit, a)

	withDesc := Snapshot(Fields{"title": "A", "description": "x"}, Options{IncludeDescription: true})
	tr.Rekey(withDesc, withDesc)
	if tr.State() != Pristine || tr.Baseline() != withDesc {
		t.Errorf("state=%v baseline=%q", tr.State(), tr.Baseline())
	}

	tr.Rekey(withDesc, Snapshot(Fields{"title": "A", "description": "y"}, Options{IncludeDescription: true}))
	if tr.State() != Dirty {
		t.Errorf("state = %v, want dirty", tr.State())
	}
}

func TestTracker_CreateBecomesEdit(t *testing.T) {
	empty := Snapshot(Fields{"title": ""}, Options{})
	saved := Snapshot(Fields{"title": "New"}, Options{})

	tr := NewTracker(ModeCreate, empty)
	if !tr.IsDirty() {
		t.Fatal("create form should always be dirty")
	}
	if err := tr.BeginSave(); err != nil {
		t.Fatal(err)
	}
	tr.Update(saved)
	if err := tr.SaveSucceeded(saved); err != nil {
		t.Fatal(err)
	}
	if tr.Mode() != ModeEdit || tr.IsDirty() {
		t.Errorf("mode=%v dirty=%v, want edit and clean", tr.Mode(), tr.IsDirty())
	}
}

func TestTracker_Reset(t *testing.T) {
	a := Snapshot(Fields{"title": "A"}, Options{})
	tr := NewTracker(ModeEdit, a)
	tr.Update(Snapshot(Fields{"title": "Z"}, Options{}))
	if !tr.CanReset() {
		t.Fatal("CanReset() = false on dirty form")
	}
	if got := tr.Reset(); got != a {
		t.Errorf("Reset() = %q, want baseline", got)
	}
	if tr.State() != Pristine {
		t.Errorf("state after reset = %v", tr.State())
	}
}
