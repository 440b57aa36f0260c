package describe

import (
	"testing"

	"github.com/templui/folio/internal/model"
)

func TestField_SyncUntilEdited(t *testing.T) {
	f := NewField("")

	fields := model.ProjectFields{Title: "Site", Status: model.ProjectStatusPlanned, ToolsUsed: "Go"}
	if !f.Sync(Generate(fields)) {
		t.Fatal("Sync() should write while generated")
	}
	generated := f.Value()

	// typing the same text back is not an edit
	f.Edit(generated)
	if f.Dirty() {
		t.Fatal("identical edit should not claim ownership")
	}

	f.Edit(generated + " Mine.")
	if f.State() != UserOwned {
		t.Fatalf("State() = %v, want user_owned", f.State())
	}

	fields.ToolsUsed = "Go, Rust"
	if f.Sync(Generate(fields)) {
		t.Error("Sync() wrote over a user-owned description")
	}
	if f.Value() != generated+" Mine." {
		t.Errorf("Value() = %q", f.Value())
	}

	// reverting to the generated text by hand keeps user ownership
	f.Edit(generated)
	if !f.Dirty() {
		t.Error("ownership must not transition back without Reset")
	}
}

func TestField_Reset(t *testing.T) {
	f := NewField("saved text")
	f.Edit("changed")
	f.Reset("saved text")

	if f.Dirty() {
		t.Fatal("Reset() should return to generated")
	}
	if !f.Sync("fresh") || f.Value() != "fresh" {
		t.Errorf("regeneration did not resume, value = %q", f.Value())
	}
}
