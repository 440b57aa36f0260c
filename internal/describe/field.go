package describe

// Ownership says who controls the description text.
type Ownership int

const (
	// Generated text follows the structured fields.
	Generated Ownership = iota
	// UserOwned text was edited by hand and is never overwritten again
	// until Reset.
	UserOwned
)

func (o Ownership) String() string {
	if o == UserOwned {
		return "user_owned"
	}
	return "generated"
}

// Field is a text field that auto-syncs from a generator until the user
// edits it. The only way back to Generated is Reset.
type Field struct {
	value         string
	lastGenerated string
	state         Ownership
}

// NewField starts in Generated with value as the current text.
func NewField(value string) *Field {
	return &Field{value: value, lastGenerated: value}
}

func (f *Field) Value() string {
	return f.value
}

func (f *Field) State() Ownership {
	return f.state
}

// Dirty reports whether the user owns the text.
func (f *Field) Dirty() bool {
	return f.state == UserOwned
}

// Sync writes generated text while the field is Generated and reports
// whether the value was written.
func (f *Field) Sync(generated string) bool {
	if f.state == UserOwned {
		return false
	}
	f.value = generated
	f.lastGenerated = generated
	return true
}

// Edit records a direct user edit. Any difference from the last generated
// text hands the field to the user.
func (f *Field) Edit(value string) {
	f.value = value
	if f.state == Generated && value != f.lastGenerated {
		f.state = UserOwned
	}
}

// Reset returns the field to Generated with value as its text.
func (f *Field) Reset(value string) {
	f.value = value
	f.lastGenerated = value
	f.state = Generated
}
